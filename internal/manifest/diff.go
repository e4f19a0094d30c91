package manifest

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff compares two manifest serializations and returns a one-line change
// summary plus the full unified diff. Equal inputs return ("no changes", "").
func Diff(prev, curr []byte) (summary, unified string) {
	if bytes.Equal(prev, curr) {
		return "no changes", ""
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(prev)),
		B:        difflib.SplitLines(string(curr)),
		FromFile: Filename + " (previous)",
		ToFile:   Filename,
		Context:  2,
	}

	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		// String-backed diffing cannot fail in practice; fall back to a
		// bare summary if it ever does.
		return "changed", ""
	}

	var added, removed int

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}

	return fmt.Sprintf("+%d/-%d line(s)", added, removed), text
}

// WriteDiff writes a unified diff to w, line by line, with optional ANSI
// colors.
func WriteDiff(w io.Writer, unified string, color bool) {
	if unified == "" {
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(unified, "\n"), "\n") {
		if color {
			writeColorLine(w, line)
			continue
		}

		_, _ = fmt.Fprintln(w, line)
	}
}

// writeColorLine writes a single diff line with ANSI color codes.
func writeColorLine(w io.Writer, line string) {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		cyan  = "\033[36m"
		bold  = "\033[1m"
		reset = "\033[0m"
	)

	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", bold, line, reset)
	case strings.HasPrefix(line, "@@"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", cyan, line, reset)
	case strings.HasPrefix(line, "-"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", red, line, reset)
	case strings.HasPrefix(line, "+"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", green, line, reset)
	default:
		_, _ = fmt.Fprintln(w, line)
	}
}
