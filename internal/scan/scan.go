// Package scan walks a resource tree and yields its regular files in the
// order the manifest wants them: each directory's files first, then the
// contents of each subdirectory, depth-first.
package scan

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Files returns a lazy sequence of the regular files under root. For every
// directory it yields the direct files (in os.ReadDir order), then descends
// into each subdirectory in turn before moving to the next sibling.
//
// Hidden entries (names starting with a dot, e.g. .git, .env) are skipped
// entirely, files and directories both. The watch session ignores events on
// them, so listing them here would leave the manifest stale until an
// unrelated change arrived.
//
// Unreadable directories produce an error element and the walk continues;
// the consumer decides whether to log or abort. The sequence is finite and
// re-invocable, but a single iteration cannot be restarted.
func Files(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		// Explicit LIFO stack instead of recursion so tree depth never
		// translates into stack depth.
		stack := []string{root}

		for len(stack) > 0 {
			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			entries, err := os.ReadDir(dir)
			if err != nil {
				if !yield("", fmt.Errorf("reading directory %s: %w", dir, err)) {
					return
				}

				continue
			}

			var subdirs []string

			for _, e := range entries {
				if strings.HasPrefix(e.Name(), ".") {
					continue
				}

				if e.IsDir() {
					subdirs = append(subdirs, filepath.Join(dir, e.Name()))
					continue
				}

				if !e.Type().IsRegular() {
					continue
				}

				if !yield(filepath.Join(dir, e.Name()), nil) {
					return
				}
			}

			// Push in reverse so the first subdirectory is visited next and
			// fully drained before its siblings.
			for i := len(subdirs) - 1; i >= 0; i-- {
				stack = append(stack, subdirs[i])
			}
		}
	}
}
