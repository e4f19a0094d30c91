package manifest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Result describes one completed regeneration.
type Result struct {
	ManifestPath string
	Entries      int
	Preserved    int

	// Changed reports whether the new serialization differs from the prior
	// file contents. Summary and Diff are empty when it is false.
	Changed bool
	Summary string
	Diff    string
}

// Regenerate runs the full pipeline for root: load preserved content from
// the existing manifest, walk and classify the tree, build the new document,
// and atomically replace the manifest file.
//
// A manifest that exists but does not parse aborts the attempt (errors.Is
// ErrParse) and leaves the file untouched.
func Regenerate(ctx context.Context, root string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := PathIn(root)

	// Prior bytes feed the change diff; a missing file reads as empty, but
	// an existing file that cannot be read aborts the run.
	prev, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	preserved, err := LoadPreserved(path)
	if err != nil {
		return nil, err
	}

	entries := Collect(root, logger)

	data, err := Serialize(Build(preserved, entries))
	if err != nil {
		return nil, err
	}

	if err := NewWriter(path, WithLogger(logger)).Write(data); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	res := &Result{
		ManifestPath: path,
		Entries:      len(entries),
		Preserved:    len(preserved.Nodes),
	}

	if !bytes.Equal(prev, data) {
		res.Changed = true
		res.Summary, res.Diff = Diff(prev, data)
	}

	return res, nil
}
