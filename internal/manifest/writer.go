package manifest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

// Serialize renders the document with two-space indentation and no XML
// declaration line.
func Serialize(doc *etree.Document) ([]byte, error) {
	doc.Indent(2)

	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serializing manifest: %w", err)
	}

	return data, nil
}

// Writer persists manifest bytes to a fixed path, fully replacing any prior
// file. The replacement is atomic: readers see either the old manifest or
// the new one, never a torn write.
type Writer struct {
	path   string
	perm   os.FileMode
	logger *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) WriterOption {
	return func(w *Writer) {
		w.perm = perm
	}
}

// WithLogger sets a logger for the Writer.
func WithLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter creates a writer bound to the given manifest path.
func NewWriter(path string, opts ...WriterOption) *Writer {
	w := &Writer{
		path:   path,
		perm:   0o644,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write stages data in a temp file next to the target and renames it into
// place. Failures are returned to the caller; there is no retry here.
func (w *Writer) Write(data []byte) error {
	dir := filepath.Dir(w.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("staging manifest in %s: %w", dir, err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("writing manifest %s: %w", w.path, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("writing manifest %s: %w", w.path, err)
	}

	if err := os.Chmod(tmpName, w.perm); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("writing manifest %s: %w", w.path, err)
	}

	if err := os.Rename(tmpName, w.path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replacing manifest %s: %w", w.path, err)
	}

	w.logger.Debug("manifest written", slog.String("path", w.path), slog.Int("bytes", len(data)))

	return nil
}

// Path returns the manifest path this writer targets.
func (w *Writer) Path() string {
	return w.path
}
