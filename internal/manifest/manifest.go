// Package manifest owns the meta.xml document: loading hand-authored content
// from a prior manifest, building a fresh document from the current file
// tree, and writing it back atomically.
package manifest

import (
	"path/filepath"
	"strings"

	"github.com/hupe1980/metawatch/internal/classify"
)

// Filename is the fixed manifest file name inside a watched root.
const Filename = "meta.xml"

// rootTag is the manifest container element.
const rootTag = "meta"

// Generated entry tags. "assembly" is legacy: it is recognized when
// filtering prior content but never emitted.
const (
	tagScript   = "script"
	tagAssembly = "assembly"
	tagFile     = "file"
)

// PathIn returns the manifest path for a watched root.
func PathIn(root string) string {
	return filepath.Join(root, Filename)
}

// isGeneratedTag reports whether a top-level element was produced by this
// tool (or its predecessors) and must be dropped before regeneration.
func isGeneratedTag(tag string) bool {
	switch strings.ToLower(tag) {
	case tagScript, tagAssembly, tagFile:
		return true
	}

	return false
}

// Entry is one generated manifest record, derived purely from a file's
// root-relative path and its classification.
type Entry struct {
	// Src is the root-relative path, forward slashes, no leading slash.
	Src string

	// Script distinguishes <script> entries from plain <file> entries.
	Script bool

	// Target is server|client. Scripts only.
	Target string

	// Lang is compiled or the source dialect. Scripts only.
	Lang string
}

// EntryFor derives the manifest entry for path (absolute, under root).
// The second return is false when the file's classification excludes it
// from the manifest.
func EntryFor(root, path string) (Entry, bool) {
	c := classify.Classify(filepath.Base(path))
	if c.Kind == classify.KindIgnored {
		return Entry{}, false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		// Walk results are always under root; a failure here means the
		// caller passed an unrelated path.
		return Entry{}, false
	}

	e := Entry{Src: filepath.ToSlash(rel)}
	if c.Kind == classify.KindScript {
		e.Script = true
		e.Target = c.Target
		e.Lang = c.Lang
	}

	return e, true
}
