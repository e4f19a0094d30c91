package manifest

import (
	"log/slog"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/hupe1980/metawatch/internal/scan"
)

// Collect walks root and derives the manifest entries for the current tree,
// in walk order. The manifest file itself never yields an entry. Unreadable
// directories are logged and skipped; the walk continues.
func Collect(root string, logger *slog.Logger) []Entry {
	if logger == nil {
		logger = slog.Default()
	}

	manifestPath := PathIn(root)

	var entries []Entry

	for path, err := range scan.Files(root) {
		if err != nil {
			logger.Warn("skipping unreadable directory", slog.String("error", err.Error()))
			continue
		}

		if sameFile(path, manifestPath) {
			continue
		}

		if e, ok := EntryFor(root, path); ok {
			entries = append(entries, e)
		}
	}

	return entries
}

// Build assembles the new document: preserved nodes first, in their original
// order, then one element per entry in walk order.
func Build(p Preserved, entries []Entry) *etree.Document {
	doc := etree.NewDocument()
	root := doc.CreateElement(rootTag)

	for _, a := range p.RootAttrs {
		key := a.Key
		if a.Space != "" {
			key = a.Space + ":" + a.Key
		}

		root.CreateAttr(key, a.Value)
	}

	for _, node := range p.Nodes {
		root.AddChild(node)
	}

	for _, e := range entries {
		if e.Script {
			el := root.CreateElement(tagScript)
			el.CreateAttr("src", e.Src)
			el.CreateAttr("type", e.Target)
			el.CreateAttr("lang", e.Lang)

			continue
		}

		el := root.CreateElement(tagFile)
		el.CreateAttr("src", e.Src)
	}

	return doc
}

// sameFile compares two paths after cleaning. Both come from the same walk
// root, so lexical comparison is sufficient.
func sameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
