package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// ErrParse marks an existing manifest that is not well-formed XML. The
// regeneration attempt that hits it must fail loudly instead of clobbering
// the file with a partial result.
var ErrParse = errors.New("manifest is not well-formed")

// Preserved is the hand-authored portion of a prior manifest: the root
// element's attributes plus every top-level node that is not a generated
// entry, in original order.
type Preserved struct {
	RootAttrs []etree.Attr
	Nodes     []etree.Token
}

// LoadPreserved reads the manifest at path and extracts its preserved
// content. A missing file is not an error and yields empty content; a file
// that exists but does not parse returns an error wrapping ErrParse. Plain
// read failures (permissions, I/O) are returned as-is, not as ErrParse.
func LoadPreserved(path string) (Preserved, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Preserved{}, nil
		}

		return Preserved{}, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return Preserved{}, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	root := doc.Root()
	if root == nil {
		return Preserved{}, fmt.Errorf("%w: %s: no root element", ErrParse, path)
	}

	p := Preserved{RootAttrs: append([]etree.Attr(nil), root.Attr...)}

	for _, child := range root.Child {
		switch t := child.(type) {
		case *etree.Element:
			if isGeneratedTag(t.Tag) {
				continue
			}
		case *etree.CharData:
			// Inter-element whitespace is formatting, not content; the
			// writer re-indents the document anyway.
			if strings.TrimSpace(t.Data) == "" {
				continue
			}
		}

		p.Nodes = append(p.Nodes, child)
	}

	return p, nil
}
