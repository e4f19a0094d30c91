package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeManifest places content at the manifest path inside a temp root and
// returns the root.
func writeManifest(t *testing.T, content string) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(PathIn(root), []byte(content), 0o644))

	return root
}

func TestLoadPreserved_MissingFile(t *testing.T) {
	p, err := LoadPreserved(filepath.Join(t.TempDir(), Filename))
	require.NoError(t, err)
	assert.Empty(t, p.Nodes)
	assert.Empty(t, p.RootAttrs)
}

func TestLoadPreserved_ParseError(t *testing.T) {
	root := writeManifest(t, "<meta><unclosed></meta>")

	_, err := LoadPreserved(PathIn(root))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestLoadPreserved_ReadFailureIsNotParseError(t *testing.T) {
	root := t.TempDir()

	// A directory at the manifest path fails the read itself; that is an
	// I/O problem, not a malformed manifest.
	require.NoError(t, os.Mkdir(PathIn(root), 0o755))

	_, err := LoadPreserved(PathIn(root))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "reading manifest")
}

func TestLoadPreserved_EmptyFileIsParseError(t *testing.T) {
	root := writeManifest(t, "")

	_, err := LoadPreserved(PathIn(root))
	assert.ErrorIs(t, err, ErrParse)
}

func TestLoadPreserved_DropsGeneratedTags(t *testing.T) {
	root := writeManifest(t, `<meta>
  <script src="old.lua" type="server" lang="lua"/>
  <assembly src="legacy.dll"/>
  <file src="old.png"/>
  <setting name="gamemode" value="race"/>
</meta>`)

	p, err := LoadPreserved(PathIn(root))
	require.NoError(t, err)
	require.Len(t, p.Nodes, 1)

	el, ok := p.Nodes[0].(*etree.Element)
	require.True(t, ok)
	assert.Equal(t, "setting", el.Tag)
	assert.Equal(t, "race", el.SelectAttrValue("value", ""))
}

func TestLoadPreserved_GeneratedTagsCaseInsensitive(t *testing.T) {
	root := writeManifest(t, `<meta>
  <SCRIPT src="a.lua"/>
  <Assembly src="b.dll"/>
  <File src="c.png"/>
  <include resource="deps"/>
</meta>`)

	p, err := LoadPreserved(PathIn(root))
	require.NoError(t, err)
	require.Len(t, p.Nodes, 1)
	assert.Equal(t, "include", p.Nodes[0].(*etree.Element).Tag)
}

func TestLoadPreserved_KeepsCommentsAndOrder(t *testing.T) {
	root := writeManifest(t, `<meta>
  <!-- hand-written -->
  <info author="alice"/>
  <script src="a.lua"/>
  <settings><setting name="x"/></settings>
</meta>`)

	p, err := LoadPreserved(PathIn(root))
	require.NoError(t, err)
	require.Len(t, p.Nodes, 3)

	_, isComment := p.Nodes[0].(*etree.Comment)
	assert.True(t, isComment, "comment should survive, first")
	assert.Equal(t, "info", p.Nodes[1].(*etree.Element).Tag)

	// Nested content under a non-generated element is untouched, even when
	// the inner tags look generated.
	settings := p.Nodes[2].(*etree.Element)
	assert.Equal(t, "settings", settings.Tag)
	assert.Len(t, settings.ChildElements(), 1)
}

func TestLoadPreserved_KeepsRootAttributes(t *testing.T) {
	root := writeManifest(t, `<meta min_version="1.6.0"><file src="x.png"/></meta>`)

	p, err := LoadPreserved(PathIn(root))
	require.NoError(t, err)
	require.Len(t, p.RootAttrs, 1)
	assert.Equal(t, "min_version", p.RootAttrs[0].Key)
	assert.Equal(t, "1.6.0", p.RootAttrs[0].Value)
}
