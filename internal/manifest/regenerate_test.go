package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel string) {
	t.Helper()

	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, nil, 0o644))
}

// entryAttrs reads back the generated elements of the manifest in root as
// (tag, src, type, lang) tuples.
func entryAttrs(t *testing.T, root string) [][4]string {
	t.Helper()

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(PathIn(root)))

	var got [][4]string

	for _, el := range doc.Root().ChildElements() {
		if !isGeneratedTag(el.Tag) {
			continue
		}

		got = append(got, [4]string{
			el.Tag,
			el.SelectAttrValue("src", ""),
			el.SelectAttrValue("type", ""),
			el.SelectAttrValue("lang", ""),
		})
	}

	return got
}

func TestRegenerate_ClassifiesTheBasics(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.cs")
	touch(t, root, "b.dll")
	touch(t, root, "c.pdb")
	touch(t, root, "d.png")

	res, err := Regenerate(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Entries)
	assert.True(t, res.Changed)

	assert.Equal(t, [][4]string{
		{"script", "a.cs", "server", "csharp"},
		{"script", "b.dll", "server", "compiled"},
		{"file", "d.png", "", ""},
	}, entryAttrs(t, root))
}

func TestRegenerate_NeverDescribesItself(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.png")

	_, err := Regenerate(context.Background(), root, nil)
	require.NoError(t, err)

	// Second run: the manifest now exists on disk but must not appear in
	// its own entries.
	res, err := Regenerate(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)

	for _, e := range entryAttrs(t, root) {
		assert.NotEqual(t, Filename, e[1])
	}
}

func TestRegenerate_HiddenFilesNeverListed(t *testing.T) {
	root := t.TempDir()
	touch(t, root, ".env")
	touch(t, root, ".git/config")
	touch(t, root, "vis.png")

	// The watch session never reacts to hidden-file events, so listing
	// hidden files here would leave the manifest permanently out of date.
	res, err := Regenerate(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)

	data, readErr := os.ReadFile(PathIn(root))
	require.NoError(t, readErr)
	assert.NotContains(t, string(data), ".env")
	assert.NotContains(t, string(data), ".git")
}

func TestRegenerate_Idempotent(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.cs")
	touch(t, root, "sub/d.png")

	_, err := Regenerate(context.Background(), root, nil)
	require.NoError(t, err)

	first, err := os.ReadFile(PathIn(root))
	require.NoError(t, err)

	res, err := Regenerate(context.Background(), root, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	second, err := os.ReadFile(PathIn(root))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "no change in the tree, no change in the bytes")
}

func TestRegenerate_PreservesHandAuthoredDropsStale(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "new.png")
	require.NoError(t, os.WriteFile(PathIn(root), []byte(`<meta>
  <setting name="gamemode" value="race"/>
  <file src="old.png"/>
</meta>`), 0o644))

	res, err := Regenerate(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Preserved)

	data, err := os.ReadFile(PathIn(root))
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `<setting name="gamemode" value="race"/>`)
	assert.Contains(t, s, `<file src="new.png"/>`)
	assert.NotContains(t, s, "old.png")
}

func TestRegenerate_PreservedSurvivesRepeatedRuns(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.lua")
	require.NoError(t, os.WriteFile(PathIn(root), []byte(`<meta min_version="1.6.0">
  <!-- do not touch -->
  <info author="alice" version="2.0"/>
</meta>`), 0o644))

	for range 3 {
		_, err := Regenerate(context.Background(), root, nil)
		require.NoError(t, err)
	}

	data, err := os.ReadFile(PathIn(root))
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `min_version="1.6.0"`)
	assert.Contains(t, s, "<!-- do not touch -->")
	assert.Contains(t, s, `<info author="alice" version="2.0"/>`)
}

func TestRegenerate_CorruptManifestLeftUntouched(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.png")

	corrupt := "<meta><broken"
	require.NoError(t, os.WriteFile(PathIn(root), []byte(corrupt), 0o644))

	_, err := Regenerate(context.Background(), root, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	data, readErr := os.ReadFile(PathIn(root))
	require.NoError(t, readErr)
	assert.Equal(t, corrupt, string(data))
}

func TestRegenerate_UnreadableManifestAborts(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.png")

	// A manifest that exists but cannot be read must abort the run instead
	// of silently diffing against empty content.
	require.NoError(t, os.Mkdir(PathIn(root), 0o755))

	_, err := Regenerate(context.Background(), root, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "reading manifest")
}

func TestRegenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := t.TempDir()
	touch(t, root, "a.png")

	_, err := Regenerate(ctx, root, nil)
	require.Error(t, err)

	_, statErr := os.Stat(PathIn(root))
	assert.True(t, os.IsNotExist(statErr), "cancelled run must not write")
}

func TestRegenerate_DiffReported(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.png")

	res, err := Regenerate(context.Background(), root, nil)
	require.NoError(t, err)
	require.True(t, res.Changed)
	assert.NotEmpty(t, res.Summary)
	assert.Contains(t, res.Diff, `+  <file src="a.png"/>`)
}
