package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		file string
		want Classification
	}{
		{"csharp source", "a.cs", Classification{Kind: KindScript, Target: TargetServer, Lang: LangCSharp}},
		{"compiled binary", "b.dll", Classification{Kind: KindScript, Target: TargetServer, Lang: LangCompiled}},
		{"debug symbols", "c.pdb", Classification{Kind: KindIgnored}},
		{"image", "d.png", Classification{Kind: KindFile}},
		{"server lua", "init.lua", Classification{Kind: KindScript, Target: TargetServer, Lang: LangLua}},
		{"client lua compound", "hud.client.lua", Classification{Kind: KindScript, Target: TargetClient, Lang: LangLua}},
		{"server lua compound", "spawn.server.lua", Classification{Kind: KindScript, Target: TargetServer, Lang: LangLua}},
		{"no extension", "README", Classification{Kind: KindFile}},
		{"dotfile", ".gitignore", Classification{Kind: KindFile}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.file))
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	assert.Equal(t, LangCSharp, Classify("Program.CS").Lang)
	assert.Equal(t, LangCompiled, Classify("LIB.DLL").Lang)
	assert.Equal(t, KindIgnored, Classify("Lib.PDB").Kind)
	assert.Equal(t, TargetClient, Classify("HUD.Client.LUA").Target)
}

func TestClassify_CompoundBeforeSimple(t *testing.T) {
	// ".client.lua" must win over the plain ".lua" rule.
	got := Classify("x.client.lua")
	assert.Equal(t, TargetClient, got.Target)

	// Embedded but non-terminal suffixes do not match.
	got = Classify("client.lua.bak")
	assert.Equal(t, KindFile, got.Kind)
}

func TestRules_OrderAndIsolation(t *testing.T) {
	got := Rules()
	assert.Equal(t, ".client.lua", got[0].Suffix)

	// Mutating the copy must not affect future classification.
	got[0].Result = Classification{Kind: KindIgnored}
	assert.Equal(t, KindScript, Classify("a.client.lua").Kind)
}
