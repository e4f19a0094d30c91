// Package classify maps resource file names to manifest categories using an
// ordered table of suffix rules. Classification decides whether a file gets
// a script entry, a plain file entry, or no entry at all.
package classify

import "strings"

// Kind is the broad category a file falls into.
type Kind int

const (
	// KindScript marks a server or client script, compiled or source.
	KindScript Kind = iota
	// KindIgnored marks auxiliary files that never appear in the manifest.
	KindIgnored
	// KindFile marks opaque resource files (the fallback).
	KindFile
)

// Script target environments.
const (
	TargetServer = "server"
	TargetClient = "client"
)

// Script language tags.
const (
	LangCompiled = "compiled"
	LangLua      = "lua"
	LangCSharp   = "csharp"
)

// Classification is the result of matching a file name against the rule table.
type Classification struct {
	Kind   Kind
	Target string // server|client, scripts only
	Lang   string // compiled|lua|csharp, scripts only
}

// Rule pairs a file-name suffix with the classification it produces.
// Suffix matching is case-insensitive against the end of the name.
type Rule struct {
	Suffix string
	Result Classification
}

// rules is matched in order, first match wins. Compound suffixes must come
// before the plain extensions they overlap (".client.lua" before ".lua"),
// otherwise the shorter rule would shadow them.
var rules = []Rule{
	{".client.lua", Classification{Kind: KindScript, Target: TargetClient, Lang: LangLua}},
	{".server.lua", Classification{Kind: KindScript, Target: TargetServer, Lang: LangLua}},
	{".lua", Classification{Kind: KindScript, Target: TargetServer, Lang: LangLua}},
	{".cs", Classification{Kind: KindScript, Target: TargetServer, Lang: LangCSharp}},
	{".dll", Classification{Kind: KindScript, Target: TargetServer, Lang: LangCompiled}},
	{".pdb", Classification{Kind: KindIgnored}},
}

// generic is the fallback for names no rule matches.
var generic = Classification{Kind: KindFile}

// Classify resolves a bare file name (no directory part) to its
// classification. It never fails: unmatched names are generic files.
func Classify(name string) Classification {
	lower := strings.ToLower(name)

	for _, r := range rules {
		if strings.HasSuffix(lower, r.Suffix) {
			return r.Result
		}
	}

	return generic
}

// Rules returns a copy of the rule table in match order, for introspection.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)

	return out
}
