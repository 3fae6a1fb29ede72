package registry

import "github.com/AlephTX/enigma/term"

// Instr is an opaque instruction-stream offset. The bytecode decoder and
// interpreter loop live outside this core; Instr exists so Module/Lambda/
// Export have somewhere concrete to point.
type Instr uint32

// Lambda is a single fun-entry record inside a module: the label it starts
// at, its arity, and how many free variables it captures.
type Lambda struct {
	Name      term.AtomID
	Arity     uint8
	Entry     Instr
	NumFree   uint32
	OldUnique uint32
	OldIndex  uint32
}

// FuncInfo records one func_info-tagged entry point, the unit NIF patching
// operates on.
type FuncInfo struct {
	Function term.AtomID
	Arity    uint32
	Entry    Instr
}

// Module is a single loaded module's metadata: its own exports (before
// BIF-override resolution), imports, constants/literals, lambda table, and
// func_info table, minus the actual instruction words (out of scope here).
type Module struct {
	Name       term.AtomID
	Exports    []FuncInfo
	Imports    []MFA
	Lambdas    []Lambda
	Literals   []term.Term
	OnLoadFunc *Instr
	attributes term.Term // a proplist term, opaque to this core
	compile    term.Term
}

// NewModule constructs an empty module shell ready for PrepareLoading to
// populate; the real loader (out of scope) would fill Exports/Imports/
// Lambdas/Literals from the decoded beam chunks.
func NewModule(name term.AtomID) *Module {
	return &Module{Name: name, attributes: term.Nil(), compile: term.Nil()}
}

// ModuleRef is a generation-indexed handle into a ModuleRegistry's slot
// table rather than a raw pointer: a raw pointer-to-Module is unsound once
// modules can be reloaded/purged, since Go's garbage collector can relocate
// or reclaim backing arrays a raw pointer would alias. Resolving a stale ref
// (wrong generation, e.g. after PurgeModule) fails cleanly instead of
// reading freed/reused memory.
type ModuleRef struct {
	id         uint32
	generation uint32
}

// Valid reports whether r refers to any slot at all (the zero ModuleRef
// never resolves).
func (r ModuleRef) Valid() bool { return r.generation != 0 }
