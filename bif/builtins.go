package bif

import (
	"github.com/AlephTX/enigma/heap"
	"github.com/AlephTX/enigma/registry"
	"github.com/AlephTX/enigma/term"
)

// WellKnown holds the small set of atoms every BIF needs to construct
// standard result shapes (ok/error tuples, booleans).
type WellKnown struct {
	True, False, Ok, Error, Undefined term.AtomID
	Nomatch, Global, Trim, TrimAll    term.AtomID
	Scope                             term.AtomID
}

// NewWellKnown interns the standard atoms in atoms, returning their ids.
func NewWellKnown(atoms *term.AtomTable) WellKnown {
	return WellKnown{
		True:      atoms.Intern("true"),
		False:     atoms.Intern("false"),
		Ok:        atoms.Intern("ok"),
		Error:     atoms.Intern("error"),
		Undefined: atoms.Intern("undefined"),
		Nomatch:   atoms.Intern("nomatch"),
		Global:    atoms.Intern("global"),
		Trim:      atoms.Intern("trim"),
		TrimAll:   atoms.Intern("trim_all"),
		Scope:     atoms.Intern("scope"),
	}
}

func (w WellKnown) Bool(v bool) term.Term {
	if v {
		return term.Atom(w.True)
	}
	return term.Atom(w.False)
}

func (w WellKnown) ErrorAtom() term.Term { return term.Atom(w.Error) }

// Builtins is the receiver every BIF method hangs off of, giving the
// binary/maps/load/timer implementations shared access to the atom table
// (for constructing ok/error/true/false results and interning module/key
// names), the process heap (binary construction), and the module registry
// (loader BIFs).
type Builtins struct {
	Atoms   *term.AtomTable
	Heap    *heap.Heap
	WK      WellKnown
	Modules *registry.ModuleRegistry
	Exports *registry.ExportsTable
	Loader  *registry.Loader
	Timers  *Timers

	// preLoaded lists the modules this runtime provides natively, the set
	// pre_loaded/0 reports rather than every module the loader happens to
	// have registered so far.
	preLoaded []term.AtomID
}

// NewBuiltins wires a Builtins instance against the given runtime state.
func NewBuiltins(atoms *term.AtomTable, h *heap.Heap, modules *registry.ModuleRegistry, exports *registry.ExportsTable, loader *registry.Loader) *Builtins {
	return &Builtins{
		Atoms:   atoms,
		Heap:    h,
		WK:      NewWellKnown(atoms),
		Modules: modules,
		Exports: exports,
		Loader:  loader,
		Timers:  NewTimers(),
	}
}

// Register installs every BIF this package implements into exports,
// MFA-keyed under mod (conventionally the "erlang"/"maps"/"binary" module
// atoms, interned by the caller). name is interned here so callers only
// need to hand over the target module atom.
func (b *Builtins) Register(exports *registry.ExportsTable, mod term.AtomID, name string, arity uint32, fn Fn) {
	mfa := registry.MFA{Module: mod, Function: b.Atoms.Intern(name), Arity: arity}
	exports.RegisterBif(mfa, adapt(fn))
}

// RegisterAll installs the full BIF surface this package implements under
// the given module atoms, the wiring step a runtime.Context performs once at
// startup before any module code is loaded (so BIF-override precedence in
// ExportsTable.RegisterFun has something to check against).
func (b *Builtins) RegisterAll(mapsMod, binaryMod, eratMod, eratsMod term.AtomID) {
	b.preLoaded = []term.AtomID{mapsMod, binaryMod, eratMod, eratsMod}

	b.Register(b.Exports, mapsMod, "new", 0, b.MapsNew0)
	b.Register(b.Exports, mapsMod, "find", 2, b.MapsFind2)
	b.Register(b.Exports, mapsMod, "get", 2, b.MapsGet2)
	b.Register(b.Exports, mapsMod, "get", 3, b.MapsGet3)
	b.Register(b.Exports, mapsMod, "from_list", 1, b.MapsFromList1)
	b.Register(b.Exports, mapsMod, "to_list", 1, b.MapsToList1)
	b.Register(b.Exports, mapsMod, "is_key", 2, b.MapsIsKey2)
	b.Register(b.Exports, mapsMod, "keys", 1, b.MapsKeys1)
	b.Register(b.Exports, mapsMod, "values", 1, b.MapsValues1)
	b.Register(b.Exports, mapsMod, "merge", 2, b.MapsMerge2)
	b.Register(b.Exports, mapsMod, "put", 3, b.MapsPut3)
	b.Register(b.Exports, mapsMod, "remove", 2, b.MapsRemove2)
	b.Register(b.Exports, mapsMod, "update", 3, b.MapsUpdate3)
	b.Register(b.Exports, mapsMod, "take", 2, b.MapsTake2)

	b.Register(b.Exports, binaryMod, "split_binary", 2, b.SplitBinary2)
	b.Register(b.Exports, binaryMod, "part", 2, b.BinaryPart2)
	b.Register(b.Exports, binaryMod, "part", 3, b.BinaryPart3)
	b.Register(b.Exports, binaryMod, "compile_pattern", 1, b.CompilePattern1)
	b.Register(b.Exports, binaryMod, "split", 2, b.BinarySplit2)
	b.Register(b.Exports, binaryMod, "split", 3, b.BinarySplit3)
	b.Register(b.Exports, binaryMod, "match", 2, b.BinaryMatch2)
	b.Register(b.Exports, binaryMod, "match", 3, b.BinaryMatch3)
	b.Register(b.Exports, binaryMod, "matches", 2, b.BinaryMatches2)
	b.Register(b.Exports, binaryMod, "matches", 3, b.BinaryMatches3)
	b.Register(b.Exports, binaryMod, "copy", 1, b.BinaryCopy1)
	b.Register(b.Exports, binaryMod, "copy", 2, b.BinaryCopy2)
	b.Register(b.Exports, binaryMod, "first", 1, b.BinaryFirst1)
	b.Register(b.Exports, binaryMod, "last", 1, b.BinaryLast1)
	b.Register(b.Exports, binaryMod, "longest_common_prefix", 1, b.LongestCommonPrefix1)

	b.Register(b.Exports, eratMod, "pre_loaded", 0, b.PreLoaded0)
	b.Register(b.Exports, eratMod, "prepare_loading", 2, b.PrepareLoading2)
	b.Register(b.Exports, eratMod, "has_prepared_code_on_load", 1, b.HasPreparedCodeOnLoad1)
	b.Register(b.Exports, eratMod, "finish_loading", 1, b.FinishLoading1)
	b.Register(b.Exports, eratMod, "get_module_info", 1, b.GetModuleInfo1)
	b.Register(b.Exports, eratMod, "get_module_info", 2, b.GetModuleInfo2)
	b.Register(b.Exports, eratMod, "send_after", 3, b.SendAfter3)
	b.Register(b.Exports, eratMod, "purge_module", 2, b.PurgeModule2)

	b.Register(b.Exports, eratsMod, "dt_put_tag", 1, b.DtPutTag1)
	b.Register(b.Exports, eratsMod, "dt_get_tag", 0, b.DtGetTag0)
	b.Register(b.Exports, eratsMod, "dt_get_tag_data", 0, b.DtGetTagData0)
	b.Register(b.Exports, eratsMod, "dt_spread_tag", 1, b.DtSpreadTag1)
	b.Register(b.Exports, eratsMod, "dt_restore_tag", 1, b.DtRestoreTag1)
	b.Register(b.Exports, eratsMod, "dt_prepend_vm_tag_data", 1, b.DtPrependVMTagData1)
	b.Register(b.Exports, eratsMod, "dt_append_vm_tag_data", 1, b.DtAppendVMTagData1)
}
