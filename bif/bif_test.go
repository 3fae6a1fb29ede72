package bif_test

import (
	"testing"

	"github.com/AlephTX/enigma/bif"
	"github.com/AlephTX/enigma/heap"
	"github.com/AlephTX/enigma/registry"
	"github.com/AlephTX/enigma/term"
)

// newBuiltins wires a Builtins instance the way a runtime.Context would at
// startup, against a fresh atom table, heap, and module registry. decodeFn
// lets individual tests plug in a stub module decoder for the loader BIFs.
func newBuiltins(t *testing.T, decodeFn func(term.AtomID, []byte) (*registry.Module, error)) (*bif.Builtins, *term.AtomTable) {
	t.Helper()
	atoms := term.NewAtomTable()
	h := heap.New(heap.DefaultBlockSize)
	modules := registry.NewModuleRegistry()
	exports := registry.NewExportsTable()
	loader := registry.NewLoader(modules, exports, decodeFn)
	b := bif.NewBuiltins(atoms, h, modules, exports, loader)

	mapsMod := atoms.Intern("maps")
	binaryMod := atoms.Intern("binary")
	eratMod := atoms.Intern("erts_internal")
	eratsMod := atoms.Intern("erl_tracer")
	b.RegisterAll(mapsMod, binaryMod, eratMod, eratsMod)
	return b, atoms
}

func call(t *testing.T, b *bif.Builtins, mod, name string, arity uint32, args []term.Term) (term.Term, error) {
	t.Helper()
	mfa := registry.MFA{Module: mustAtom(b, mod), Function: mustAtom(b, name), Arity: arity}
	exp, ok := b.Exports.Lookup(mfa)
	if !ok {
		t.Fatalf("no export registered for %s:%s/%d", mod, name, arity)
	}
	if exp.Kind != registry.ExportBif {
		t.Fatalf("%s:%s/%d is not registered as a BIF", mod, name, arity)
	}
	return exp.Bif(args)
}

func mustAtom(b *bif.Builtins, name string) term.AtomID {
	return b.Atoms.Intern(name)
}
