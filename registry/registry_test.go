package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AlephTX/enigma/registry"
	"github.com/AlephTX/enigma/term"
)

func TestModuleRefInvalidatedAfterPurge(t *testing.T) {
	atoms := term.NewAtomTable()
	modules := registry.NewModuleRegistry()

	m := registry.NewModule(atoms.Intern("foo"))
	ref := modules.Insert(m)

	if _, ok := modules.Resolve(ref); !ok {
		t.Fatal("expected to resolve a freshly inserted module")
	}
	if !modules.Purge(ref) {
		t.Fatal("Purge reported failure on a live ref")
	}
	if _, ok := modules.Resolve(ref); ok {
		t.Fatal("expected a purged ModuleRef to fail to resolve")
	}
}

func TestModuleReloadInvalidatesOldRef(t *testing.T) {
	atoms := term.NewAtomTable()
	modules := registry.NewModuleRegistry()
	name := atoms.Intern("foo")

	old := modules.Insert(registry.NewModule(name))
	fresh := modules.Insert(registry.NewModule(name))

	if _, ok := modules.Resolve(old); ok {
		t.Fatal("expected reloading a module to invalidate the old ref")
	}
	if _, ok := modules.Resolve(fresh); !ok {
		t.Fatal("expected the new ref to resolve")
	}
}

func TestExportsBifOverridesFun(t *testing.T) {
	atoms := term.NewAtomTable()
	exports := registry.NewExportsTable()
	mfa := registry.MFA{Module: atoms.Intern("m"), Function: atoms.Intern("f"), Arity: 1}

	exports.RegisterBif(mfa, func(args []term.Term) (term.Term, error) {
		return term.SmallInt(1), nil
	})
	exports.RegisterFun(mfa, registry.Instr(42))

	e, ok := exports.Lookup(mfa)
	if !ok {
		t.Fatal("expected MFA to resolve")
	}
	if e.Kind != registry.ExportBif {
		t.Fatalf("expected the BIF to win, got kind %v", e.Kind)
	}
}

func TestExportsFunRegistersWhenNoBif(t *testing.T) {
	atoms := term.NewAtomTable()
	exports := registry.NewExportsTable()
	mfa := registry.MFA{Module: atoms.Intern("m"), Function: atoms.Intern("g"), Arity: 0}

	exports.RegisterFun(mfa, registry.Instr(7))
	e, ok := exports.Lookup(mfa)
	if !ok || e.Kind != registry.ExportFun || e.Fun != 7 {
		t.Fatalf("unexpected export: %+v, ok=%v", e, ok)
	}
}

func TestFinishLoadingRegistersExportsConcurrently(t *testing.T) {
	atoms := term.NewAtomTable()
	modules := registry.NewModuleRegistry()
	exports := registry.NewExportsTable()

	decode := func(name term.AtomID, code []byte) (*registry.Module, error) {
		m := registry.NewModule(name)
		m.Exports = []registry.FuncInfo{
			{Function: atoms.Intern("f"), Arity: 1, Entry: 1},
			{Function: atoms.Intern("g"), Arity: 2, Entry: 2},
		}
		return m, nil
	}
	loader := registry.NewLoader(modules, exports, decode)

	var prepared []*registry.PreparedModule
	for _, name := range []string{"mod_a", "mod_b"} {
		p, err := loader.PrepareLoading(atoms.Intern(name), []byte("fake-beam-code"))
		if err != nil {
			t.Fatalf("PrepareLoading(%s): %v", name, err)
		}
		prepared = append(prepared, p)
	}

	if err := loader.FinishLoading(prepared, atoms); err != nil {
		t.Fatalf("FinishLoading: %v", err)
	}

	mfa := registry.MFA{Module: atoms.Intern("mod_a"), Function: atoms.Intern("f"), Arity: 1}
	if _, ok := exports.Lookup(mfa); !ok {
		t.Fatal("expected mod_a:f/1 to be registered after FinishLoading")
	}
}

func TestPrepareLoadingPassesUncompressedInputThrough(t *testing.T) {
	atoms := term.NewAtomTable()
	modules := registry.NewModuleRegistry()
	exports := registry.NewExportsTable()

	var gotRaw []byte
	decode := func(name term.AtomID, code []byte) (*registry.Module, error) {
		gotRaw = code
		return registry.NewModule(name), nil
	}
	loader := registry.NewLoader(modules, exports, decode)

	plain := []byte("not compressed")
	if _, err := loader.PrepareLoading(atoms.Intern("plain"), plain); err != nil {
		t.Fatalf("PrepareLoading(plain): %v", err)
	}
	if string(gotRaw) != string(plain) {
		t.Fatalf("expected uncompressed passthrough, got %q", gotRaw)
	}
}

func TestLoadBytesRegistersImmediatelyAndProcessesExports(t *testing.T) {
	atoms := term.NewAtomTable()
	modules := registry.NewModuleRegistry()
	exports := registry.NewExportsTable()

	decode := func(name term.AtomID, code []byte) (*registry.Module, error) {
		m := registry.NewModule(name)
		m.Exports = []registry.FuncInfo{{Function: atoms.Intern("start"), Arity: 0, Entry: 1}}
		return m, nil
	}
	loader := registry.NewLoader(modules, exports, decode)

	name := atoms.Intern("direct")
	ref, err := loader.LoadBytes(name, []byte("fake-beam-code"))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if _, ok := modules.Resolve(ref); !ok {
		t.Fatal("expected LoadBytes to register the module immediately")
	}

	mfa := registry.MFA{Module: name, Function: atoms.Intern("start"), Arity: 0}
	if _, ok := exports.Lookup(mfa); !ok {
		t.Fatal("expected LoadBytes to process the module's exports")
	}
}

func TestLoadFileReadsAndLoads(t *testing.T) {
	atoms := term.NewAtomTable()
	modules := registry.NewModuleRegistry()
	exports := registry.NewExportsTable()

	var gotRaw []byte
	decode := func(name term.AtomID, code []byte) (*registry.Module, error) {
		gotRaw = code
		return registry.NewModule(name), nil
	}
	loader := registry.NewLoader(modules, exports, decode)

	dir := t.TempDir()
	path := filepath.Join(dir, "mymod.beam")
	if err := os.WriteFile(path, []byte("on-disk-beam-code"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	name := atoms.Intern("mymod")
	ref, err := loader.LoadFile(name, path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := modules.Resolve(ref); !ok {
		t.Fatal("expected LoadFile to register the module")
	}
	if string(gotRaw) != "on-disk-beam-code" {
		t.Fatalf("got %q, want on-disk-beam-code", gotRaw)
	}
}

func TestGetModuleInfo(t *testing.T) {
	atoms := term.NewAtomTable()
	m := registry.NewModule(atoms.Intern("mymod"))
	m.Exports = []registry.FuncInfo{{Function: atoms.Intern("start"), Arity: 0, Entry: 1}}

	v, ok := registry.GetModuleInfoKey(atoms, m, "module")
	if !ok {
		t.Fatal("expected module key")
	}
	id, _ := v.AsAtom()
	if name, _ := atoms.Name(id); name != "mymod" {
		t.Fatalf("got %q, want mymod", name)
	}

	all := registry.GetModuleInfo(atoms, m)
	elems, ok := term.ToSlice(all)
	if !ok || len(elems) == 0 {
		t.Fatal("expected a non-empty proplist from GetModuleInfo")
	}
}
