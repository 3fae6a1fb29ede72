package bif_test

import (
	"errors"
	"testing"

	"github.com/AlephTX/enigma/exception"
	"github.com/AlephTX/enigma/registry"
	"github.com/AlephTX/enigma/term"
)

func stubDecoder(fail bool) func(term.AtomID, []byte) (*registry.Module, error) {
	return func(name term.AtomID, code []byte) (*registry.Module, error) {
		if fail {
			return nil, errors.New("decode failed")
		}
		m := registry.NewModule(name)
		m.Exports = []registry.FuncInfo{{Function: name, Arity: 1}}
		return m, nil
	}
}

func TestPreLoaded0(t *testing.T) {
	b, _ := newBuiltins(t, stubDecoder(false))
	result, err := call(t, b, "erts_internal", "pre_loaded", 0, nil)
	if err != nil {
		t.Fatalf("pre_loaded/0 failed: %v", err)
	}
	elems, ok := term.ToSlice(result)
	if !ok {
		t.Fatal("pre_loaded/0 should return a proper list")
	}
	if len(elems) != 4 {
		t.Fatalf("pre_loaded/0 = %d modules, want 4 (maps, binary, erts_internal, erl_tracer)", len(elems))
	}
}

func TestPrepareAndFinishLoading(t *testing.T) {
	b, atoms := newBuiltins(t, stubDecoder(false))
	modName := atoms.Intern("my_mod")

	prepared, err := call(t, b, "erts_internal", "prepare_loading", 2, []term.Term{term.Atom(modName), newBin("code")})
	if err != nil {
		t.Fatalf("prepare_loading/2 failed: %v", err)
	}
	if !prepared.Is(term.TagModule) {
		t.Fatalf("prepare_loading/2 should box a PreparedModule under TagModule, got %v", prepared)
	}

	hasOnLoad, err := call(t, b, "erts_internal", "has_prepared_code_on_load", 1, []term.Term{prepared})
	if err != nil {
		t.Fatalf("has_prepared_code_on_load/1 failed: %v", err)
	}
	if id, ok := hasOnLoad.AsAtom(); !ok || id != b.WK.False {
		t.Fatalf("has_prepared_code_on_load/1 = %v, want false (no OnLoadFunc set)", hasOnLoad)
	}

	ok, err := call(t, b, "erts_internal", "finish_loading", 1, []term.Term{term.FromSlice([]term.Term{prepared})})
	if err != nil {
		t.Fatalf("finish_loading/1 failed: %v", err)
	}
	if id, isAtom := ok.AsAtom(); !isAtom || id != b.WK.Ok {
		t.Fatalf("finish_loading/1 = %v, want the ok atom", ok)
	}

	info, err := call(t, b, "erts_internal", "get_module_info", 1, []term.Term{term.Atom(modName)})
	if err != nil {
		t.Fatalf("get_module_info/1 failed: %v", err)
	}
	if _, ok := term.ToSlice(info); !ok {
		t.Fatal("get_module_info/1 should return a proplist")
	}

	moduleKey, err := call(t, b, "erts_internal", "get_module_info", 2, []term.Term{term.Atom(modName), term.Atom(atoms.Intern("module"))})
	if err != nil {
		t.Fatalf("get_module_info/2 failed: %v", err)
	}
	if id, ok := moduleKey.AsAtom(); !ok || id != modName {
		t.Fatalf("get_module_info/2 module key = %v, want %v", moduleKey, modName)
	}
}

func TestPrepareLoadingDecodeFailureReturnsBadfile(t *testing.T) {
	b, atoms := newBuiltins(t, stubDecoder(true))
	modName := atoms.Intern("broken_mod")

	result, err := call(t, b, "erts_internal", "prepare_loading", 2, []term.Term{term.Atom(modName), newBin("garbage")})
	if err != nil {
		t.Fatalf("prepare_loading/2 should not raise an exception on decode failure, got %v", err)
	}
	tup, ok := term.AsTuple(result)
	if !ok || tup.Arity() != 2 {
		t.Fatalf("prepare_loading/2 on failure = %v, want {error, badfile}", result)
	}
	if id, isAtom := tup.Elements[0].AsAtom(); !isAtom || id != b.WK.Error {
		t.Fatalf("prepare_loading/2 failure tuple tag = %v, want error", tup.Elements[0])
	}
}

func TestFinishLoadingRejectsNonPreparedModuleTerms(t *testing.T) {
	b, _ := newBuiltins(t, stubDecoder(false))
	_, err := call(t, b, "erts_internal", "finish_loading", 1, []term.Term{term.FromSlice([]term.Term{term.SmallInt(1)})})
	if !exception.Is(asExc(err), exception.Badarg) {
		t.Fatalf("finish_loading/1 on a non-prepared-module element should raise badarg, got %v", err)
	}
}

func TestGetModuleInfoUnknownModuleIsBadarg(t *testing.T) {
	b, atoms := newBuiltins(t, stubDecoder(false))
	_, err := call(t, b, "erts_internal", "get_module_info", 1, []term.Term{term.Atom(atoms.Intern("nonexistent"))})
	if !exception.Is(asExc(err), exception.Badarg) {
		t.Fatalf("get_module_info/1 on an unregistered module should raise badarg, got %v", err)
	}
}

func TestPurgeModule2ReclaimsSlot(t *testing.T) {
	b, atoms := newBuiltins(t, stubDecoder(false))
	modName := atoms.Intern("purge_me")
	prepared, err := call(t, b, "erts_internal", "prepare_loading", 2, []term.Term{term.Atom(modName), newBin("code")})
	if err != nil {
		t.Fatalf("prepare_loading/2 failed: %v", err)
	}
	if _, err := call(t, b, "erts_internal", "finish_loading", 1, []term.Term{term.FromSlice([]term.Term{prepared})}); err != nil {
		t.Fatalf("finish_loading/1 failed: %v", err)
	}

	result, err := call(t, b, "erts_internal", "purge_module", 2, []term.Term{term.Atom(modName), term.Nil()})
	if err != nil {
		t.Fatalf("purge_module/2 failed: %v", err)
	}
	if id, ok := result.AsAtom(); !ok || id != b.WK.True {
		t.Fatalf("purge_module/2 = %v, want true", result)
	}

	_, err = call(t, b, "erts_internal", "get_module_info", 1, []term.Term{term.Atom(modName)})
	if !exception.Is(asExc(err), exception.Badarg) {
		t.Fatal("get_module_info/1 should fail to resolve a purged module")
	}
}

func TestPurgeModule2UnknownModuleStillReportsTrue(t *testing.T) {
	b, atoms := newBuiltins(t, stubDecoder(false))
	result, err := call(t, b, "erts_internal", "purge_module", 2, []term.Term{term.Atom(atoms.Intern("never_loaded")), term.Nil()})
	if err != nil {
		t.Fatalf("purge_module/2 failed: %v", err)
	}
	if id, ok := result.AsAtom(); !ok || id != b.WK.True {
		t.Fatalf("purge_module/2 on an unknown module = %v, want true (always reports success)", result)
	}
}
