package bif

import (
	"github.com/AlephTX/enigma/bitstring"
	"github.com/AlephTX/enigma/exception"
	"github.com/AlephTX/enigma/registry"
	"github.com/AlephTX/enigma/term"
)

// badfile builds the {error, badfile} tuple prepare_loading/2 returns on a
// decode failure.
func (b *Builtins) badfile() term.Term {
	return term.NewTuple(b.WK.ErrorAtom(), term.Atom(b.Atoms.Intern("badfile")))
}

// PreLoaded0 implements pre_loaded/0: the fixed list of natively provided
// modules, following pre_loaded_0.
func (b *Builtins) PreLoaded0(args []term.Term) (term.Term, *exception.Exception) {
	elems := make([]term.Term, len(b.preLoaded))
	for i, a := range b.preLoaded {
		elems[i] = term.Atom(a)
	}
	return term.FromSlice(elems), nil
}

// asPreparedModule unboxes a term produced by PrepareLoading2 back into the
// *registry.PreparedModule it wraps.
func asPreparedModule(t term.Term) (*registry.PreparedModule, bool) {
	boxed, ok := t.AsBoxed()
	if !ok {
		return nil, false
	}
	p, ok := boxed.(*registry.PreparedModule)
	return p, ok
}

// PrepareLoading2 implements prepare_loading/2: decode (with gzip
// autodetect) into a not-yet-registered PreparedModule term, or
// {error, badfile} on failure, following prepare_loading_2.
func (b *Builtins) PrepareLoading2(args []term.Term) (term.Term, *exception.Exception) {
	name, ok := args[0].AsAtom()
	if !ok {
		return term.Term{}, badarg()
	}
	code, ok := bitstring.AsBinary(args[1])
	if !ok {
		return term.Term{}, badarg()
	}
	prepared, err := b.Loader.PrepareLoading(name, code)
	if err != nil {
		return b.badfile(), nil
	}
	return term.Box(prepared), nil
}

// HasPreparedCodeOnLoad1 implements has_prepared_code_on_load/1.
func (b *Builtins) HasPreparedCodeOnLoad1(args []term.Term) (term.Term, *exception.Exception) {
	p, ok := asPreparedModule(args[0])
	if !ok {
		return term.Term{}, badarg()
	}
	return b.WK.Bool(b.Loader.HasPreparedCodeOnLoad(p)), nil
}

// FinishLoading1 implements finish_loading/1: register every prepared
// module in the list and process its exports, following finish_loading_1.
// The modules are inserted one at a time, not as a single atomic step:
// another caller can observe some of them registered before the rest.
func (b *Builtins) FinishLoading1(args []term.Term) (term.Term, *exception.Exception) {
	elems, ok := term.ToSlice(args[0])
	if !ok {
		return term.Term{}, badarg()
	}
	prepared := make([]*registry.PreparedModule, len(elems))
	for i, e := range elems {
		p, ok := asPreparedModule(e)
		if !ok {
			return term.Term{}, badarg()
		}
		prepared[i] = p
	}
	if err := b.Loader.FinishLoading(prepared, b.Atoms); err != nil {
		return term.Term{}, exception.New(exception.Error)
	}
	return term.Atom(b.WK.Ok), nil
}

// GetModuleInfo1 implements get_module_info/1: every info key folded into a
// [{Key, Value}] proplist.
func (b *Builtins) GetModuleInfo1(args []term.Term) (term.Term, *exception.Exception) {
	name, ok := args[0].AsAtom()
	if !ok {
		return term.Term{}, badarg()
	}
	ref, ok := b.Modules.Lookup(name)
	if !ok {
		return term.Term{}, badarg()
	}
	m, ok := b.Modules.Resolve(ref)
	if !ok {
		return term.Term{}, badarg()
	}
	return registry.GetModuleInfo(b.Atoms, m), nil
}

// GetModuleInfo2 implements get_module_info/2: a single named key.
func (b *Builtins) GetModuleInfo2(args []term.Term) (term.Term, *exception.Exception) {
	name, ok := args[0].AsAtom()
	if !ok {
		return term.Term{}, badarg()
	}
	keyAtom, ok := args[1].AsAtom()
	if !ok {
		return term.Term{}, badarg()
	}
	key, ok := b.Atoms.Name(keyAtom)
	if !ok {
		return term.Term{}, badarg()
	}
	ref, ok := b.Modules.Lookup(name)
	if !ok {
		return term.Term{}, badarg()
	}
	m, ok := b.Modules.Resolve(ref)
	if !ok {
		return term.Term{}, badarg()
	}
	v, ok := registry.GetModuleInfoKey(b.Atoms, m, key)
	if !ok {
		return term.Term{}, badarg()
	}
	return v, nil
}

// PurgeModule2 implements erts_internal:purge_module/2. The real two-phase
// purge protocol (prepare/prepare_on_load/abort/complete stages) is out of
// this core's scope; this always reports success, but also actually
// reclaims the named module's registry slot (ModuleRegistry.Purge) rather
// than being a no-op, since that much is sound to do without a real
// two-phase protocol.
func (b *Builtins) PurgeModule2(args []term.Term) (term.Term, *exception.Exception) {
	name, ok := args[0].AsAtom()
	if !ok {
		return term.Term{}, badarg()
	}
	if ref, ok := b.Modules.Lookup(name); ok {
		b.Modules.Purge(ref)
	}
	return term.Atom(b.WK.True), nil
}
