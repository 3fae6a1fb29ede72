package bif

import (
	"github.com/AlephTX/enigma/exception"
	"github.com/AlephTX/enigma/term"
)

// dtrace BIFs are stubs: this runtime builds with dynamic tracing disabled,
// so every call site just needs something to resolve to.

// DtPutTag1 implements erl_tracer:dt_put_tag/1.
func (b *Builtins) DtPutTag1(args []term.Term) (term.Term, *exception.Exception) {
	return term.Atom(b.WK.Undefined), nil
}

// DtGetTag0 implements erl_tracer:dt_get_tag/0.
func (b *Builtins) DtGetTag0(args []term.Term) (term.Term, *exception.Exception) {
	return term.Atom(b.WK.Undefined), nil
}

// DtGetTagData0 implements erl_tracer:dt_get_tag_data/0.
func (b *Builtins) DtGetTagData0(args []term.Term) (term.Term, *exception.Exception) {
	return term.Atom(b.WK.Undefined), nil
}

// DtSpreadTag1 implements erl_tracer:dt_spread_tag/1.
func (b *Builtins) DtSpreadTag1(args []term.Term) (term.Term, *exception.Exception) {
	return term.Atom(b.WK.True), nil
}

// DtRestoreTag1 implements erl_tracer:dt_restore_tag/1.
func (b *Builtins) DtRestoreTag1(args []term.Term) (term.Term, *exception.Exception) {
	return term.Atom(b.WK.True), nil
}

// DtPrependVMTagData1 implements erl_tracer:dt_prepend_vm_tag_data/1.
func (b *Builtins) DtPrependVMTagData1(args []term.Term) (term.Term, *exception.Exception) {
	return args[0], nil
}

// DtAppendVMTagData1 implements erl_tracer:dt_append_vm_tag_data/1.
func (b *Builtins) DtAppendVMTagData1(args []term.Term) (term.Term, *exception.Exception) {
	return args[0], nil
}
