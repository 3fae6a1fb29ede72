package term_test

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/AlephTX/enigma/term"
)

func TestImmediateAccessors(t *testing.T) {
	if v, ok := term.SmallInt(42).AsSmallInt(); !ok || v != 42 {
		t.Fatalf("AsSmallInt = %v, %v", v, ok)
	}
	if _, ok := term.SmallInt(42).AsAtom(); ok {
		t.Fatal("AsAtom should fail on a small int")
	}
	if !term.Nil().IsNil() {
		t.Fatal("Nil().IsNil() = false")
	}
	if !term.Nil().IsList() {
		t.Fatal("Nil() should satisfy IsList")
	}
}

func TestAtomRoundTrip(t *testing.T) {
	atoms := term.NewAtomTable()
	id := atoms.Intern("ok")
	again := atoms.Intern("ok")
	if id != again {
		t.Fatalf("Intern not idempotent: %v != %v", id, again)
	}
	name, ok := atoms.Name(id)
	if !ok || name != "ok" {
		t.Fatalf("Name(%v) = %q, %v", id, name, ok)
	}
	if atoms.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", atoms.Len())
	}
	other := atoms.Intern("error")
	if other == id {
		t.Fatal("distinct names must get distinct ids")
	}
	if atoms.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", atoms.Len())
	}
	if _, ok := atoms.Name(term.AtomID(99)); ok {
		t.Fatal("Name should fail for an unassigned id")
	}
}

func TestEqualAcrossKinds(t *testing.T) {
	if term.Equal(term.SmallInt(1), term.Atom(1)) {
		t.Fatal("a small int and an atom with the same imm word must not be equal")
	}
	if !term.Equal(term.SmallInt(7), term.SmallInt(7)) {
		t.Fatal("equal small ints must compare equal")
	}
	if !term.Equal(term.Nil(), term.Nil()) {
		t.Fatal("Nil must equal Nil")
	}
}

func TestTupleEquality(t *testing.T) {
	a := term.NewTuple(term.SmallInt(1), term.Atom(5))
	b := term.NewTuple(term.SmallInt(1), term.Atom(5))
	c := term.NewTuple(term.SmallInt(1), term.Atom(6))
	if !term.Equal(a, b) {
		t.Fatal("structurally equal tuples must compare equal")
	}
	if term.Equal(a, c) {
		t.Fatal("tuples differing in one element must not compare equal")
	}

	tup, ok := term.AsTuple(a)
	if !ok || tup.Arity() != 2 {
		t.Fatalf("AsTuple/Arity = %v, %v", tup, ok)
	}
	if _, ok := tup.Element(0); ok {
		t.Fatal("Element is 1-indexed; index 0 must fail")
	}
	el, ok := tup.Element(2)
	if !ok || !term.Equal(el, term.Atom(5)) {
		t.Fatalf("Element(2) = %v, %v", el, ok)
	}
}

func TestConsListRoundTrip(t *testing.T) {
	elems := []term.Term{term.SmallInt(1), term.SmallInt(2), term.SmallInt(3)}
	list := term.FromSlice(elems)

	n, ok := term.Len(list)
	if !ok || n != 3 {
		t.Fatalf("Len = %d, %v", n, ok)
	}

	got, ok := term.ToSlice(list)
	if !ok || len(got) != 3 {
		t.Fatalf("ToSlice = %v, %v", got, ok)
	}
	for i := range elems {
		if !term.Equal(elems[i], got[i]) {
			t.Fatalf("element %d: got %v, want %v", i, got[i], elems[i])
		}
	}
}

func TestImproperListRejectedByToSliceAndLen(t *testing.T) {
	improper := term.NewCons(term.SmallInt(1), term.SmallInt(2))
	if _, ok := term.ToSlice(improper); ok {
		t.Fatal("ToSlice must reject an improper list")
	}
	if _, ok := term.Len(improper); ok {
		t.Fatal("Len must reject an improper list")
	}
}

func TestFloatEquality(t *testing.T) {
	a := term.NewFloat(1.5)
	b := term.NewFloat(1.5)
	c := term.NewFloat(2.5)
	if !term.Equal(a, b) {
		t.Fatal("equal floats must compare equal")
	}
	if term.Equal(a, c) {
		t.Fatal("distinct floats must not compare equal")
	}
	f, ok := term.AsFloat(a)
	if !ok || f.Value != 1.5 {
		t.Fatalf("AsFloat = %v, %v", f, ok)
	}
}

func TestBigNumFromBytesAndEquality(t *testing.T) {
	data := make([]byte, 9)
	data[0] = 1 // forces the value above 64 bits
	a := term.BigNumFromBytes(data, false)
	b := term.BigNumFromBytes(data, false)
	neg := term.BigNumFromBytes(data, true)

	if !term.Equal(a, b) {
		t.Fatal("equal bignums must compare equal")
	}
	if term.Equal(a, neg) {
		t.Fatal("bignums differing only in sign must not compare equal")
	}

	n, ok := term.AsBigNum(a)
	if !ok {
		t.Fatal("AsBigNum failed")
	}
	want := new(uint256.Int).SetBytes(data)
	if !n.Value.Eq(want) {
		t.Fatalf("got %v, want %v", n.Value, want)
	}
}

func TestBigNumFromBytesTruncatesTo256Bits(t *testing.T) {
	data := make([]byte, 40)
	data[0] = 0xff // within the leading, truncated region
	data[39] = 0x01
	got := term.BigNumFromBytes(data, false)
	n, ok := term.AsBigNum(got)
	if !ok {
		t.Fatal("AsBigNum failed")
	}
	want := new(uint256.Int).SetBytes(data[len(data)-32:])
	if !n.Value.Eq(want) {
		t.Fatalf("BigNumFromBytes did not truncate to the trailing 32 bytes")
	}
}

func TestReferenceEquality(t *testing.T) {
	a := term.NewReference(1)
	b := term.NewReference(1)
	c := term.NewReference(2)
	if !term.Equal(a, b) {
		t.Fatal("equal references must compare equal")
	}
	if term.Equal(a, c) {
		t.Fatal("distinct references must not compare equal")
	}
}

func TestClosureAccessors(t *testing.T) {
	frozen := []term.Term{term.SmallInt(1), term.SmallInt(2)}
	c := term.NewClosure(term.AtomID(3), 5, 2, frozen)
	if !c.Is(term.TagClosure) {
		t.Fatal("NewClosure should box under TagClosure")
	}
	got, ok := term.AsClosure(c)
	if !ok {
		t.Fatal("AsClosure failed on a closure term")
	}
	if got.ModuleAtom != 3 || got.LambdaIdx != 5 || got.Arity != 2 || len(got.Frozen) != 2 {
		t.Fatalf("AsClosure = %+v, fields don't match constructor args", got)
	}
	if _, ok := term.AsClosure(term.SmallInt(1)); ok {
		t.Fatal("AsClosure should fail on a non-closure term")
	}
}

func TestBoxTagAndIs(t *testing.T) {
	tup := term.NewTuple()
	tag, ok := tup.BoxTag()
	if !ok || tag != term.TagTuple {
		t.Fatalf("BoxTag = %v, %v", tag, ok)
	}
	if !tup.Is(term.TagTuple) {
		t.Fatal("Is(TagTuple) should hold for a tuple term")
	}
	if tup.Is(term.TagCons) {
		t.Fatal("Is(TagCons) should not hold for a tuple term")
	}
	if _, ok := term.SmallInt(1).BoxTag(); ok {
		t.Fatal("BoxTag should fail for an immediate")
	}
}
