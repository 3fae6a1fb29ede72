// Package term implements the tagged value representation shared by every
// other package in this module: a single Term value that is
// either an immediate (small integer, atom, pid, port, nil) or a pointer to
// a boxed value (binary, tuple, map, closure, …).
//
// Go gives us neither pointer tagging nor NaN-boxing without unsafe tricks
// that the garbage collector cannot be told about, so Term uses the
// discriminated-union representation: a Kind byte plus an inline immediate
// word plus a Boxed interface value. A Term's Kind uniquely determines
// which accessor is safe to call; calling the wrong one is a programming
// bug, not a recoverable error.
package term

import "fmt"

// Kind discriminates the immediate forms of a Term from the boxed form.
type Kind uint8

const (
	KindNil Kind = iota
	KindSmallInt
	KindAtom
	KindPid
	KindPort
	KindBoxed
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindSmallInt:
		return "small_int"
	case KindAtom:
		return "atom"
	case KindPid:
		return "pid"
	case KindPort:
		return "port"
	case KindBoxed:
		return "boxed"
	default:
		return "invalid"
	}
}

// BoxTag identifies the variant of a boxed object. Every Boxed value reports
// its own tag so that accessors can check it before casting.
type BoxTag uint8

const (
	TagBinary BoxTag = iota
	TagSubBinary
	TagMatchState
	TagTuple
	TagCons
	TagMap
	TagClosure
	TagModule
	TagExport
	TagReference
	TagBigNum
	TagFloat
	TagRegex
)

func (t BoxTag) String() string {
	names := [...]string{
		"binary", "subbinary", "matchstate", "tuple", "cons", "map",
		"closure", "module", "export", "reference", "bignum", "float", "regex",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "invalid"
}

// Boxed is implemented by every heap-allocated term variant. The method is
// exported (rather than the usual Go "sealed interface" unexported-method
// trick) because boxed variants are defined across several packages
// (bitstring, hamt, registry) that must each be able to satisfy it.
type Boxed interface {
	Tag() BoxTag
}

// AtomID is an index into a process-wide AtomTable.
type AtomID int32

// PidID identifies a process. Scheduling itself is out of scope for this
// core; PidID exists so BIFs (send_after, is_pid) have something concrete to
// validate against.
type PidID uint64

// PortID identifies a port (out of scope beyond being a distinct immediate).
type PortID uint64

// Term is a single tagged value: copy-by-value for immediates, copy-by-
// pointer (aliasing the same Boxed) within a heap.
type Term struct {
	kind Kind
	imm  int64
	box  Boxed
}

// Nil returns the distinct nil immediate. A list is either Nil or a boxed
// Cons; Nil is never itself a Cons.
func Nil() Term { return Term{kind: KindNil} }

// SmallInt returns an immediate signed integer term.
func SmallInt(v int64) Term { return Term{kind: KindSmallInt, imm: v} }

// Atom returns an immediate atom term referencing an AtomTable slot.
func Atom(id AtomID) Term { return Term{kind: KindAtom, imm: int64(id)} }

// Pid returns an immediate process-id term.
func Pid(id PidID) Term { return Term{kind: KindPid, imm: int64(id)} }

// Port returns an immediate port-id term.
func Port(id PortID) Term { return Term{kind: KindPort, imm: int64(id)} }

// Box wraps a heap-allocated value as a Term.
func Box(b Boxed) Term { return Term{kind: KindBoxed, box: b} }

// Kind reports the discriminant of the term.
func (t Term) Kind() Kind { return t.kind }

// IsNil reports whether t is the nil immediate.
func (t Term) IsNil() bool { return t.kind == KindNil }

// IsSmallInt reports whether t is an immediate integer.
func (t Term) IsSmallInt() bool { return t.kind == KindSmallInt }

// AsSmallInt returns the immediate integer value and whether t held one.
func (t Term) AsSmallInt() (int64, bool) {
	if t.kind != KindSmallInt {
		return 0, false
	}
	return t.imm, true
}

// IsAtom reports whether t is an immediate atom.
func (t Term) IsAtom() bool { return t.kind == KindAtom }

// AsAtom returns the atom id and whether t held one.
func (t Term) AsAtom() (AtomID, bool) {
	if t.kind != KindAtom {
		return 0, false
	}
	return AtomID(t.imm), true
}

// IsPid reports whether t is an immediate pid.
func (t Term) IsPid() bool { return t.kind == KindPid }

// AsPid returns the pid and whether t held one.
func (t Term) AsPid() (PidID, bool) {
	if t.kind != KindPid {
		return 0, false
	}
	return PidID(t.imm), true
}

// IsBoxed reports whether t is a pointer to a heap-allocated value.
func (t Term) IsBoxed() bool { return t.kind == KindBoxed }

// AsBoxed returns the boxed value and whether t held one.
func (t Term) AsBoxed() (Boxed, bool) {
	if t.kind != KindBoxed {
		return nil, false
	}
	return t.box, true
}

// BoxTag returns the tag of the boxed value t holds, or false if t isn't
// boxed. This is the primary "does this Term's tag match what I expect"
// check used throughout the BIF surface.
func (t Term) BoxTag() (BoxTag, bool) {
	if t.kind != KindBoxed {
		return 0, false
	}
	return t.box.Tag(), true
}

// Is reports whether t is a boxed value with the given tag.
func (t Term) Is(tag BoxTag) bool {
	bt, ok := t.BoxTag()
	return ok && bt == tag
}

// IsList reports whether t could be the head of a list: nil or a Cons cell.
// Improper lists (tail neither nil nor Cons) are permitted; IsList only
// checks the immediate shape of t itself.
func (t Term) IsList() bool {
	return t.IsNil() || t.Is(TagCons)
}

// Equal implements Term-level structural equality, used by the HAMT for key
// comparison and throughout the BIF surface.
func Equal(a, b Term) bool {
	if a.kind != b.kind {
		// A boxed Float and an immediate SmallInt are never equal here;
		// BEAM's own term order does coerce numeric types for `==`, but
		// map keys only need structural equality, not numeric coercion.
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindSmallInt, KindAtom, KindPid, KindPort:
		return a.imm == b.imm
	case KindBoxed:
		return boxedEqual(a.box, b.box)
	default:
		return false
	}
}

func boxedEqual(a, b Boxed) bool {
	if a.Tag() != b.Tag() {
		return false
	}
	if eq, ok := a.(interface{ EqualTerm(Boxed) bool }); ok {
		return eq.EqualTerm(b)
	}
	return a == b
}

func (t Term) String() string {
	switch t.kind {
	case KindNil:
		return "nil"
	case KindSmallInt:
		return fmt.Sprintf("%d", t.imm)
	case KindAtom:
		return fmt.Sprintf("atom(%d)", t.imm)
	case KindPid:
		return fmt.Sprintf("pid(%d)", t.imm)
	case KindPort:
		return fmt.Sprintf("port(%d)", t.imm)
	case KindBoxed:
		return fmt.Sprintf("%s(%v)", t.box.Tag(), t.box)
	default:
		return "invalid"
	}
}

// Boolean returns the interned true/false atom term given an AtomTable's ids.
func Boolean(v bool, trueID, falseID AtomID) Term {
	if v {
		return Atom(trueID)
	}
	return Atom(falseID)
}
