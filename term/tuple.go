package term

// Tuple is a fixed-arity, boxed sequence of terms.
type Tuple struct {
	Elements []Term
}

// NewTuple builds a boxed tuple term from elems. elems is taken by reference:
// boxed values copy by pointer within a heap.
func NewTuple(elems ...Term) Term {
	return Box(&Tuple{Elements: elems})
}

// Tag implements Boxed.
func (*Tuple) Tag() BoxTag { return TagTuple }

// Arity returns the number of elements.
func (t *Tuple) Arity() int { return len(t.Elements) }

// Element returns the 1-indexed element (matching Erlang's element/2), or
// false if idx is out of range.
func (t *Tuple) Element(idx int) (Term, bool) {
	if idx < 1 || idx > len(t.Elements) {
		return Term{}, false
	}
	return t.Elements[idx-1], true
}

// EqualTerm implements the optional deep-equality hook used by Equal.
func (t *Tuple) EqualTerm(other Boxed) bool {
	o, ok := other.(*Tuple)
	if !ok || len(t.Elements) != len(o.Elements) {
		return false
	}
	for i := range t.Elements {
		if !Equal(t.Elements[i], o.Elements[i]) {
			return false
		}
	}
	return true
}

// AsTuple returns the tuple behind t, or false if t isn't one.
func AsTuple(t Term) (*Tuple, bool) {
	b, ok := t.AsBoxed()
	if !ok {
		return nil, false
	}
	tup, ok := b.(*Tuple)
	return tup, ok
}
