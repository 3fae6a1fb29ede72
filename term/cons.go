package term

// Cons is a single list cell. A Term list is either Nil or a boxed *Cons
// whose Tail is itself Nil, another *Cons, or — for improper lists, which
// are permitted — any other Term.
type Cons struct {
	Head Term
	Tail Term
}

// Tag implements Boxed.
func (*Cons) Tag() BoxTag { return TagCons }

// NewCons allocates a single list cell.
func NewCons(head, tail Term) Term {
	return Box(&Cons{Head: head, Tail: tail})
}

// FromSlice builds a proper list from elems, right to left. Ordinary Go
// allocation stands in for the process arena a boxed Cons would otherwise
// be carved from.
func FromSlice(elems []Term) Term {
	list := Nil()
	for i := len(elems) - 1; i >= 0; i-- {
		list = NewCons(elems[i], list)
	}
	return list
}

// ToSlice walks a proper list into a slice. ok is false if the list is
// improper (terminated by something other than Nil).
func ToSlice(t Term) (elems []Term, ok bool) {
	for {
		if t.IsNil() {
			return elems, true
		}
		b, isBoxed := t.AsBoxed()
		if !isBoxed || b.Tag() != TagCons {
			return elems, false
		}
		cons := b.(*Cons)
		elems = append(elems, cons.Head)
		t = cons.Tail
	}
}

// Len returns the length of a proper list, or false if it's improper.
func Len(t Term) (int, bool) {
	n := 0
	for {
		if t.IsNil() {
			return n, true
		}
		b, isBoxed := t.AsBoxed()
		if !isBoxed || b.Tag() != TagCons {
			return n, false
		}
		n++
		t = b.(*Cons).Tail
	}
}
