package term

// Closure is a boxed fun value: a reference to a module-local lambda entry
// point plus its frozen (captured) free variables. The instruction pointer
// itself is opaque here (an int offset) since the bytecode interpreter body
// is out of this core's scope; registry.Module owns the lambda table this
// index refers to.
type Closure struct {
	ModuleAtom AtomID
	LambdaIdx  uint32
	Arity      uint8
	Frozen     []Term
}

// Tag implements Boxed.
func (*Closure) Tag() BoxTag { return TagClosure }

// NewClosure boxes a closure value.
func NewClosure(module AtomID, lambdaIdx uint32, arity uint8, frozen []Term) Term {
	return Box(&Closure{ModuleAtom: module, LambdaIdx: lambdaIdx, Arity: arity, Frozen: frozen})
}

// AsClosure returns the closure behind t, or false if t isn't one.
func AsClosure(t Term) (*Closure, bool) {
	b, ok := t.AsBoxed()
	if !ok {
		return nil, false
	}
	c, ok := b.(*Closure)
	return c, ok
}
