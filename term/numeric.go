package term

import "github.com/holiman/uint256"

// Float is a boxed double-precision term. Among numbers, only small integers
// are immediates.
type Float struct {
	Value float64
}

// Tag implements Boxed.
func (*Float) Tag() BoxTag { return TagFloat }

// NewFloat boxes v.
func NewFloat(v float64) Term { return Box(&Float{Value: v}) }

// AsFloat returns the float behind t, or false if t isn't one.
func AsFloat(t Term) (*Float, bool) {
	b, ok := t.AsBoxed()
	if !ok {
		return nil, false
	}
	f, ok := b.(*Float)
	return f, ok
}

func (f *Float) EqualTerm(other Boxed) bool {
	o, ok := other.(*Float)
	return ok && o.Value == f.Value
}

// BigNum is a boxed arbitrary-but-bounded-precision integer, used once a
// value no longer fits the SmallInt immediate (get_integer's ≥64-bit match
// path). This core caps magnitude at 256 bits
// via uint256 rather than true arbitrary precision — see DESIGN.md's
// Open Question decision — since nothing exercised here requires integers
// wider than that, and uint256 is the natural Go analogue of a BEAM
// runtime's fixed-width bignum path.
type BigNum struct {
	Value *uint256.Int
	Neg   bool
}

// Tag implements Boxed.
func (*BigNum) Tag() BoxTag { return TagBigNum }

// NewBigNum boxes an unsigned magnitude with an explicit sign, the
// representation get_integer's big-endian byte-copy path naturally produces.
func NewBigNum(mag *uint256.Int, neg bool) Term {
	return Box(&BigNum{Value: mag, Neg: neg})
}

// BigNumFromBytes interprets data as a big-endian magnitude (padded/truncated
// to 256 bits, matching the capped width above) and boxes it.
func BigNumFromBytes(data []byte, neg bool) Term {
	v := new(uint256.Int)
	if len(data) > 32 {
		data = data[len(data)-32:]
	}
	v.SetBytes(data)
	return NewBigNum(v, neg)
}

// AsBigNum returns the bignum behind t, or false if t isn't one.
func AsBigNum(t Term) (*BigNum, bool) {
	b, ok := t.AsBoxed()
	if !ok {
		return nil, false
	}
	n, ok := b.(*BigNum)
	return n, ok
}

func (b *BigNum) EqualTerm(other Boxed) bool {
	o, ok := other.(*BigNum)
	return ok && b.Neg == o.Neg && b.Value.Eq(o.Value)
}

// Reference is a boxed monotonically increasing unique value, used by BIFs
// such as send_after that must hand back a fresh, comparable identity.
type Reference struct {
	ID uint64
}

// Tag implements Boxed.
func (*Reference) Tag() BoxTag { return TagReference }

// NewReference boxes id.
func NewReference(id uint64) Term { return Box(&Reference{ID: id}) }

func (r *Reference) EqualTerm(other Boxed) bool {
	o, ok := other.(*Reference)
	return ok && o.ID == r.ID
}
