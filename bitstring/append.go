package bitstring

import (
	"github.com/AlephTX/enigma/heap"
	"github.com/AlephTX/enigma/term"
)

// minNewBinary is the copy-then-write path's minimum allocation, matching
// BEAM's 256-byte floor so that a chain of small appends doesn't thrash
// through many tiny reallocations.
const minNewBinary = 256

// InitWritable implements init_writable/1: allocate a new writable binary
// sized to hold numBits bits (rounded up to bytes) and claim it, handing
// back a SubBinary view that holds the writable capability. The first
// Append/PrivateAppend against this SubBinary extends in place and moves the
// capability to the SubBinary it returns; a later append against this same
// handle copies instead.
func InitWritable(h *heap.Heap, numBits int) term.Term {
	nBytes := nbytes(numBits)
	capacity := nBytes
	if capacity < minNewBinary {
		capacity = minNewBinary
	}
	bin := NewWritable(h, capacity)
	bin.setLen(nBytes)
	sub := NewSubBinary(bin, 0, numBits, true)
	return term.Box(sub)
}

// Append implements bs_append: append extra's bits onto bin, reusing bin's
// backing storage in place when bin is a SubBinary that (a) currently holds
// the writable claim and (b) spans all the way to the end of its Binary's
// logical length — i.e. it is the "active tail" of a writable binary begun
// by InitWritable or a prior Append. Otherwise a new Binary at least twice
// the combined size (or minNewBinary, whichever is larger) is allocated and
// both operands are copied in.
//
// presumedBits reserves extra headroom beyond extra's own bits (BEAM's
// bs_append takes an extra budget so the loader can avoid reallocating on
// every single append in a tight construction loop); 0 is always valid.
func Append(h *heap.Heap, bin term.Term, extra []byte, extraBits int, presumedBits int) (term.Term, bool) {
	boxed, ok := bin.AsBoxed()
	if !ok {
		return term.Term{}, false
	}

	if sub, isSub := boxed.(*SubBinary); isSub && sub.Writable {
		orig := sub.Orig
		tailBit := sub.StartBit() + sub.TotalBits()
		// A SubBinary whose tail no longer matches its Binary's current
		// length is stale: some other Append already consumed the claim
		// and grew orig past it. Falling through to the copy path is what
		// keeps that case (and any use of a manually duplicated handle)
		// from corrupting the binary that's still genuinely in use.
		if tailBit == orig.Len()*8 {
			newBits := sub.TotalBits() + extraBits
			newLen := nbytes(newBits)
			desired := newLen
			if grown := orig.Len() * 2; grown > desired {
				desired = grown
			}
			orig.grow(desired)
			orig.setLen(newLen)
			copyBits(extra, 0, 1, orig.Bytes(), sub.StartBit()+sub.TotalBits(), 1, extraBits)
			newSub := NewSubBinary(orig, sub.StartBit(), newBits, true)
			// The append protocol transfers the writable capability: sub no
			// longer speaks for orig once newSub exists.
			sub.Writable = false
			return term.Box(newSub), true
		}
	}

	// Copy-then-write path: materialize bin's existing bits and build a
	// fresh writable binary at least double the combined size.
	if sub, isSub := boxed.(*SubBinary); isSub && sub.Writable {
		// bin's claim on its old Binary is abandoned entirely in favor of a
		// brand new one.
		sub.Orig.release()
		sub.Writable = false
	}
	existing, existBits := materializeAny(boxed)
	if existing == nil {
		return term.Term{}, false
	}
	size := nbytes(existBits + extraBits)
	reserve := nbytes(existBits + extraBits + presumedBits)
	capacity := size * 2
	if capacity < minNewBinary {
		capacity = minNewBinary
	}
	if capacity < reserve {
		capacity = reserve
	}
	newBin := NewWritable(h, capacity)
	newBin.setLen(size)
	copyBits(existing, 0, 1, newBin.Bytes(), 0, 1, existBits)
	copyBits(extra, 0, 1, newBin.Bytes(), existBits, 1, extraBits)
	sub := NewSubBinary(newBin, 0, existBits+extraBits, true)
	return term.Box(sub), true
}

// PrivateAppend implements bs_private_append: identical in-place/copy logic
// to Append, but used when the compiler has proven bin has exactly one
// reference (so there is no need to re-check aliasing against other live
// terms) — a distinction the scheduler/optimizer cares about, not this
// core's append algorithm, so it is implemented as a thin alias.
func PrivateAppend(h *heap.Heap, bin term.Term, extra []byte, extraBits int) (term.Term, bool) {
	return Append(h, bin, extra, extraBits, 0)
}

func materializeAny(b term.Boxed) ([]byte, int) {
	switch v := b.(type) {
	case *Binary:
		data := v.Bytes()
		return data, len(data) * 8
	case *SubBinary:
		return v.Materialize(), v.TotalBits()
	default:
		return nil, 0
	}
}
