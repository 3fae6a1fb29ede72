// Package bitstring implements the bitstring match buffer and
// builder/append engine. It is the largest package in this module: the
// bitstring engine is the dominant share of a BEAM-style runtime's
// complexity.
package bitstring

import (
	"sync"

	"github.com/AlephTX/enigma/heap"
	"github.com/AlephTX/enigma/term"
)

// Binary is the boxed owner of raw bitstring storage. Binaries are always
// byte-aligned; bit-level addressing only ever enters through a SubBinary's
// offset/bitsize fields — a byte-aligned reference-counted owner plus a
// bit-precise view over it.
//
// writable/claimed implement the "at most one live writable SubBinary per
// Binary" rule, the single most important property to get right here:
// NewWritable claims a writable Binary as it creates it, and exactly one
// SubBinary at a time may hold the claim via tryClaim/release.
type Binary struct {
	mu       sync.Mutex
	data     []byte
	writable bool
	claimed  bool
}

// Tag implements term.Boxed.
func (*Binary) Tag() term.BoxTag { return term.TagBinary }

// NewBinary wraps data as an immutable (non-writable) binary, copying
// nothing: the caller transfers ownership of data to the returned Binary.
func NewBinary(data []byte) *Binary {
	return &Binary{data: data}
}

// NewWritable allocates a fresh writable, claimed binary with the given
// initial capacity (length 0), the shape init_writable/1 needs.
func NewWritable(h *heap.Heap, capacity int) *Binary {
	var data []byte
	if h != nil {
		data = h.Alloc(capacity, 1)[:0]
	} else {
		data = make([]byte, 0, capacity)
	}
	b := &Binary{data: data, writable: true}
	b.tryClaim()
	return b
}

// Bytes returns the current backing slice. Callers must not retain it across
// a concurrent append on the same Binary.
func (b *Binary) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// Len returns the current byte length.
func (b *Binary) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// tryClaim atomically claims the writable capability, returning false if the
// binary isn't writable or is already claimed by a live SubBinary.
func (b *Binary) tryClaim() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.writable || b.claimed {
		return false
	}
	b.claimed = true
	return true
}

// release gives up the writable claim, e.g. when a SubBinary holding it is
// consumed by append (which re-claims on the resulting SubBinary) rather
// than simply discarded.
func (b *Binary) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.claimed = false
}

// grow extends data to at least n bytes, doubling (BEAM's classic growth
// policy) rather than growing exactly, amortizing repeated appends. Must be
// called with the claim already held by the caller.
func (b *Binary) grow(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cap(b.data) >= n {
		b.data = b.data[:n]
		return
	}
	newCap := cap(b.data) * 2
	if newCap < n {
		newCap = n
	}
	grown := make([]byte, n, newCap)
	copy(grown, b.data)
	b.data = grown
}

func (b *Binary) setLen(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = b.data[:n]
}

// SubBinary is a bit-precise view over a Binary: a byte offset, an
// additional 0..7 bit offset, a whole-byte size, and 0..7 trailing bits.
// Binaries are bitstrings by default; a SubBinary with BitSize 0 is itself a
// binary (byte-aligned start and end).
type SubBinary struct {
	Orig       *Binary
	ByteOffset int
	BitOffset  uint8
	Size       int
	BitSize    uint8
	// Writable is true iff this SubBinary currently holds Orig's writable
	// claim. Only InitWritable and Append/PrivateAppend produce a SubBinary
	// with Writable set; every other constructor leaves it false even if Orig
	// itself is a writable binary, since reading never needs the claim.
	Writable bool
}

// Tag implements term.Boxed.
func (*SubBinary) Tag() term.BoxTag { return term.TagSubBinary }

// NewSubBinary builds a view over numBits bits starting at bitOffset within
// orig, mirroring SubBinary::new's byte/bit decomposition.
func NewSubBinary(orig *Binary, bitOffset, numBits int, writable bool) *SubBinary {
	return &SubBinary{
		Orig:       orig,
		ByteOffset: bitOffset / 8,
		BitOffset:  uint8(bitOffset % 8),
		Size:       numBits / 8,
		BitSize:    uint8(numBits % 8),
		Writable:   writable,
	}
}

// IsBinary reports whether the view is byte-aligned at both ends.
func (s *SubBinary) IsBinary() bool { return s.BitSize == 0 }

// TotalBits returns the full bit length of the view.
func (s *SubBinary) TotalBits() int { return s.Size*8 + int(s.BitSize) }

// StartBit returns the absolute bit offset into Orig's data.
func (s *SubBinary) StartBit() int { return s.ByteOffset*8 + int(s.BitOffset) }

// Materialize copies out the view's bytes, byte-aligning if necessary via
// copyBits. For an already-aligned, non-bitsize view this is a cheap
// contiguous slice copy; zero-copy access is preserved one level up, in the
// match buffer, which borrows instead of calling Materialize whenever
// alignment allows it.
func (s *SubBinary) Materialize() []byte {
	if s.BitOffset == 0 {
		data := s.Orig.Bytes()
		n := s.Size
		if s.BitSize > 0 {
			n++
		}
		out := make([]byte, n)
		copy(out, data[s.ByteOffset:s.ByteOffset+n])
		return out
	}
	n := s.Size
	if s.BitSize > 0 {
		n++
	}
	out := make([]byte, n)
	copyBits(s.Orig.Bytes(), s.StartBit(), 1, out, 0, 1, s.TotalBits())
	return out
}

// AsBinary returns t's payload bytes, accepting either a plain Binary (its
// backing slice, shared) or a SubBinary whose length is a whole number of
// bytes (a materialized copy), the two shapes every binary BIF must accept.
func AsBinary(t term.Term) ([]byte, bool) {
	b, ok := t.AsBoxed()
	if !ok {
		return nil, false
	}
	switch v := b.(type) {
	case *Binary:
		return v.Bytes(), true
	case *SubBinary:
		if !v.IsBinary() {
			return nil, false
		}
		return v.Materialize(), true
	default:
		return nil, false
	}
}

// NewBinaryTerm boxes data as a fresh, non-writable binary term.
func NewBinaryTerm(data []byte) term.Term {
	return term.Box(NewBinary(data))
}

// View decomposes t (a Binary or SubBinary) into its backing Binary plus the
// absolute bit range it covers: the (orig, offset, bit_offset, size,
// bitsize) tuple every binary BIF needs at the top of split_binary, part,
// and split.
func View(t term.Term) (orig *Binary, startBit, totalBits int, ok bool) {
	b, ok := t.AsBoxed()
	if !ok {
		return nil, 0, 0, false
	}
	switch v := b.(type) {
	case *Binary:
		return v, 0, v.Len() * 8, true
	case *SubBinary:
		return v.Orig, v.StartBit(), v.TotalBits(), true
	default:
		return nil, 0, 0, false
	}
}

// NewView builds a non-writable SubBinary term over numBits bits starting at
// startBit within orig.
func NewView(orig *Binary, startBit, numBits int) term.Term {
	return term.Box(NewSubBinary(orig, startBit, numBits, false))
}
