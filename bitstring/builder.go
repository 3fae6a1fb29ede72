package bitstring

import (
	"math"

	"github.com/AlephTX/enigma/heap"
	"github.com/AlephTX/enigma/term"
)

// Builder accumulates bits into a writable Binary, the engine behind every
// bs_put_* instruction. Unlike MatchBuffer it only ever appends forward.
type Builder struct {
	h      *heap.Heap
	bin    *Binary
	bitLen int // current logical length in bits, <= len(bin.data)*8
}

// NewBuilder starts a builder over a fresh writable binary.
func NewBuilder(h *heap.Heap) *Builder {
	return &Builder{h: h, bin: NewWritable(h, 0)}
}

// Binary returns the binary built so far (shared, not copied).
func (b *Builder) Binary() *Binary { return b.bin }

// BitLen reports the number of bits written so far.
func (b *Builder) BitLen() int { return b.bitLen }

func (b *Builder) ensureBits(extra int) {
	needBytes := nbytes(b.bitLen + extra)
	if needBytes <= len(b.bin.data) {
		return
	}
	b.bin.grow(needBytes)
}

// PutBytes appends whole, byte-aligned bytes. The Builder never produces an
// unaligned bitLen mid-byte except through PutInteger/PutFloat with a
// non-multiple-of-8 size, so this is always the fast, memcpy-shaped path
// when the cursor happens to already be byte-aligned, and falls back to
// copyBits otherwise.
func (b *Builder) PutBytes(data []byte) {
	b.ensureBits(len(data) * 8)
	if b.bitLen%8 == 0 {
		copy(b.bin.data[b.bitLen/8:], data)
	} else {
		copyBits(data, 0, 1, b.bin.data, b.bitLen, 1, len(data)*8)
	}
	b.bitLen += len(data) * 8
}

// PutBinaryAll appends every bit of a Binary or byte-aligned SubBinary term.
func (b *Builder) PutBinaryAll(t term.Term) bool {
	data, ok := AsBinary(t)
	if ok {
		b.PutBytes(data)
		return true
	}
	boxed, isBoxed := t.AsBoxed()
	if !isBoxed {
		return false
	}
	sub, isSub := boxed.(*SubBinary)
	if !isSub {
		return false
	}
	numBits := sub.TotalBits()
	b.ensureBits(numBits)
	copyBits(sub.Orig.Bytes(), sub.StartBit(), 1, b.bin.data, b.bitLen, 1, numBits)
	b.bitLen += numBits
	return true
}

// PutInteger appends the low numBits bits of v: sub-byte writes (within one
// byte and spanning two), little-endian at an arbitrary bit offset, and
// signed narrowing, alongside the size-0/size-8/byte-aligned big-endian
// fast paths.
func (b *Builder) PutInteger(v int64, numBits int, flags Flag) bool {
	flags = flags.resolveNative()
	if numBits == 0 {
		return true
	}
	if numBits < 0 {
		return false
	}

	buf := make([]byte, nbytes(numBits))
	fillIntBits(buf, v, numBits, flags)

	b.ensureBits(numBits)
	copyBits(buf, 0, 1, b.bin.data, b.bitLen, 1, numBits)
	b.bitLen += numBits
	return true
}

// fillIntBits writes the low numBits bits of v into buf, big-endian
// (bit 0 of buf is the field's most significant bit) regardless of flags;
// FlagLittle instead reorders which *bytes* of the conceptual value feed
// those bits, matching how bs_put_integer's little-endian mode byte-swaps
// before the bit-level copy.
func fillIntBits(buf []byte, v int64, numBits int, flags Flag) {
	// Narrow to numBits first (signed or unsigned), mirroring the VM
	// truncating an oversized integer into a short field.
	var mask uint64
	if numBits >= 64 {
		mask = ^uint64(0)
	} else {
		mask = (uint64(1) << uint(numBits)) - 1
	}
	uv := uint64(v) & mask

	nBytes := nbytes(numBits)
	beBytes := make([]byte, nBytes)
	for i := nBytes - 1; i >= 0; i-- {
		beBytes[i] = byte(uv)
		uv >>= 8
	}

	if flags&FlagLittle != 0 {
		reverse(beBytes)
	}

	// beBytes holds the numBits value right-justified in nBytes*8 bits;
	// left-justify into buf so the first `numBits` bits (reading from bit 0)
	// are the field's content.
	shift := nBytes*8 - numBits
	if shift == 0 {
		copy(buf, beBytes)
		return
	}
	copyBits(beBytes, shift, 1, buf, 0, 1, numBits)
}

// PutFloat appends a 32- or 64-bit IEEE754 value.
func (b *Builder) PutFloat(v float64, numBits int, flags Flag) bool {
	flags = flags.resolveNative()
	if numBits != 32 && numBits != 64 {
		return false
	}
	buf := make([]byte, numBits/8)
	if numBits == 32 {
		putBeUint32(buf, math.Float32bits(float32(v)))
	} else {
		putBeUint64(buf, math.Float64bits(v))
	}
	if flags&FlagLittle != 0 {
		reverse(buf)
	}
	b.PutBytes(buf)
	return true
}

func putBeUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func putBeUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}

// Finish materializes the built bitstring as a term: a plain binary if the
// length is byte-aligned, otherwise a bit-precise SubBinary view.
func (b *Builder) Finish() term.Term {
	b.bin.setLen(nbytes(b.bitLen))
	if b.bitLen%8 == 0 {
		return term.Box(b.bin)
	}
	return term.Box(NewSubBinary(b.bin, 0, b.bitLen, false))
}
