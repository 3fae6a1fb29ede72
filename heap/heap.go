// Package heap implements the per-process bump-allocating arena: a linked
// list of fixed-size blocks, each handed out by bumping a cursor forward,
// with a new block grown whenever an allocation doesn't fit the current
// one. Each block is backed by an mmap'd region rather than a plain Go
// slice, using golang.org/x/sys/unix.
//
// Heap only ever hands out raw byte spans. Structured, pointer-containing
// terms (tuples, cons cells, maps, closures) are allocated with ordinary Go
// `new`/composite literals elsewhere in this module and left to the Go
// garbage collector, since a literal off-heap arena for GC-tracked values
// isn't sound without compiler support BEAM's own allocator doesn't need.
// Heap backs the initial storage of writable binaries
// (bitstring.NewWritable); growth beyond that capacity (Binary.grow) and
// plain immutable binaries use ordinary Go slices.
package heap

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DefaultBlockSize is the size of each arena block, the BEAM allocator's
// conventional 32KiB default.
const DefaultBlockSize = 32 * 1024

// block is a single mmap'd arena segment.
type block struct {
	data   []byte
	cursor int
	next   *block
}

func newBlock(size int) (*block, error) {
	mapped := roundUp(size, pageSize)
	data, err := unix.Mmap(-1, 0, mapped, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("heap: mmap %d bytes: %w", mapped, err)
	}
	// Only the requested size is handed out; the page-rounded tail stays
	// within cap so Close can unmap the whole mapping.
	return &block{data: data[:size]}, nil
}

func (b *block) remaining() int { return len(b.data) - b.cursor }

// tryAlloc bumps the cursor forward by size (rounded up to align), returning
// the allocated span or false if the block doesn't have room.
func (b *block) tryAlloc(size, align int) ([]byte, bool) {
	start := roundUp(b.cursor, align)
	end := start + size
	if end > len(b.data) {
		return nil, false
	}
	b.cursor = end
	return b.data[start:end:end], true
}

const pageSize = 4096

func roundUp(v, align int) int {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// Heap is a per-process bump arena: a singly linked list of blocks, newest
// first, with the front block taking every allocation until it's full.
type Heap struct {
	blockSize int
	head      *block
	blocks    int
	allocated int64
}

// New returns an empty arena that grows in blockSize-sized (or larger, for
// allocations that don't fit one) increments. blockSize <= 0 selects
// DefaultBlockSize.
func New(blockSize int) *Heap {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Heap{blockSize: blockSize}
}

// Alloc returns a zeroed byte span of the given size, aligned to align
// (which must be a power of two, or 0/1 for unaligned). Overflow — an
// allocation whose rounded size would wrap around — is fatal: it cannot be
// a recoverable error because it indicates corrupted caller arithmetic, not
// a resource limit.
func (h *Heap) Alloc(size, align int) []byte {
	if size < 0 {
		panic("heap: negative allocation size")
	}
	if align <= 0 {
		align = 1
	}
	if size > 0 && roundUp(size, align) < size {
		panic("heap: allocation too large, caused overflow")
	}

	if h.head != nil {
		if span, ok := h.head.tryAlloc(size, align); ok {
			h.allocated += int64(size)
			return span
		}
	}

	blockSize := h.blockSize
	if size+align > blockSize {
		blockSize = size + align
	}
	b, err := newBlock(blockSize)
	if err != nil {
		panic(err)
	}
	b.next = h.head
	h.head = b
	h.blocks++

	span, ok := b.tryAlloc(size, align)
	if !ok {
		panic("heap: new block too small for allocation")
	}
	h.allocated += int64(size)
	return span
}

// AllocBytes copies src into a freshly allocated span.
func (h *Heap) AllocBytes(src []byte) []byte {
	dst := h.Alloc(len(src), 1)
	copy(dst, src)
	return dst
}

// Blocks reports how many blocks currently back this arena.
func (h *Heap) Blocks() int { return h.blocks }

// Allocated reports the cumulative number of bytes handed out (not counting
// alignment padding or unused tail space in blocks).
func (h *Heap) Allocated() int64 { return h.allocated }

// Close releases every block's mmap mapping. Cost is O(#blocks), making
// process termination a bounded, predictable operation.
func (h *Heap) Close() error {
	var first error
	for b := h.head; b != nil; {
		next := b.next
		if err := unix.Munmap(b.data[:cap(b.data)]); err != nil && first == nil {
			first = err
		}
		b.next = nil
		b = next
	}
	h.head = nil
	h.blocks = 0
	return first
}
