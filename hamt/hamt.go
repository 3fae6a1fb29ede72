// Package hamt implements the persistent (immutable, structurally shared)
// map behind term's TagMap boxed variant: a hash-array-mapped trie keyed by
// the FNV hash of a term.Term, giving O(log32 n) get/insert/remove/update.
//
// Each internal node carries a sparse bitmap selecting among a compacted
// children slice; this map uses 5 hash bits per level (32-way fan-out) so
// one level's sparse index fits a single bitmap word, implemented with
// github.com/bits-and-blooms/bitset rather than a raw uint32, since bitset
// gives named popcount/test/set operations instead of hand-rolled
// bit-twiddling.
package hamt

import (
	"hash/fnv"

	"github.com/bits-and-blooms/bitset"

	"github.com/AlephTX/enigma/term"
)

const (
	bitsPerLevel = 5
	fanout       = 1 << bitsPerLevel
	levelMask    = fanout - 1
	maxLevels    = (64 + bitsPerLevel - 1) / bitsPerLevel
)

// node is a trie node: either an internal node (bitmap + compacted children
// slice) or a leaf (a single key/value pair, or a short collision list when
// two keys hash identically all the way down).
type node struct {
	bitmap   *bitset.BitSet
	children []*node

	isLeaf bool
	hash   uint64
	key    term.Term
	value  term.Term
	// collisions holds extra (key, value) pairs that share this leaf's full
	// hash; vanishingly rare for a 64-bit hash but handled for correctness.
	collisions []entry
}

type entry struct {
	key, value term.Term
}

func newInternal() *node {
	return &node{bitmap: bitset.New(fanout)}
}

func newLeaf(hash uint64, key, value term.Term) *node {
	return &node{isLeaf: true, hash: hash, key: key, value: value}
}

// Map is a persistent map from term.Term to term.Term.
type Map struct {
	root *node
	size int
}

// Tag implements term.Boxed so a Map can be stored inside a term.Term.
func (*Map) Tag() term.BoxTag { return term.TagMap }

// New returns the empty map.
func New() *Map { return &Map{} }

// Len returns the number of entries.
func (m *Map) Len() int { return m.size }

func hashOf(key term.Term) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key.String()))
	return h.Sum64()
}

func slot(hash uint64, level int) uint {
	return uint((hash >> uint(level*bitsPerLevel)) & levelMask)
}

// Get looks up key.
func (m *Map) Get(key term.Term) (term.Term, bool) {
	if m.root == nil {
		return term.Term{}, false
	}
	return get(m.root, hashOf(key), key, 0)
}

func get(n *node, hash uint64, key term.Term, level int) (term.Term, bool) {
	if n.isLeaf {
		if n.hash != hash {
			return term.Term{}, false
		}
		if term.Equal(n.key, key) {
			return n.value, true
		}
		for _, e := range n.collisions {
			if term.Equal(e.key, key) {
				return e.value, true
			}
		}
		return term.Term{}, false
	}
	s := slot(hash, level)
	if !n.bitmap.Test(s) {
		return term.Term{}, false
	}
	return get(n.children[compactIndex(n.bitmap, s)], hash, key, level+1)
}

// Contains reports whether key is present.
func (m *Map) Contains(key term.Term) bool {
	_, ok := m.Get(key)
	return ok
}

// compactIndex returns the position within the compacted children slice for
// bit s, i.e. the popcount of every set bit below s — the standard HAMT
// sparse-index trick also used by MariINode's Bitmap.
func compactIndex(b *bitset.BitSet, s uint) uint {
	count := uint(0)
	for i, e := b.NextSet(0); e; i, e = b.NextSet(i + 1) {
		if i >= s {
			break
		}
		count++
	}
	return count
}

// Insert returns a new map with key bound to value, sharing every unaffected
// node with m (structural sharing, never mutating m's nodes in place).
func (m *Map) Insert(key, value term.Term) *Map {
	hash := hashOf(key)
	newRoot, grew := insert(m.root, hash, key, value, 0)
	size := m.size
	if grew {
		size++
	}
	return &Map{root: newRoot, size: size}
}

func insert(n *node, hash uint64, key, value term.Term, level int) (*node, bool) {
	if n == nil {
		return newLeaf(hash, key, value), true
	}
	if n.isLeaf {
		if n.hash == hash {
			if term.Equal(n.key, key) {
				clone := *n
				clone.value = value
				return &clone, false
			}
			for i, e := range n.collisions {
				if term.Equal(e.key, key) {
					clone := *n
					clone.collisions = append([]entry(nil), n.collisions...)
					clone.collisions[i] = entry{key, value}
					return &clone, false
				}
			}
			clone := *n
			clone.collisions = append(append([]entry(nil), n.collisions...), entry{key, value})
			return &clone, true
		}
		if level >= maxLevels {
			clone := *n
			clone.collisions = append(append([]entry(nil), n.collisions...), entry{key, value})
			return &clone, true
		}
		// Two distinct single-hash leaves collide at this level: split into
		// an internal node and re-insert both.
		inner := newInternal()
		inner, _ = insert(inner, n.hash, n.key, n.value, level)
		for _, e := range n.collisions {
			inner, _ = insert(inner, n.hash, e.key, e.value, level)
		}
		inner, grew := insert(inner, hash, key, value, level)
		return inner, grew
	}

	s := slot(hash, level)
	idx := compactIndex(n.bitmap, s)
	newBitmap := n.bitmap.Clone()
	newChildren := append([]*node(nil), n.children...)

	if n.bitmap.Test(s) {
		child, grew := insert(n.children[idx], hash, key, value, level+1)
		newChildren[idx] = child
		return &node{bitmap: newBitmap, children: newChildren}, grew
	}

	newBitmap.Set(s)
	leaf := newLeaf(hash, key, value)
	newChildren = append(newChildren, nil)
	copy(newChildren[idx+1:], newChildren[idx:])
	newChildren[idx] = leaf
	return &node{bitmap: newBitmap, children: newChildren}, true
}

// Remove returns a new map with key unbound, or m itself (no new allocation)
// if key was absent.
func (m *Map) Remove(key term.Term) *Map {
	if m.root == nil {
		return m
	}
	newRoot, removed := remove(m.root, hashOf(key), key, 0)
	if !removed {
		return m
	}
	return &Map{root: newRoot, size: m.size - 1}
}

func remove(n *node, hash uint64, key term.Term, level int) (*node, bool) {
	if n == nil {
		return nil, false
	}
	if n.isLeaf {
		if n.hash != hash {
			return n, false
		}
		if term.Equal(n.key, key) {
			if len(n.collisions) == 0 {
				return nil, true
			}
			clone := newLeaf(n.hash, n.collisions[0].key, n.collisions[0].value)
			clone.collisions = append([]entry(nil), n.collisions[1:]...)
			return clone, true
		}
		for i, e := range n.collisions {
			if term.Equal(e.key, key) {
				clone := *n
				clone.collisions = append([]entry(nil), n.collisions...)
				clone.collisions = append(clone.collisions[:i], clone.collisions[i+1:]...)
				return &clone, true
			}
		}
		return n, false
	}

	s := slot(hash, level)
	if !n.bitmap.Test(s) {
		return n, false
	}
	idx := compactIndex(n.bitmap, s)
	child, removed := remove(n.children[idx], hash, key, level+1)
	if !removed {
		return n, false
	}
	if child != nil {
		newChildren := append([]*node(nil), n.children...)
		newChildren[idx] = child
		return &node{bitmap: n.bitmap.Clone(), children: newChildren}, true
	}
	newBitmap := n.bitmap.Clone()
	newBitmap.Clear(s)
	newChildren := append([]*node(nil), n.children[:idx]...)
	newChildren = append(newChildren, n.children[idx+1:]...)
	if newBitmap.Count() == 0 {
		return nil, true
	}
	return &node{bitmap: newBitmap, children: newChildren}, true
}

// Update applies fn to the current value bound to key (which must already be
// present — callers wanting upsert semantics should check Contains/Get
// first) and returns a new map with the result bound.
func (m *Map) Update(key term.Term, fn func(term.Term) term.Term) (*Map, bool) {
	cur, ok := m.Get(key)
	if !ok {
		return m, false
	}
	return m.Insert(key, fn(cur)), true
}

// Extract removes key and returns its prior value alongside the new map.
func (m *Map) Extract(key term.Term) (term.Term, *Map, bool) {
	v, ok := m.Get(key)
	if !ok {
		return term.Term{}, m, false
	}
	return v, m.Remove(key), true
}

// Union merges m and other. Where both define a key, m's (the left operand's)
// value wins, matching maps:merge/2's left-biased semantics.
func (m *Map) Union(other *Map) *Map {
	result := m
	other.Iter(func(k, v term.Term) bool {
		if !result.Contains(k) {
			result = result.Insert(k, v)
		}
		return true
	})
	return result
}

// Iter calls fn for every entry in an unspecified order, stopping early if
// fn returns false.
func (m *Map) Iter(fn func(key, value term.Term) bool) {
	if m.root != nil {
		iter(m.root, fn)
	}
}

func iter(n *node, fn func(term.Term, term.Term) bool) bool {
	if n.isLeaf {
		if !fn(n.key, n.value) {
			return false
		}
		for _, e := range n.collisions {
			if !fn(e.key, e.value) {
				return false
			}
		}
		return true
	}
	for _, c := range n.children {
		if !iter(c, fn) {
			return false
		}
	}
	return true
}

// Keys returns every key in an unspecified order.
func (m *Map) Keys() []term.Term {
	keys := make([]term.Term, 0, m.size)
	m.Iter(func(k, _ term.Term) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Values returns every value in an unspecified order.
func (m *Map) Values() []term.Term {
	values := make([]term.Term, 0, m.size)
	m.Iter(func(_, v term.Term) bool {
		values = append(values, v)
		return true
	})
	return values
}
