package bif

import (
	"github.com/AlephTX/enigma/bitstring"
	"github.com/AlephTX/enigma/exception"
	"github.com/AlephTX/enigma/term"
)

// asSubjectBytes materializes t's payload as a byte-aligned slice plus the
// (orig, startBit) pair needed to build zero-copy SubBinary results over
// the same backing Binary. NewView builds a valid bit-precise SubBinary
// regardless of orig's own alignment, so this accepts any binary, aligned
// or not.
func asSubjectBytes(t term.Term) (orig *bitstring.Binary, startBit int, data []byte, ok bool) {
	data, ok = bitstring.AsBinary(t)
	if !ok {
		return nil, 0, nil, false
	}
	orig, startBit, _, ok = bitstring.View(t)
	return orig, startBit, data, ok
}

// SplitBinary2 implements split_binary/2: {Prefix, Suffix}, Suffix carrying
// any trailing bit-remainder of the source.
func (b *Builtins) SplitBinary2(args []term.Term) (term.Term, *exception.Exception) {
	pos, ok := args[1].AsSmallInt()
	if !ok || pos < 0 {
		return term.Term{}, badarg()
	}
	orig, startBit, totalBits, ok := bitstring.View(args[0])
	if !ok {
		return term.Term{}, badarg()
	}
	size := totalBits / 8
	if int(pos) > size {
		return term.Term{}, badarg()
	}
	prefix := bitstring.NewView(orig, startBit, int(pos)*8)
	suffix := bitstring.NewView(orig, startBit+int(pos)*8, totalBits-int(pos)*8)
	return term.NewTuple(prefix, suffix), nil
}

// binaryPart is the shared helper behind part/2 and part/3: a negative
// length means "|len| bytes ending at pos", and pos plus the implied
// interval must stay inside [0, byte_size].
func binaryPart(source term.Term, pos, length int) (term.Term, *exception.Exception) {
	orig, startBit, totalBits, ok := bitstring.View(source)
	if !ok {
		return term.Term{}, badarg()
	}
	size := totalBits / 8

	if length < 0 {
		l := -length
		if l > pos {
			return term.Term{}, badarg()
		}
		pos -= l
		length = l
	}
	if pos < 0 || size < pos || size < pos+length {
		return term.Term{}, badarg()
	}
	return bitstring.NewView(orig, startBit+pos*8, length*8), nil
}

// BinaryPart2 implements binary:part/2 with a {Pos, Len} tuple argument.
func (b *Builtins) BinaryPart2(args []term.Term) (term.Term, *exception.Exception) {
	tup, ok := term.AsTuple(args[1])
	if !ok || tup.Arity() != 2 {
		return term.Term{}, badarg()
	}
	pos, ok1 := tup.Elements[0].AsSmallInt()
	length, ok2 := tup.Elements[1].AsSmallInt()
	if !ok1 || !ok2 || pos < 0 {
		return term.Term{}, badarg()
	}
	return binaryPart(args[0], int(pos), int(length))
}

// BinaryPart3 implements binary:part/3 with separate Pos/Len arguments.
func (b *Builtins) BinaryPart3(args []term.Term) (term.Term, *exception.Exception) {
	pos, ok1 := args[1].AsSmallInt()
	length, ok2 := args[2].AsSmallInt()
	if !ok1 || !ok2 || pos < 0 {
		return term.Term{}, badarg()
	}
	return binaryPart(args[0], int(pos), int(length))
}

// patternAlternatives collects the literal byte strings compile_pattern
// should escape and alternate between: either a single binary, or a proper
// list of binaries.
func patternAlternatives(t term.Term) ([][]byte, bool) {
	if data, ok := bitstring.AsBinary(t); ok {
		return [][]byte{data}, true
	}
	elems, ok := term.ToSlice(t)
	if !ok {
		return nil, false
	}
	alts := make([][]byte, len(elems))
	for i, e := range elems {
		data, ok := bitstring.AsBinary(e)
		if !ok {
			return nil, false
		}
		alts[i] = data
	}
	return alts, true
}

// resolvePattern accepts an already-compiled pattern term, a single binary,
// or a list of binaries — every shape compile_pattern/1, split/3, match/3,
// and matches/3 accept for their pattern argument.
func resolvePattern(t term.Term) (*bitstring.Pattern, *exception.Exception) {
	if boxed, ok := t.AsBoxed(); ok {
		if p, ok := boxed.(*bitstring.Pattern); ok {
			return p, nil
		}
	}
	alts, ok := patternAlternatives(t)
	if !ok {
		return nil, badarg()
	}
	p, ok := bitstring.CompilePattern(alts)
	if !ok {
		return nil, badarg()
	}
	return p, nil
}

// CompilePattern1 implements compile_pattern/1.
func (b *Builtins) CompilePattern1(args []term.Term) (term.Term, *exception.Exception) {
	alts, ok := patternAlternatives(args[0])
	if !ok {
		return term.Term{}, badarg()
	}
	p, ok := bitstring.CompilePattern(alts)
	if !ok {
		return term.Term{}, badarg()
	}
	return term.Box(p), nil
}

// splitOptions is the parsed form of binary:split/3 and binary:matches/3's
// (shared-shape) options list: global, trim (drop a trailing empty part),
// trim_all (drop every empty part), and an optional {scope, {Start, Len}}
// restricting the subject region the pattern is matched against.
type splitOptions struct {
	global             bool
	trim, trimAll      bool
	hasScope           bool
	scopeStart, scopeLen int
}

func (b *Builtins) parseOptions(opts term.Term) (splitOptions, *exception.Exception) {
	var o splitOptions
	if opts.IsNil() {
		return o, nil
	}
	elems, ok := term.ToSlice(opts)
	if !ok {
		return o, badarg()
	}
	for _, e := range elems {
		if id, isAtom := e.AsAtom(); isAtom {
			switch id {
			case b.WK.Global:
				o.global = true
			case b.WK.Trim:
				o.trim = true
			case b.WK.TrimAll:
				o.trimAll = true
			default:
				return o, badarg()
			}
			continue
		}
		tup, isTup := term.AsTuple(e)
		if !isTup || tup.Arity() != 2 {
			return o, badarg()
		}
		key, isAtom := tup.Elements[0].AsAtom()
		if !isAtom || key != b.WK.Scope {
			return o, badarg()
		}
		rng, isTup := term.AsTuple(tup.Elements[1])
		if !isTup || rng.Arity() != 2 {
			return o, badarg()
		}
		start, ok1 := rng.Elements[0].AsSmallInt()
		length, ok2 := rng.Elements[1].AsSmallInt()
		if !ok1 || !ok2 || start < 0 || length < 0 {
			return o, badarg()
		}
		o.hasScope = true
		o.scopeStart = int(start)
		o.scopeLen = int(length)
	}
	return o, nil
}

// searchRegion narrows subject to the requested scope, returning the
// sub-slice to search plus the byte offset to add back to every match.
func (o splitOptions) searchRegion(subject []byte) (region []byte, base int, ok bool) {
	if !o.hasScope {
		return subject, 0, true
	}
	if o.scopeStart < 0 || o.scopeStart+o.scopeLen > len(subject) {
		return nil, 0, false
	}
	return subject[o.scopeStart : o.scopeStart+o.scopeLen], o.scopeStart, true
}

// BinarySplit2 implements binary:split/2 (options default to []).
func (b *Builtins) BinarySplit2(args []term.Term) (term.Term, *exception.Exception) {
	return b.BinarySplit3([]term.Term{args[0], args[1], term.Nil()})
}

// BinarySplit3 implements binary:split/3, following split_3: global finds
// every non-overlapping match and returns every segment between them (plus
// the leading/trailing remainder); non-global returns at most a 2-element
// list (subject unchanged, wrapped in a list, if no match is found).
func (b *Builtins) BinarySplit3(args []term.Term) (term.Term, *exception.Exception) {
	pat, exc := resolvePattern(args[1])
	if exc != nil {
		return term.Term{}, exc
	}
	opts, exc := b.parseOptions(args[2])
	if exc != nil {
		return term.Term{}, exc
	}
	orig, startBit, subject, ok := asSubjectBytes(args[0])
	if !ok {
		return term.Term{}, badarg()
	}
	region, base, ok := opts.searchRegion(subject)
	if !ok {
		return term.Term{}, badarg()
	}

	view := func(from, to int) term.Term {
		return bitstring.NewView(orig, startBit+from*8, (to-from)*8)
	}

	var parts []term.Term
	if opts.global {
		last := 0
		for _, m := range pat.FindAll(region) {
			start, end := base+m.Start, base+m.Start+m.Length
			parts = append(parts, view(last, start))
			last = end
		}
		parts = append(parts, view(last, len(subject)))
	} else {
		m, found := pat.FindFirst(region)
		if !found {
			parts = []term.Term{args[0]}
		} else {
			start, end := base+m.Start, base+m.Start+m.Length
			parts = []term.Term{view(0, start), view(end, len(subject))}
		}
	}

	parts = applyTrim(parts, opts)
	return term.FromSlice(parts), nil
}

// applyTrim drops a trailing empty part (trim) or every empty part
// (trim_all), matching the BEAM reference semantics for binary:split's
// trim/trim_all options.
func applyTrim(parts []term.Term, opts splitOptions) []term.Term {
	isEmpty := func(t term.Term) bool {
		data, ok := bitstring.AsBinary(t)
		return ok && len(data) == 0
	}
	if opts.trimAll {
		out := parts[:0:0]
		for _, p := range parts {
			if !isEmpty(p) {
				out = append(out, p)
			}
		}
		return out
	}
	if opts.trim {
		for len(parts) > 0 && isEmpty(parts[len(parts)-1]) {
			parts = parts[:len(parts)-1]
		}
	}
	return parts
}

// BinaryMatch2 implements binary:match/2, defaulting options to [].
func (b *Builtins) BinaryMatch2(args []term.Term) (term.Term, *exception.Exception) {
	return b.BinaryMatch3([]term.Term{args[0], args[1], term.Nil()})
}

// BinaryMatch3 implements binary:match/3: {Start, Length} of the first
// match, or 'nomatch'.
func (b *Builtins) BinaryMatch3(args []term.Term) (term.Term, *exception.Exception) {
	pat, exc := resolvePattern(args[1])
	if exc != nil {
		return term.Term{}, exc
	}
	opts, exc := b.parseOptions(args[2])
	if exc != nil {
		return term.Term{}, exc
	}
	_, _, subject, ok := asSubjectBytes(args[0])
	if !ok {
		return term.Term{}, badarg()
	}
	region, base, ok := opts.searchRegion(subject)
	if !ok {
		return term.Term{}, badarg()
	}
	m, found := pat.FindFirst(region)
	if !found {
		return term.Atom(b.WK.Nomatch), nil
	}
	return term.NewTuple(term.SmallInt(int64(base+m.Start)), term.SmallInt(int64(m.Length))), nil
}

// BinaryMatches2 implements binary:matches/2 (options default to []).
func (b *Builtins) BinaryMatches2(args []term.Term) (term.Term, *exception.Exception) {
	return b.BinaryMatches3([]term.Term{args[0], args[1], term.Nil()})
}

// BinaryMatches3 implements binary:matches/3: every non-overlapping match
// as a list of {Start, Length} tuples.
func (b *Builtins) BinaryMatches3(args []term.Term) (term.Term, *exception.Exception) {
	pat, exc := resolvePattern(args[1])
	if exc != nil {
		return term.Term{}, exc
	}
	opts, exc := b.parseOptions(args[2])
	if exc != nil {
		return term.Term{}, exc
	}
	_, _, subject, ok := asSubjectBytes(args[0])
	if !ok {
		return term.Term{}, badarg()
	}
	region, base, ok := opts.searchRegion(subject)
	if !ok {
		return term.Term{}, badarg()
	}
	matches := pat.FindAll(region)
	elems := make([]term.Term, len(matches))
	for i, m := range matches {
		elems[i] = term.NewTuple(term.SmallInt(int64(base+m.Start)), term.SmallInt(int64(m.Length)))
	}
	return term.FromSlice(elems), nil
}

// BinaryCopy1 implements binary:copy/1 (one repetition).
func (b *Builtins) BinaryCopy1(args []term.Term) (term.Term, *exception.Exception) {
	return b.BinaryCopy2([]term.Term{args[0], term.SmallInt(1)})
}

// BinaryCopy2 implements binary:copy/2: a freshly owned Binary of n
// repetitions of the source payload.
func (b *Builtins) BinaryCopy2(args []term.Term) (term.Term, *exception.Exception) {
	data, ok := bitstring.AsBinary(args[0])
	if !ok {
		return term.Term{}, badarg()
	}
	n, ok := args[1].AsSmallInt()
	if !ok || n < 0 {
		return term.Term{}, badarg()
	}
	out := make([]byte, 0, len(data)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, data...)
	}
	return bitstring.NewBinaryTerm(out), nil
}

// BinaryFirst1 implements binary:first/1.
func (b *Builtins) BinaryFirst1(args []term.Term) (term.Term, *exception.Exception) {
	data, ok := bitstring.AsBinary(args[0])
	if !ok || len(data) == 0 {
		return term.Term{}, badarg()
	}
	return term.SmallInt(int64(data[0])), nil
}

// BinaryLast1 implements binary:last/1.
func (b *Builtins) BinaryLast1(args []term.Term) (term.Term, *exception.Exception) {
	data, ok := bitstring.AsBinary(args[0])
	if !ok || len(data) == 0 {
		return term.Term{}, badarg()
	}
	return term.SmallInt(int64(data[len(data)-1])), nil
}

// longestCommonPrefix returns the length of the longest shared prefix
// across every string.
func longestCommonPrefix(strs [][]byte) int {
	if len(strs) == 0 {
		return 0
	}
	n := len(strs[0])
	for _, s := range strs[1:] {
		i := 0
		for i < n && i < len(s) && s[i] == strs[0][i] {
			i++
		}
		if i < n {
			n = i
		}
	}
	return n
}

// LongestCommonPrefix1 implements binary:longest_common_prefix/1.
func (b *Builtins) LongestCommonPrefix1(args []term.Term) (term.Term, *exception.Exception) {
	elems, ok := term.ToSlice(args[0])
	if !ok {
		return term.Term{}, badarg()
	}
	strs := make([][]byte, len(elems))
	for i, e := range elems {
		data, ok := bitstring.AsBinary(e)
		if !ok {
			return term.Term{}, badarg()
		}
		strs[i] = data
	}
	return term.SmallInt(int64(longestCommonPrefix(strs))), nil
}
