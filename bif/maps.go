package bif

import (
	"github.com/AlephTX/enigma/exception"
	"github.com/AlephTX/enigma/hamt"
	"github.com/AlephTX/enigma/term"
)

// asMap extracts the *hamt.Map behind t.
func asMap(t term.Term) (*hamt.Map, bool) {
	b, ok := t.AsBoxed()
	if !ok {
		return nil, false
	}
	m, ok := b.(*hamt.Map)
	return m, ok
}

func badmap(t term.Term) *exception.Exception {
	return exception.WithPayload(exception.Badmap, t)
}

func badkey(key term.Term) *exception.Exception {
	return exception.WithPayload(exception.Badkey, key)
}

// MapsNew0 implements maps:new/0.
func (b *Builtins) MapsNew0(args []term.Term) (term.Term, *exception.Exception) {
	return term.Box(hamt.New()), nil
}

// MapsFind2 implements maps:find/2: {ok, Value} | error.
func (b *Builtins) MapsFind2(args []term.Term) (term.Term, *exception.Exception) {
	key, mapTerm := args[0], args[1]
	m, ok := asMap(mapTerm)
	if !ok {
		return term.Term{}, badmap(mapTerm)
	}
	if v, found := m.Get(key); found {
		return term.NewTuple(term.Atom(b.WK.Ok), v), nil
	}
	return b.WK.ErrorAtom(), nil
}

// MapsGet2 implements maps:get/2: badkey if absent.
func (b *Builtins) MapsGet2(args []term.Term) (term.Term, *exception.Exception) {
	key, mapTerm := args[0], args[1]
	m, ok := asMap(mapTerm)
	if !ok {
		return term.Term{}, badmap(mapTerm)
	}
	v, found := m.Get(key)
	if !found {
		return term.Term{}, badkey(key)
	}
	return v, nil
}

// MapsGet3 implements maps:get/3: Default if absent, no exception.
func (b *Builtins) MapsGet3(args []term.Term) (term.Term, *exception.Exception) {
	key, mapTerm, def := args[0], args[1], args[2]
	m, ok := asMap(mapTerm)
	if !ok {
		return term.Term{}, badmap(mapTerm)
	}
	if v, found := m.Get(key); found {
		return v, nil
	}
	return def, nil
}

// MapsFromList1 implements maps:from_list/1: badarg on any non-2-tuple.
func (b *Builtins) MapsFromList1(args []term.Term) (term.Term, *exception.Exception) {
	elems, ok := term.ToSlice(args[0])
	if !ok {
		return term.Term{}, badarg()
	}
	m := hamt.New()
	for _, e := range elems {
		tup, ok := term.AsTuple(e)
		if !ok || tup.Arity() != 2 {
			return term.Term{}, badarg()
		}
		m = m.Insert(tup.Elements[0], tup.Elements[1])
	}
	return term.Box(m), nil
}

// MapsToList1 implements maps:to_list/1.
func (b *Builtins) MapsToList1(args []term.Term) (term.Term, *exception.Exception) {
	m, ok := asMap(args[0])
	if !ok {
		return term.Term{}, badmap(args[0])
	}
	var elems []term.Term
	m.Iter(func(k, v term.Term) bool {
		elems = append(elems, term.NewTuple(k, v))
		return true
	})
	return term.FromSlice(elems), nil
}

// MapsIsKey2 implements maps:is_key/2.
func (b *Builtins) MapsIsKey2(args []term.Term) (term.Term, *exception.Exception) {
	key, mapTerm := args[0], args[1]
	m, ok := asMap(mapTerm)
	if !ok {
		return term.Term{}, badmap(mapTerm)
	}
	return b.WK.Bool(m.Contains(key)), nil
}

// MapsKeys1 implements maps:keys/1.
func (b *Builtins) MapsKeys1(args []term.Term) (term.Term, *exception.Exception) {
	m, ok := asMap(args[0])
	if !ok {
		return term.Term{}, badmap(args[0])
	}
	return term.FromSlice(m.Keys()), nil
}

// MapsValues1 implements maps:values/1.
func (b *Builtins) MapsValues1(args []term.Term) (term.Term, *exception.Exception) {
	m, ok := asMap(args[0])
	if !ok {
		return term.Term{}, badmap(args[0])
	}
	return term.FromSlice(m.Values()), nil
}

// MapsMerge2 implements maps:merge/2: left-biased union, erroring on the
// first bad map encountered (map1 checked before map2).
func (b *Builtins) MapsMerge2(args []term.Term) (term.Term, *exception.Exception) {
	m1, ok := asMap(args[0])
	if !ok {
		return term.Term{}, badmap(args[0])
	}
	m2, ok := asMap(args[1])
	if !ok {
		return term.Term{}, badmap(args[1])
	}
	return term.Box(m1.Union(m2)), nil
}

// MapsPut3 implements maps:put/3.
func (b *Builtins) MapsPut3(args []term.Term) (term.Term, *exception.Exception) {
	key, value, mapTerm := args[0], args[1], args[2]
	m, ok := asMap(mapTerm)
	if !ok {
		return term.Term{}, badmap(mapTerm)
	}
	return term.Box(m.Insert(key, value)), nil
}

// MapsRemove2 implements maps:remove/2.
func (b *Builtins) MapsRemove2(args []term.Term) (term.Term, *exception.Exception) {
	key, mapTerm := args[0], args[1]
	m, ok := asMap(mapTerm)
	if !ok {
		return term.Term{}, badmap(mapTerm)
	}
	return term.Box(m.Remove(key)), nil
}

// MapsUpdate3 implements maps:update/3: badkey if the key is absent.
func (b *Builtins) MapsUpdate3(args []term.Term) (term.Term, *exception.Exception) {
	key, value, mapTerm := args[0], args[1], args[2]
	m, ok := asMap(mapTerm)
	if !ok {
		return term.Term{}, badmap(mapTerm)
	}
	if !m.Contains(key) {
		return term.Term{}, badkey(key)
	}
	return term.Box(m.Insert(key, value)), nil
}

// MapsTake2 implements maps:take/2: {Value, NewMap} | error.
func (b *Builtins) MapsTake2(args []term.Term) (term.Term, *exception.Exception) {
	key, mapTerm := args[0], args[1]
	m, ok := asMap(mapTerm)
	if !ok {
		return term.Term{}, badmap(mapTerm)
	}
	v, newMap, found := m.Extract(key)
	if !found {
		return b.WK.ErrorAtom(), nil
	}
	return term.NewTuple(v, term.Box(newMap)), nil
}
