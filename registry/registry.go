package registry

import (
	"sync"

	"github.com/AlephTX/enigma/term"
)

type slot struct {
	generation uint32
	module     *Module
}

// ModuleRegistry is the process-wide name -> Module table. It hands back
// ModuleRef{id, generation} handles instead of pointers: PurgeModule bumps
// the slot's generation, so any ModuleRef taken before the purge fails to
// resolve afterward instead of aliasing a reused or GC'd slot.
type ModuleRegistry struct {
	mu     sync.Mutex
	slots  []slot
	byName map[term.AtomID]uint32 // atom -> slot id
}

// NewModuleRegistry returns an empty registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{byName: make(map[term.AtomID]uint32)}
}

// Insert registers m under its own Name, replacing any previous module of
// the same name (whose outstanding ModuleRefs are invalidated by the
// generation bump on that slot, matching hot code reload semantics: old
// code keeps running on old refs, which now simply fail to resolve rather
// than crash).
func (r *ModuleRegistry) Insert(m *Module) ModuleRef {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[m.Name]; ok {
		r.slots[id].generation++
		r.slots[id].module = m
		return ModuleRef{id: id, generation: r.slots[id].generation}
	}

	id := uint32(len(r.slots))
	r.slots = append(r.slots, slot{generation: 1, module: m})
	r.byName[m.Name] = id
	return ModuleRef{id: id, generation: 1}
}

// Resolve returns the module behind ref, or false if ref is stale (the slot
// has since been purged or reloaded).
func (r *ModuleRegistry) Resolve(ref ModuleRef) (*Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(ref.id) >= len(r.slots) {
		return nil, false
	}
	s := r.slots[ref.id]
	if s.generation != ref.generation || s.module == nil {
		return nil, false
	}
	return s.module, true
}

// Lookup resolves a module by name.
func (r *ModuleRegistry) Lookup(name term.AtomID) (ModuleRef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[name]
	if !ok {
		return ModuleRef{}, false
	}
	return ModuleRef{id: id, generation: r.slots[id].generation}, true
}

// Purge unloads the module at ref, invalidating it and every other
// outstanding ModuleRef to the same slot. Reports false if ref was already
// stale. This is the registry-side half of erts_internal_purge_module/2;
// unlike a stub that always reports success, this core actually reclaims
// the slot.
func (r *ModuleRegistry) Purge(ref ModuleRef) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(ref.id) >= len(r.slots) {
		return false
	}
	s := &r.slots[ref.id]
	if s.generation != ref.generation {
		return false
	}
	name := s.module.Name
	s.module = nil
	s.generation++
	if r.byName[name] == ref.id {
		delete(r.byName, name)
	}
	return true
}
