package registry

import "sync"

// ExportsTable is the process-wide MFA -> Export map, guarded by a
// sync.RWMutex: lookups (the hot path, happening on every call instruction)
// take the read lock, and only RegisterBif/RegisterFun take the write lock.
type ExportsTable struct {
	mu      sync.RWMutex
	exports map[MFA]*Export
}

// NewExportsTable returns an empty table.
func NewExportsTable() *ExportsTable {
	return &ExportsTable{exports: make(map[MFA]*Export)}
}

// RegisterBif installs a native BIF under mfa, always taking precedence:
// this is the entry point the bif package calls once per BIF at startup,
// before any modules are loaded.
func (t *ExportsTable) RegisterBif(mfa MFA, fn BifFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exports[mfa] = &Export{Kind: ExportBif, Bif: fn}
}

// RegisterFun installs a bytecode entry point under mfa, unless a BIF is
// already registered there: a BIF for the same MFA always wins over a
// module's own definition, since BIFs exist precisely to intercept calls a
// module would otherwise serve itself.
func (t *ExportsTable) RegisterFun(mfa MFA, entry Instr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.exports[mfa]; ok && existing.Kind == ExportBif {
		return
	}
	t.exports[mfa] = &Export{Kind: ExportFun, Fun: entry}
}

// Lookup resolves mfa, cloning the Export value out from under the lock so
// callers never hold a reference into the map's internals.
func (t *ExportsTable) Lookup(mfa MFA) (Export, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.exports[mfa]
	if !ok {
		return Export{}, false
	}
	return *e, true
}

// Len reports how many MFAs are currently registered.
func (t *ExportsTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.exports)
}
