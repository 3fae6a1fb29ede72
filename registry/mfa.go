// Package registry implements the module/exports registry: loading,
// BIF-override precedence, NIF patching, and module introspection.
package registry

import "github.com/AlephTX/enigma/term"

// MFA identifies a function by Module, Function, and Arity atoms.
type MFA struct {
	Module   term.AtomID
	Function term.AtomID
	Arity    uint32
}
