// Package bif implements the BIF surface: binary, map, loader, timer, and
// dtrace built-ins callable from bytecode through the exports table.
package bif

import (
	"github.com/AlephTX/enigma/exception"
	"github.com/AlephTX/enigma/registry"
	"github.com/AlephTX/enigma/term"
)

// Fn is the shape every BIF in this package implements: it returns a
// process-visible Exception rather than a bare Go error.
type Fn func(args []term.Term) (term.Term, *exception.Exception)

// adapt wraps an Fn as a registry.BifFunc, converting a nil *Exception into
// a true nil error — returning a typed nil pointer through an `error`
// interface would make callers' `err != nil` checks misfire.
func adapt(fn Fn) registry.BifFunc {
	return func(args []term.Term) (term.Term, error) {
		v, exc := fn(args)
		if exc == nil {
			return v, nil
		}
		return v, exc
	}
}

func badarg() *exception.Exception { return exception.New(exception.Badarg) }

func badargWith(payload term.Term) *exception.Exception {
	return exception.WithPayload(exception.Badarg, payload)
}
