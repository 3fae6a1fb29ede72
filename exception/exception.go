// Package exception implements the process-visible tier of this runtime's
// error model: a reason atom plus an arbitrary payload term, returned
// alongside a value rather than thrown. Runtime errors (surfaced as
// {error, Reason} tuples) and fatal assertions (a bare Go panic) are the
// other two tiers and don't need a dedicated type.
package exception

import "github.com/AlephTX/enigma/term"

// Reason names a standard exception class. BIFs raise these by value, never
// by formatted string, so callers can pattern-match the reason the way
// Erlang code matches on `{'EXIT', badarg}`.
type Reason string

const (
	Badarg         Reason = "badarg"
	Badarith       Reason = "badarith"
	Badmatch       Reason = "badmatch"
	Badmap         Reason = "badmap"
	Badkey         Reason = "badkey"
	Badfun         Reason = "badfun"
	CaseClause     Reason = "case_clause"
	FunctionClause Reason = "function_clause"
	Undef          Reason = "undef"
	Noproc         Reason = "noproc"
	SystemLimit    Reason = "system_limit"
	Error          Reason = "error"
	Throw          Reason = "throw"
	Exit           Reason = "exit"
)

// Exception is a process-visible error: a reason atom and an optional
// payload term giving the offending value (e.g. the non-map argument that
// triggered a badmap).
type Exception struct {
	Reason  Reason
	Payload term.Term
}

// New builds an Exception with no payload.
func New(reason Reason) *Exception {
	return &Exception{Reason: reason}
}

// WithPayload builds an Exception carrying the offending value.
func WithPayload(reason Reason, payload term.Term) *Exception {
	return &Exception{Reason: reason, Payload: payload}
}

func (e *Exception) Error() string {
	if e == nil {
		return "<nil exception>"
	}
	if e.Payload.IsNil() {
		return string(e.Reason)
	}
	return string(e.Reason) + ": " + e.Payload.String()
}

// Is reports whether e has the given reason, nil-safe so callers can write
// `exception.Is(err, exception.Badkey)` without a preceding nil check.
func Is(e *Exception, reason Reason) bool {
	return e != nil && e.Reason == reason
}
