package exception_test

import (
	"errors"
	"testing"

	"github.com/AlephTX/enigma/exception"
	"github.com/AlephTX/enigma/term"
)

func TestNewHasNoPayload(t *testing.T) {
	e := exception.New(exception.Badarg)
	if e.Reason != exception.Badarg {
		t.Fatalf("Reason = %v, want %v", e.Reason, exception.Badarg)
	}
	if !e.Payload.IsNil() {
		t.Fatalf("New should leave Payload as the zero Term, got %v", e.Payload)
	}
}

func TestWithPayload(t *testing.T) {
	e := exception.WithPayload(exception.Badkey, term.SmallInt(42))
	if e.Reason != exception.Badkey {
		t.Fatalf("Reason = %v, want %v", e.Reason, exception.Badkey)
	}
	v, ok := e.Payload.AsSmallInt()
	if !ok || v != 42 {
		t.Fatalf("Payload = %v, %v", v, ok)
	}
}

func TestErrorStringFormat(t *testing.T) {
	bare := exception.New(exception.Undef)
	if bare.Error() != "undef" {
		t.Fatalf("Error() = %q, want %q", bare.Error(), "undef")
	}
	withPayload := exception.WithPayload(exception.Badarg, term.SmallInt(7))
	if got, want := withPayload.Error(), "badarg: 7"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestErrorNilSafe(t *testing.T) {
	var e *exception.Exception
	if e.Error() != "<nil exception>" {
		t.Fatalf("Error() on a nil *Exception = %q", e.Error())
	}
}

func TestIsNilSafe(t *testing.T) {
	var e *exception.Exception
	if exception.Is(e, exception.Badarg) {
		t.Fatal("Is must report false for a nil *Exception, not panic")
	}
}

func TestIsMatchesReason(t *testing.T) {
	e := exception.New(exception.FunctionClause)
	if !exception.Is(e, exception.FunctionClause) {
		t.Fatal("Is must match the exception's own reason")
	}
	if exception.Is(e, exception.CaseClause) {
		t.Fatal("Is must not match a different reason")
	}
}

func TestExceptionSatisfiesErrorInterface(t *testing.T) {
	var err error = exception.New(exception.SystemLimit)
	var target *exception.Exception
	if !errors.As(err, &target) {
		t.Fatal("*exception.Exception must be recoverable via errors.As")
	}
	if target.Reason != exception.SystemLimit {
		t.Fatalf("Reason = %v, want %v", target.Reason, exception.SystemLimit)
	}
}

func TestAllSpecReasonsAreDistinct(t *testing.T) {
	reasons := []exception.Reason{
		exception.Badarg, exception.Badarith, exception.Badmatch, exception.Badmap,
		exception.Badkey, exception.Badfun, exception.CaseClause, exception.FunctionClause,
		exception.Undef, exception.Noproc, exception.SystemLimit, exception.Error,
		exception.Throw, exception.Exit,
	}
	seen := make(map[exception.Reason]bool, len(reasons))
	for _, r := range reasons {
		if seen[r] {
			t.Fatalf("duplicate reason value %q", r)
		}
		seen[r] = true
	}
}
