package bif_test

import (
	"sync"
	"testing"
	"time"

	"github.com/AlephTX/enigma/exception"
	"github.com/AlephTX/enigma/term"
)

func TestSendAfter3SchedulesDelivery(t *testing.T) {
	b, _ := newBuiltins(t, nil)

	var mu sync.Mutex
	var delivered term.Term
	var deliveredPid term.PidID
	done := make(chan struct{})
	b.Timers.SetDeliver(func(from term.Term, to term.PidID, msg term.Term) {
		mu.Lock()
		delivered = msg
		deliveredPid = to
		mu.Unlock()
		close(done)
	})

	ref, err := call(t, b, "erts_internal", "send_after", 3, []term.Term{
		term.SmallInt(1), term.Pid(42), term.Atom(7),
	})
	if err != nil {
		t.Fatalf("send_after/3 failed: %v", err)
	}
	if !ref.Is(term.TagReference) {
		t.Fatalf("send_after/3 should return a boxed Reference, got %v", ref)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire within 2s")
	}

	mu.Lock()
	defer mu.Unlock()
	if pid, ok := delivered.AsAtom(); !ok || pid != 7 {
		t.Fatalf("delivered message = %v, want atom(7)", delivered)
	}
	if deliveredPid != 42 {
		t.Fatalf("delivered pid = %v, want 42", deliveredPid)
	}
}

func TestSendAfter3RejectsNegativeDelay(t *testing.T) {
	b, _ := newBuiltins(t, nil)
	_, err := call(t, b, "erts_internal", "send_after", 3, []term.Term{
		term.SmallInt(-1), term.Pid(1), term.Atom(1),
	})
	if !exception.Is(asExc(err), exception.Badarg) {
		t.Fatalf("send_after/3 with a negative delay should raise badarg, got %v", err)
	}
}

func TestSendAfter3RejectsNonPid(t *testing.T) {
	b, _ := newBuiltins(t, nil)
	_, err := call(t, b, "erts_internal", "send_after", 3, []term.Term{
		term.SmallInt(1), term.SmallInt(1), term.Atom(1),
	})
	if !exception.Is(asExc(err), exception.Badarg) {
		t.Fatalf("send_after/3 with a non-pid target should raise badarg, got %v", err)
	}
}

func TestSendAfter3EachCallGetsADistinctReference(t *testing.T) {
	b, _ := newBuiltins(t, nil)
	b.Timers.SetDeliver(func(term.Term, term.PidID, term.Term) {})

	r1, _ := call(t, b, "erts_internal", "send_after", 3, []term.Term{term.SmallInt(0), term.Pid(1), term.Atom(1)})
	r2, _ := call(t, b, "erts_internal", "send_after", 3, []term.Term{term.SmallInt(0), term.Pid(1), term.Atom(1)})
	if term.Equal(r1, r2) {
		t.Fatal("two send_after calls must hand back distinct references")
	}
}
