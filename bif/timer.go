package bif

import (
	"sync"
	"time"

	"github.com/AlephTX/enigma/exception"
	"github.com/AlephTX/enigma/term"
)

// DeliverFunc is how a Timers instance hands a deferred message off once its
// delay expires. The scheduler/message-queue implementation (out of this
// core's scope) supplies this; Timers only owns the "when" side of
// send_after, not delivery itself.
type DeliverFunc func(from term.Term, to term.PidID, msg term.Term)

// Timers implements the send_after contract on top of time.AfterFunc — the
// idiomatic Go analogue of a Tokio delay future: no third-party
// delayed-execution library appears anywhere in the retrieved corpus, so
// this BIF is grounded on the standard library rather than an ecosystem
// package, as is bitstring.Pattern's use of regexp (see DESIGN.md).
type Timers struct {
	mu      sync.Mutex
	nextRef uint64
	deliver DeliverFunc
}

// NewTimers returns a Timers with no delivery hook wired; SetDeliver must be
// called before any armed timer fires, matching how a real runtime wires
// its message-queue after constructing the BIF table but before scheduling
// any process.
func NewTimers() *Timers {
	return &Timers{}
}

// SetDeliver installs the callback used to hand off expired timers.
func (t *Timers) SetDeliver(fn DeliverFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deliver = fn
}

// nextReference hands out a fresh monotonically increasing reference id.
func (t *Timers) nextReference() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextRef++
	return t.nextRef
}

// SendAfter schedules msg for delivery to pid after delay, returning a fresh
// reference term. Cancellation (cancel_timer) is a separate BIF and out of
// scope here.
func (t *Timers) SendAfter(from term.Term, delay time.Duration, pid term.PidID, msg term.Term) term.Term {
	ref := t.nextReference()
	time.AfterFunc(delay, func() {
		t.mu.Lock()
		deliver := t.deliver
		t.mu.Unlock()
		if deliver != nil {
			deliver(from, pid, msg)
		}
	})
	return term.NewReference(ref)
}

// SendAfter3 implements send_after/3: schedule msg for delivery to pid after
// delay_ms milliseconds, returning a fresh reference term. The calling
// process's own pid (the "from" of the eventual send) would normally come
// from the current process context; this core has no process-context
// parameter to close over, since the scheduler/process machinery lives
// outside it.
func (b *Builtins) SendAfter3(args []term.Term) (term.Term, *exception.Exception) {
	delay, ok := args[0].AsSmallInt()
	if !ok || delay < 0 {
		return term.Term{}, badarg()
	}
	pid, ok := args[1].AsPid()
	if !ok {
		return term.Term{}, badarg()
	}
	msg := args[2]
	ref := b.Timers.SendAfter(term.Term{}, time.Duration(delay)*time.Millisecond, pid, msg)
	return ref, nil
}
