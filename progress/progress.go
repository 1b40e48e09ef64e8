package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the loop
// controller, the approval gate or the sweeper.  Fields are signed so a
// component can also decrement (e.g. a pending approval leaving the queue).
type Delta struct {
	TasksStarted      int
	TasksCompleted    int
	TasksFailed       int
	TasksPaused       int
	TasksResumed      int
	ApprovalsCreated  int
	ApprovalsExecuted int
	ApprovalsExpired  int
}

// Counters is the aggregated view of a tracker at one point in time.
type Counters struct {
	StartedAt time.Time

	TasksStarted      int
	TasksCompleted    int
	TasksFailed       int
	TasksPaused       int
	TasksResumed      int
	ApprovalsCreated  int
	ApprovalsExecuted int
	ApprovalsExpired  int
}

// Tracker keeps aggregated orchestration counters for one host session.  It
// is safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	counters Counters
	onChange func(Counters)
}

// Update applies the supplied delta.  A registered onChange callback is
// invoked with a copy of the updated counters outside the critical section so
// slow consumers (JSON encoding, I/O) never block the core.
func (t *Tracker) Update(d Delta) {
	if t == nil {
		return
	}

	t.mu.Lock()
	t.counters.TasksStarted += d.TasksStarted
	t.counters.TasksCompleted += d.TasksCompleted
	t.counters.TasksFailed += d.TasksFailed
	t.counters.TasksPaused += d.TasksPaused
	t.counters.TasksResumed += d.TasksResumed
	t.counters.ApprovalsCreated += d.ApprovalsCreated
	t.counters.ApprovalsExecuted += d.ApprovalsExecuted
	t.counters.ApprovalsExpired += d.ApprovalsExpired

	snapshot := t.counters
	cb := t.onChange
	t.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the current counters.
func (t *Tracker) Snapshot() Counters {
	if t == nil {
		return Counters{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters
}

// OnChange registers a callback invoked after every Update.  Passing nil
// disables the callback; only one callback can be active.
func (t *Tracker) OnChange(cb func(Counters)) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.onChange = cb
	t.mu.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and
// returns both.
func WithNewTracker(ctx context.Context, onChange func(Counters)) (context.Context, *Tracker) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Tracker{counters: Counters{StartedAt: time.Now()}, onChange: onChange}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx, if any.
func FromContext(ctx context.Context) (*Tracker, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Tracker)
	return tr, ok
}

// UpdateCtx looks up the tracker in ctx (if any) and applies the delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
