package gate

import (
	"context"
	"time"
)

// Event envelope published for every approval lifecycle transition.
type Event struct {
	Topic   string            // see topic constants below
	Data    interface{}       // *approval.Record
	Headers map[string]string `json:"headers,omitempty"` // optional – tenant, correlation-id etc.
}

// Standard event topics.
const (
	TopicRequestCreated   = "request.created"
	TopicRequestUpdated   = "request.updated"
	TopicRequestExpired   = "request.expired"
	TopicRequestExecuted  = "request.executed"
	TopicDecisionCreated  = "decision.created"
	TopicExecutionFailure = "execution.failed"
)

// CreateInput describes a new approval request.  A zero Expiry applies the
// gate's default deadline; a negative Expiry is rejected.
type CreateInput struct {
	Category      string
	Payload       map[string]interface{}
	Expiry        time.Duration
	CorrelationID string
}

// Executor dispatches an approved action.  Implementations should be
// idempotent; otherwise they rely on the gate's single-consumer guarantee to
// prevent duplicate dispatch.
type Executor func(ctx context.Context, category string, payload map[string]interface{}) error

// TaskResolver is notified when an approval referenced by a task reaches a
// decided or terminal state.  The loop controller implements it; the
// indirection avoids a package cycle.
type TaskResolver interface {
	ResolveApprovalOutcome(ctx context.Context, taskID string) error
}
