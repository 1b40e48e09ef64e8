package task

import (
	"time"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/internal/clock"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/internal/idgen"
)

// Status represents the current lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further state transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Strategy identifies the policy by which a caller decides a task has
// finished.  Detection itself happens outside the core – the strategy is
// recorded so that hosts know what signal to look for.
type Strategy string

const (
	// StrategyPromise – the agent promises to emit the completion token in
	// its output once the task is done.
	StrategyPromise Strategy = "promise"
	// StrategyArtifactMovement – an external artifact (e.g. a file) moving
	// to a "done" location marks completion.
	StrategyArtifactMovement Strategy = "artifact_movement"
)

// DefaultMaxIterations bounds a task when the caller does not specify a limit.
const DefaultMaxIterations = 10

// Record represents a single autonomous multi-step task.  The prompt and
// context blobs are opaque to the core – they are re-injected into the
// reasoning agent verbatim.
type Record struct {
	ID                 string     `json:"id"`
	Prompt             string     `json:"prompt"`
	Iteration          int        `json:"iteration"`
	MaxIterations      int        `json:"maxIterations"`
	Status             Status     `json:"status"`
	CompletionStrategy Strategy   `json:"completionStrategy"`
	CompletionToken    string     `json:"completionToken,omitempty"`
	Context            string     `json:"context,omitempty"`
	PendingApprovalID  string     `json:"pendingApprovalId,omitempty"`
	Summary            string     `json:"summary,omitempty"`
	Error              string     `json:"error,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

// New creates a task record already in progress at iteration 1.
func New(prompt string, strategy Strategy, token string, maxIterations int) *Record {
	now := clock.Now()
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Record{
		ID:                 idgen.New(),
		Prompt:             prompt,
		Iteration:          1,
		MaxIterations:      maxIterations,
		Status:             StatusInProgress,
		CompletionStrategy: strategy,
		CompletionToken:    token,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Pause marks the record as waiting for the supplied approval.
func (r *Record) Pause(approvalID string) {
	r.Status = StatusPaused
	r.PendingApprovalID = approvalID
	r.UpdatedAt = clock.Now()
}

// Resume puts a paused record back in progress and clears the approval link.
// A non-empty note is appended to the accumulated context so the agent sees
// what happened while it was suspended.
func (r *Record) Resume(note string) {
	r.Status = StatusInProgress
	r.PendingApprovalID = ""
	if note != "" {
		if r.Context != "" {
			r.Context += "\n"
		}
		r.Context += note
	}
	r.UpdatedAt = clock.Now()
}

// Complete transitions the record to its terminal completed state.
func (r *Record) Complete(summary string) {
	now := clock.Now()
	r.Status = StatusCompleted
	r.Summary = summary
	r.PendingApprovalID = ""
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// Fail transitions the record to its terminal failed state with a
// human-readable reason.
func (r *Record) Fail(reason string) {
	now := clock.Now()
	r.Status = StatusFailed
	r.Error = reason
	r.PendingApprovalID = ""
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// Clone returns a copy of the record so that the caller can mutate it without
// affecting the stored instance.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}
