package approval

import (
	"time"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/internal/clock"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/internal/idgen"
)

// Status represents the lifecycle state of an approval request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
	StatusExecuted Status = "executed"
)

// IsTerminal reports whether the status admits no further transition.
// Approved is deliberately not terminal – an approved record still awaits
// execution.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusExpired || s == StatusExecuted
}

// DefaultExpiry is applied when the caller does not supply a deadline.
const DefaultExpiry = 24 * time.Hour

// Record represents a single sensitive-action request awaiting a human (or
// policy) decision.  The payload is an opaque key/value blob – its contents
// are meaningful only to the external executor that eventually dispatches the
// action.
type Record struct {
	ID            string                 `json:"id"`
	Category      string                 `json:"category"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	Status        Status                 `json:"status"`
	CorrelationID string                 `json:"correlationId,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	Error         string                 `json:"error,omitempty"`
	ClaimedBy     string                 `json:"claimedBy,omitempty"`
	ClaimedAt     *time.Time             `json:"claimedAt,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	ExpiresAt     time.Time              `json:"expiresAt"`
	DecidedAt     *time.Time             `json:"decidedAt,omitempty"`
	ExecutedAt    *time.Time             `json:"executedAt,omitempty"`
}

// New creates a pending approval record.  A non-positive expiry falls back to
// DefaultExpiry.
func New(category string, payload map[string]interface{}, expiry time.Duration, correlationID string) *Record {
	now := clock.Now()
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Record{
		ID:            idgen.New(),
		Category:      category,
		Payload:       payload,
		Status:        StatusPending,
		CorrelationID: correlationID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(expiry),
	}
}

// ExpiredAt reports whether the record's deadline has passed at the supplied
// reference time.
func (r *Record) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Approve records a positive decision.
func (r *Record) Approve(reason string) {
	now := clock.Now()
	r.Status = StatusApproved
	r.Reason = reason
	r.DecidedAt = &now
}

// Reject records a negative decision.
func (r *Record) Reject(reason string) {
	now := clock.Now()
	r.Status = StatusRejected
	r.Reason = reason
	r.DecidedAt = &now
}

// Expire transitions a stale pending record to its terminal expired state.
func (r *Record) Expire() {
	r.Status = StatusExpired
	r.Error = "approval expired before a decision was made"
}

// MarkExecuted records successful dispatch and releases the execution claim.
func (r *Record) MarkExecuted() {
	now := clock.Now()
	r.Status = StatusExecuted
	r.ExecutedAt = &now
	r.ClaimedBy = ""
	r.ClaimedAt = nil
}

// Claim stamps the record with the identity of the consumer about to dispatch
// it.  The marker is persisted so that a crash between claim and completion
// remains detectable.
func (r *Record) Claim(consumerID string) {
	now := clock.Now()
	r.ClaimedBy = consumerID
	r.ClaimedAt = &now
}

// ReleaseClaim clears the execution claim marker.
func (r *Record) ReleaseClaim() {
	r.ClaimedBy = ""
	r.ClaimedAt = nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Payload != nil {
		clone.Payload = make(map[string]interface{}, len(r.Payload))
		for k, v := range r.Payload {
			clone.Payload[k] = v
		}
	}
	if r.ClaimedAt != nil {
		t := *r.ClaimedAt
		clone.ClaimedAt = &t
	}
	if r.DecidedAt != nil {
		t := *r.DecidedAt
		clone.DecidedAt = &t
	}
	if r.ExecutedAt != nil {
		t := *r.ExecutedAt
		clone.ExecutedAt = &t
	}
	return &clone
}
