package gate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/internal/clock"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/internal/idgen"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/approval"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/types"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/progress"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/messaging"
	qmem "github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/messaging/memory"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/tracing"
)

// DefaultClaimTTL bounds how long an execution claim is honoured before it is
// considered abandoned by a crashed consumer.
const DefaultClaimTTL = 5 * time.Minute

// Service is the approval gate.  It owns approval record lifecycle and the
// strictly sequential execution of approved actions; actual dispatch is
// delegated to the configured Executor callback.
type Service struct {
	approvalDao   dao.Service[string, approval.Record]
	events        messaging.Queue[Event]
	resolver      TaskResolver
	executor      Executor
	defaultExpiry time.Duration
	claimTTL      time.Duration
	consumerID    string

	// serialises ExecuteNext within this process; the persisted claim marker
	// guards against other processes sharing the same store.
	execMu sync.Mutex
}

// New creates an approval gate backed by the supplied DAO.
func New(approvalDao dao.Service[string, approval.Record], options ...Option) *Service {
	ret := &Service{
		approvalDao:   approvalDao,
		defaultExpiry: approval.DefaultExpiry,
		claimTTL:      DefaultClaimTTL,
		consumerID:    idgen.New(),
	}
	for _, option := range options {
		option(ret)
	}
	if ret.events == nil {
		ret.events = qmem.NewQueue[Event](qmem.DefaultConfig())
	}
	return ret
}

// Queue exposes the event fan-out queue for in-process listeners.
func (s *Service) Queue() messaging.Queue[Event] { return s.events }

// Create registers a new pending approval request.  The record is durably
// visible before Create returns.
func (s *Service) Create(ctx context.Context, input *CreateInput) (*approval.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "gate.create", "INTERNAL")
	record, err := s.create(ctx, input)
	tracing.EndSpan(span, err)
	return record, err
}

func (s *Service) create(ctx context.Context, input *CreateInput) (*approval.Record, error) {
	if input == nil {
		return nil, types.NewInvalidArgumentError("input was nil")
	}
	if input.Category == "" {
		return nil, types.NewInvalidArgumentError("category cannot be empty")
	}
	if input.Expiry < 0 {
		return nil, types.NewInvalidArgumentError("expiry cannot be negative")
	}
	expiry := input.Expiry
	if expiry == 0 {
		expiry = s.defaultExpiry
	}
	record := approval.New(input.Category, input.Payload, expiry, input.CorrelationID)
	if err := s.approvalDao.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist approval: %w", err)
	}
	s.publish(ctx, TopicRequestCreated, record)
	progress.UpdateCtx(ctx, progress.Delta{ApprovalsCreated: 1})
	return record, nil
}

// ListPending returns all pending approvals in arrival order.
func (s *Service) ListPending(ctx context.Context) ([]*approval.Record, error) {
	return s.list(ctx, dao.NewParameter("Status", string(approval.StatusPending)))
}

// ListByStatus returns all approvals with the given status in arrival order.
func (s *Service) ListByStatus(ctx context.Context, status approval.Status) ([]*approval.Record, error) {
	return s.list(ctx, dao.NewParameter("Status", string(status)))
}

// ListByCategory returns all approvals with the given category label in
// arrival order.  The gate routes by category but attaches no behaviour to
// it.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]*approval.Record, error) {
	return s.list(ctx, dao.NewParameter("Category", category))
}

func (s *Service) list(ctx context.Context, parameters ...*dao.Parameter) ([]*approval.Record, error) {
	records, err := s.approvalDao.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// Decide records a human (or policy) decision on a pending approval.  An
// approval past its deadline cannot be decided – expiration is resolved only
// through the sweep path so the record keeps a single source of truth for why
// it left the pending state.
func (s *Service) Decide(ctx context.Context, id string, approved bool, reason string) (*approval.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "gate.decide", "INTERNAL")
	record, err := s.decide(ctx, id, approved, reason)
	tracing.EndSpan(span, err)
	return record, err
}

func (s *Service) decide(ctx context.Context, id string, approved bool, reason string) (*approval.Record, error) {
	if id == "" {
		return nil, types.NewInvalidArgumentError("approval id cannot be empty")
	}
	record, err := s.approvalDao.Load(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, types.NewNotFoundError("approval", id)
		}
		return nil, err
	}
	if record.Status != approval.StatusPending {
		return nil, types.NewInvalidStateError(fmt.Sprintf("approval %s is %s, expected pending", id, record.Status))
	}
	if record.ExpiredAt(clock.Now()) {
		return nil, fmt.Errorf("approval %s: %w", id, types.ErrAlreadyExpired)
	}

	if approved {
		record.Approve(reason)
	} else {
		record.Reject(reason)
	}
	if err = s.approvalDao.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist decision for approval %s: %w", id, err)
	}
	s.publish(ctx, TopicDecisionCreated, record)

	// The decision is durable before the correlated task is touched so a
	// crash here is recoverable by the sweeper's recovery pass.
	if record.CorrelationID != "" && s.resolver != nil {
		if err = s.resolver.ResolveApprovalOutcome(ctx, record.CorrelationID); err != nil {
			return record, err
		}
	}
	return record, nil
}

// ExecuteNext examines approved records in ascending creation order and
// dispatches at most one.  The approved set is a single-consumer queue: the
// next record is never started before its predecessor reached executed or
// recorded a terminal execution error, and a record that failed blocks the
// queue until an operator intervenes.
//
// It returns (nil, nil) when there is nothing to execute or the head of the
// queue is claimed by another live consumer.
func (s *Service) ExecuteNext(ctx context.Context) (*approval.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "gate.executeNext", "INTERNAL")
	record, err := s.executeNext(ctx)
	tracing.EndSpan(span, err)
	return record, err
}

func (s *Service) executeNext(ctx context.Context) (*approval.Record, error) {
	if s.executor == nil {
		return nil, ErrNoExecutor
	}

	s.execMu.Lock()
	defer s.execMu.Unlock()

	approved, err := s.ListByStatus(ctx, approval.StatusApproved)
	if err != nil {
		return nil, err
	}
	if len(approved) == 0 {
		return nil, nil
	}
	head := approved[0]
	if head.Error != "" {
		return head, fmt.Errorf("approval %s: %w", head.ID, ErrQueueBlocked)
	}

	now := clock.Now()
	if head.ClaimedBy != "" && head.ClaimedBy != s.consumerID &&
		head.ClaimedAt != nil && now.Sub(*head.ClaimedAt) < s.claimTTL {
		// another consumer is dispatching this record
		return nil, nil
	}

	// Persist the claim before dispatching so a restart between claim and
	// completion is visible; re-read to confirm the claim won.
	head.Claim(s.consumerID)
	if err = s.approvalDao.Save(ctx, head); err != nil {
		return nil, fmt.Errorf("failed to claim approval %s: %w", head.ID, err)
	}
	head, err = s.approvalDao.Load(ctx, head.ID)
	if err != nil {
		return nil, err
	}
	if head.ClaimedBy != s.consumerID {
		return nil, nil
	}

	if execErr := s.executor(ctx, head.Category, head.Payload); execErr != nil {
		head.Error = execErr.Error()
		head.ReleaseClaim()
		if err = s.approvalDao.Save(ctx, head); err != nil {
			return head, fmt.Errorf("failed to record execution error for approval %s: %w", head.ID, err)
		}
		s.publish(ctx, TopicExecutionFailure, head)
		return head, fmt.Errorf("approval %s dispatch: %v: %w", head.ID, execErr, types.ErrExecution)
	}

	head.MarkExecuted()
	if err = s.approvalDao.Save(ctx, head); err != nil {
		return head, fmt.Errorf("failed to persist execution of approval %s: %w", head.ID, err)
	}
	s.publish(ctx, TopicRequestExecuted, head)
	progress.UpdateCtx(ctx, progress.Delta{ApprovalsExecuted: 1})

	if head.CorrelationID != "" && s.resolver != nil {
		if err = s.resolver.ResolveApprovalOutcome(ctx, head.CorrelationID); err != nil {
			return head, err
		}
	}
	return head, nil
}

// SweepExpired transitions every pending approval past its deadline to
// expired and resolves any correlated task.  Running it twice with the same
// reference time has no additional effect.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) ([]*approval.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "gate.sweepExpired", "INTERNAL")
	expired, err := s.sweepExpired(ctx, now)
	tracing.EndSpan(span, err)
	return expired, err
}

func (s *Service) sweepExpired(ctx context.Context, now time.Time) ([]*approval.Record, error) {
	pending, err := s.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	var expired []*approval.Record
	for _, record := range pending {
		if !record.ExpiredAt(now) {
			continue
		}
		record.Expire()
		if err = s.approvalDao.Save(ctx, record); err != nil {
			return expired, fmt.Errorf("failed to expire approval %s: %w", record.ID, err)
		}
		s.publish(ctx, TopicRequestExpired, record)
		progress.UpdateCtx(ctx, progress.Delta{ApprovalsExpired: 1})

		if record.CorrelationID != "" && s.resolver != nil {
			if err = s.resolver.ResolveApprovalOutcome(ctx, record.CorrelationID); err != nil {
				return expired, err
			}
		}
		expired = append(expired, record)
	}
	return expired, nil
}

// Release clears a recorded execution error (and any stale claim) from an
// approved record so an operator can request a fresh dispatch attempt.  It is
// the manual-intervention path for a blocked queue and never resurrects
// terminal records.
func (s *Service) Release(ctx context.Context, id string) (*approval.Record, error) {
	if id == "" {
		return nil, types.NewInvalidArgumentError("approval id cannot be empty")
	}
	record, err := s.approvalDao.Load(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, types.NewNotFoundError("approval", id)
		}
		return nil, err
	}
	if record.Status != approval.StatusApproved {
		return nil, types.NewInvalidStateError(fmt.Sprintf("approval %s is %s, expected approved", id, record.Status))
	}
	if record.Error == "" {
		return nil, types.NewInvalidStateError(fmt.Sprintf("approval %s has no recorded execution error", id))
	}
	record.Error = ""
	record.ReleaseClaim()
	if err = s.approvalDao.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to release approval %s: %w", id, err)
	}
	s.publish(ctx, TopicRequestUpdated, record)
	return record, nil
}

func (s *Service) publish(ctx context.Context, topic string, record *approval.Record) {
	_ = s.events.Publish(ctx, &Event{Topic: topic, Data: record.Clone()})
}
