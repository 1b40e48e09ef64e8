package loop

import (
	"context"
	"errors"
	"fmt"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/internal/clock"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/approval"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/task"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/types"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/progress"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/tracing"
)

// StartInput describes a new autonomous task.
type StartInput struct {
	Prompt             string
	CompletionStrategy task.Strategy
	CompletionToken    string
	MaxIterations      int
}

// Service owns task record lifecycle.  It deliberately supports arbitrarily
// many concurrent tasks – a "single active session" policy, if wanted, is the
// caller's to enforce.
type Service struct {
	taskDao     dao.Service[string, task.Record]
	approvalDao dao.Service[string, approval.Record]
	maxDefault  int
}

// New creates a loop controller over the supplied stores.
func New(taskDao dao.Service[string, task.Record], approvalDao dao.Service[string, approval.Record], options ...Option) *Service {
	ret := &Service{
		taskDao:     taskDao,
		approvalDao: approvalDao,
		maxDefault:  task.DefaultMaxIterations,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Start creates a new task record, already in progress at iteration 1.  The
// record is durably visible before Start returns.
func (s *Service) Start(ctx context.Context, input *StartInput) (*task.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "loop.start", "INTERNAL")
	record, err := s.start(ctx, input)
	tracing.EndSpan(span, err)
	return record, err
}

func (s *Service) start(ctx context.Context, input *StartInput) (*task.Record, error) {
	if input == nil {
		return nil, types.NewInvalidArgumentError("input was nil")
	}
	if input.Prompt == "" {
		return nil, types.NewInvalidArgumentError("prompt cannot be empty")
	}
	switch input.CompletionStrategy {
	case task.StrategyPromise:
		if input.CompletionToken == "" {
			return nil, types.NewInvalidArgumentError("promise strategy requires a completion token")
		}
	case task.StrategyArtifactMovement:
	default:
		return nil, types.NewInvalidArgumentError(fmt.Sprintf("unknown completion strategy %q", input.CompletionStrategy))
	}
	maxIterations := input.MaxIterations
	if maxIterations <= 0 {
		maxIterations = s.maxDefault
	}

	record := task.New(input.Prompt, input.CompletionStrategy, input.CompletionToken, maxIterations)
	if err := s.taskDao.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}
	progress.UpdateCtx(ctx, progress.Delta{TasksStarted: 1})
	return record, nil
}

// Advance records one reasoning-agent turn: it increments the iteration and
// replaces the accumulated context.  An increment that would exceed the
// iteration bound is rejected and the task fails atomically – the iteration
// counter is never silently clamped.
func (s *Service) Advance(ctx context.Context, id, newContext string) (*task.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "loop.advance", "INTERNAL")
	record, err := s.advance(ctx, id, newContext)
	tracing.EndSpan(span, err)
	return record, err
}

func (s *Service) advance(ctx context.Context, id, newContext string) (*task.Record, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != task.StatusInProgress {
		return nil, types.NewInvalidStateError(fmt.Sprintf("task %s is %s, expected in_progress", id, record.Status))
	}
	if record.Iteration >= record.MaxIterations {
		record.Fail(fmt.Sprintf("max iterations exceeded: %d of %d used", record.Iteration, record.MaxIterations))
		if err = s.taskDao.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to persist task %s failure: %w", id, err)
		}
		progress.UpdateCtx(ctx, progress.Delta{TasksFailed: 1})
		return record, fmt.Errorf("task %s: %w", id, types.ErrMaxIterationsExceeded)
	}

	record.Iteration++
	record.Context = newContext
	record.UpdatedAt = clock.Now()
	if err = s.taskDao.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist task %s: %w", id, err)
	}
	return record, nil
}

// RequestApproval pauses an in-progress task against a pending approval.
// Once paused the suspension hook reports allow-exit on the very next check.
func (s *Service) RequestApproval(ctx context.Context, taskID, approvalID string) (*task.Record, error) {
	ctx, span := tracing.StartSpan(ctx, "loop.requestApproval", "INTERNAL")
	record, err := s.requestApproval(ctx, taskID, approvalID)
	tracing.EndSpan(span, err)
	return record, err
}

func (s *Service) requestApproval(ctx context.Context, taskID, approvalID string) (*task.Record, error) {
	if approvalID == "" {
		return nil, types.NewInvalidArgumentError("approval id cannot be empty")
	}
	record, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if record.Status != task.StatusInProgress {
		return nil, types.NewInvalidStateError(fmt.Sprintf("task %s is %s, expected in_progress", taskID, record.Status))
	}

	request, err := s.approvalDao.Load(ctx, approvalID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, types.NewNotFoundError("approval", approvalID)
		}
		return nil, err
	}
	if request.Status != approval.StatusPending {
		return nil, types.NewInvalidStateError(fmt.Sprintf("approval %s is %s, expected pending", approvalID, request.Status))
	}
	if request.CorrelationID != "" && request.CorrelationID != taskID {
		return nil, types.NewInvalidArgumentError(fmt.Sprintf("approval %s is correlated to %s, not %s", approvalID, request.CorrelationID, taskID))
	}

	record.Pause(approvalID)
	if err = s.taskDao.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist task %s pause: %w", taskID, err)
	}
	progress.UpdateCtx(ctx, progress.Delta{TasksPaused: 1})
	return record, nil
}

// ResolveApprovalOutcome finishes a pause once the referenced approval has
// been decided: approved or executed resumes the task, rejected or expired
// fails it.  The call is idempotent – re-delivery against an already resolved
// or terminal task is a no-op.
func (s *Service) ResolveApprovalOutcome(ctx context.Context, taskID string) error {
	ctx, span := tracing.StartSpan(ctx, "loop.resolveApprovalOutcome", "INTERNAL")
	err := s.resolveApprovalOutcome(ctx, taskID)
	tracing.EndSpan(span, err)
	return err
}

func (s *Service) resolveApprovalOutcome(ctx context.Context, taskID string) error {
	record, err := s.load(ctx, taskID)
	if err != nil {
		return err
	}
	if record.Status.IsTerminal() {
		return nil
	}
	if record.Status != task.StatusPaused || record.PendingApprovalID == "" {
		// already resumed by a previous delivery
		return nil
	}

	request, err := s.approvalDao.Load(ctx, record.PendingApprovalID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			record.Fail(fmt.Sprintf("approval %s no longer exists", record.PendingApprovalID))
			if saveErr := s.taskDao.Save(ctx, record); saveErr != nil {
				return saveErr
			}
			progress.UpdateCtx(ctx, progress.Delta{TasksFailed: 1})
			return nil
		}
		return err
	}

	switch request.Status {
	case approval.StatusApproved, approval.StatusExecuted:
		record.Resume(fmt.Sprintf("approval %s (%s) was granted", request.ID, request.Category))
		progress.UpdateCtx(ctx, progress.Delta{TasksResumed: 1})
	case approval.StatusRejected:
		record.Fail(fmt.Sprintf("approval %s (%s) was rejected: %s", request.ID, request.Category, request.Reason))
		progress.UpdateCtx(ctx, progress.Delta{TasksFailed: 1})
	case approval.StatusExpired:
		record.Fail(fmt.Sprintf("approval %s (%s) expired before a decision was made", request.ID, request.Category))
		progress.UpdateCtx(ctx, progress.Delta{TasksFailed: 1})
	default:
		return types.NewInvalidStateError(fmt.Sprintf("approval %s is still pending", request.ID))
	}

	if err = s.taskDao.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to persist task %s resolution: %w", taskID, err)
	}
	return nil
}

// Complete transitions a task to its terminal completed state.  Calling it on
// an already terminal task is a no-op so callers with at-least-once delivery
// can retry safely.
func (s *Service) Complete(ctx context.Context, id, summary string) (*task.Record, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status.IsTerminal() {
		return record, nil
	}
	record.Complete(summary)
	if err = s.taskDao.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist task %s completion: %w", id, err)
	}
	progress.UpdateCtx(ctx, progress.Delta{TasksCompleted: 1})
	return record, nil
}

// Fail transitions a task to its terminal failed state; also idempotent on
// terminal records.
func (s *Service) Fail(ctx context.Context, id, reason string) (*task.Record, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status.IsTerminal() {
		return record, nil
	}
	record.Fail(reason)
	if err = s.taskDao.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist task %s failure: %w", id, err)
	}
	progress.UpdateCtx(ctx, progress.Delta{TasksFailed: 1})
	return record, nil
}

// Lookup returns the current state of a task.
func (s *Service) Lookup(ctx context.Context, id string) (*task.Record, error) {
	return s.load(ctx, id)
}

// List returns task records, optionally filtered.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*task.Record, error) {
	return s.taskDao.List(ctx, parameters...)
}

// Recover finishes interrupted approval resolutions: it finds paused tasks
// whose referenced approval has already been decided or reached a terminal
// state and replays the resume/fail transition.  The approval's state is
// always committed before the task's, so this pass makes the cross-record
// coupling safe to resume after a crash.
func (s *Service) Recover(ctx context.Context) ([]*task.Record, error) {
	paused, err := s.taskDao.List(ctx, dao.NewParameter("Status", string(task.StatusPaused)))
	if err != nil {
		return nil, err
	}
	var recovered []*task.Record
	for _, record := range paused {
		if record.PendingApprovalID == "" {
			continue
		}
		request, err := s.approvalDao.Load(ctx, record.PendingApprovalID)
		if err != nil && !errors.Is(err, dao.ErrNotFound) {
			return recovered, err
		}
		if request != nil && request.Status == approval.StatusPending {
			continue // legitimately waiting
		}
		if err = s.resolveApprovalOutcome(ctx, record.ID); err != nil {
			return recovered, err
		}
		resolved, err := s.load(ctx, record.ID)
		if err != nil {
			return recovered, err
		}
		recovered = append(recovered, resolved)
	}
	return recovered, nil
}

func (s *Service) load(ctx context.Context, id string) (*task.Record, error) {
	if id == "" {
		return nil, types.NewInvalidArgumentError("task id cannot be empty")
	}
	record, err := s.taskDao.Load(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return nil, types.NewNotFoundError("task", id)
		}
		return nil, err
	}
	return record, nil
}
