package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/internal/clock"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/approval"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/types"
	approvalmem "github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/approval/memory"
)

func TestCreateValidation(t *testing.T) {
	srv := New(approvalmem.New())
	ctx := context.Background()

	_, err := srv.Create(ctx, nil)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = srv.Create(ctx, &CreateInput{Payload: map[string]interface{}{"k": "v"}})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = srv.Create(ctx, &CreateInput{Category: "send_email", Expiry: -time.Hour})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestCreateDefaultsExpiry(t *testing.T) {
	srv := New(approvalmem.New(), WithDefaultExpiry(2*time.Hour))
	ctx := context.Background()

	record, err := srv.Create(ctx, &CreateInput{Category: "send_email"})
	assert.NoError(t, err)
	assert.Equal(t, approval.StatusPending, record.Status)
	assert.Equal(t, record.CreatedAt.Add(2*time.Hour), record.ExpiresAt)
}

func TestDecide(t *testing.T) {
	srv := New(approvalmem.New())
	ctx := context.Background()

	record, err := srv.Create(ctx, &CreateInput{Category: "send_email", Expiry: time.Hour})
	assert.NoError(t, err)

	decided, err := srv.Decide(ctx, record.ID, false, "not today")
	assert.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, decided.Status)
	assert.Equal(t, "not today", decided.Reason)

	// terminal records cannot be re-decided
	_, err = srv.Decide(ctx, record.ID, true, "changed my mind")
	assert.ErrorIs(t, err, types.ErrInvalidState)

	_, err = srv.Decide(ctx, "missing", true, "")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDecideRejectsExpired(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return base }
	defer func() { clock.NowFunc = time.Now }()

	srv := New(approvalmem.New())
	ctx := context.Background()

	record, err := srv.Create(ctx, &CreateInput{Category: "send_email", Expiry: time.Minute})
	assert.NoError(t, err)

	clock.NowFunc = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = srv.Decide(ctx, record.ID, true, "too late")
	assert.ErrorIs(t, err, types.ErrAlreadyExpired)

	// the record stays pending until a sweep resolves it
	pending, err := srv.ListPending(ctx)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestExecuteNextRequiresExecutor(t *testing.T) {
	srv := New(approvalmem.New())
	_, err := srv.ExecuteNext(context.Background())
	assert.ErrorIs(t, err, ErrNoExecutor)
}

func TestExecuteNextOrdering(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	current := base
	clock.NowFunc = func() time.Time { return current }
	defer func() { clock.NowFunc = time.Now }()

	var executed []string
	srv := New(approvalmem.New(), WithExecutor(func(ctx context.Context, category string, payload map[string]interface{}) error {
		executed = append(executed, payload["name"].(string))
		return nil
	}))
	ctx := context.Background()

	first, err := srv.Create(ctx, &CreateInput{Category: "send_email", Payload: map[string]interface{}{"name": "first"}, Expiry: time.Hour})
	assert.NoError(t, err)
	current = base.Add(time.Second)
	second, err := srv.Create(ctx, &CreateInput{Category: "send_email", Payload: map[string]interface{}{"name": "second"}, Expiry: time.Hour})
	assert.NoError(t, err)

	// approve out of arrival order; execution still follows arrival order
	_, err = srv.Decide(ctx, second.ID, true, "")
	assert.NoError(t, err)
	_, err = srv.Decide(ctx, first.ID, true, "")
	assert.NoError(t, err)

	done, err := srv.ExecuteNext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, done.ID)
	assert.Equal(t, approval.StatusExecuted, done.Status)

	done, err = srv.ExecuteNext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, second.ID, done.ID)

	assert.Equal(t, []string{"first", "second"}, executed)

	// queue drained
	done, err = srv.ExecuteNext(ctx)
	assert.NoError(t, err)
	assert.Nil(t, done)
}

func TestExecutionFailureBlocksQueue(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	current := base
	clock.NowFunc = func() time.Time { return current }
	defer func() { clock.NowFunc = time.Now }()

	attempts := 0
	srv := New(approvalmem.New(), WithExecutor(func(ctx context.Context, category string, payload map[string]interface{}) error {
		attempts++
		if attempts == 1 {
			return errors.New("smtp unreachable")
		}
		return nil
	}))
	ctx := context.Background()

	first, err := srv.Create(ctx, &CreateInput{Category: "send_email", Expiry: time.Hour})
	assert.NoError(t, err)
	current = base.Add(time.Second)
	second, err := srv.Create(ctx, &CreateInput{Category: "post_message", Expiry: time.Hour})
	assert.NoError(t, err)

	_, err = srv.Decide(ctx, first.ID, true, "")
	assert.NoError(t, err)
	_, err = srv.Decide(ctx, second.ID, true, "")
	assert.NoError(t, err)

	failed, err := srv.ExecuteNext(ctx)
	assert.ErrorIs(t, err, types.ErrExecution)
	assert.Equal(t, first.ID, failed.ID)
	assert.Equal(t, approval.StatusApproved, failed.Status)
	assert.Equal(t, "smtp unreachable", failed.Error)

	// the stuck head blocks the second record
	_, err = srv.ExecuteNext(ctx)
	assert.ErrorIs(t, err, ErrQueueBlocked)
	assert.Equal(t, 1, attempts)

	// manual release re-enables dispatch
	released, err := srv.Release(ctx, first.ID)
	assert.NoError(t, err)
	assert.Empty(t, released.Error)

	done, err := srv.ExecuteNext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, done.ID)
	assert.Equal(t, approval.StatusExecuted, done.Status)

	done, err = srv.ExecuteNext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, second.ID, done.ID)
}

func TestExecuteNextSkipsForeignClaim(t *testing.T) {
	approvalDao := approvalmem.New()
	srv := New(approvalDao, WithExecutor(func(ctx context.Context, category string, payload map[string]interface{}) error {
		return nil
	}))
	ctx := context.Background()

	record, err := srv.Create(ctx, &CreateInput{Category: "send_email", Expiry: time.Hour})
	assert.NoError(t, err)
	_, err = srv.Decide(ctx, record.ID, true, "")
	assert.NoError(t, err)

	// another live consumer holds the head
	claimed, err := approvalDao.Load(ctx, record.ID)
	assert.NoError(t, err)
	claimed.Claim("other-consumer")
	assert.NoError(t, approvalDao.Save(ctx, claimed))

	done, err := srv.ExecuteNext(ctx)
	assert.NoError(t, err)
	assert.Nil(t, done)
}

func TestExecuteNextTakesOverExpiredClaim(t *testing.T) {
	approvalDao := approvalmem.New()
	srv := New(approvalDao,
		WithClaimTTL(time.Minute),
		WithExecutor(func(ctx context.Context, category string, payload map[string]interface{}) error {
			return nil
		}))
	ctx := context.Background()

	record, err := srv.Create(ctx, &CreateInput{Category: "send_email", Expiry: time.Hour})
	assert.NoError(t, err)
	_, err = srv.Decide(ctx, record.ID, true, "")
	assert.NoError(t, err)

	claimed, err := approvalDao.Load(ctx, record.ID)
	assert.NoError(t, err)
	claimed.ClaimedBy = "crashed-consumer"
	stale := time.Now().Add(-2 * time.Minute)
	claimed.ClaimedAt = &stale
	assert.NoError(t, approvalDao.Save(ctx, claimed))

	done, err := srv.ExecuteNext(ctx)
	assert.NoError(t, err)
	if assert.NotNil(t, done) {
		assert.Equal(t, approval.StatusExecuted, done.Status)
	}
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return base }
	defer func() { clock.NowFunc = time.Now }()

	srv := New(approvalmem.New())
	ctx := context.Background()

	stale, err := srv.Create(ctx, &CreateInput{Category: "send_email", Expiry: time.Minute})
	assert.NoError(t, err)
	fresh, err := srv.Create(ctx, &CreateInput{Category: "send_email", Expiry: time.Hour})
	assert.NoError(t, err)

	expired, err := srv.SweepExpired(ctx, base.Add(5*time.Minute))
	assert.NoError(t, err)
	if assert.Len(t, expired, 1) {
		assert.Equal(t, stale.ID, expired[0].ID)
		assert.Equal(t, approval.StatusExpired, expired[0].Status)
		assert.NotEmpty(t, expired[0].Error)
	}

	again, err := srv.SweepExpired(ctx, base.Add(5*time.Minute))
	assert.NoError(t, err)
	assert.Empty(t, again)

	pending, err := srv.ListPending(ctx)
	assert.NoError(t, err)
	if assert.Len(t, pending, 1) {
		assert.Equal(t, fresh.ID, pending[0].ID)
	}
}

func TestReleaseValidation(t *testing.T) {
	srv := New(approvalmem.New())
	ctx := context.Background()

	_, err := srv.Release(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	record, err := srv.Create(ctx, &CreateInput{Category: "send_email", Expiry: time.Hour})
	assert.NoError(t, err)
	_, err = srv.Release(ctx, record.ID)
	assert.ErrorIs(t, err, types.ErrInvalidState)

	decided, err := srv.Decide(ctx, record.ID, true, "")
	assert.NoError(t, err)
	_, err = srv.Release(ctx, decided.ID)
	assert.ErrorIs(t, err, types.ErrInvalidState)
}

func TestEventsPublishedOnLifecycle(t *testing.T) {
	srv := New(approvalmem.New())
	ctx := context.Background()

	record, err := srv.Create(ctx, &CreateInput{Category: "send_email", Expiry: time.Hour})
	assert.NoError(t, err)
	_, err = srv.Decide(ctx, record.ID, true, "")
	assert.NoError(t, err)

	consumeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	message, err := srv.Queue().Consume(consumeCtx)
	assert.NoError(t, err)
	assert.Equal(t, TopicRequestCreated, message.T().Topic)
	assert.NoError(t, message.Ack())

	message, err = srv.Queue().Consume(consumeCtx)
	assert.NoError(t, err)
	assert.Equal(t, TopicDecisionCreated, message.T().Topic)
	assert.NoError(t, message.Ack())
}
