package employee

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/approval"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/task"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/gate"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/loop"
)

func TestEndToEndApprovedFlow(t *testing.T) {
	ctx := context.Background()

	var dispatched []string
	srv := New(WithExecutor(func(ctx context.Context, category string, payload map[string]interface{}) error {
		dispatched = append(dispatched, category)
		return nil
	}))

	record, err := srv.Loop().Start(ctx, &loop.StartInput{
		Prompt:             "send the weekly report",
		CompletionStrategy: task.StrategyPromise,
		CompletionToken:    "DONE",
		MaxIterations:      5,
	})
	assert.NoError(t, err)

	record, err = srv.Loop().Advance(ctx, record.ID, "report drafted")
	assert.NoError(t, err)
	assert.Equal(t, 2, record.Iteration)

	request, err := srv.Gate().Create(ctx, &gate.CreateInput{
		Category:      "send_email",
		Payload:       map[string]interface{}{"to": "boss@example.com"},
		Expiry:        time.Hour,
		CorrelationID: record.ID,
	})
	assert.NoError(t, err)

	record, err = srv.Loop().RequestApproval(ctx, record.ID, request.ID)
	assert.NoError(t, err)
	assert.Equal(t, task.StatusPaused, record.Status)

	// while paused the hook lets the agent session end
	decision, err := srv.Hook().Check(ctx, record.ID)
	assert.NoError(t, err)
	assert.True(t, decision.AllowExit)

	// approving resumes the correlated task before execution even runs
	_, err = srv.Gate().Decide(ctx, request.ID, true, "approved by test")
	assert.NoError(t, err)

	resumed, err := srv.Loop().Lookup(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, resumed.Status)
	assert.Contains(t, resumed.Context, request.ID)

	executed, err := srv.Gate().ExecuteNext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, approval.StatusExecuted, executed.Status)
	assert.Equal(t, []string{"send_email"}, dispatched)

	// the now in-progress task blocks exit again until completion
	decision, err = srv.Hook().Check(ctx, record.ID)
	assert.NoError(t, err)
	assert.False(t, decision.AllowExit)

	completed, err := srv.Loop().Complete(ctx, record.ID, "report sent DONE")
	assert.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, completed.Status)
}

func TestEndToEndRejectedFlow(t *testing.T) {
	ctx := context.Background()
	srv := New()

	record, err := srv.Loop().Start(ctx, &loop.StartInput{
		Prompt:             "delete old records",
		CompletionStrategy: task.StrategyArtifactMovement,
	})
	assert.NoError(t, err)

	request, err := srv.Gate().Create(ctx, &gate.CreateInput{
		Category:      "delete_data",
		Expiry:        time.Hour,
		CorrelationID: record.ID,
	})
	assert.NoError(t, err)
	_, err = srv.Loop().RequestApproval(ctx, record.ID, request.ID)
	assert.NoError(t, err)

	_, err = srv.Gate().Decide(ctx, request.ID, false, "too destructive")
	assert.NoError(t, err)

	failed, err := srv.Loop().Lookup(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, task.StatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "rejected")
	assert.Empty(t, failed.PendingApprovalID)
}

func TestNewFromConfigUsesDurableStores(t *testing.T) {
	ctx := context.Background()
	baseURL := t.TempDir()

	config := DefaultConfig()
	config.Store.BaseURL = baseURL

	srv, err := NewFromConfig(ctx, config)
	assert.NoError(t, err)

	record, err := srv.Loop().Start(ctx, &loop.StartInput{
		Prompt:             "survive a restart",
		CompletionStrategy: task.StrategyArtifactMovement,
	})
	assert.NoError(t, err)

	// a second service over the same base URL sees the record
	restarted, err := NewFromConfig(ctx, config)
	assert.NoError(t, err)
	loaded, err := restarted.Loop().Lookup(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, record.ID, loaded.ID)
	assert.Equal(t, task.StatusInProgress, loaded.Status)
}

func TestNewFromConfigMemoryScheme(t *testing.T) {
	ctx := context.Background()

	config := DefaultConfig()
	config.Store.BaseURL = "mem://localhost/orchestrator-config-test"

	srv, err := NewFromConfig(ctx, config)
	assert.NoError(t, err)

	record, err := srv.Loop().Start(ctx, &loop.StartInput{
		Prompt:             "persist across services",
		CompletionStrategy: task.StrategyArtifactMovement,
	})
	assert.NoError(t, err)

	restarted, err := NewFromConfig(ctx, config)
	assert.NoError(t, err)
	loaded, err := restarted.Loop().Lookup(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, record.ID, loaded.ID)
	assert.Equal(t, task.StatusInProgress, loaded.Status)
}

func TestNewFromConfigRejectsInvalid(t *testing.T) {
	config := DefaultConfig()
	config.Task.DefaultMaxIterations = -1
	_, err := NewFromConfig(context.Background(), config)
	assert.Error(t, err)
}

func TestOptionOverrides(t *testing.T) {
	srv := New(
		WithDefaultExpiry(time.Minute),
		WithDefaultMaxIterations(2),
	)
	ctx := context.Background()

	record, err := srv.Loop().Start(ctx, &loop.StartInput{
		Prompt:             "short task",
		CompletionStrategy: task.StrategyArtifactMovement,
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, record.MaxIterations)

	request, err := srv.Gate().Create(ctx, &gate.CreateInput{Category: "noop"})
	assert.NoError(t, err)
	assert.Equal(t, request.CreatedAt.Add(time.Minute), request.ExpiresAt)
}
