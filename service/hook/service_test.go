package hook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/task"
	taskmem "github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/task/memory"
)

func TestCheck(t *testing.T) {
	taskDao := taskmem.New()
	srv := New(taskDao)
	ctx := context.Background()

	inProgress := task.New("keep going", task.StrategyPromise, "DONE", 5)
	inProgress.Context = "two steps done"
	assert.NoError(t, taskDao.Save(ctx, inProgress))

	paused := task.New("waiting", task.StrategyPromise, "DONE", 5)
	paused.Pause("approval-1")
	assert.NoError(t, taskDao.Save(ctx, paused))

	completed := task.New("finished", task.StrategyPromise, "DONE", 5)
	completed.Complete("done")
	assert.NoError(t, taskDao.Save(ctx, completed))

	failed := task.New("broken", task.StrategyPromise, "DONE", 5)
	failed.Fail("gave up")
	assert.NoError(t, taskDao.Save(ctx, failed))

	testCases := []struct {
		description string
		taskID      string
		allowExit   bool
	}{
		{description: "empty id allows exit", taskID: "", allowExit: true},
		{description: "unknown task allows exit", taskID: "no-such-task", allowExit: true},
		{description: "in-progress blocks exit", taskID: inProgress.ID, allowExit: false},
		{description: "paused allows exit", taskID: paused.ID, allowExit: true},
		{description: "completed allows exit", taskID: completed.ID, allowExit: true},
		{description: "failed allows exit", taskID: failed.ID, allowExit: true},
	}
	for _, tc := range testCases {
		decision, err := srv.Check(ctx, tc.taskID)
		assert.NoError(t, err, tc.description)
		assert.Equal(t, tc.allowExit, decision.AllowExit, tc.description)
	}
}

func TestCheckReturnsPromptAndContext(t *testing.T) {
	taskDao := taskmem.New()
	srv := New(taskDao)
	ctx := context.Background()

	record := task.New("original prompt", task.StrategyPromise, "DONE", 5)
	record.Context = "accumulated state"
	assert.NoError(t, taskDao.Save(ctx, record))

	decision, err := srv.Check(ctx, record.ID)
	assert.NoError(t, err)
	assert.False(t, decision.AllowExit)
	assert.Equal(t, "original prompt", decision.Prompt)
	assert.Equal(t, "accumulated state", decision.Context)
}

func TestCheckNeverMutates(t *testing.T) {
	taskDao := taskmem.New()
	srv := New(taskDao)
	ctx := context.Background()

	record := task.New("prompt", task.StrategyPromise, "DONE", 5)
	assert.NoError(t, taskDao.Save(ctx, record))

	for i := 0; i < 3; i++ {
		_, err := srv.Check(ctx, record.ID)
		assert.NoError(t, err)
	}
	loaded, err := taskDao.Load(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, loaded.Iteration)
	assert.Equal(t, record.UpdatedAt.Unix(), loaded.UpdatedAt.Unix())
}
