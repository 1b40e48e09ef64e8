package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/task"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	srv, err := New(t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	record := task.New("archive the reports", task.StrategyPromise, "DONE", 5)
	record.Context = "first pass done"
	assert.NoError(t, srv.Save(ctx, record))

	loaded, err := srv.Load(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, record.ID, loaded.ID)
	assert.Equal(t, record.Prompt, loaded.Prompt)
	assert.Equal(t, record.Context, loaded.Context)
	assert.Equal(t, task.StatusInProgress, loaded.Status)
}

func TestSaveReplacesExisting(t *testing.T) {
	srv, err := New(t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	record := task.New("a task", task.StrategyArtifactMovement, "", 5)
	assert.NoError(t, srv.Save(ctx, record))

	record.Complete("finished early")
	assert.NoError(t, srv.Save(ctx, record))

	loaded, err := srv.Load(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, loaded.Status)
	assert.Equal(t, "finished early", loaded.Summary)
}

func TestMemorySchemeRoundtrip(t *testing.T) {
	srv, err := New("mem://localhost/task-store-roundtrip")
	assert.NoError(t, err)
	ctx := context.Background()

	record := task.New("run on any afs scheme", task.StrategyArtifactMovement, "", 5)
	assert.NoError(t, srv.Save(ctx, record))

	loaded, err := srv.Load(ctx, record.ID)
	assert.NoError(t, err)
	assert.Equal(t, record.ID, loaded.ID)
	assert.Equal(t, record.Prompt, loaded.Prompt)

	listed, err := srv.List(ctx)
	assert.NoError(t, err)
	if assert.Len(t, listed, 1) {
		assert.Equal(t, record.ID, listed[0].ID)
	}
	assert.NoError(t, srv.Delete(ctx, record.ID))
}

func TestLoadNotFound(t *testing.T) {
	srv, err := New(t.TempDir())
	assert.NoError(t, err)

	_, err = srv.Load(context.Background(), "no-such-record")
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestInvalidArguments(t *testing.T) {
	srv, err := New(t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, srv.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, srv.Save(ctx, &task.Record{}), dao.ErrInvalidID)
	_, err = srv.Load(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
}

func TestListFiltersByStatus(t *testing.T) {
	srv, err := New(t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	active := task.New("active", task.StrategyArtifactMovement, "", 5)
	assert.NoError(t, srv.Save(ctx, active))

	done := task.New("done", task.StrategyArtifactMovement, "", 5)
	done.Complete("ok")
	assert.NoError(t, srv.Save(ctx, done))

	all, err := srv.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := srv.List(ctx, dao.NewParameter("Status", string(task.StatusCompleted)))
	assert.NoError(t, err)
	if assert.Len(t, completed, 1) {
		assert.Equal(t, done.ID, completed[0].ID)
	}
}

func TestDelete(t *testing.T) {
	srv, err := New(t.TempDir())
	assert.NoError(t, err)
	ctx := context.Background()

	record := task.New("a task", task.StrategyArtifactMovement, "", 5)
	assert.NoError(t, srv.Save(ctx, record))
	assert.NoError(t, srv.Delete(ctx, record.ID))

	_, err = srv.Load(ctx, record.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, srv.Delete(ctx, record.ID), dao.ErrNotFound)
}
