package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workout-reminder/internal/model"
)

func newTestRepo(t *testing.T) *TaskRepository {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return NewTaskRepository(db)
}

func testNow() time.Time {
	return time.Date(2025, 1, 6, 10, 40, 0, 0, time.UTC)
}

func TestCreatePending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := testNow()

	id, err := repo.CreatePending(ctx, "u1", "2025-01-06", "10:40", "A1", now, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	task, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, "u1", task.UserID)
	assert.Equal(t, "2025-01-06", task.Date)
	assert.Equal(t, "10:40", task.Time)
	assert.Equal(t, "A1", task.SlotID)
	assert.True(t, task.TimeoutAt.Equal(now.Add(time.Hour)))
	assert.True(t, task.TimeoutAt.After(task.CreatedAt))
	assert.Nil(t, task.ClickedAt)
}

func TestCreatePending_RearmsSameNaturalKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := testNow()

	first, err := repo.CreatePending(ctx, "u1", "2025-01-06", "10:40", "A1", now, time.Hour)
	require.NoError(t, err)
	second, err := repo.CreatePending(ctx, "u1", "2025-01-06", "10:40", "A1", now.Add(time.Minute), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	tasks, err := repo.QueryRange(ctx, "u1", "2025-01-06", "2025-01-06")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.StatusPending, tasks[0].Status)
	assert.True(t, tasks[0].TimeoutAt.Equal(now.Add(time.Minute).Add(time.Hour)))
}

func TestGet_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = repo.GetSlotID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSetStatusFromPending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := testNow()

	id, err := repo.CreatePending(ctx, "u1", "2025-01-06", "10:40", "A1", now, time.Hour)
	require.NoError(t, err)

	landed, err := repo.SetStatusFromPending(ctx, id, model.StatusDone, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.True(t, landed)

	task, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, task.Status)
	require.NotNil(t, task.ClickedAt)
	assert.False(t, task.ClickedAt.Before(task.CreatedAt))
}

func TestSetStatusFromPending_TerminalIsNotOverwritten(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := testNow()

	id, err := repo.CreatePending(ctx, "u1", "2025-01-06", "10:40", "A1", now, time.Hour)
	require.NoError(t, err)

	landed, err := repo.SetStatusFromPending(ctx, id, model.StatusDone, now)
	require.NoError(t, err)
	require.True(t, landed)

	// A late timeout sweep loses the race and must not erase the action.
	landed, err = repo.SetStatusFromPending(ctx, id, model.StatusTimeout, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, landed)

	task, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, task.Status)
}

func TestSetStatusFromPending_MissingTask(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.SetStatusFromPending(context.Background(), "missing", model.StatusDone, testNow())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpsert_CreatesThenOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := testNow()

	id, err := repo.Upsert(ctx, "u1", "2025-01-06", "10:40", "A1", model.StatusSkip, now, time.Hour)
	require.NoError(t, err)

	task, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSkip, task.Status)
	require.NotNil(t, task.ClickedAt)

	again, err := repo.Upsert(ctx, "u1", "2025-01-06", "10:40", "A1", model.StatusDone, now.Add(time.Minute), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	task, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, task.Status)

	tasks, err := repo.QueryRange(ctx, "u1", "2025-01-06", "2025-01-06")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestListPendingExpired(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := testNow()

	expired, err := repo.CreatePending(ctx, "u1", "2025-01-06", "10:40", "A1", now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = repo.CreatePending(ctx, "u1", "2025-01-06", "15:30", "B1", now, time.Hour)
	require.NoError(t, err)
	acted, err := repo.CreatePending(ctx, "u1", "2025-01-06", "21:00", "C1", now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	_, err = repo.SetStatusFromPending(ctx, acted, model.StatusDone, now)
	require.NoError(t, err)

	tasks, err := repo.ListPendingExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, expired, tasks[0].TaskID)
}

func TestQueryRange_InclusiveAndOrdered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := testNow()

	_, err := repo.CreatePending(ctx, "u1", "2025-01-07", "10:40", "A2", now, time.Hour)
	require.NoError(t, err)
	_, err = repo.CreatePending(ctx, "u1", "2025-01-06", "15:30", "B1", now, time.Hour)
	require.NoError(t, err)
	_, err = repo.CreatePending(ctx, "u1", "2025-01-06", "10:40", "A1", now, time.Hour)
	require.NoError(t, err)
	_, err = repo.CreatePending(ctx, "u1", "2025-01-08", "10:40", "A3", now, time.Hour)
	require.NoError(t, err)
	_, err = repo.CreatePending(ctx, "u2", "2025-01-06", "10:40", "A1", now, time.Hour)
	require.NoError(t, err)

	tasks, err := repo.QueryRange(ctx, "u1", "2025-01-06", "2025-01-07")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "A1", tasks[0].SlotID)
	assert.Equal(t, "B1", tasks[1].SlotID)
	assert.Equal(t, "A2", tasks[2].SlotID)
}

func TestAggregateStatusCounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := testNow()

	done, err := repo.CreatePending(ctx, "u1", "2025-01-06", "10:40", "A1", now, time.Hour)
	require.NoError(t, err)
	_, err = repo.SetStatusFromPending(ctx, done, model.StatusDone, now)
	require.NoError(t, err)
	_, err = repo.CreatePending(ctx, "u1", "2025-01-06", "15:30", "B1", now, time.Hour)
	require.NoError(t, err)
	_, err = repo.CreatePending(ctx, "u1", "2025-01-07", "10:40", "A2", now, time.Hour)
	require.NoError(t, err)

	counts, err := repo.AggregateStatusCounts(ctx, "u1", "2025-01-06", "2025-01-07")
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.StatusDone])
	assert.Equal(t, 2, counts[model.StatusPending])
}

func TestMutationsAppendEvents(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := testNow()

	id, err := repo.CreatePending(ctx, "u1", "2025-01-06", "10:40", "A1", now, time.Hour)
	require.NoError(t, err)
	_, err = repo.SetStatusFromPending(ctx, id, model.StatusDone, now)
	require.NoError(t, err)

	// Lost race appends nothing.
	_, err = repo.SetStatusFromPending(ctx, id, model.StatusTimeout, now)
	require.NoError(t, err)

	var events []model.Event
	require.NoError(t, repo.db.Where("task_id = ?", id).Order("id ASC").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, model.StatusPending, events[0].EventType)
	assert.Equal(t, model.StatusDone, events[1].EventType)
}
