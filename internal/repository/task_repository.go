package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"workout-reminder/internal/model"
)

// ErrTaskNotFound is returned when a referenced task id has no row.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository is the durable store for tasks and their audit events.
// Every mutating call is an independent durable write.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreatePending creates a pending task for the given natural key with
// deadline now+timeout, and returns its id. If a row with the same natural
// key already exists it is re-armed in place (status back to pending, fresh
// deadline) instead of forking a duplicate, so a repeated trigger firing
// is harmless.
func (r *TaskRepository) CreatePending(ctx context.Context, userID, date, timeStr, slotID string, now time.Time, timeout time.Duration) (string, error) {
	db := r.db.WithContext(ctx)

	var existing model.Task
	err := db.Where("user_id = ? AND date = ? AND time = ? AND slot_id = ?", userID, date, timeStr, slotID).
		First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"status":     model.StatusPending,
			"created_at": now,
			"timeout_at": now.Add(timeout),
			"clicked_at": nil,
		}
		if err := db.Model(&model.Task{}).Where("task_id = ?", existing.TaskID).Updates(updates).Error; err != nil {
			return "", fmt.Errorf("rearm task: %w", err)
		}
		r.appendEvent(ctx, existing.TaskID, userID, model.StatusPending, now)
		return existing.TaskID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		task := model.Task{
			TaskID:    uuid.NewString(),
			UserID:    userID,
			Date:      date,
			Time:      timeStr,
			SlotID:    slotID,
			Status:    model.StatusPending,
			CreatedAt: now,
			TimeoutAt: now.Add(timeout),
		}
		if err := db.Create(&task).Error; err != nil {
			return "", fmt.Errorf("create task: %w", err)
		}
		r.appendEvent(ctx, task.TaskID, userID, model.StatusPending, now)
		return task.TaskID, nil
	default:
		return "", fmt.Errorf("find task: %w", err)
	}
}

// Get returns the task row for the given id.
func (r *TaskRepository) Get(ctx context.Context, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// GetSlotID returns the slot id of a task, used when chaining a snoozed
// task to the same slot.
func (r *TaskRepository) GetSlotID(ctx context.Context, taskID string) (string, error) {
	task, err := r.Get(ctx, taskID)
	if err != nil {
		return "", err
	}
	return task.SlotID, nil
}

// SetStatusFromPending moves a task out of pending into the given status
// and stamps the action time. The update is conditional on the row still
// being pending: a false return with nil error means the row exists but
// some other transition landed first, which callers treat as a benign
// lost race. An event row is appended only when the transition lands.
func (r *TaskRepository) SetStatusFromPending(ctx context.Context, taskID, status string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("task_id = ? AND status = ?", taskID, model.StatusPending).
		Updates(map[string]interface{}{"status": status, "clicked_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("set status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, taskID); err != nil {
			return false, err
		}
		return false, nil
	}
	r.appendEvent(ctx, taskID, "", status, now)
	return true, nil
}

// Upsert writes the given status for the natural key, creating the row if
// it does not exist yet. New rows get a best-effort deadline of
// now+timeout. Returns the affected task id.
func (r *TaskRepository) Upsert(ctx context.Context, userID, date, timeStr, slotID, status string, now time.Time, timeout time.Duration) (string, error) {
	db := r.db.WithContext(ctx)

	var clickedAt *time.Time
	if status != model.StatusPending {
		t := now
		clickedAt = &t
	}

	var existing model.Task
	err := db.Where("user_id = ? AND date = ? AND time = ? AND slot_id = ?", userID, date, timeStr, slotID).
		First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{"status": status, "clicked_at": clickedAt}
		if err := db.Model(&model.Task{}).Where("task_id = ?", existing.TaskID).Updates(updates).Error; err != nil {
			return "", fmt.Errorf("upsert update: %w", err)
		}
		r.appendEvent(ctx, existing.TaskID, userID, status, now)
		return existing.TaskID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		task := model.Task{
			TaskID:    uuid.NewString(),
			UserID:    userID,
			Date:      date,
			Time:      timeStr,
			SlotID:    slotID,
			Status:    status,
			CreatedAt: now,
			TimeoutAt: now.Add(timeout),
			ClickedAt: clickedAt,
		}
		if err := db.Create(&task).Error; err != nil {
			return "", fmt.Errorf("upsert create: %w", err)
		}
		r.appendEvent(ctx, task.TaskID, userID, status, now)
		return task.TaskID, nil
	default:
		return "", fmt.Errorf("upsert find: %w", err)
	}
}

// ListPendingExpired returns pending tasks whose deadline is at or before now.
func (r *TaskRepository) ListPendingExpired(ctx context.Context, now time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("status = ? AND timeout_at <= ?", model.StatusPending, now).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list expired: %w", err)
	}
	return tasks, nil
}

// QueryRange returns all tasks for a recipient in the inclusive date range,
// ordered by date, then time.
func (r *TaskRepository) QueryRange(ctx context.Context, userID, dateStart, dateEnd string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, dateStart, dateEnd).
		Order("date ASC, time ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	return tasks, nil
}

// AggregateStatusCounts returns status -> row count for a recipient in the
// inclusive date range.
func (r *TaskRepository) AggregateStatusCounts(ctx context.Context, userID, dateStart, dateEnd string) (map[string]int, error) {
	var rows []struct {
		Status string
		Cnt    int
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("status, COUNT(*) AS cnt").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, dateStart, dateEnd).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("aggregate counts: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Cnt
	}
	return counts, nil
}

// appendEvent writes an audit row. Audit is advisory; failures do not fail
// the task mutation that already committed.
func (r *TaskRepository) appendEvent(ctx context.Context, taskID, userID, eventType string, now time.Time) {
	event := model.Event{
		TaskID:    taskID,
		UserID:    userID,
		EventType: eventType,
		CreatedAt: now,
	}
	_ = r.db.WithContext(ctx).Create(&event).Error
}
