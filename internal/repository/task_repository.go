package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
)

// TaskFilter narrows a task query. Zero values mean "don't filter".
type TaskFilter struct {
	Status   model.Status
	Category model.Category
	Priority model.Priority
	DueOn    *time.Time // tasks due within that calendar day
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, ownerID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Get fetches a task by id alone; used by the reminder path, which holds a
// task reference without an owner scope.
func (r *TaskRepository) Get(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, taskID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Query(ctx context.Context, ownerID uint, filter TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.DueOn != nil {
		dayStart := time.Date(filter.DueOn.Year(), filter.DueOn.Month(), filter.DueOn.Day(), 0, 0, 0, 0, filter.DueOn.Location())
		q = q.Where("due_at >= ? AND due_at < ?", dayStart, dayStart.AddDate(0, 0, 1))
	}

	var tasks []model.Task
	if err := q.Order("due_at ASC, created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkCompleted flips a pending or overdue task to completed. The guard on
// the current status keeps the completed_at invariant under concurrent
// callers: only the transition that wins sets the timestamp.
func (r *TaskRepository) MarkCompleted(ctx context.Context, ownerID, taskID uint, completedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("owner_id = ? AND id = ? AND status IN ?", ownerID, taskID, []model.Status{model.StatusPending, model.StatusOverdue}).
		Updates(map[string]interface{}{
			"status":       model.StatusCompleted,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("complete task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *TaskRepository) MarkCancelled(ctx context.Context, ownerID, taskID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("owner_id = ? AND id = ? AND status = ?", ownerID, taskID, model.StatusPending).
		Update("status", model.StatusCancelled)
	if res.Error != nil {
		return false, fmt.Errorf("cancel task: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkOverdue transitions every pending task with a past due date to
// overdue in one conditional update. Readers never infer overdue on the
// fly; this sweep is the only writer of that state.
func (r *TaskRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("status = ? AND due_at IS NOT NULL AND due_at < ?", model.StatusPending, now).
		Update("status", model.StatusOverdue)
	if res.Error != nil {
		return 0, fmt.Errorf("overdue sweep: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// AdvanceDue moves a recurring task's due date to its next occurrence.
func (r *TaskRepository) AdvanceDue(ctx context.Context, taskID uint, next time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Update("due_at", next).Error; err != nil {
		return fmt.Errorf("advance due date: %w", err)
	}
	return nil
}
