package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/nlp"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/repository"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/schedule"
)

const maxTitleLen = 200

// TaskStore is the slice of persistence the task service needs.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, ownerID, taskID uint) (*model.Task, error)
	Query(ctx context.Context, ownerID uint, filter repository.TaskFilter) ([]model.Task, error)
	MarkCompleted(ctx context.Context, ownerID, taskID uint, completedAt time.Time) (bool, error)
	MarkCancelled(ctx context.Context, ownerID, taskID uint) (bool, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// TaskService wraps task lifecycle logic over parsed input.
type TaskService struct {
	store  TaskStore
	clock  schedule.Clock
	logger *slog.Logger
}

func NewTaskService(store TaskStore, clock schedule.Clock, logger *slog.Logger) *TaskService {
	return &TaskService{store: store, clock: clock, logger: logger}
}

// CreateTask persists a parsed task for the given owner. The recurrence
// rule arrives separately because it comes from command flags, not from the
// free-text parse.
func (s *TaskService) CreateTask(ctx context.Context, ownerID uint, parsed nlp.Parsed, recur model.Recurrence) (*model.Task, error) {
	if len([]rune(parsed.Title)) > maxTitleLen {
		return nil, ErrTitleTooLong
	}

	task := model.Task{
		OwnerID:     ownerID,
		Title:       parsed.Title,
		Description: parsed.Description,
		Priority:    parsed.Priority,
		Category:    parsed.Category,
		DueAt:       parsed.DueAt,
		Tags:        model.JoinTags(parsed.Tags),
		Recurrence:  recur,
		Status:      model.StatusPending,
	}
	if err := s.store.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, ownerID uint, filter repository.TaskFilter) ([]model.Task, error) {
	return s.store.Query(ctx, ownerID, filter)
}

func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID uint) (*model.Task, error) {
	return s.store.FindByID(ctx, ownerID, taskID)
}

// CompleteTask marks a task done. Returns false when the task is not in a
// completable state (unknown id, already completed, cancelled).
func (s *TaskService) CompleteTask(ctx context.Context, ownerID, taskID uint) (bool, error) {
	return s.store.MarkCompleted(ctx, ownerID, taskID, s.clock.Now())
}

func (s *TaskService) CancelTask(ctx context.Context, ownerID, taskID uint) (bool, error) {
	return s.store.MarkCancelled(ctx, ownerID, taskID)
}

// SweepOverdue flips past-due pending tasks to overdue. Runs from the cron
// job; this sweep is the only place that transition happens.
func (s *TaskService) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := s.store.MarkOverdue(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("overdue sweep", "tasks", n)
	}
	return n, nil
}
