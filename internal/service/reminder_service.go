package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/schedule"
)

// ReminderStore is the slice of persistence the reminder service needs.
type ReminderStore interface {
	Create(ctx context.Context, reminder *model.Reminder) error
	ListPending(ctx context.Context) ([]model.Reminder, error)
	MarkDelivered(ctx context.Context, id uint) (bool, error)
	MarkCancelled(ctx context.Context, id uint) (bool, error)
}

// TaskAdvancer lets the reminder path move a recurring task forward.
type TaskAdvancer interface {
	Get(ctx context.Context, taskID uint) (*model.Task, error)
	AdvanceDue(ctx context.Context, taskID uint, next time.Time) error
}

// JobScheduler is the pending-job contract the service drives.
type JobScheduler interface {
	Schedule(id string, fireAt time.Time, fn schedule.Callback) bool
	Cancel(id string) bool
	List() []string
}

// Dispatcher delivers a message to a chat. The transport behind it is not
// this package's concern.
type Dispatcher interface {
	Send(chatID int64, message string) error
}

// ReminderService bridges persisted reminder rows and in-memory jobs. It is
// the only writer on both sides of that bridge.
type ReminderService struct {
	scheduler  JobScheduler
	reminders  ReminderStore
	tasks      TaskAdvancer
	dispatcher Dispatcher
	clock      schedule.Clock
	logger     *slog.Logger
}

func NewReminderService(
	scheduler JobScheduler,
	reminders ReminderStore,
	tasks TaskAdvancer,
	dispatcher Dispatcher,
	clock schedule.Clock,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		scheduler:  scheduler,
		reminders:  reminders,
		tasks:      tasks,
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger,
	}
}

// jobID derives the scheduler key from the persisted row id, so job
// identity survives restarts.
func jobID(id uint) string {
	return fmt.Sprintf("reminder-%d", id)
}

// Restore loads every undelivered row and re-registers it. Rows whose fire
// time already passed are delivered on the spot rather than dropped or
// scheduled in the past.
func (s *ReminderService) Restore(ctx context.Context) error {
	rows, err := s.reminders.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("load pending reminders: %w", err)
	}

	now := s.clock.Now()
	var scheduled, caughtUp int
	for _, row := range rows {
		if !row.FireAt.After(now) {
			s.deliver(ctx, row)
			caughtUp++
			continue
		}
		if s.scheduler.Schedule(jobID(row.ID), row.FireAt, s.callback(row)) {
			scheduled++
		}
	}
	s.logger.Info("reminders restored", "scheduled", scheduled, "caught_up", caughtUp)
	return nil
}

// Add persists a reminder, then schedules it under the persisted id.
// Persist-first keeps the row and the job correlated across restarts.
func (s *ReminderService) Add(ctx context.Context, chatID int64, fireAt time.Time, message string) (uint, error) {
	return s.add(ctx, chatID, fireAt, message, nil)
}

// AddForTask is Add with a task link, used for recurring task alerts.
func (s *ReminderService) AddForTask(ctx context.Context, chatID int64, fireAt time.Time, message string, taskID uint) (uint, error) {
	return s.add(ctx, chatID, fireAt, message, &taskID)
}

func (s *ReminderService) add(ctx context.Context, chatID int64, fireAt time.Time, message string, taskID *uint) (uint, error) {
	if !fireAt.After(s.clock.Now()) {
		return 0, ErrPastFireTime
	}

	row := model.Reminder{
		ChatID:  chatID,
		Message: message,
		FireAt:  fireAt,
		TaskID:  taskID,
	}
	if err := s.reminders.Create(ctx, &row); err != nil {
		return 0, err
	}

	if !s.scheduler.Schedule(jobID(row.ID), fireAt, s.callback(row)) {
		// Shutdown or a fire time the clock crossed while persisting;
		// either way the row stays pending and the next Restore gets it.
		return row.ID, ErrNotScheduled
	}
	return row.ID, nil
}

// CancelByID cancels both the row and the in-memory job. Storage goes
// first: a job gone from memory while its row stays live would be
// re-registered on the next restart, which is exactly the failure this
// ordering rules out.
func (s *ReminderService) CancelByID(ctx context.Context, id uint) bool {
	rowCancelled, err := s.reminders.MarkCancelled(ctx, id)
	if err != nil {
		s.logger.Error("cancel reminder", "id", id, "error", err)
		return false
	}
	if !rowCancelled {
		return false
	}

	if !s.scheduler.Cancel(jobID(id)) {
		s.logger.Warn("reminder row cancelled but job was not pending", "id", id)
		return false
	}
	return true
}

// Pending exposes the scheduler's pending ids for diagnostics.
func (s *ReminderService) Pending() []string {
	return s.scheduler.List()
}

func (s *ReminderService) callback(row model.Reminder) schedule.Callback {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.deliver(ctx, row)
	}
}

// deliver sends the message and flips the delivered flag. A dispatch
// failure leaves the row undelivered and is only logged; redelivery policy
// is the operator's call, not this service's.
func (s *ReminderService) deliver(ctx context.Context, row model.Reminder) {
	if err := s.dispatcher.Send(row.ChatID, row.Message); err != nil {
		s.logger.Error("reminder dispatch failed", "id", row.ID, "chat", row.ChatID, "error", err)
		return
	}

	flipped, err := s.reminders.MarkDelivered(ctx, row.ID)
	if err != nil {
		s.logger.Error("mark delivered failed", "id", row.ID, "error", err)
		return
	}
	if !flipped {
		// Another path already delivered this row; nothing more to do.
		return
	}

	if row.TaskID != nil {
		s.advanceRecurrence(ctx, row)
	}
}

// advanceRecurrence schedules the next occurrence of a recurring task. The
// task row itself is never duplicated; only its due date moves.
func (s *ReminderService) advanceRecurrence(ctx context.Context, row model.Reminder) {
	task, err := s.tasks.Get(ctx, *row.TaskID)
	if err != nil {
		s.logger.Error("load recurring task", "task_id", *row.TaskID, "error", err)
		return
	}
	if task.Recurrence.IsZero() || task.Status != model.StatusPending {
		return
	}

	next, ok := schedule.NextOccurrence(task.Recurrence, row.FireAt, s.clock.Now())
	if !ok {
		return
	}

	if err := s.tasks.AdvanceDue(ctx, task.ID, next); err != nil {
		s.logger.Error("advance recurring task", "task_id", task.ID, "error", err)
		return
	}
	if _, err := s.AddForTask(ctx, row.ChatID, next, row.Message, task.ID); err != nil {
		s.logger.Error("schedule next occurrence", "task_id", task.ID, "error", err)
	}
}
