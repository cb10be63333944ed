package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/repository"
)

var errNotFound = errors.New("not found")

// fakeReminderStore keeps reminder rows in memory with the same conditional
// update semantics as the real repository.
type fakeReminderStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*model.Reminder
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{nextID: 1, rows: make(map[uint]*model.Reminder)}
}

func (f *fakeReminderStore) Create(_ context.Context, reminder *model.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reminder.ID = f.nextID
	f.nextID++
	clone := *reminder
	f.rows[reminder.ID] = &clone
	return nil
}

func (f *fakeReminderStore) ListPending(_ context.Context) ([]model.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reminder
	for _, row := range f.rows {
		if !row.Delivered && !row.Cancelled {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeReminderStore) MarkDelivered(_ context.Context, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.Delivered || row.Cancelled {
		return false, nil
	}
	row.Delivered = true
	return true, nil
}

func (f *fakeReminderStore) MarkCancelled(_ context.Context, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.Delivered || row.Cancelled {
		return false, nil
	}
	row.Cancelled = true
	return true, nil
}

func (f *fakeReminderStore) get(id uint) model.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.rows[id]
}

func (f *fakeReminderStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeTaskStore backs both the task service and the reminder service's
// recurrence advance.
type fakeTaskStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*model.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{nextID: 1, rows: make(map[uint]*model.Task)}
}

func (f *fakeTaskStore) Create(_ context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = f.nextID
	f.nextID++
	task.CreatedAt = time.Now()
	clone := *task
	f.rows[task.ID] = &clone
	return nil
}

func (f *fakeTaskStore) Get(_ context.Context, taskID uint) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[taskID]
	if !ok {
		return nil, errNotFound
	}
	clone := *row
	return &clone, nil
}

func (f *fakeTaskStore) FindByID(_ context.Context, ownerID, taskID uint) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[taskID]
	if !ok || row.OwnerID != ownerID {
		return nil, errNotFound
	}
	clone := *row
	return &clone, nil
}

func (f *fakeTaskStore) Query(_ context.Context, ownerID uint, filter repository.TaskFilter) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Task
	for _, row := range f.rows {
		if row.OwnerID != ownerID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.Category != "" && row.Category != filter.Category {
			continue
		}
		if filter.Priority != "" && row.Priority != filter.Priority {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeTaskStore) MarkCompleted(_ context.Context, ownerID, taskID uint, completedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[taskID]
	if !ok || row.OwnerID != ownerID {
		return false, nil
	}
	if row.Status != model.StatusPending && row.Status != model.StatusOverdue {
		return false, nil
	}
	row.Status = model.StatusCompleted
	row.CompletedAt = &completedAt
	return true, nil
}

func (f *fakeTaskStore) MarkCancelled(_ context.Context, ownerID, taskID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[taskID]
	if !ok || row.OwnerID != ownerID || row.Status != model.StatusPending {
		return false, nil
	}
	row.Status = model.StatusCancelled
	return true, nil
}

func (f *fakeTaskStore) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.Status == model.StatusPending && row.DueAt != nil && row.DueAt.Before(now) {
			row.Status = model.StatusOverdue
			n++
		}
	}
	return n, nil
}

func (f *fakeTaskStore) AdvanceDue(_ context.Context, taskID uint, next time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[taskID]
	if !ok {
		return errNotFound
	}
	due := next
	row.DueAt = &due
	return nil
}

// fakeDispatcher records deliveries and can be told to fail. onSend, when
// set, runs during Send before the outcome is decided, so tests can race
// other operations against an in-flight delivery.
type fakeDispatcher struct {
	mu       sync.Mutex
	fail     bool
	attempts int
	sends    []sentMessage
	onSend   func()
}

type sentMessage struct {
	chatID  int64
	message string
}

func (f *fakeDispatcher) Send(chatID int64, message string) error {
	f.mu.Lock()
	f.attempts++
	hook := f.onSend
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("dispatch failed")
	}
	f.sends = append(f.sends, sentMessage{chatID: chatID, message: message})
	return nil
}

func (f *fakeDispatcher) sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sends))
	copy(out, f.sends)
	return out
}

func (f *fakeDispatcher) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}
