package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/nlp"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/repository"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/schedule"
)

var taskNow = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func newTaskFixture() (*TaskService, *fakeTaskStore, *schedule.ManualClock) {
	store := newFakeTaskStore()
	clock := schedule.NewManualClock(taskNow)
	return NewTaskService(store, clock, quietLogger()), store, clock
}

func TestCreateTaskPersistsParsedFields(t *testing.T) {
	svc, store, _ := newTaskFixture()

	due := taskNow.Add(24 * time.Hour)
	parsed := nlp.Parsed{
		Title:    "buy groceries",
		Priority: model.PriorityHigh,
		Category: model.CategoryShopping,
		DueAt:    &due,
		Tags:     []string{"weekend", "food", "weekend"},
	}
	task, err := svc.CreateTask(context.Background(), 1, parsed, model.Recurrence{})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	saved, err := store.Get(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if saved.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", saved.Status)
	}
	if saved.CompletedAt != nil {
		t.Error("completedAt must be unset until completion")
	}
	if saved.Tags != "food weekend" {
		t.Errorf("tags = %q, want deduplicated sorted set", saved.Tags)
	}
}

func TestCreateTaskRejectsLongTitle(t *testing.T) {
	svc, _, _ := newTaskFixture()

	parsed := nlp.Parsed{Title: strings.Repeat("ا", 201)}
	if _, err := svc.CreateTask(context.Background(), 1, parsed, model.Recurrence{}); !errors.Is(err, ErrTitleTooLong) {
		t.Fatalf("expected ErrTitleTooLong, got %v", err)
	}
}

func TestCompleteTaskSetsTimestampOnce(t *testing.T) {
	svc, store, clock := newTaskFixture()

	task, err := svc.CreateTask(context.Background(), 1, nlp.Parsed{Title: "read chapter"}, model.Recurrence{})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	clock.Advance(time.Hour)
	ok, err := svc.CompleteTask(context.Background(), 1, task.ID)
	if err != nil || !ok {
		t.Fatalf("CompleteTask = %v, %v", ok, err)
	}

	saved, _ := store.Get(context.Background(), task.ID)
	if saved.Status != model.StatusCompleted {
		t.Errorf("status = %q, want completed", saved.Status)
	}
	if saved.CompletedAt == nil || !saved.CompletedAt.Equal(taskNow.Add(time.Hour)) {
		t.Errorf("completedAt = %v, want the completion instant", saved.CompletedAt)
	}

	// A second completion finds no completable row.
	if ok, _ := svc.CompleteTask(context.Background(), 1, task.ID); ok {
		t.Error("second completion must report false")
	}
}

func TestCompleteTaskWrongOwner(t *testing.T) {
	svc, _, _ := newTaskFixture()

	task, _ := svc.CreateTask(context.Background(), 1, nlp.Parsed{Title: "mine"}, model.Recurrence{})
	if ok, _ := svc.CompleteTask(context.Background(), 2, task.ID); ok {
		t.Error("another owner must not be able to complete the task")
	}
}

func TestSweepOverdueOnlyFlipsPendingPastDue(t *testing.T) {
	svc, store, clock := newTaskFixture()

	past := taskNow.Add(-time.Hour)
	future := taskNow.Add(time.Hour)

	late, _ := svc.CreateTask(context.Background(), 1, nlp.Parsed{Title: "late", DueAt: &past}, model.Recurrence{})
	ahead, _ := svc.CreateTask(context.Background(), 1, nlp.Parsed{Title: "ahead", DueAt: &future}, model.Recurrence{})
	undated, _ := svc.CreateTask(context.Background(), 1, nlp.Parsed{Title: "undated"}, model.Recurrence{})
	finished, _ := svc.CreateTask(context.Background(), 1, nlp.Parsed{Title: "finished", DueAt: &past}, model.Recurrence{})
	if ok, _ := svc.CompleteTask(context.Background(), 1, finished.ID); !ok {
		t.Fatal("setup: completion failed")
	}

	n, err := svc.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("SweepOverdue: %v", err)
	}
	if n != 1 {
		t.Errorf("swept = %d, want 1", n)
	}

	for _, check := range []struct {
		id   uint
		want model.Status
	}{
		{late.ID, model.StatusOverdue},
		{ahead.ID, model.StatusPending},
		{undated.ID, model.StatusPending},
		{finished.ID, model.StatusCompleted},
	} {
		saved, _ := store.Get(context.Background(), check.id)
		if saved.Status != check.want {
			t.Errorf("task %d status = %q, want %q", check.id, saved.Status, check.want)
		}
	}

	// Status does not drift between sweeps: moving the clock without
	// sweeping changes nothing, and a second sweep flips the newly late.
	clock.Advance(2 * time.Hour)
	saved, _ := store.Get(context.Background(), ahead.ID)
	if saved.Status != model.StatusPending {
		t.Error("status must not change without an explicit sweep")
	}

	n, _ = svc.SweepOverdue(context.Background())
	if n != 1 {
		t.Errorf("second sweep = %d, want 1 (the formerly future task)", n)
	}
}

func TestListTasksFilters(t *testing.T) {
	svc, _, _ := newTaskFixture()

	svc.CreateTask(context.Background(), 1, nlp.Parsed{Title: "a", Category: model.CategoryStudy, Priority: model.PriorityHigh}, model.Recurrence{})
	svc.CreateTask(context.Background(), 1, nlp.Parsed{Title: "b", Category: model.CategoryWork, Priority: model.PriorityLow}, model.Recurrence{})
	svc.CreateTask(context.Background(), 2, nlp.Parsed{Title: "c", Category: model.CategoryStudy}, model.Recurrence{})

	study, err := svc.ListTasks(context.Background(), 1, repository.TaskFilter{Category: model.CategoryStudy})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(study) != 1 || study[0].Title != "a" {
		t.Errorf("study tasks = %v, want only owner 1's study task", study)
	}

	all, _ := svc.ListTasks(context.Background(), 1, repository.TaskFilter{})
	if len(all) != 2 {
		t.Errorf("owner 1 tasks = %d, want 2", len(all))
	}
}
