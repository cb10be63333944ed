package model

import (
	"sort"
	"strings"
	"time"
)

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Category groups tasks by area of life.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryStudy    Category = "study"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryReminder Category = "reminder"
	CategoryGeneral  Category = "general"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Frequency is the unit a recurrence rule steps by.
type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

// Recurrence describes how a task repeats. A zero Frequency means the task
// does not repeat.
type Recurrence struct {
	Frequency Frequency  `gorm:"column:recur_frequency"`
	Interval  int        `gorm:"column:recur_interval"`
	Until     *time.Time `gorm:"column:recur_until"`
}

// IsZero reports whether no recurrence rule is set.
func (r Recurrence) IsZero() bool {
	return r.Frequency == ""
}

// Task represents a single item owned by a user.
type Task struct {
	ID          uint `gorm:"primaryKey"`
	OwnerID     uint `gorm:"index"`
	Title       string
	Description string
	Priority    Priority `gorm:"default:medium;index"`
	Category    Category `gorm:"default:general;index"`
	DueAt       *time.Time
	Tags        string     `gorm:"column:tags"` // space-joined, normalized
	Recurrence  Recurrence `gorm:"embedded"`
	Status      Status     `gorm:"default:pending;index"`
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// TagList returns the stored tags as a sorted, deduplicated slice.
func (t Task) TagList() []string {
	if strings.TrimSpace(t.Tags) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range strings.Fields(t.Tags) {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// JoinTags normalizes a tag set into the stored column form.
func JoinTags(tags []string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return strings.Join(out, " ")
}
