package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/repository"
)

// SummaryService builds the daily per-user digest text.
type SummaryService struct {
	store TaskStore
}

func NewSummaryService(store TaskStore) *SummaryService {
	return &SummaryService{store: store}
}

// DailySummary lists a user's open and overdue tasks, soonest deadline
// first. Returns an empty string when there is nothing to report.
func (s *SummaryService) DailySummary(ctx context.Context, ownerID uint, now time.Time) (string, error) {
	pending, err := s.store.Query(ctx, ownerID, repository.TaskFilter{Status: model.StatusPending})
	if err != nil {
		return "", err
	}
	overdue, err := s.store.Query(ctx, ownerID, repository.TaskFilter{Status: model.StatusOverdue})
	if err != nil {
		return "", err
	}
	if len(pending) == 0 && len(overdue) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 ملخص اليوم — %s\n", now.Format("2006-01-02"))

	if len(overdue) > 0 {
		b.WriteString("\n⚠️ متأخرة:\n")
		for _, task := range overdue {
			writeTaskLine(&b, task, now)
		}
	}
	if len(pending) > 0 {
		b.WriteString("\n🔹 قيد التنفيذ:\n")
		for _, task := range pending {
			writeTaskLine(&b, task, now)
		}
	}

	return strings.TrimSpace(b.String()), nil
}

func writeTaskLine(b *strings.Builder, task model.Task, now time.Time) {
	fmt.Fprintf(b, "• [%d] %s", task.ID, strings.TrimSpace(task.Title))
	if task.Priority == model.PriorityHigh {
		b.WriteString(" ❗")
	}
	if task.DueAt != nil {
		fmt.Fprintf(b, " (⏰ %s)", task.DueAt.In(now.Location()).Format("2006-01-02 15:04"))
	}
	b.WriteByte('\n')
}
