package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/nlp"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/repository"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/schedule"
	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/service"
)

// Bot routes chat commands into the task and reminder services. It keeps no
// conversational state; every command is self-contained.
type Bot struct {
	api       *tgbotapi.BotAPI
	users     *repository.UserRepository
	tasks     *service.TaskService
	reminders *service.ReminderService
	summaries *service.SummaryService
	clock     schedule.Clock
	logger    *slog.Logger
}

func New(
	api *tgbotapi.BotAPI,
	users *repository.UserRepository,
	tasks *service.TaskService,
	reminders *service.ReminderService,
	summaries *service.SummaryService,
	clock schedule.Clock,
	logger *slog.Logger,
) *Bot {
	return &Bot{
		api:       api,
		users:     users,
		tasks:     tasks,
		reminders: reminders,
		summaries: summaries,
		clock:     clock,
		logger:    logger,
	}
}

// Start consumes updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.UpsertFromTelegram(ctx, msg.From.ID, msg.From.FirstName, msg.From.LastName, msg.From.UserName)
	if err != nil {
		b.logger.Error("upsert user", "telegram_id", msg.From.ID, "error", err)
		return
	}

	var reply string
	switch msg.Command() {
	case "task":
		reply = b.addTask(ctx, user, msg)
	case "tasks":
		reply = b.listTasks(ctx, user)
	case "done":
		reply = b.completeTask(ctx, user, msg.CommandArguments())
	case "remind":
		reply = b.addReminder(ctx, msg)
	case "cancelremind":
		reply = b.cancelReminder(ctx, msg.CommandArguments())
	case "summary":
		reply = b.summary(ctx, user)
	default:
		return
	}

	if reply == "" {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
		b.logger.Error("send reply", "chat", msg.Chat.ID, "error", err)
	}
}

func (b *Bot) addTask(ctx context.Context, user *model.User, msg *tgbotapi.Message) string {
	parsed, err := nlp.Parse(msg.CommandArguments(), b.clock.Now())
	if err != nil {
		return "الرجاء كتابة وصف المهمة بعد الأمر.\nUsage: /task buy milk tomorrow #shopping"
	}

	task, err := b.tasks.CreateTask(ctx, user.ID, parsed, model.Recurrence{})
	if err != nil {
		b.logger.Error("create task", "owner", user.ID, "error", err)
		return "تعذر حفظ المهمة."
	}
	return fmt.Sprintf("✅ تمت إضافة المهمة [%d] %s", task.ID, task.Title)
}

func (b *Bot) listTasks(ctx context.Context, user *model.User) string {
	tasks, err := b.tasks.ListTasks(ctx, user.ID, repository.TaskFilter{Status: model.StatusPending})
	if err != nil {
		b.logger.Error("list tasks", "owner", user.ID, "error", err)
		return "تعذر جلب المهام."
	}
	if len(tasks) == 0 {
		return "لا توجد مهام قيد التنفيذ."
	}

	var sb strings.Builder
	for _, task := range tasks {
		fmt.Fprintf(&sb, "[%d] %s", task.ID, task.Title)
		if task.DueAt != nil {
			fmt.Fprintf(&sb, " — %s", task.DueAt.Format("2006-01-02 15:04"))
		}
		sb.WriteByte('\n')
	}
	return strings.TrimSpace(sb.String())
}

func (b *Bot) completeTask(ctx context.Context, user *model.User, args string) string {
	id, err := strconv.ParseUint(strings.TrimSpace(args), 10, 32)
	if err != nil {
		return "Usage: /done <task id>"
	}
	ok, err := b.tasks.CompleteTask(ctx, user.ID, uint(id))
	if err != nil {
		b.logger.Error("complete task", "task", id, "error", err)
		return "تعذر إكمال المهمة."
	}
	if !ok {
		return "لم يتم العثور على مهمة مفتوحة بهذا الرقم."
	}
	return "🎉 أحسنت! تم إنجاز المهمة."
}

// addReminder expects "<minutes> <message>" and schedules the reminder for
// the calling chat.
func (b *Bot) addReminder(ctx context.Context, msg *tgbotapi.Message) string {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		return "Usage: /remind <minutes> <message>"
	}
	minutes, err := strconv.Atoi(args[0])
	if err != nil || minutes <= 0 {
		return "Usage: /remind <minutes> <message>"
	}

	fireAt := b.clock.Now().Add(time.Duration(minutes) * time.Minute)
	id, err := b.reminders.Add(ctx, msg.Chat.ID, fireAt, strings.Join(args[1:], " "))
	if err != nil {
		if err == service.ErrPastFireTime {
			return "وقت التذكير يجب أن يكون في المستقبل."
		}
		b.logger.Error("add reminder", "chat", msg.Chat.ID, "error", err)
		return "تعذر إنشاء التذكير."
	}
	return fmt.Sprintf("⏰ تم ضبط التذكير [%d] بعد %d دقيقة.", id, minutes)
}

func (b *Bot) cancelReminder(ctx context.Context, args string) string {
	id, err := strconv.ParseUint(strings.TrimSpace(args), 10, 32)
	if err != nil {
		return "Usage: /cancelremind <reminder id>"
	}
	if !b.reminders.CancelByID(ctx, uint(id)) {
		return "لم يتم العثور على تذكير فعّال بهذا الرقم."
	}
	return "تم إلغاء التذكير."
}

func (b *Bot) summary(ctx context.Context, user *model.User) string {
	text, err := b.summaries.DailySummary(ctx, user.ID, b.clock.Now())
	if err != nil {
		b.logger.Error("build summary", "owner", user.ID, "error", err)
		return "تعذر إنشاء الملخص."
	}
	if text == "" {
		return "لا توجد مهام لعرضها اليوم. 🎉"
	}
	return text
}

// BroadcastSummaries sends the daily digest to every user with open tasks;
// used by the cron job.
func (b *Bot) BroadcastSummaries(ctx context.Context) error {
	users, err := b.users.ListWithOpenTasks(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	now := b.clock.Now()
	for _, user := range users {
		text, err := b.summaries.DailySummary(ctx, user.ID, now)
		if err != nil {
			b.logger.Error("summary", "owner", user.ID, "error", err)
			continue
		}
		if text == "" {
			continue
		}
		if _, err := b.api.Send(tgbotapi.NewMessage(user.TelegramID, text)); err != nil {
			b.logger.Error("broadcast summary", "telegram_id", user.TelegramID, "error", err)
		}
	}
	return nil
}
