package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
)

// ReminderRepository handles persisted reminder rows. The delivered and
// cancelled flags are only ever flipped through the conditional updates
// below, which keeps restarts and re-entrant fires idempotent.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) FindByID(ctx context.Context, id uint) (*model.Reminder, error) {
	var reminder model.Reminder
	if err := r.db.WithContext(ctx).First(&reminder, id).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// ListPending returns every row still awaiting delivery, oldest fire time
// first, regardless of whether that time has already passed.
func (r *ReminderRepository) ListPending(ctx context.Context) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).
		Where("delivered = ? AND cancelled = ?", false, false).
		Order("fire_at ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// MarkDelivered sets the delivered flag, but only on a row that is neither
// delivered nor cancelled. Returns false when another writer got there
// first — including a cancellation that landed while the job was already
// firing; a cancelled row never becomes delivered.
func (r *ReminderRepository) MarkDelivered(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("id = ? AND delivered = ? AND cancelled = ?", id, false, false).
		Update("delivered", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark reminder delivered: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkCancelled flags a row cancelled unless it was already delivered or
// cancelled. Returns false when there was nothing left to cancel.
func (r *ReminderRepository) MarkCancelled(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("id = ? AND delivered = ? AND cancelled = ?", id, false, false).
		Update("cancelled", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark reminder cancelled: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
