package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
)

// UserRepository maps Telegram identities to owner rows.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertFromTelegram resolves the owner row for an incoming message,
// creating it on first contact and refreshing the profile fields otherwise.
// Every command handler goes through here, so task ownership always has a
// backing row.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	db := r.db.WithContext(ctx)

	var user model.User
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = model.User{
			TelegramID: telegramID,
			FirstName:  firstName,
			LastName:   lastName,
			Username:   username,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	updates := map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"username":   username,
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListWithOpenTasks returns only the users the daily broadcast has
// something to say to: owners of at least one pending or overdue task.
func (r *UserRepository) ListWithOpenTasks(ctx context.Context) ([]model.User, error) {
	open := r.db.Model(&model.Task{}).
		Select("owner_id").
		Where("status IN ?", []model.Status{model.StatusPending, model.StatusOverdue})

	var users []model.User
	if err := r.db.WithContext(ctx).Where("id IN (?)", open).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
