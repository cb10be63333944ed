package model

import "time"

// Reminder is a persisted scheduled notification. Its row ID doubles as the
// in-memory job id, so a restart re-registers the same job identity.
type Reminder struct {
	ID        uint  `gorm:"primaryKey"`
	ChatID    int64 `gorm:"index"` // delivery target, passed through as-is
	Message   string
	FireAt    time.Time `gorm:"index"`
	Delivered bool      `gorm:"default:false;index"`
	Cancelled bool      `gorm:"default:false"`
	TaskID    *uint     `gorm:"index"` // set when tracking a recurring task
	CreatedAt time.Time
}
