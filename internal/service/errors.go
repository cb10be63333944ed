package service

import "errors"

var (
	// ErrPastFireTime rejects reminders whose fire time is not in the future.
	ErrPastFireTime = errors.New("fire time must be in the future")
	// ErrTitleTooLong rejects titles over the storage limit.
	ErrTitleTooLong = errors.New("title exceeds 200 characters")
	// ErrNotScheduled means the persisted row could not be armed as an
	// in-memory job (shutdown, or its fire time passed while persisting);
	// the row stays pending and the next restore picks it up.
	ErrNotScheduled = errors.New("reminder persisted but not scheduled; pending until next restore")
)
