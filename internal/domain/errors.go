package domain

import "errors"

var (
	// ErrNotRegistered means the user has no record or no group/teacher key yet.
	ErrNotRegistered = errors.New("user is not registered")
	// ErrUnconfirmed rejects bulk mutations invoked without the confirm token.
	ErrUnconfirmed = errors.New("confirmation required")
	// ErrInvalidNotifyHour rejects hours outside NotifyHours.
	ErrInvalidNotifyHour = errors.New("unsupported notify hour")
	// ErrUserNotFound is returned by stores for unknown user ids.
	ErrUserNotFound = errors.New("user not found")
	// ErrGroupNotFound is returned by stores for unknown group ids.
	ErrGroupNotFound = errors.New("group not found")
)
