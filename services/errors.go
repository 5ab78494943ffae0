package services

import "errors"

var (
	// ErrInvalidTransition is returned when the requested status is not
	// in the allowed-next set of the project's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConcurrencyConflict is returned when another writer committed a
	// transition between this caller's read and write. The caller must
	// re-read and retry.
	ErrConcurrencyConflict = errors.New("project was modified by another user")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("operation not permitted")
	ErrNotFound           = errors.New("record not found")

	ErrSystemRole          = errors.New("system roles cannot be deleted")
	ErrRoleInUse           = errors.New("role has active assignments")
	ErrReplyDepthExceeded  = errors.New("replies to replies are not supported")
	ErrAlreadyAcknowledged = errors.New("comment is already acknowledged")
)
