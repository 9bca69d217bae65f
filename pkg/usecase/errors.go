package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrActionNotFound = errors.New("action not found")
	ErrTaskNotFound   = errors.New("task not found")
	ErrUserNotFound   = errors.New("user not found")

	// State errors
	ErrActionDeleted  = errors.New("action was deleted concurrently")
	ErrTaskNotDerived = errors.New("task is not derived from an action")
)

// Context keys for error values
const (
	ActionIDKey = "action_id"
	TaskIDKey   = "task_id"
	UserIDKey   = "user_id"
)
