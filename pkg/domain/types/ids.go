package types

// ActionID identifies an Action. IDs are allocated per collection by the
// repository backend (auto-increment counter).
type ActionID int64

// TaskID identifies a Task.
type TaskID int64

// UserID is an opaque user identifier assigned by the identity provider.
type UserID string

// NotificationID identifies a persisted Notification (UUID).
type NotificationID string

func (id UserID) String() string         { return string(id) }
func (id NotificationID) String() string { return string(id) }
