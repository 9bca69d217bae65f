package types

import "fmt"

// ActionStatus represents the lifecycle status of an action
type ActionStatus string

const (
	ActionStatusPending    ActionStatus = "pending"
	ActionStatusInProgress ActionStatus = "in_progress"
	ActionStatusInReview   ActionStatus = "in_review"
	ActionStatusCompleted  ActionStatus = "completed"
	ActionStatusCancelled  ActionStatus = "cancelled"
)

// AllActionStatuses returns all valid action statuses
func AllActionStatuses() []ActionStatus {
	return []ActionStatus{
		ActionStatusPending,
		ActionStatusInProgress,
		ActionStatusInReview,
		ActionStatusCompleted,
		ActionStatusCancelled,
	}
}

// IsValid checks if the action status is valid
func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusPending,
		ActionStatusInProgress,
		ActionStatusInReview,
		ActionStatusCompleted,
		ActionStatusCancelled:
		return true
	default:
		return false
	}
}

// IsValidFor checks whether the status is allowed for the given action kind.
// Global actions have no review stage.
func (s ActionStatus) IsValidFor(kind ActionKind) bool {
	if !s.IsValid() {
		return false
	}
	if kind == ActionKindGlobal && s == ActionStatusInReview {
		return false
	}
	return true
}

// String returns the string representation of the action status
func (s ActionStatus) String() string {
	return string(s)
}

// ParseActionStatus parses a string into an ActionStatus
func ParseActionStatus(s string) (ActionStatus, error) {
	status := ActionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid action status: %s", s)
	}
	return status, nil
}
