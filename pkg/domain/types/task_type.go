package types

import "fmt"

// TaskType tags a derived task with the responsibility it tracks. Personal
// tasks (not derived from an action) carry no type.
type TaskType string

const (
	TaskTypeRealization TaskType = "realization"
	TaskTypeFollowup    TaskType = "followup"
)

// IsValid checks if the task type is valid
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeRealization, TaskTypeFollowup:
		return true
	default:
		return false
	}
}

// String returns the string representation of the task type
func (t TaskType) String() string {
	return string(t)
}

// ParseTaskType parses a string into a TaskType
func ParseTaskType(s string) (TaskType, error) {
	tt := TaskType(s)
	if !tt.IsValid() {
		return "", fmt.Errorf("invalid task type: %s", s)
	}
	return tt, nil
}
