package types

import "fmt"

// ActionKind distinguishes project-scoped actions from global (cross-project)
// actions. Global actions carry a realization/follow-up responsible split and
// may compose one level of sub-actions.
type ActionKind string

const (
	ActionKindProject ActionKind = "project"
	ActionKindGlobal  ActionKind = "global"
)

// IsValid checks if the action kind is valid
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionKindProject, ActionKindGlobal:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action kind
func (k ActionKind) String() string {
	return string(k)
}

// ParseActionKind parses a string into an ActionKind
func ParseActionKind(s string) (ActionKind, error) {
	kind := ActionKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid action kind: %s", s)
	}
	return kind, nil
}
