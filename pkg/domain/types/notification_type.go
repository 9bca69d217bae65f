package types

import "fmt"

// NotificationType classifies a persisted notification
type NotificationType string

const (
	NotificationActionAssigned         NotificationType = "ACTION_ASSIGNED"
	NotificationActionAssignedFollowup NotificationType = "ACTION_ASSIGNED_FOLLOWUP"
	NotificationActionStatusChanged    NotificationType = "ACTION_STATUS_CHANGED"
	NotificationActionContentChanged   NotificationType = "ACTION_CONTENT_CHANGED"
	NotificationActionDeleted          NotificationType = "ACTION_DELETED"
)

// IsValid checks if the notification type is valid
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationActionAssigned,
		NotificationActionAssignedFollowup,
		NotificationActionStatusChanged,
		NotificationActionContentChanged,
		NotificationActionDeleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notification type
func (t NotificationType) String() string {
	return string(t)
}

// ParseNotificationType parses a string into a NotificationType
func ParseNotificationType(s string) (NotificationType, error) {
	nt := NotificationType(s)
	if !nt.IsValid() {
		return "", fmt.Errorf("invalid notification type: %s", s)
	}
	return nt, nil
}
