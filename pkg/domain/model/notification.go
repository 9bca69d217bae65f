package model

import (
	"time"

	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// Notification is the persisted copy of a fan-out event. Recipients that are
// not connected when the realtime push happens read it from here.
type Notification struct {
	ID        types.NotificationID   `json:"id"`
	Type      types.NotificationType `json:"type"`
	Message   string                 `json:"message"`
	UserID    types.UserID           `json:"user_id"`
	IsRead    bool                   `json:"is_read"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Clone returns a deep copy of the notification
func (n *Notification) Clone() *Notification {
	copied := *n
	if n.Metadata != nil {
		copied.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			copied.Metadata[k] = v
		}
	}
	return &copied
}

// Event is the realtime wire representation pushed to a connected recipient
type Event struct {
	Type     types.NotificationType `json:"type"`
	Message  string                 `json:"message"`
	Metadata map[string]string      `json:"metadata,omitempty"`
}

// EventFrom builds the realtime event for a persisted notification
func EventFrom(n *Notification) Event {
	return Event{
		Type:     n.Type,
		Message:  n.Message,
		Metadata: n.Metadata,
	}
}
