package interfaces

import (
	"context"

	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// NotificationRepository defines the interface for persisted notifications
type NotificationRepository interface {
	// Create persists a notification
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)

	// ListByUser retrieves a user's notifications, newest first
	ListByUser(ctx context.Context, userID types.UserID) ([]*model.Notification, error)

	// MarkRead marks a notification as read
	MarkRead(ctx context.Context, id types.NotificationID) error

	// CountUnread returns the number of unread notifications for a user
	CountUnread(ctx context.Context, userID types.UserID) (int, error)
}
