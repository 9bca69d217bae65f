package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// NotificationUseCase is the read path for persisted notifications, the copy
// disconnected recipients catch up from
type NotificationUseCase struct {
	repo interfaces.Repository
}

// NewNotificationUseCase creates the notification use case
func NewNotificationUseCase(repo interfaces.Repository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo}
}

// ListForUser retrieves the user's notifications, newest first
func (uc *NotificationUseCase) ListForUser(ctx context.Context, userID types.UserID) ([]*model.Notification, error) {
	notifications, err := uc.repo.Notification().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V(UserIDKey, userID))
	}
	return notifications, nil
}

// MarkRead marks a notification as read
func (uc *NotificationUseCase) MarkRead(ctx context.Context, id types.NotificationID) error {
	if err := uc.repo.Notification().MarkRead(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to mark notification read", goerr.V("notification_id", id))
	}
	return nil
}

// CountUnread returns the user's unread notification count
func (uc *NotificationUseCase) CountUnread(ctx context.Context, userID types.UserID) (int, error) {
	count, err := uc.repo.Notification().CountUnread(ctx, userID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count unread notifications", goerr.V(UserIDKey, userID))
	}
	return count, nil
}
