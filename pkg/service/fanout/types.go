package fanout

import (
	"context"

	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// Input describes one notification to deliver
type Input struct {
	UserID   types.UserID
	Type     types.NotificationType
	Message  string
	Metadata map[string]string
}

// Service delivers notifications to recipients. Persistence is awaited so the
// notification is durable before the caller proceeds; the realtime push and
// the Slack mirror are best-effort and never fail the delivery.
type Service interface {
	// Notify delivers a single notification and returns the persisted record
	Notify(ctx context.Context, input *Input) (*model.Notification, error)

	// NotifyMany delivers notifications to multiple recipients in parallel
	NotifyMany(ctx context.Context, inputs []*Input) error
}
