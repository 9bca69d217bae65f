package interfaces

import (
	"context"

	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// RealtimePublisher pushes events to connected recipients. Delivery is
// best-effort: publishing to a disconnected user is not an error, the
// recipient relies on the persisted notification instead.
type RealtimePublisher interface {
	// Publish sends the event to the user's live connections, if any
	Publish(ctx context.Context, userID types.UserID, event model.Event) error

	// IsConnected reports whether the user currently has a live connection
	IsConnected(userID types.UserID) bool
}
