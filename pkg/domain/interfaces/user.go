package interfaces

import (
	"context"

	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// UserRepository defines the interface for user reference data
type UserRepository interface {
	// Get retrieves a user by ID
	Get(ctx context.Context, id types.UserID) (*model.User, error)

	// Put creates or replaces a user record
	Put(ctx context.Context, user *model.User) error

	// List retrieves all users
	List(ctx context.Context) ([]*model.User, error)
}
