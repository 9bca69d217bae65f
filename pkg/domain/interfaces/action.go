package interfaces

import (
	"context"

	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// ActionRepository defines the interface for Action data access
type ActionRepository interface {
	// Create persists a new action with an auto-generated ID
	Create(ctx context.Context, action *model.Action) (*model.Action, error)

	// Get retrieves an action by ID
	Get(ctx context.Context, id types.ActionID) (*model.Action, error)

	// List retrieves actions matching the equality filter, newest first
	List(ctx context.Context, filter *model.ListActionsFilter) ([]*model.Action, error)

	// Update replaces an existing action document
	Update(ctx context.Context, action *model.Action) (*model.Action, error)

	// Delete deletes an action by ID
	Delete(ctx context.Context, id types.ActionID) error

	// ListByParent retrieves the sub-actions of a global action
	ListByParent(ctx context.Context, parentID types.ActionID) ([]*model.Action, error)

	// Count returns the number of actions matching the filter
	Count(ctx context.Context, filter *model.ListActionsFilter) (int, error)
}
