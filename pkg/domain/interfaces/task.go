package interfaces

import (
	"context"

	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// TaskRepository defines the interface for Task data access
type TaskRepository interface {
	// Create persists a new task with an auto-generated ID
	Create(ctx context.Context, task *model.Task) (*model.Task, error)

	// Get retrieves a task by ID
	Get(ctx context.Context, id types.TaskID) (*model.Task, error)

	// Update replaces an existing task document. ActionID is immutable: the
	// stored value wins if the two differ.
	Update(ctx context.Context, task *model.Task) (*model.Task, error)

	// Delete deletes a task by ID
	Delete(ctx context.Context, id types.TaskID) error

	// ListByAction retrieves all tasks derived from an action
	ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.Task, error)

	// GetByActionAndType retrieves the derived task for (action, type) if any.
	// Derived tasks are keyed on this pair so retried derivation stays idempotent.
	GetByActionAndType(ctx context.Context, actionID types.ActionID, taskType types.TaskType) (*model.Task, error)

	// DeleteByAction deletes every task derived from the action. Deleting an
	// action with zero tasks is not an error.
	DeleteByAction(ctx context.Context, actionID types.ActionID) error

	// ListByAssignee retrieves all tasks assigned to a user, newest first
	ListByAssignee(ctx context.Context, assignee types.UserID) ([]*model.Task, error)
}
