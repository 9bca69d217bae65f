package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
	"github.com/petroops-lab/derrick/pkg/utils/logging"
)

// TaskUseCase covers the task-side operations: status moves with derived
// progress, manual progress edits, and personal tasks. Task status never
// cascades upward to the owning action.
type TaskUseCase struct {
	repo interfaces.Repository
}

// NewTaskUseCase creates the task use case over the given repository
func NewTaskUseCase(repo interfaces.Repository) *TaskUseCase {
	return &TaskUseCase{repo: repo}
}

// Get retrieves a task by ID
func (uc *TaskUseCase) Get(ctx context.Context, id types.TaskID) (*model.Task, error) {
	return uc.getTask(ctx, id)
}

// getTask loads a task, mapping a missing document to ErrTaskNotFound and
// keeping store failures distinct so they surface as 5xx, not 404
func (uc *TaskUseCase) getTask(ctx context.Context, id types.TaskID) (*model.Task, error) {
	task, err := uc.repo.Task().Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrTaskNotFound, "task not found", goerr.V(TaskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to load task", goerr.V(TaskIDKey, id))
	}
	return task, nil
}

// MarkStatus moves the task to the given status and derives its progress
// from it: todo 0, in_progress 50, in_review 75, done 100.
func (uc *TaskUseCase) MarkStatus(ctx context.Context, id types.TaskID, status types.TaskStatus, actorID types.UserID) (*model.Task, error) {
	if !status.IsValid() {
		return nil, goerr.Wrap(model.ErrInvalidInput, "invalid task status", goerr.V("status", status))
	}

	task, err := uc.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status == status {
		return task, nil
	}

	task.Status = status
	task.Progress = status.Progress()

	updated, err := uc.repo.Task().Update(ctx, task)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update task status", goerr.V(TaskIDKey, id))
	}

	logging.From(ctx).Info("task status changed",
		"task_id", id, "status", status, "actor_id", actorID)

	return updated, nil
}

// UpdateProgress sets the task progress without touching its status. The two
// move independently: status changes derive progress, progress edits do not
// derive status.
func (uc *TaskUseCase) UpdateProgress(ctx context.Context, id types.TaskID, progress int) (*model.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, goerr.Wrap(model.ErrInvalidInput, "progress must be within 0..100",
			goerr.V("progress", progress))
	}

	task, err := uc.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Progress == progress {
		return task, nil
	}

	task.Progress = progress

	updated, err := uc.repo.Task().Update(ctx, task)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update task progress", goerr.V(TaskIDKey, id))
	}
	return updated, nil
}

// CreatePersonal creates a free-standing task with no action behind it
func (uc *TaskUseCase) CreatePersonal(ctx context.Context, input *model.CreateTaskInput) (*model.Task, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.repo.User().Get(ctx, input.Assignee); err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrUserNotFound, "assignee does not exist",
				goerr.V(UserIDKey, input.Assignee))
		}
		return nil, goerr.Wrap(err, "failed to resolve assignee", goerr.V(UserIDKey, input.Assignee))
	}

	status := input.Status
	if status == "" {
		status = types.TaskStatusTodo
	}

	created, err := uc.repo.Task().Create(ctx, &model.Task{
		Title:           input.Title,
		Description:     input.Description,
		Assignee:        input.Assignee,
		Creator:         input.Creator,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          status,
		Progress:        status.Progress(),
		Category:        input.Category,
		NeedsValidation: input.NeedsValidation,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create personal task")
	}
	return created, nil
}

// ListByAssignee retrieves all tasks assigned to the user, newest first
func (uc *TaskUseCase) ListByAssignee(ctx context.Context, assignee types.UserID) ([]*model.Task, error) {
	tasks, err := uc.repo.Task().ListByAssignee(ctx, assignee)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks by assignee",
			goerr.V(UserIDKey, assignee))
	}
	return tasks, nil
}

// ListByAction retrieves the tasks derived from an action
func (uc *TaskUseCase) ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.Task, error) {
	tasks, err := uc.repo.Task().ListByAction(ctx, actionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks by action",
			goerr.V(ActionIDKey, actionID))
	}
	return tasks, nil
}
