package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// TaskSyncService keeps derived tasks in lockstep with their action. Every
// action owns one realization task, and global actions additionally own one
// follow-up task; the pair (action ID, task type) identifies a derived task,
// which makes derivation safe to retry.
type TaskSyncService struct {
	repo interfaces.Repository
}

// NewTaskSyncService creates the sync service over the given repository
func NewTaskSyncService(repo interfaces.Repository) *TaskSyncService {
	return &TaskSyncService{repo: repo}
}

// DeriveFrom creates the derived tasks for a freshly created action. Existing
// (action, type) tasks are left alone, so a retried derivation never
// duplicates work.
func (s *TaskSyncService) DeriveFrom(ctx context.Context, action *model.Action) ([]*model.Task, error) {
	tasks := make([]*model.Task, 0, 2)

	for _, taskType := range derivedTypes(action) {
		existing, err := s.repo.Task().GetByActionAndType(ctx, action.ID, taskType)
		if err == nil {
			tasks = append(tasks, existing)
			continue
		}
		if !isNotFound(err) {
			return nil, goerr.Wrap(err, "failed to look up derived task",
				goerr.V(ActionIDKey, action.ID), goerr.V("task_type", taskType))
		}

		created, err := s.repo.Task().Create(ctx, buildDerivedTask(action, taskType))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create derived task",
				goerr.V(ActionIDKey, action.ID), goerr.V("task_type", taskType))
		}
		tasks = append(tasks, created)
	}

	return tasks, nil
}

// Reconcile rewrites the derived tasks after their action changed. Shared
// fields flow from the action; task-local state (progress, comments, files,
// subtasks) is untouched unless the action just completed, which forces every
// derived task to done.
func (s *TaskSyncService) Reconcile(ctx context.Context, action *model.Action) error {
	for _, taskType := range derivedTypes(action) {
		task, err := s.repo.Task().GetByActionAndType(ctx, action.ID, taskType)
		if err != nil {
			if isNotFound(err) {
				// Derivation was interrupted before this task existed; recreate it
				if _, err := s.repo.Task().Create(ctx, buildDerivedTask(action, taskType)); err != nil {
					return goerr.Wrap(err, "failed to recreate derived task",
						goerr.V(ActionIDKey, action.ID), goerr.V("task_type", taskType))
				}
				continue
			}
			return goerr.Wrap(err, "failed to look up derived task",
				goerr.V(ActionIDKey, action.ID), goerr.V("task_type", taskType))
		}

		if !applyActionFields(task, action, taskType) {
			continue
		}
		if _, err := s.repo.Task().Update(ctx, task); err != nil {
			return goerr.Wrap(err, "failed to reconcile derived task",
				goerr.V(ActionIDKey, action.ID), goerr.V(TaskIDKey, task.ID))
		}
	}
	return nil
}

// DeleteFor removes every task derived from the action. It is idempotent:
// deleting for an action with no tasks succeeds.
func (s *TaskSyncService) DeleteFor(ctx context.Context, actionID types.ActionID) error {
	if err := s.repo.Task().DeleteByAction(ctx, actionID); err != nil {
		return goerr.Wrap(err, "failed to delete derived tasks",
			goerr.V(ActionIDKey, actionID))
	}
	return nil
}

func derivedTypes(action *model.Action) []types.TaskType {
	if action.Kind == types.ActionKindGlobal {
		return []types.TaskType{types.TaskTypeRealization, types.TaskTypeFollowup}
	}
	return []types.TaskType{types.TaskTypeRealization}
}

func assigneeFor(action *model.Action, taskType types.TaskType) types.UserID {
	if taskType == types.TaskTypeFollowup {
		return action.ResponsibleFollowup
	}
	return action.Responsible
}

func buildDerivedTask(action *model.Action, taskType types.TaskType) *model.Task {
	status := types.TaskStatusTodo
	if action.Status == types.ActionStatusCompleted {
		status = types.TaskStatusDone
	}
	return &model.Task{
		Title:           action.Title,
		Description:     action.Content,
		Assignee:        assigneeFor(action, taskType),
		Creator:         action.Manager,
		StartDate:       action.StartDate,
		EndDate:         action.EndDate,
		Status:          status,
		Progress:        status.Progress(),
		ActionID:        action.ID,
		Type:            taskType,
		Category:        action.Category,
		NeedsValidation: action.NeedsValidation,
	}
}

// applyActionFields copies action-owned fields onto the derived task and
// reports whether anything changed
func applyActionFields(task *model.Task, action *model.Action, taskType types.TaskType) bool {
	changed := false

	set := func(dst *string, v string) {
		if *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&task.Title, action.Title)
	set(&task.Description, action.Content)
	set(&task.Category, action.Category)

	if assignee := assigneeFor(action, taskType); task.Assignee != assignee {
		task.Assignee = assignee
		changed = true
	}
	if !task.StartDate.Equal(action.StartDate) {
		task.StartDate = action.StartDate
		changed = true
	}
	if !task.EndDate.Equal(action.EndDate) {
		task.EndDate = action.EndDate
		changed = true
	}
	if task.NeedsValidation != action.NeedsValidation {
		task.NeedsValidation = action.NeedsValidation
		changed = true
	}
	if action.Status == types.ActionStatusCompleted && task.Status != types.TaskStatusDone {
		task.Status = types.TaskStatusDone
		task.Progress = types.TaskStatusDone.Progress()
		changed = true
	}

	return changed
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
