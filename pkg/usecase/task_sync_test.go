package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
	"github.com/petroops-lab/derrick/pkg/repository/memory"
)

func TestTaskSyncService_DeriveFrom(t *testing.T) {
	ctx := context.Background()

	t.Run("retried derivation does not duplicate tasks", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		// Create already derived; a second pass must find the same pair tasks
		tasks, err := uc.Sync.DeriveFrom(ctx, created)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(2)

		all, err := repo.Task().ListByAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)
	})

	t.Run("completed action derives done tasks", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		in := projectActionInput()
		in.Status = types.ActionStatusCompleted
		created, err := uc.Action.Create(ctx, in)
		gt.NoError(t, err).Required()

		task, err := repo.Task().GetByActionAndType(ctx, created.ID, types.TaskTypeRealization)
		gt.NoError(t, err).Required()
		gt.Value(t, task.Status).Equal(types.TaskStatusDone)
		gt.Number(t, task.Progress).Equal(100)
	})
}

func TestTaskSyncService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("recreates a missing derived task", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		followup, err := repo.Task().GetByActionAndType(ctx, created.ID, types.TaskTypeFollowup)
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Task().Delete(ctx, followup.ID))

		gt.NoError(t, uc.Sync.Reconcile(ctx, created)).Required()

		restored, err := repo.Task().GetByActionAndType(ctx, created.ID, types.TaskTypeFollowup)
		gt.NoError(t, err).Required()
		gt.Value(t, restored.Assignee).Equal(types.UserID("u2"))
	})

	t.Run("task-local progress survives reconciliation", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, projectActionInput())
		gt.NoError(t, err).Required()

		task, err := repo.Task().GetByActionAndType(ctx, created.ID, types.TaskTypeRealization)
		gt.NoError(t, err).Required()
		_, err = uc.Task.UpdateProgress(ctx, task.ID, 40)
		gt.NoError(t, err).Required()

		title := "Replace wellhead valve and flange"
		_, err = uc.Action.Update(ctx, created.ID, &model.UpdateActionInput{Title: &title})
		gt.NoError(t, err).Required()

		after, err := repo.Task().Get(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, after.Title).Equal(title)
		gt.Number(t, after.Progress).Equal(40)
	})
}

func TestTaskSyncService_DeleteFor(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent on an action with no tasks", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, projectActionInput())
		gt.NoError(t, err).Required()

		gt.NoError(t, uc.Sync.DeleteFor(ctx, created.ID))
		gt.NoError(t, uc.Sync.DeleteFor(ctx, created.ID))

		tasks, err := repo.Task().ListByAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(0)
	})
}
