package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	cachemem "github.com/petroops-lab/derrick/pkg/cache/memory"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
	"github.com/petroops-lab/derrick/pkg/repository/memory"
	"github.com/petroops-lab/derrick/pkg/service/fanout"
	"github.com/petroops-lab/derrick/pkg/usecase"
)

func seedUsers(t *testing.T, repo *memory.Memory, ids ...types.UserID) {
	t.Helper()
	ctx := context.Background()
	for _, id := range ids {
		gt.NoError(t, repo.User().Put(ctx, &model.User{
			ID:    id,
			Name:  string(id),
			Email: fmt.Sprintf("%s@example.com", id),
		}))
	}
}

func newUseCases(t *testing.T, repo *memory.Memory) *usecase.UseCases {
	t.Helper()
	return usecase.New(repo,
		usecase.WithFanout(fanout.New(repo.Notification())),
		usecase.WithQueryCache(usecase.NewQueryCache(cachemem.New())),
	)
}

func projectActionInput() *model.CreateActionInput {
	return &model.CreateActionInput{
		Kind:        types.ActionKindProject,
		Title:       "Replace wellhead valve",
		Content:     "Valve on well A-12 is leaking and must be replaced",
		Source:      "weekly inspection",
		Manager:     "mgr",
		Responsible: "u1",
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Category:    "maintenance",
		ProjectID:   "field-a",
	}
}

func globalActionInput() *model.CreateActionInput {
	in := projectActionInput()
	in.Kind = types.ActionKindGlobal
	in.ResponsibleFollowup = "u2"
	in.ProjectID = ""
	return in
}

func TestActionUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("project action derives one realization task", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, projectActionInput())
		gt.NoError(t, err).Required()
		gt.Number(t, int64(created.ID)).NotEqual(0)
		gt.Value(t, created.Status).Equal(types.ActionStatusPending)

		tasks, err := repo.Task().ListByAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1)
		gt.Value(t, tasks[0].Type).Equal(types.TaskTypeRealization)
		gt.Value(t, tasks[0].Assignee).Equal(types.UserID("u1"))
		gt.Value(t, tasks[0].Creator).Equal(types.UserID("mgr"))
		gt.Value(t, tasks[0].Title).Equal(created.Title)
		gt.Value(t, tasks[0].Description).Equal(created.Content)
		gt.Value(t, tasks[0].Status).Equal(types.TaskStatusTodo)
	})

	t.Run("global action derives realization and followup tasks", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		tasks, err := repo.Task().ListByAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(2)

		byType := map[types.TaskType]types.UserID{}
		for _, task := range tasks {
			byType[task.Type] = task.Assignee
		}
		gt.Value(t, byType[types.TaskTypeRealization]).Equal(types.UserID("u1"))
		gt.Value(t, byType[types.TaskTypeFollowup]).Equal(types.UserID("u2"))
	})

	t.Run("assignment notifications reach both responsibles", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		_, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		u1, err := repo.Notification().ListByUser(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Array(t, u1).Length(1)
		gt.Value(t, u1[0].Type).Equal(types.NotificationActionAssigned)

		u2, err := repo.Notification().ListByUser(ctx, "u2")
		gt.NoError(t, err).Required()
		gt.Array(t, u2).Length(1)
		gt.Value(t, u2[0].Type).Equal(types.NotificationActionAssignedFollowup)
	})

	t.Run("global action without followup responsible fails", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		in := globalActionInput()
		in.ResponsibleFollowup = ""
		_, err := uc.Action.Create(ctx, in)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrInvalidInput)).True()
	})

	t.Run("global action rejects in_review status", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		in := globalActionInput()
		in.Status = types.ActionStatusInReview
		_, err := uc.Action.Create(ctx, in)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrInvalidInput)).True()
	})

	t.Run("end date before start date writes nothing", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		in := projectActionInput()
		in.EndDate = in.StartDate.Add(-24 * time.Hour)
		_, err := uc.Action.Create(ctx, in)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrInvalidInput)).True()

		count, err := repo.Action().Count(ctx, &model.ListActionsFilter{})
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(0)
	})

	t.Run("category outside the workspace set fails", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := usecase.New(repo, usecase.WithCategories([]string{"hse", "drilling"}))

		_, err := uc.Action.Create(ctx, projectActionInput())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrInvalidInput)).True()

		in := projectActionInput()
		in.Category = "drilling"
		_, err = uc.Action.Create(ctx, in)
		gt.NoError(t, err)
	})

	t.Run("unknown responsible writes nothing", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr")
		uc := newUseCases(t, repo)

		_, err := uc.Action.Create(ctx, projectActionInput())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrUserNotFound)).True()

		count, err := repo.Action().Count(ctx, &model.ListActionsFilter{})
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(0)
	})
}

func TestActionUseCase_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("responsible change reassigns realization task and notifies once", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2", "u3")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		newResponsible := types.UserID("u3")
		updated, err := uc.Action.Update(ctx, created.ID, &model.UpdateActionInput{
			Responsible: &newResponsible,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Responsible).Equal(newResponsible)

		task, err := repo.Task().GetByActionAndType(ctx, created.ID, types.TaskTypeRealization)
		gt.NoError(t, err).Required()
		gt.Value(t, task.Assignee).Equal(newResponsible)

		// Follow-up assignment is untouched
		followup, err := repo.Task().GetByActionAndType(ctx, created.ID, types.TaskTypeFollowup)
		gt.NoError(t, err).Required()
		gt.Value(t, followup.Assignee).Equal(types.UserID("u2"))

		notifications, err := repo.Notification().ListByUser(ctx, "u3")
		gt.NoError(t, err).Required()
		gt.Array(t, notifications).Length(1)
		gt.Value(t, notifications[0].Type).Equal(types.NotificationActionAssigned)
	})

	t.Run("title change flows to derived tasks", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		title := "Replace wellhead valve (urgent)"
		_, err = uc.Action.Update(ctx, created.ID, &model.UpdateActionInput{Title: &title})
		gt.NoError(t, err).Required()

		tasks, err := repo.Task().ListByAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(2)
		for _, task := range tasks {
			gt.Value(t, task.Title).Equal(title)
		}
	})

	t.Run("source and manager survive updates", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, projectActionInput())
		gt.NoError(t, err).Required()

		content := "Valve replaced, pending pressure test"
		updated, err := uc.Action.Update(ctx, created.ID, &model.UpdateActionInput{Content: &content})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Source).Equal("weekly inspection")
		gt.Value(t, updated.Manager).Equal(types.UserID("mgr"))
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, projectActionInput())
		gt.NoError(t, err).Required()

		updated, err := uc.Action.Update(ctx, created.ID, &model.UpdateActionInput{})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.UpdatedAt).Equal(created.UpdatedAt)
	})

	t.Run("unknown action fails", func(t *testing.T) {
		repo := memory.New()
		uc := newUseCases(t, repo)

		title := "ghost"
		_, err := uc.Action.Update(ctx, types.ActionID(999), &model.UpdateActionInput{Title: &title})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrActionNotFound)).True()
	})

	t.Run("patched end date before stored start date fails", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, projectActionInput())
		gt.NoError(t, err).Required()

		bad := created.StartDate.Add(-time.Hour)
		_, err = uc.Action.Update(ctx, created.ID, &model.UpdateActionInput{EndDate: &bad})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrInvalidInput)).True()
	})
}

func TestActionUseCase_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("completed cascades every derived task to done", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		updated, err := uc.Action.UpdateStatus(ctx, created.ID, types.ActionStatusCompleted)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.ActionStatusCompleted)

		tasks, err := repo.Task().ListByAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(2)
		for _, task := range tasks {
			gt.Value(t, task.Status).Equal(types.TaskStatusDone)
			gt.Number(t, task.Progress).Equal(100)
		}
	})

	t.Run("non-completed status leaves tasks alone", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, projectActionInput())
		gt.NoError(t, err).Required()

		_, err = uc.Action.UpdateStatus(ctx, created.ID, types.ActionStatusInProgress)
		gt.NoError(t, err).Required()

		tasks, err := repo.Task().ListByAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, tasks[0].Status).Equal(types.TaskStatusTodo)
	})

	t.Run("status change notifies responsibles", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		_, err = uc.Action.UpdateStatus(ctx, created.ID, types.ActionStatusCompleted)
		gt.NoError(t, err).Required()

		for _, userID := range []types.UserID{"u1", "u2"} {
			notifications, err := repo.Notification().ListByUser(ctx, userID)
			gt.NoError(t, err).Required()

			var statusChanged int
			for _, n := range notifications {
				if n.Type == types.NotificationActionStatusChanged {
					statusChanged++
				}
			}
			gt.Number(t, statusChanged).Equal(1)
		}
	})

	t.Run("in_review rejected for global kind", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		_, err = uc.Action.UpdateStatus(ctx, created.ID, types.ActionStatusInReview)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrInvalidInput)).True()
	})
}

func TestActionUseCase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("delete leaves zero tasks behind", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		deleted, err := uc.Action.Delete(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, deleted.ID).Equal(created.ID)

		tasks, err := repo.Task().ListByAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(0)

		_, err = repo.Action().Get(ctx, created.ID)
		gt.Error(t, err)
	})

	t.Run("delete notifies responsibles", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		_, err = uc.Action.Delete(ctx, created.ID)
		gt.NoError(t, err).Required()

		notifications, err := repo.Notification().ListByUser(ctx, "u2")
		gt.NoError(t, err).Required()

		var deletedCount int
		for _, n := range notifications {
			if n.Type == types.NotificationActionDeleted {
				deletedCount++
			}
		}
		gt.Number(t, deletedCount).Equal(1)
	})

	t.Run("personal tasks survive action deletion", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		created, err := uc.Action.Create(ctx, projectActionInput())
		gt.NoError(t, err).Required()

		personal, err := uc.Task.CreatePersonal(ctx, &model.CreateTaskInput{
			Title:    "Order spare gaskets",
			Assignee: "u1",
			Creator:  "u1",
		})
		gt.NoError(t, err).Required()

		_, err = uc.Action.Delete(ctx, created.ID)
		gt.NoError(t, err).Required()

		kept, err := repo.Task().Get(ctx, personal.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, kept.Title).Equal("Order spare gaskets")
	})

	t.Run("unknown action fails", func(t *testing.T) {
		repo := memory.New()
		uc := newUseCases(t, repo)

		_, err := uc.Action.Delete(ctx, types.ActionID(404))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrActionNotFound)).True()
	})
}

func TestActionUseCase_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("pagination over 25 matches", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		for i := 0; i < 25; i++ {
			in := projectActionInput()
			in.Title = fmt.Sprintf("Pipeline inspection segment %02d", i)
			_, err := uc.Action.Create(ctx, in)
			gt.NoError(t, err).Required()
		}

		result, err := uc.Action.Search(ctx, &model.SearchActionsInput{
			SearchTerm: "pipeline inspection",
			Page:       2,
			Limit:      10,
		})
		gt.NoError(t, err).Required()
		gt.Array(t, result.Actions).Length(10)
		gt.Number(t, result.Pagination.Total).Equal(25)
		gt.Number(t, result.Pagination.Page).Equal(2)
		gt.Number(t, result.Pagination.Limit).Equal(10)
		gt.Number(t, result.Pagination.Pages).Equal(3)
	})

	t.Run("substring matches content case-insensitively", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		_, err := uc.Action.Create(ctx, projectActionInput())
		gt.NoError(t, err).Required()

		result, err := uc.Action.Search(ctx, &model.SearchActionsInput{SearchTerm: "LEAKING"})
		gt.NoError(t, err).Required()
		gt.Array(t, result.Actions).Length(1)
	})

	t.Run("responsible matches either responsible field", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1", "u2")
		uc := newUseCases(t, repo)

		_, err := uc.Action.Create(ctx, globalActionInput())
		gt.NoError(t, err).Required()

		result, err := uc.Action.Search(ctx, &model.SearchActionsInput{Responsible: "u2"})
		gt.NoError(t, err).Required()
		gt.Array(t, result.Actions).Length(1)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		repo := memory.New()
		seedUsers(t, repo, "mgr", "u1")
		uc := newUseCases(t, repo)

		_, err := uc.Action.Create(ctx, projectActionInput())
		gt.NoError(t, err).Required()

		result, err := uc.Action.Search(ctx, &model.SearchActionsInput{Page: 5, Limit: 10})
		gt.NoError(t, err).Required()
		gt.Array(t, result.Actions).Length(0)
		gt.Number(t, result.Pagination.Total).Equal(1)
	})
}
