package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
	"github.com/petroops-lab/derrick/pkg/repository/firestore"
	"github.com/petroops-lab/derrick/pkg/repository/memory"
)

func newTestAction() *model.Action {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return &model.Action{
		Kind:        types.ActionKindProject,
		Title:       "Replace wellhead valve",
		Content:     "Valve on W-7 shows corrosion",
		Source:      "field inspection",
		Manager:     "U100",
		Responsible: "U200",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 7),
		Status:      types.ActionStatusPending,
		Category:    "maintenance",
		ProjectID:   "P1",
	}
}

func runActionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns auto-increment ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Action().Create(ctx, newTestAction())
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID).NotEqual(types.ActionID(0))
		gt.Value(t, created.Title).Equal("Replace wellhead valve")
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		second, err := repo.Action().Create(ctx, newTestAction())
		gt.NoError(t, err).Required()
		gt.Value(t, second.ID).NotEqual(created.ID)
	})

	t.Run("Get returns stored action", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Action().Create(ctx, newTestAction())
		gt.NoError(t, err).Required()

		got, err := repo.Action().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Responsible).Equal(types.UserID("U200"))
		gt.Value(t, got.Status).Equal(types.ActionStatusPending)
	})

	t.Run("Get unknown ID returns not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Action().Get(ctx, 99999)
		gt.Error(t, err)
	})

	t.Run("Update preserves CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Action().Create(ctx, newTestAction())
		gt.NoError(t, err).Required()

		created.Status = types.ActionStatusInProgress
		updated, err := repo.Action().Update(ctx, created)
		gt.NoError(t, err).Required()

		gt.Value(t, updated.Status).Equal(types.ActionStatusInProgress)
		gt.Value(t, updated.CreatedAt).Equal(created.CreatedAt)
	})

	t.Run("Delete removes the action", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Action().Create(ctx, newTestAction())
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Action().Delete(ctx, created.ID))

		_, err = repo.Action().Get(ctx, created.ID)
		gt.Error(t, err)
	})

	t.Run("List filters by category and responsible", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a := newTestAction()
		a.Category = "drilling"
		_, err := repo.Action().Create(ctx, a)
		gt.NoError(t, err).Required()

		b := newTestAction()
		b.Kind = types.ActionKindGlobal
		b.ResponsibleFollowup = "U300"
		_, err = repo.Action().Create(ctx, b)
		gt.NoError(t, err).Required()

		drilling, err := repo.Action().List(ctx, &model.ListActionsFilter{Category: "drilling"})
		gt.NoError(t, err).Required()
		gt.Array(t, drilling).Length(1)

		// responsible filter matches the follow-up field too
		byFollowup, err := repo.Action().List(ctx, &model.ListActionsFilter{Responsible: "U300"})
		gt.NoError(t, err).Required()
		gt.Array(t, byFollowup).Length(1)
		gt.Value(t, byFollowup[0].Kind).Equal(types.ActionKindGlobal)
	})

	t.Run("ListByParent returns sub-actions only", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		parent := newTestAction()
		parent.Kind = types.ActionKindGlobal
		parent.ResponsibleFollowup = "U300"
		createdParent, err := repo.Action().Create(ctx, parent)
		gt.NoError(t, err).Required()

		for i := 0; i < 2; i++ {
			sub := newTestAction()
			sub.Kind = types.ActionKindGlobal
			sub.ResponsibleFollowup = "U300"
			sub.ParentActionID = createdParent.ID
			_, err := repo.Action().Create(ctx, sub)
			gt.NoError(t, err).Required()
		}

		subs, err := repo.Action().ListByParent(ctx, createdParent.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, subs).Length(2)
	})

	t.Run("Count matches filter", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			_, err := repo.Action().Create(ctx, newTestAction())
			gt.NoError(t, err).Required()
		}

		n, err := repo.Action().Count(ctx, &model.ListActionsFilter{Category: "maintenance"})
		gt.NoError(t, err).Required()
		gt.Number(t, n).Equal(3)
	})
}

func TestActionRepository_Memory(t *testing.T) {
	runActionRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestActionRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runActionRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, "",
			firestore.WithCollectionPrefix(fmt.Sprintf("t%d", time.Now().UnixNano())))
		gt.NoError(t, err).Required()
		return repo
	})
}
