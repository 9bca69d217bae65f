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

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put then Get round-trips the record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.User().Put(ctx, &model.User{
			ID:    "U100",
			Name:  "Field Supervisor",
			Email: "supervisor@example.com",
		})
		gt.NoError(t, err).Required()

		got, err := repo.User().Get(ctx, "U100")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("Field Supervisor")
		gt.Value(t, got.Email).Equal("supervisor@example.com")
	})

	t.Run("Put replaces an existing record", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: "U100", Name: "Old Name"})).Required()
		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: "U100", Name: "New Name"})).Required()

		got, err := repo.User().Get(ctx, "U100")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("New Name")
	})

	t.Run("Get unknown user returns not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.User().Get(ctx, "U999")
		gt.Value(t, err).NotNil()
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("List returns every stored user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, id := range []types.UserID{"U1", "U2", "U3"} {
			gt.NoError(t, repo.User().Put(ctx, &model.User{ID: id, Name: string(id)})).Required()
		}

		users, err := repo.User().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(3)
	})
}

func TestUserRepository_Memory(t *testing.T) {
	runUserRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestUserRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	runUserRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, "",
			firestore.WithCollectionPrefix(fmt.Sprintf("t%d", time.Now().UnixNano())))
		gt.NoError(t, err).Required()
		return repo
	})
}
