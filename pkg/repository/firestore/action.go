package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type actionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newActionRepository(client *firestore.Client) *actionRepository {
	return &actionRepository{client: client}
}

func (r *actionRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_actions"
	}
	return "actions"
}

func (r *actionRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *actionRepository) Create(ctx context.Context, action *model.Action) (*model.Action, error) {
	nextID, err := nextCounterValue(ctx, r.client, r.counterCollection(), "action_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := action.Clone()
	created.ID = types.ActionID(nextID)
	created.CreatedAt = now
	created.UpdatedAt = now

	docID := fmt.Sprintf("%d", created.ID)
	if _, err := r.client.Collection(r.collection()).Doc(docID).Set(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create action", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *actionRepository) Get(ctx context.Context, id types.ActionID) (*model.Action, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.collection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get action", goerr.V("id", id))
	}

	var a model.Action
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode action", goerr.V("id", id))
	}

	return &a, nil
}

// buildQuery pushes the equality fields of the filter down to firestore; the
// responsible OR-match cannot be expressed as a single firestore query and is
// applied in collectFiltered.
func (r *actionRepository) buildQuery(filter *model.ListActionsFilter) firestore.Query {
	q := r.client.Collection(r.collection()).Query
	if filter == nil {
		return q
	}
	if filter.Kind != "" {
		q = q.Where("Kind", "==", string(filter.Kind))
	}
	if filter.Status != "" {
		q = q.Where("Status", "==", string(filter.Status))
	}
	if filter.Category != "" {
		q = q.Where("Category", "==", filter.Category)
	}
	if filter.ProjectID != "" {
		q = q.Where("ProjectID", "==", filter.ProjectID)
	}
	return q
}

func (r *actionRepository) collectFiltered(ctx context.Context, q firestore.Query, filter *model.ListActionsFilter) ([]*model.Action, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	actions := make([]*model.Action, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate actions")
		}

		var a model.Action
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode action", goerr.V("doc_id", docSnap.Ref.ID))
		}

		if filter != nil && !filter.Matches(&a) {
			continue
		}
		actions = append(actions, &a)
	}

	return actions, nil
}

func (r *actionRepository) List(ctx context.Context, filter *model.ListActionsFilter) ([]*model.Action, error) {
	actions, err := r.collectFiltered(ctx, r.buildQuery(filter), filter)
	if err != nil {
		return nil, err
	}

	sort.Slice(actions, func(i, j int) bool {
		if actions[i].CreatedAt.Equal(actions[j].CreatedAt) {
			return actions[i].ID > actions[j].ID
		}
		return actions[i].CreatedAt.After(actions[j].CreatedAt)
	})

	return actions, nil
}

func (r *actionRepository) Update(ctx context.Context, action *model.Action) (*model.Action, error) {
	docID := fmt.Sprintf("%d", action.ID)
	docRef := r.client.Collection(r.collection()).Doc(docID)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", action.ID))
		}
		return nil, goerr.Wrap(err, "failed to check action existence", goerr.V("id", action.ID))
	}

	updated := action.Clone()
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update action", goerr.V("id", action.ID))
	}

	return updated, nil
}

func (r *actionRepository) Delete(ctx context.Context, id types.ActionID) error {
	docID := fmt.Sprintf("%d", id)
	docRef := r.client.Collection(r.collection()).Doc(docID)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check action existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete action", goerr.V("id", id))
	}

	return nil
}

func (r *actionRepository) ListByParent(ctx context.Context, parentID types.ActionID) ([]*model.Action, error) {
	q := r.client.Collection(r.collection()).
		Where("ParentActionID", "==", int64(parentID))

	actions, err := r.collectFiltered(ctx, q, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sub-actions", goerr.V("parent_id", parentID))
	}

	sort.Slice(actions, func(i, j int) bool {
		return actions[i].ID < actions[j].ID
	})

	return actions, nil
}

func (r *actionRepository) Count(ctx context.Context, filter *model.ListActionsFilter) (int, error) {
	actions, err := r.collectFiltered(ctx, r.buildQuery(filter), filter)
	if err != nil {
		return 0, err
	}
	return len(actions), nil
}
