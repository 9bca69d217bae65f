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

type taskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTaskRepository(client *firestore.Client) *taskRepository {
	return &taskRepository{client: client}
}

func (r *taskRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_tasks"
	}
	return "tasks"
}

func (r *taskRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	nextID, err := nextCounterValue(ctx, r.client, r.counterCollection(), "task_counter")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := task.Clone()
	created.ID = types.TaskID(nextID)
	created.CreatedAt = now
	created.UpdatedAt = now

	docID := fmt.Sprintf("%d", created.ID)
	if _, err := r.client.Collection(r.collection()).Doc(docID).Set(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create task", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *taskRepository) Get(ctx context.Context, id types.TaskID) (*model.Task, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.collection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V("id", id))
	}

	var t model.Task
	if err := docSnap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode task", goerr.V("id", id))
	}

	return &t, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	docID := fmt.Sprintf("%d", task.ID)
	docRef := r.client.Collection(r.collection()).Doc(docID)

	docSnap, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", task.ID))
		}
		return nil, goerr.Wrap(err, "failed to check task existence", goerr.V("id", task.ID))
	}

	var existing model.Task
	if err := docSnap.DataTo(&existing); err != nil {
		return nil, goerr.Wrap(err, "failed to decode task", goerr.V("id", task.ID))
	}

	updated := task.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	// ActionID is immutable once set
	if existing.ActionID != 0 {
		updated.ActionID = existing.ActionID
		updated.Type = existing.Type
	}

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update task", goerr.V("id", task.ID))
	}

	return updated, nil
}

func (r *taskRepository) Delete(ctx context.Context, id types.TaskID) error {
	docID := fmt.Sprintf("%d", id)
	docRef := r.client.Collection(r.collection()).Doc(docID)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check task existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete task", goerr.V("id", id))
	}

	return nil
}

func (r *taskRepository) collect(ctx context.Context, q firestore.Query, errMsg string) ([]*model.Task, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	tasks := make([]*model.Task, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, errMsg)
		}

		var t model.Task
		if err := docSnap.DataTo(&t); err != nil {
			return nil, goerr.Wrap(err, "failed to decode task", goerr.V("doc_id", docSnap.Ref.ID))
		}

		tasks = append(tasks, &t)
	}

	return tasks, nil
}

func (r *taskRepository) ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.Task, error) {
	if actionID == 0 {
		return []*model.Task{}, nil
	}

	q := r.client.Collection(r.collection()).
		Where("ActionID", "==", int64(actionID))

	tasks, err := r.collect(ctx, q, "failed to iterate tasks by action")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks", goerr.V("action_id", actionID))
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})

	return tasks, nil
}

func (r *taskRepository) GetByActionAndType(ctx context.Context, actionID types.ActionID, taskType types.TaskType) (*model.Task, error) {
	q := r.client.Collection(r.collection()).
		Where("ActionID", "==", int64(actionID)).
		Where("Type", "==", string(taskType)).
		Limit(1)

	tasks, err := r.collect(ctx, q, "failed to query derived task")
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "derived task not found",
			goerr.V("action_id", actionID), goerr.V("type", taskType))
	}

	return tasks[0], nil
}

func (r *taskRepository) DeleteByAction(ctx context.Context, actionID types.ActionID) error {
	tasks, err := r.ListByAction(ctx, actionID)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		docID := fmt.Sprintf("%d", t.ID)
		if _, err := r.client.Collection(r.collection()).Doc(docID).Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete derived task",
				goerr.V("id", t.ID), goerr.V("action_id", actionID))
		}
	}

	return nil
}

func (r *taskRepository) ListByAssignee(ctx context.Context, assignee types.UserID) ([]*model.Task, error) {
	q := r.client.Collection(r.collection()).
		Where("Assignee", "==", string(assignee))

	tasks, err := r.collect(ctx, q, "failed to iterate tasks by assignee")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks", goerr.V("assignee", assignee))
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}
