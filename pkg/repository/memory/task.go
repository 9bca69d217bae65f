package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

type taskRepository struct {
	mu     sync.RWMutex
	tasks  map[types.TaskID]*model.Task
	nextID types.TaskID
}

func newTaskRepository() *taskRepository {
	return &taskRepository{
		tasks:  make(map[types.TaskID]*model.Task),
		nextID: 1,
	}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := task.Clone()
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.tasks[created.ID] = created
	return created.Clone(), nil
}

func (r *taskRepository) Get(ctx context.Context, id types.TaskID) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, exists := r.tasks[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", id))
	}

	return task.Clone(), nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.tasks[task.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", task.ID))
	}

	updated := task.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	// ActionID is immutable once set
	if existing.ActionID != 0 {
		updated.ActionID = existing.ActionID
		updated.Type = existing.Type
	}

	r.tasks[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *taskRepository) Delete(ctx context.Context, id types.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[id]; !exists {
		return goerr.Wrap(ErrNotFound, "task not found", goerr.V("id", id))
	}

	delete(r.tasks, id)
	return nil
}

func (r *taskRepository) ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*model.Task, 0)
	for _, task := range r.tasks {
		if task.ActionID == actionID && actionID != 0 {
			tasks = append(tasks, task.Clone())
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})

	return tasks, nil
}

func (r *taskRepository) GetByActionAndType(ctx context.Context, actionID types.ActionID, taskType types.TaskType) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, task := range r.tasks {
		if task.ActionID == actionID && task.Type == taskType {
			return task.Clone(), nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "derived task not found",
		goerr.V("action_id", actionID), goerr.V("type", taskType))
}

func (r *taskRepository) DeleteByAction(ctx context.Context, actionID types.ActionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, task := range r.tasks {
		if task.ActionID == actionID && actionID != 0 {
			delete(r.tasks, id)
		}
	}

	return nil
}

func (r *taskRepository) ListByAssignee(ctx context.Context, assignee types.UserID) ([]*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*model.Task, 0)
	for _, task := range r.tasks {
		if task.Assignee == assignee {
			tasks = append(tasks, task.Clone())
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}
