package memory

import (
	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/domain/model"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = model.ErrNotFound

// Memory is an in-process entity store used for development and tests. All
// repositories return deep copies so callers can never mutate stored state.
type Memory struct {
	action       *actionRepository
	task         *taskRepository
	notification *notificationRepository
	user         *userRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		action:       newActionRepository(),
		task:         newTaskRepository(),
		notification: newNotificationRepository(),
		user:         newUserRepository(),
	}
}

func (m *Memory) Action() interfaces.ActionRepository {
	return m.action
}

func (m *Memory) Task() interfaces.TaskRepository {
	return m.task
}

func (m *Memory) Notification() interfaces.NotificationRepository {
	return m.notification
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Close() error {
	return nil
}
