package usecase

import (
	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/service/fanout"
)

type UseCases struct {
	repo       interfaces.Repository
	fanout     fanout.Service
	cache      *QueryCache
	categories []string

	Action       *ActionUseCase
	Task         *TaskUseCase
	Notification *NotificationUseCase
	Sync         *TaskSyncService
}

type Option func(*UseCases)

// WithFanout enables notification delivery on action mutations
func WithFanout(fo fanout.Service) Option {
	return func(uc *UseCases) {
		uc.fanout = fo
	}
}

// WithQueryCache enables read-through caching for action reads
func WithQueryCache(cache *QueryCache) Option {
	return func(uc *UseCases) {
		uc.cache = cache
	}
}

// WithCategories restricts action categories to the given workspace set
func WithCategories(categories []string) Option {
	return func(uc *UseCases) {
		uc.categories = categories
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Sync = NewTaskSyncService(repo)
	uc.Action = NewActionUseCase(repo, uc.Sync, uc.fanout, uc.cache, uc.categories)
	uc.Task = NewTaskUseCase(repo)
	uc.Notification = NewNotificationUseCase(repo)

	return uc
}
