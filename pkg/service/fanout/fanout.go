package fanout

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/service/slack"
	"github.com/petroops-lab/derrick/pkg/utils/async"
	"github.com/petroops-lab/derrick/pkg/utils/errutil"
)

const defaultMaxParallel = 8

type service struct {
	repo        interfaces.NotificationRepository
	publisher   interfaces.RealtimePublisher
	slack       slack.Service
	maxParallel int
}

// Option is a functional option for service configuration
type Option func(*service)

// WithPublisher enables best-effort realtime push for connected recipients
func WithPublisher(p interfaces.RealtimePublisher) Option {
	return func(s *service) {
		s.publisher = p
	}
}

// WithSlack mirrors delivered notifications to a Slack ops channel
func WithSlack(sv slack.Service) Option {
	return func(s *service) {
		s.slack = sv
	}
}

// WithMaxParallel limits concurrent deliveries in NotifyMany
func WithMaxParallel(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.maxParallel = n
		}
	}
}

// New creates a notification delivery service backed by the given repository
func New(repo interfaces.NotificationRepository, opts ...Option) Service {
	s := &service{
		repo:        repo,
		maxParallel: defaultMaxParallel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Notify(ctx context.Context, input *Input) (*model.Notification, error) {
	if input.UserID == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "notification recipient is required")
	}
	if !input.Type.IsValid() {
		return nil, goerr.Wrap(model.ErrInvalidInput, "invalid notification type",
			goerr.V("type", input.Type))
	}

	created, err := s.repo.Create(ctx, &model.Notification{
		Type:     input.Type,
		Message:  input.Message,
		UserID:   input.UserID,
		Metadata: input.Metadata,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to persist notification",
			goerr.V("user_id", input.UserID),
			goerr.V("type", input.Type))
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, created.UserID, model.EventFrom(created)); err != nil {
			errutil.Handle(ctx, err, "failed to push realtime notification")
		}
	}

	if s.slack != nil {
		msg := created.Message
		async.Dispatch(ctx, func(ctx context.Context) error {
			if err := s.slack.PostMessage(ctx, msg); err != nil {
				return goerr.Wrap(err, "failed to mirror notification to Slack")
			}
			return nil
		})
	}

	return created, nil
}

func (s *service) NotifyMany(ctx context.Context, inputs []*Input) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxParallel)

	for _, input := range inputs {
		eg.Go(func() error {
			_, err := s.Notify(ctx, input)
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return goerr.Wrap(err, "failed to deliver notifications")
	}
	return nil
}
