package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Service posts operational announcements to a Slack channel. It mirrors the
// in-app notifications for teams that live in Slack rather than the web UI.
type Service interface {
	// PostMessage posts a plain text message to the configured ops channel
	PostMessage(ctx context.Context, text string) error
}

type client struct {
	api       *slack.Client
	channelID string
}

// New creates a Slack service posting to the given channel
func New(token, channelID string) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	return &client{
		api:       slack.New(token),
		channelID: channelID,
	}, nil
}

func (c *client) PostMessage(ctx context.Context, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, c.channelID,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post Slack message",
			goerr.V("channel_id", c.channelID))
	}
	return nil
}
