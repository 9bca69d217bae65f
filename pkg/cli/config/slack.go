package config

import (
	"github.com/urfave/cli/v3"

	"github.com/petroops-lab/derrick/pkg/service/slack"
	"github.com/petroops-lab/derrick/pkg/utils/logging"
)

// Slack holds CLI flags for the optional Slack ops-channel bridge
type Slack struct {
	botToken  string
	channelID string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token for ops-channel announcements",
			Category:    "Slack",
			Sources:     cli.EnvVars("DERRICK_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID for ops-channel announcements",
			Category:    "Slack",
			Sources:     cli.EnvVars("DERRICK_SLACK_CHANNEL_ID"),
			Destination: &s.channelID,
		},
	}
}

// IsConfigured reports whether both token and channel are set
func (s *Slack) IsConfigured() bool {
	return s.botToken != "" && s.channelID != ""
}

// Configure builds the Slack service, or returns nil when not configured
func (s *Slack) Configure() (slack.Service, error) {
	if !s.IsConfigured() {
		logging.Default().Info("Slack bridge not configured, notifications stay in-app")
		return nil, nil
	}

	svc, err := slack.New(s.botToken, s.channelID)
	if err != nil {
		return nil, err
	}
	logging.Default().Info("Slack bridge enabled", "channel_id", s.channelID)
	return svc, nil
}
