package config

import (
	"github.com/urfave/cli/v3"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/interfaces"
	"github.com/NofaBC/TechSupport-AI/pkg/service/notify"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/logging"
)

// Slack holds CLI flags for the Slack escalation notifier
type Slack struct {
	botToken string
	channel  string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token for escalation notifications",
			Sources:     cli.EnvVars("TECHSUPPORT_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel for escalation notifications",
			Sources:     cli.EnvVars("TECHSUPPORT_SLACK_CHANNEL"),
			Destination: &s.channel,
		},
	}
}

// IsConfigured reports whether Slack notifications are enabled
func (s *Slack) IsConfigured() bool {
	return s.botToken != "" && s.channel != ""
}

// Configure builds the escalation notifier. Without a token and channel
// the null notifier is returned and escalations are log-only.
func (s *Slack) Configure() (interfaces.Notifier, error) {
	if !s.IsConfigured() {
		logging.Default().Info("Slack not configured, escalation notifications disabled")
		return notify.NullNotifier{}, nil
	}
	return notify.NewSlack(s.botToken, s.channel)
}
