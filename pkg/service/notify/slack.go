// Package notify sends escalation notifications to the operator
// workspace. Delivery is best effort; the owning turn never blocks on
// or fails because of a notification.
package notify

import (
	"context"
	"fmt"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/interfaces"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

type slackNotifier struct {
	api     *slack.Client
	channel string
}

var _ interfaces.Notifier = &slackNotifier{}

// NewSlack creates a Slack notifier posting to the given channel
func NewSlack(token, channel string) (interfaces.Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channel == "" {
		return nil, goerr.New("Slack channel is required")
	}
	return &slackNotifier{
		api:     slack.New(token),
		channel: channel,
	}, nil
}

func (n *slackNotifier) NotifyEscalation(ctx context.Context, c *model.Case, level types.Tier, reason string) error {
	header := fmt.Sprintf(":rotating_light: Case escalated to %s", level)

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, header, false, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Case:*\n%s", c.ID), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Tenant:*\n%s", c.TenantID), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Product:*\n%s", c.Product), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Severity:*\n%s", c.Severity), false, false),
		}, nil),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Reason:* %s", reason), false, false),
			nil, nil),
	}

	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(header, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post escalation notification",
			goerr.V("case_id", c.ID), goerr.V("channel", n.channel))
	}
	return nil
}

// NullNotifier is used when no Slack credentials are configured
type NullNotifier struct{}

var _ interfaces.Notifier = &NullNotifier{}

// NotifyEscalation does nothing
func (NullNotifier) NotifyEscalation(ctx context.Context, c *model.Case, level types.Tier, reason string) error {
	return nil
}
