package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/domain/model"
	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// client posts incident alerts to Slack. It implements
// interfaces.Notifier.
type client struct {
	api              *slack.Client
	moderatorChannel string
	followUpChannel  string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithFollowUpChannel routes follow-up pings to a separate channel.
// By default they go to the moderator channel.
func WithFollowUpChannel(channelID string) Option {
	return func(c *client) {
		c.followUpChannel = channelID
	}
}

// New creates a Slack notifier posting to the given moderator channel
func New(token, moderatorChannelID string, opts ...Option) (interfaces.Notifier, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if moderatorChannelID == "" {
		return nil, goerr.New("moderator channel ID is required")
	}

	c := &client{
		api:              slack.New(token),
		moderatorChannel: moderatorChannelID,
		followUpChannel:  moderatorChannelID,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NotifyModerators posts an alert about a newly created high-urgency
// incident to the moderator channel.
func (c *client) NotifyModerators(ctx context.Context, incident *model.Incident) error {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType,
				fmt.Sprintf("%s %s incident", urgencyEmoji(incident.UrgencyLevel), incident.UrgencyLevel), false, false),
		),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Incident:*\n%s", incident.ID), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Type:*\n%s", incident.CrisisType), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Status:*\n%s", incident.Status), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Location:*\n%s", orDash(incident.Location)), false, false),
		}, nil),
	}

	_, _, err := c.api.PostMessageContext(ctx, c.moderatorChannel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fmt.Sprintf("%s incident %s", incident.UrgencyLevel, incident.ID), false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post moderator alert",
			goerr.V("channel", c.moderatorChannel),
			goerr.V("incident_id", incident.ID),
		)
	}

	return nil
}

// NotifyFollowUp pings the follow-up channel that an incident's
// follow-up deadline has elapsed.
func (c *client) NotifyFollowUp(ctx context.Context, incident *model.Incident) error {
	text := fmt.Sprintf(":alarm_clock: Follow-up due for incident %s (%s, %s)",
		incident.ID, incident.CrisisType, incident.UrgencyLevel)

	_, _, err := c.api.PostMessageContext(ctx, c.followUpChannel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post follow-up ping",
			goerr.V("channel", c.followUpChannel),
			goerr.V("incident_id", incident.ID),
		)
	}

	return nil
}

func urgencyEmoji(urgency types.UrgencyLevel) string {
	switch urgency {
	case types.UrgencyImmediate:
		return ":rotating_light:"
	case types.UrgencyHigh:
		return ":warning:"
	default:
		return ":information_source:"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
