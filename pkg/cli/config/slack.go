package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/service/notify"
	"github.com/haven-lab/lifeline/pkg/utils/logging"
)

// Slack holds CLI flags for the Slack notifier
type Slack struct {
	botToken         string
	moderatorChannel string
	followUpChannel  string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Sources:     cli.EnvVars("LIFELINE_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-moderator-channel",
			Usage:       "Channel ID for moderator alerts on high-urgency incidents",
			Category:    "Slack",
			Sources:     cli.EnvVars("LIFELINE_SLACK_MODERATOR_CHANNEL"),
			Destination: &x.moderatorChannel,
		},
		&cli.StringFlag{
			Name:        "slack-followup-channel",
			Usage:       "Channel ID for follow-up pings (defaults to the moderator channel)",
			Category:    "Slack",
			Sources:     cli.EnvVars("LIFELINE_SLACK_FOLLOWUP_CHANNEL"),
			Destination: &x.followUpChannel,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("moderator-channel", x.moderatorChannel),
		slog.String("followup-channel", x.followUpChannel),
	)
}

// IsConfigured checks if Slack configuration is complete
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.moderatorChannel != ""
}

// Configure builds the Slack notifier when configured; (nil, nil) means
// notifications are disabled.
func (x *Slack) Configure() (interfaces.Notifier, error) {
	if !x.IsConfigured() {
		logging.Default().Info("Slack not configured, notifications disabled")
		return nil, nil
	}

	var opts []notify.Option
	if x.followUpChannel != "" {
		opts = append(opts, notify.WithFollowUpChannel(x.followUpChannel))
	}

	return notify.New(x.botToken, x.moderatorChannel, opts...)
}
