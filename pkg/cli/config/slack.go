package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/fedmod/ostracon/pkg/service/slackgw"
)

// Slack holds CLI flags for the Slack gateway
type Slack struct {
	botToken      string
	signingSecret string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Sources:     cli.EnvVars("OSTRACON_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Sources:     cli.EnvVars("OSTRACON_SLACK_SIGNING_SECRET"),
			Destination: &x.signingSecret,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
	)
}

// IsConfigured reports whether a bot token is present
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// IsWebhookConfigured reports whether webhook verification can be enabled
func (x *Slack) IsWebhookConfigured() bool {
	return x.botToken != "" && x.signingSecret != ""
}

// SigningSecret returns the webhook signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// Configure creates the Slack gateway, or nil when no token is configured
func (x *Slack) Configure() (slackgw.Service, error) {
	if x.botToken == "" {
		return nil, nil
	}
	return slackgw.New(x.botToken)
}
