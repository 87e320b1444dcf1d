package config

import "github.com/urfave/cli/v3"

// Notify holds notification configuration. Notifications are disabled
// when no webhook URL is set.
type Notify struct {
	SlackWebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook for unit status notifications",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("PJE_SLACK_WEBHOOK_URL"),
		},
	}
}

// Enabled reports whether notifications are configured
func (c *Notify) Enabled() bool {
	return c.SlackWebhookURL != ""
}
