package notify

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// SlackNotifier posts status transition messages to a Slack incoming
// webhook.
type SlackNotifier struct {
	webhookURL string
}

// NewSlack creates a notifier for the given webhook URL.
func NewSlack(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

// Notify posts a message.
func (n *SlackNotifier) Notify(ctx context.Context, message string) error {
	msg := &slack.WebhookMessage{Text: message}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack notification")
	}
	return nil
}
