// internal/notify/slack.go

package notify

import (
	"context"
	"time"

	"HelmetMonitorAPI/internal/logger"
	"HelmetMonitorAPI/internal/models"

	"github.com/slack-go/slack"
)

// SlackNotifier posts emergency messages to a fixed Slack channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	timeout time.Duration
	log     *logger.Logger
}

type SlackConfig struct {
	Token       string
	Channel     string
	SendTimeout time.Duration
}

func NewSlackNotifier(cfg SlackConfig, log *logger.Logger) *SlackNotifier {
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &SlackNotifier{
		client:  slack.New(cfg.Token),
		channel: cfg.Channel,
		timeout: timeout,
		log:     log,
	}
}

// Send posts the formatted message. Any API failure is captured into the
// dispatch result; it never propagates as an error.
func (n *SlackNotifier) Send(ctx context.Context, notification models.Notification) models.DispatchResult {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	body := FormatMessage(notification)

	n.log.Debug("Sending emergency notification to %s", n.channel)

	_, msgTimestamp, err := n.client.PostMessageContext(
		ctx,
		n.channel,
		slack.MsgOptionText(body, false),
	)
	if err != nil {
		n.log.Error("Emergency notification failed: %v", err)
		return models.DispatchResult{
			Success: false,
			Error:   err.Error(),
		}
	}

	n.log.Info("Emergency notification sent (ref %s)", msgTimestamp)
	return models.DispatchResult{
		Success:     true,
		ProviderRef: msgTimestamp,
	}
}

// DisabledNotifier is used when no notification channel is configured.
// Sends are logged and reported as failed results so callers still get
// structured feedback without any external call.
type DisabledNotifier struct {
	log *logger.Logger
}

func NewDisabledNotifier(log *logger.Logger) *DisabledNotifier {
	return &DisabledNotifier{log: log}
}

func (n *DisabledNotifier) Send(_ context.Context, notification models.Notification) models.DispatchResult {
	n.log.Warn("Notifications disabled, dropping %s message", notification.Type)
	return models.DispatchResult{
		Success: false,
		Error:   "notifications disabled",
	}
}
