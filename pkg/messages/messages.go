// Package messages sends formatted messages through a bot token or an incoming webhook.
//
//	msg := messages.Message{
//		Text:     "deploy finished",
//		Sections: []messages.Section{{Header: "prod", Body: []string{"version: v1.2.3"}}},
//	}
//	ts, err := messages.SendChatMessage(ctx, creds.GetClient(), "#deploys", msg)
//	err = messages.SendIncomingWebhookMessage(ctx, hook, msg)
package messages

import (
	"context"
	"errors"
	"fmt"
	"github.com/clambin/slack-blocks/pkg/webhook"
	"github.com/slack-go/slack"
)

// ErrEmptyMessage is returned when a message has neither text nor sections.
var ErrEmptyMessage = errors.New("message has no text and no sections")

// ChatPoster posts a message to a channel. *slack.Client implements it.
type ChatPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ ChatPoster = &slack.Client{}

// SendChatMessage posts msg to channel and returns the message's timestamp.
func SendChatMessage(ctx context.Context, poster ChatPoster, channel string, msg Message) (string, error) {
	if msg.Text == "" && len(msg.Sections) == 0 {
		return "", ErrEmptyMessage
	}
	_, ts, err := poster.PostMessageContext(ctx, channel, msg.msgOptions()...)
	if err != nil {
		return "", fmt.Errorf("chat.postMessage: %w", err)
	}
	return ts, nil
}

// SendIncomingWebhookMessage posts msg to the webhook. Slack's rejection of the message is reported according to
// the webhook's FailurePolicy.
func SendIncomingWebhookMessage(ctx context.Context, w *webhook.Webhook, msg Message) error {
	if msg.Text == "" && len(msg.Sections) == 0 {
		return ErrEmptyMessage
	}
	return w.Post(ctx, msg.webhookMessage())
}
