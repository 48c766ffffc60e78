package notifier

import (
	"context"
	"errors"
	"fmt"
	"github.com/clambin/go-common/set"
	"github.com/slack-go/slack"
	"log/slog"
	"sync"
)

// ChannelNotifier posts notifications to every channel the bot has joined. If Channels is set,
// only channels whose name is in the set are used.
type ChannelNotifier struct {
	Logger   *slog.Logger
	Channels set.Set[string]
	SlackSender
	userID string
	lock   sync.Mutex
}

type SlackSender interface {
	PostMessageContext(context.Context, string, ...slack.MsgOption) (string, string, error)
	GetConversationsContext(context.Context, *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	AuthTestContext(context.Context) (*slack.AuthTestResponse, error)
}

var _ Notifier = &ChannelNotifier{}

func (s *ChannelNotifier) Notify(ctx context.Context, body string, subject string) error {
	channels, err := s.getChannels(ctx)
	if err != nil {
		return fmt.Errorf("channels: %w", err)
	}
	if len(channels) == 0 {
		s.Logger.Warn("bot has not joined any channels. notification dropped")
		return nil
	}
	var errs []error
	for _, channel := range channels {
		s.Logger.Debug("notifying on slack", "channel", channel.Name)
		_, _, err = s.SlackSender.PostMessageContext(ctx, channel.ID, slack.MsgOptionText(body, false), slack.MsgOptionAttachments(slack.Attachment{
			Color: "good",
			Title: subject,
			Text:  body,
		}))
		if err != nil {
			s.Logger.Error("notifier failed to post message", "channel", channel.Name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", channel.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *ChannelNotifier) getChannels(ctx context.Context) ([]slack.Channel, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.userID == "" {
		authResp, err := s.SlackSender.AuthTestContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("AuthTest: %w", err)
		}
		s.userID = authResp.UserID
		s.Logger.Debug("connected to slack", "user", authResp.User, "userID", authResp.UserID)
	}

	var joinedChannels []slack.Channel
	var cursor string
	for {
		channels, nextCursor, err := s.SlackSender.GetConversationsContext(ctx, &slack.GetConversationsParameters{Cursor: cursor, Limit: 100})
		if err != nil {
			return nil, err
		}
		for _, channel := range channels {
			if channel.IsMember && !channel.IsArchived && (len(s.Channels) == 0 || s.Channels.Contains(channel.Name)) {
				joinedChannels = append(joinedChannels, channel)
			}
		}
		if cursor = nextCursor; cursor == "" {
			break
		}
	}
	return joinedChannels, nil
}
