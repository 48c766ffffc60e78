package notifier

import (
	"context"
	"log/slog"
)

type SLogNotifier struct {
	Logger *slog.Logger
}

var _ Notifier = SLogNotifier{}

func (s SLogNotifier) Notify(ctx context.Context, body string, subject string) error {
	s.Logger.InfoContext(ctx, body, "subject", subject)
	return nil
}
