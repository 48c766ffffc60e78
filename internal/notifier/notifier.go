package notifier

import (
	"context"
	"errors"
	"github.com/clambin/slack-blocks/pkg/webhook"
)

type Notifier = webhook.Notifier

// Notifiers sends a notification to each Notifier in turn. A failing Notifier does not stop the others:
// all errors are returned together.
type Notifiers []Notifier

var _ Notifier = Notifiers{}

func (n Notifiers) Notify(ctx context.Context, body string, subject string) error {
	var errs []error
	for _, l := range n {
		if err := l.Notify(ctx, body, subject); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
