package notify

import (
	"context"
	"fmt"
	"github.com/clambin/go-common/charmer"
	"github.com/clambin/slack-blocks/internal/blocks"
	"github.com/clambin/slack-blocks/internal/cmd/cli"
	"github.com/clambin/slack-blocks/internal/notifier"
	"github.com/clambin/slack-blocks/pkg/webhook"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log/slog"
	"strings"
)

var (
	Cmd = cobra.Command{
		Use:   "notify [flags] message",
		Short: "Send a notification to one or more webhooks",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run(viper.GetViper()),
	}

	args = charmer.Arguments{
		"notify.webhook": {Default: cli.DefaultBlock, Help: "Webhook(s) to notify (comma-separated, or \"all\")"},
		"notify.subject": {Default: "", Help: "Subject. Webhooks don't show a subject; it is only logged"},
		"notify.async":   {Default: false, Help: "Use the non-blocking webhook client"},
	}
)

func init() {
	_ = charmer.SetPersistentFlags(&Cmd, viper.GetViper(), args)
}

func run(v *viper.Viper) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r, err := cli.Registry(v)
		if err != nil {
			return err
		}
		logger := charmer.GetLogger(cmd).With("component", "notify")
		return Notify(
			cmd.Context(),
			r,
			webhookNames(r, v.GetString("notify.webhook")),
			strings.Join(args, " "),
			v.GetString("notify.subject"),
			v.GetBool("notify.async"),
			logger,
			cli.WebhookOptions(v, nil, logger)...,
		)
	}
}

func webhookNames(r *blocks.Registry, names string) []string {
	if names == "all" {
		return r.WebhookNames()
	}
	var list []string
	for _, name := range strings.Split(names, ",") {
		if name = strings.TrimSpace(name); name != "" {
			list = append(list, name)
		}
	}
	return list
}

// Notify sends body to each named webhook. The subject is logged alongside the notification.
func Notify(ctx context.Context, r *blocks.Registry, names []string, body, subject string, async bool, logger *slog.Logger, options ...webhook.Option) error {
	if len(names) == 0 {
		return fmt.Errorf("no webhooks: %w", blocks.ErrNotFound)
	}
	n := notifier.Notifiers{notifier.SLogNotifier{Logger: logger}}
	for _, name := range names {
		w, err := r.Webhook(name, options...)
		if err != nil {
			return err
		}
		if async {
			n = append(n, webhook.Async{Webhook: w})
		} else {
			n = append(n, w)
		}
	}
	return n.Notify(ctx, body, subject)
}
