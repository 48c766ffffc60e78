package serve

import (
	"context"
	"errors"
	"github.com/clambin/go-common/charmer"
	"github.com/clambin/slack-blocks/internal/cmd/cli"
	"github.com/clambin/slack-blocks/internal/relay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"log/slog"
	"net/http"
	"time"
)

var (
	Cmd = cobra.Command{
		Use:   "serve",
		Short: "Relay notifications received over HTTP to the configured webhooks",
		RunE:  run(viper.GetViper()),
	}

	args = charmer.Arguments{
		"serve.addr":    {Default: ":8080", Help: "Address of the relay"},
		"serve.metrics": {Default: ":9090", Help: "Address of the Prometheus metrics endpoint"},
	}
)

func init() {
	_ = charmer.SetPersistentFlags(&Cmd, viper.GetViper(), args)
}

func run(v *viper.Viper) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logger := charmer.GetLogger(cmd)
		servers, err := makeServers(v, prometheus.DefaultRegisterer, logger)
		if err != nil {
			return err
		}
		logger.Info("relay starting", "addr", v.GetString("serve.addr"), "version", cmd.Root().Version)
		defer logger.Info("relay stopped")
		return runServers(cmd.Context(), servers)
	}
}

func makeServers(v *viper.Viper, r prometheus.Registerer, l *slog.Logger) ([]*http.Server, error) {
	registry, err := cli.Registry(v)
	if err != nil {
		return nil, err
	}
	if len(registry.WebhookNames()) == 0 {
		l.Warn("no webhooks configured. all notifications will be rejected")
	}

	m := newWebhookMetrics()
	r.MustRegister(m)

	relayLogger := l.With("component", "relay")
	rl := relay.New(registry, r, relayLogger, cli.WebhookOptions(v, m.instrumentedClient(nil), relayLogger)...)

	return []*http.Server{
		{Addr: v.GetString("serve.addr"), Handler: rl, ReadHeaderTimeout: 5 * time.Second},
		{Addr: v.GetString("serve.metrics"), Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second},
	}, nil
}

// runServers runs the servers until ctx is done or one of them fails.
func runServers(ctx context.Context, servers []*http.Server) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var errs []error
		for _, s := range servers {
			errs = append(errs, s.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}
