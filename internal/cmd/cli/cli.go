package cli

import (
	"errors"
	"fmt"
	"github.com/clambin/slack-blocks/internal/blocks"
	"github.com/clambin/slack-blocks/pkg/webhook"
	"github.com/spf13/viper"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultBlock is the name under which slack.token and slack.webhook are registered.
const DefaultBlock = "default"

// Registry loads the blocks file and adds the token and webhook URL set in the configuration.
//
// If "blocks" is not set, blocks.yaml is loaded from the configuration file's directory, if it exists.
// A relative "blocks" path is resolved against that directory too.
func Registry(v *viper.Viper) (*blocks.Registry, error) {
	r, err := maybeLoadBlocks(blocksPath(v), v.GetString("blocks") != "")
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}
	if token := v.GetString("slack.token"); token != "" {
		if err = r.AddCredentials(DefaultBlock, token); err != nil {
			return nil, err
		}
	}
	if url := v.GetString("slack.webhook"); url != "" {
		if err = r.AddWebhook(DefaultBlock, url); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func blocksPath(v *viper.Viper) string {
	path := v.GetString("blocks")
	if path == "" {
		path = "blocks.yaml"
	}
	if filepath.IsAbs(path) {
		return path
	}
	if cfg := v.ConfigFileUsed(); cfg != "" {
		return filepath.Join(filepath.Dir(cfg), path)
	}
	return path
}

func maybeLoadBlocks(path string, required bool) (*blocks.Registry, error) {
	r, err := blocks.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return blocks.New(), nil
	}
	return r, err
}

// WebhookOptions returns the webhook options for the configured host version. httpClient may be nil.
func WebhookOptions(v *viper.Viper, httpClient *http.Client, logger *slog.Logger) []webhook.Option {
	options := []webhook.Option{
		webhook.WithFailurePolicy(webhook.PolicyFor(v.GetString("host.version"))),
		webhook.WithLogger(logger),
	}
	if httpClient != nil {
		options = append(options, webhook.WithHTTPClient(httpClient))
	}
	return options
}
