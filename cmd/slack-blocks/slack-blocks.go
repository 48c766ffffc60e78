package main

import (
	"context"
	"github.com/clambin/slack-blocks/internal/cmd"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

var (
	// overridden during build
	version = "change-me"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd.RootCmd.Version = version
	if err := cmd.RootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("failed", "err", err)
		os.Exit(1)
	}
}
