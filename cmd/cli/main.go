package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keshon/mahiro/internal/app"
	"github.com/keshon/mahiro/internal/cli"
	"github.com/keshon/mahiro/internal/config"
	"github.com/keshon/mahiro/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	open := func(cmd *cobra.Command, _ *cli.RootOptions) (*app.App, error) {
		cfg, err := config.New()
		if err != nil {
			return nil, err
		}
		logger, _ := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
		return app.Build(cmd.Context(), cfg, logger)
	}

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
