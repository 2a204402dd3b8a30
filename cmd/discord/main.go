// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/keshon/mahiro/internal/app"
	"github.com/keshon/mahiro/internal/config"
	"github.com/keshon/mahiro/internal/discord"
	"github.com/keshon/mahiro/internal/logging"
	v "github.com/keshon/mahiro/internal/version"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	logger, closer := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	defer closer.Close()
	logger.Info().Str("version", v.Version).Msgf("Starting %v bot...", v.AppName)

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	bot := discord.New(cfg, a.Engine, a.Provider, a.Registry, a.Images, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	}

	logger.Info().Msg("Discord bot exited cleanly")
}
