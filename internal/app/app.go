// Package app wires configuration into a running engine and its adapters.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/mahiro/internal/ai"
	"github.com/keshon/mahiro/internal/commands"
	"github.com/keshon/mahiro/internal/config"
	"github.com/keshon/mahiro/internal/core"
	"github.com/keshon/mahiro/internal/media"
	"github.com/keshon/mahiro/internal/mind"
	"github.com/keshon/mahiro/internal/persona"
	"github.com/keshon/mahiro/internal/storage"
)

// App holds everything a host needs.
type App struct {
	Config   *config.Config
	Store    storage.Store
	Engine   *mind.Engine
	Provider ai.Provider
	Registry *core.Registry
	Images   *media.Images
	Log      zerolog.Logger
}

// Option adjusts Build, mostly for tests.
type Option func(*buildOptions)

type buildOptions struct {
	store    storage.Store
	provider ai.Provider
	clock    mind.Clock
	rnd      mind.Rand
}

func WithStore(s storage.Store) Option  { return func(o *buildOptions) { o.store = s } }
func WithProvider(p ai.Provider) Option { return func(o *buildOptions) { o.provider = p } }
func WithClock(c mind.Clock) Option     { return func(o *buildOptions) { o.clock = c } }
func WithRand(r mind.Rand) Option       { return func(o *buildOptions) { o.rnd = r } }

// Build opens the store, loads the persona and builds the engine.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	p, err := persona.Load(cfg.PersonaFile)
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		storeOpts := cfg.StorageOptions()
		storeOpts.Logger = log
		store, err = storage.Open(ctx, storeOpts)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	provider := o.provider
	if provider == nil {
		aiOpts := cfg.AIOptions()
		aiOpts.Logger = log
		client, err := ai.New(aiOpts)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		provider = client
	}

	rnd := o.rnd
	if rnd == nil {
		rnd = mind.NewRand(time.Now().UnixNano())
	}
	engineOpts := []mind.Option{
		mind.WithSettings(cfg.MindSettings()),
		mind.WithLogger(log),
		mind.WithRand(rnd),
	}
	if o.clock != nil {
		engineOpts = append(engineOpts, mind.WithClock(o.clock))
	}

	var images *media.Images
	if cfg.ImagesEnabled {
		images = media.New(cfg.ImagesDir, true, cfg.ImageSendChance, rnd)
		if err := images.EnsureDirs(); err != nil {
			log.Warn().Err(err).Msg("image folders not created")
		}
	}

	log.Info().
		Str("storage", cfg.StorageDriver).
		Str("provider", cfg.AIProvider).
		Str("persona", p.Name).
		Msg("app ready")

	return &App{
		Config:   cfg,
		Store:    store,
		Engine:   mind.New(store, p, engineOpts...),
		Provider: provider,
		Registry: commands.NewRegistry(log),
		Images:   images,
		Log:      log,
	}, nil
}

// Context returns the command context for userID.
func (a *App) Context(ctx context.Context, userID string, admin bool) *core.Context {
	return &core.Context{
		Context:  ctx,
		Engine:   a.Engine,
		Images:   a.Images,
		Registry: a.Registry,
		UserID:   userID,
		Admin:    admin,
	}
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
