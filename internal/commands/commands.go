// Package commands holds the text commands shared by the Discord host and the CLI.
package commands

import (
	"github.com/rs/zerolog"

	"github.com/keshon/mahiro/internal/core"
)

const (
	categoryGeneral = "General"
	categoryMemory  = "Memory"
	categoryAdmin   = "Admin"
)

// Register adds every command to r.
func Register(r *core.Registry, log zerolog.Logger) {
	for _, cmd := range []core.Command{
		&HelpCommand{},
		&ResetCommand{},
		&MoodCommand{},
		&SetMoodCommand{},
		&StatsCommand{},
		newRememberCommand(),
		newNameCommand(),
		newInterestCommand(),
		newFavoriteCommand(),
		&ResetLimitsCommand{},
		&ImagesCommand{},
	} {
		r.Register(core.ApplyMiddlewares(cmd,
			core.WithCommandLog(log),
			core.WithAccessControl(),
		))
	}
}

// NewRegistry returns a registry holding every command.
func NewRegistry(log zerolog.Logger) *core.Registry {
	r := core.NewRegistry()
	Register(r, log)
	return r
}
