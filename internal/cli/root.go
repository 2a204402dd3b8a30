// Package cli is the local command line host: talk to the persona from a
// terminal and inspect per-user state without Discord.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/keshon/mahiro/internal/app"
)

// Opener builds the app once flags are parsed.
type Opener func(cmd *cobra.Command, opts *RootOptions) (*app.App, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	User   string
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the CLI.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mahiro",
		Short: "Mahiro - persona chat engine",
		Long:  "Talk to the persona and inspect the mood, trust and memory it keeps per user.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.User == "" {
				return fmt.Errorf("--user must not be empty")
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.User, "user", "u", "local", "user ID the state belongs to")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewChatCommand(opts, open))
	cmd.AddCommand(NewAskCommand(opts, open))
	cmd.AddCommand(NewStatsCommand(opts, open))
	cmd.AddCommand(NewExecCommand(opts, open))

	return cmd
}
