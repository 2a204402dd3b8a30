package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewStatsCommand prints the per-user snapshot.
func NewStatsCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show mood, trust and memory for the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.Engine.Snapshot(cmd.Context(), opts.User)
			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			fmt.Fprintln(out, moodLine(s))
			fmt.Fprintf(out, "history: %d, today: %d, facts: %d\n", s.HistoryLen, s.MessagesToday, s.Facts)
			if s.Name != "" {
				fmt.Fprintf(out, "name: %s\n", s.Name)
			}
			return nil
		},
	}
}

// NewExecCommand runs one text command, e.g. `mahiro exec setmood happy`.
func NewExecCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Run a chat command such as reset, mood, setmood or remember",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			text := "/" + strings.TrimLeft(strings.Join(args, " "), "/!")
			reply, _, err := a.Registry.Dispatch(a.Context(cmd.Context(), opts.User, true), text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}
