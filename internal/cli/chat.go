package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keshon/mahiro/internal/app"
	"github.com/keshon/mahiro/internal/mind"
)

// NewChatCommand creates the interactive chat command.
func NewChatCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively (one message per line, /help for commands)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return chatLoop(cmd.Context(), a, opts.User, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// NewAskCommand sends one message and prints the reply.
func NewAskCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a single message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			out, err := exchange(cmd.Context(), a, opts.User, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func chatLoop(ctx context.Context, a *app.App, userID string, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
		case "/quit", "/exit":
			return nil
		default:
			reply, err := exchange(ctx, a, userID, line)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				fmt.Fprintf(out, "error: %v\n", err)
			} else {
				fmt.Fprintln(out, reply)
			}
		}
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}

// exchange routes text to a command or to the engine.
func exchange(ctx context.Context, a *app.App, userID, text string) (string, error) {
	if reply, handled, err := a.Registry.Dispatch(a.Context(ctx, userID, true), text); handled {
		return reply, err
	}
	r, err := a.Engine.Converse(ctx, a.Provider, userID, text)
	if err != nil {
		return "", err
	}
	if !r.Event.Admitted {
		return "[" + r.Event.Rule + "] " + r.Event.Reason, nil
	}
	return fmt.Sprintf("%s\n  (mood: %s, trust: %.2f)", r.Text, r.Event.Mood, r.Trust), nil
}

// moodLine is the short status printed by stats in text mode.
func moodLine(s mind.UserSnapshot) string {
	return fmt.Sprintf("%s: mood %s, trust %.2f (%s)", s.UserID, s.Mood, s.Trust, mind.TrustTier(s.Trust))
}
