package core

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

var ErrAdminOnly = errors.New("admin only")

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx *Context, args []string) (string, error)
}

func (w *wrappedCommand) Run(ctx *Context, args []string) (string, error) {
	return w.wrap(ctx, args)
}

// ApplyMiddlewares wraps cmd so the first middleware runs outermost.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		cmd = mws[i](cmd)
	}
	return cmd
}

// WithAccessControl refuses admin commands to everybody else.
func WithAccessControl() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx *Context, args []string) (string, error) {
				if cmd.RequireAdmin() && !ctx.Admin {
					return "", ErrAdminOnly
				}
				return cmd.Run(ctx, args)
			},
		}
	}
}

// WithCommandLog logs every invocation.
func WithCommandLog(log zerolog.Logger) Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx *Context, args []string) (string, error) {
				reply, err := cmd.Run(ctx, args)
				ev := log.Info()
				if err != nil {
					ev = log.Warn().Err(err)
				}
				ev.Str("command", cmd.Name()).
					Str("user", ctx.UserID).
					Str("args", strings.Join(args, " ")).
					Msg("command")
				return reply, err
			},
		}
	}
}
