package commands

import (
	"errors"
	"strings"

	"github.com/keshon/mahiro/internal/core"
	"github.com/keshon/mahiro/internal/mind"
)

// profileCommand covers the commands that write one profile field.
type profileCommand struct {
	name, description, usage string
	aliases                  []string
	write                    func(e *mind.Engine, ctx *core.Context, value string) error
	done                     string
}

func (c *profileCommand) Name() string        { return c.name }
func (c *profileCommand) Description() string { return c.description }
func (c *profileCommand) Usage() string       { return c.usage }
func (c *profileCommand) Aliases() []string   { return c.aliases }
func (c *profileCommand) Category() string    { return categoryMemory }
func (c *profileCommand) RequireAdmin() bool  { return false }

func (c *profileCommand) Run(ctx *core.Context, args []string) (string, error) {
	value := strings.TrimSpace(strings.Join(args, " "))
	if err := c.write(ctx.Engine, ctx, value); err != nil {
		if errors.Is(err, mind.ErrEmptyText) {
			return "Usage: " + c.usage, nil
		}
		return "", err
	}
	return c.done, nil
}

func newRememberCommand() *profileCommand {
	return &profileCommand{
		name: "remember", description: "Tell me a fact about you", usage: "/remember <fact>",
		aliases: []string{"запомни"},
		write: func(e *mind.Engine, ctx *core.Context, v string) error {
			return e.Remember(ctx, ctx.UserID, v)
		},
		done: "Got it, I will remember that.",
	}
}

func newNameCommand() *profileCommand {
	return &profileCommand{
		name: "name", description: "Tell me what to call you", usage: "/name <name>",
		write: func(e *mind.Engine, ctx *core.Context, v string) error {
			return e.SetName(ctx, ctx.UserID, v)
		},
		done: "Nice to meet you.",
	}
}

func newInterestCommand() *profileCommand {
	return &profileCommand{
		name: "interest", description: "Add something you are into", usage: "/interest <topic>",
		write: func(e *mind.Engine, ctx *core.Context, v string) error {
			return e.AddInterest(ctx, ctx.UserID, v)
		},
		done: "Noted.",
	}
}

func newFavoriteCommand() *profileCommand {
	return &profileCommand{
		name: "favorite", description: "Add one of your favorite things", usage: "/favorite <thing>",
		aliases: []string{"fav"},
		write: func(e *mind.Engine, ctx *core.Context, v string) error {
			return e.AddFavorite(ctx, ctx.UserID, v)
		},
		done: "Noted, I like it too.",
	}
}
