package commands

import (
	"github.com/keshon/mahiro/internal/core"
)

type ResetCommand struct{}

func (c *ResetCommand) Name() string        { return "reset" }
func (c *ResetCommand) Description() string { return "Forget the current conversation" }
func (c *ResetCommand) Usage() string       { return "/reset" }
func (c *ResetCommand) Aliases() []string   { return []string{"clear"} }
func (c *ResetCommand) Category() string    { return categoryGeneral }
func (c *ResetCommand) RequireAdmin() bool  { return false }

func (c *ResetCommand) Run(ctx *core.Context, _ []string) (string, error) {
	if err := ctx.Engine.ResetUser(ctx, ctx.UserID); err != nil {
		return "", err
	}
	return "Conversation cleared. I still remember who you are.", nil
}

type ResetLimitsCommand struct{}

func (c *ResetLimitsCommand) Name() string        { return "resetlimits" }
func (c *ResetLimitsCommand) Description() string { return "Reset the rate limits of a user" }
func (c *ResetLimitsCommand) Usage() string       { return "/resetlimits [user]" }
func (c *ResetLimitsCommand) Aliases() []string   { return nil }
func (c *ResetLimitsCommand) Category() string    { return categoryAdmin }
func (c *ResetLimitsCommand) RequireAdmin() bool  { return true }

func (c *ResetLimitsCommand) Run(ctx *core.Context, args []string) (string, error) {
	target := ctx.UserID
	if len(args) > 0 {
		target = args[0]
	}
	ctx.Engine.ResetLimits(target)
	return "Limits reset for " + target + ".", nil
}
