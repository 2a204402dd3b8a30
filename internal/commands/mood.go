package commands

import (
	"fmt"
	"strings"

	"github.com/keshon/mahiro/internal/core"
	"github.com/keshon/mahiro/internal/mind"
)

type MoodCommand struct{}

func (c *MoodCommand) Name() string        { return "mood" }
func (c *MoodCommand) Description() string { return "Show my current mood" }
func (c *MoodCommand) Usage() string       { return "/mood" }
func (c *MoodCommand) Aliases() []string   { return []string{"настроение"} }
func (c *MoodCommand) Category() string    { return categoryGeneral }
func (c *MoodCommand) RequireAdmin() bool  { return false }

func (c *MoodCommand) Run(ctx *core.Context, _ []string) (string, error) {
	return fmt.Sprintf("My mood: %s", ctx.Engine.Mood(ctx, ctx.UserID)), nil
}

type SetMoodCommand struct{}

func (c *SetMoodCommand) Name() string        { return "setmood" }
func (c *SetMoodCommand) Description() string { return "Override the mood" }
func (c *SetMoodCommand) Usage() string       { return "/setmood <mood>" }
func (c *SetMoodCommand) Aliases() []string   { return nil }
func (c *SetMoodCommand) Category() string    { return categoryAdmin }
func (c *SetMoodCommand) RequireAdmin() bool  { return true }

func (c *SetMoodCommand) Run(ctx *core.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "Usage: " + c.Usage() + "\nMoods: " + moodNames(), nil
	}
	m, err := ctx.Engine.SetMoodOverride(ctx, ctx.UserID, args[0])
	if err != nil {
		return "", fmt.Errorf("%w (available: %s)", err, moodNames())
	}
	return fmt.Sprintf("Mood set to %s.", m), nil
}

func moodNames() string {
	names := make([]string, len(mind.Moods))
	for i, m := range mind.Moods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
