package commands

import (
	"fmt"
	"strings"

	"github.com/keshon/mahiro/internal/core"
	"github.com/keshon/mahiro/internal/mind"
)

type StatsCommand struct{}

func (c *StatsCommand) Name() string        { return "stats" }
func (c *StatsCommand) Description() string { return "How well I know you" }
func (c *StatsCommand) Usage() string       { return "/stats" }
func (c *StatsCommand) Aliases() []string   { return []string{"me"} }
func (c *StatsCommand) Category() string    { return categoryGeneral }
func (c *StatsCommand) RequireAdmin() bool  { return false }

func (c *StatsCommand) Run(ctx *core.Context, _ []string) (string, error) {
	s := ctx.Engine.Snapshot(ctx, ctx.UserID)
	var b strings.Builder
	if s.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", s.Name)
	}
	fmt.Fprintf(&b, "Trust: %.0f%% (%s)\n", s.Trust*100, mind.TrustTier(s.Trust))
	fmt.Fprintf(&b, "Mood: %s\n", s.Mood)
	fmt.Fprintf(&b, "Messages today: %d\n", s.MessagesToday)
	fmt.Fprintf(&b, "Messages in memory: %d\n", s.HistoryLen)
	fmt.Fprintf(&b, "Facts remembered: %d", s.Facts)
	return b.String(), nil
}
