package commands

import (
	"fmt"
	"strings"

	"github.com/keshon/mahiro/internal/core"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List the commands" }
func (c *HelpCommand) Usage() string       { return "/help" }
func (c *HelpCommand) Aliases() []string   { return []string{"start", "помощь"} }
func (c *HelpCommand) Category() string    { return categoryGeneral }
func (c *HelpCommand) RequireAdmin() bool  { return false }

func (c *HelpCommand) Run(ctx *core.Context, _ []string) (string, error) {
	if ctx.Registry == nil {
		return "", fmt.Errorf("help: no registry")
	}
	var b strings.Builder
	b.WriteString("Just write to me, or use a command:\n")
	category := ""
	for _, cmd := range ctx.Registry.All() {
		if cmd.RequireAdmin() && !ctx.Admin {
			continue
		}
		if cmd.Category() != category {
			category = cmd.Category()
			fmt.Fprintf(&b, "\n%s\n", category)
		}
		fmt.Fprintf(&b, "  %s  %s\n", cmd.Usage(), cmd.Description())
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
