package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/mahiro/internal/core"
)

type ImagesCommand struct{}

func (c *ImagesCommand) Name() string        { return "images" }
func (c *ImagesCommand) Description() string { return "Count mood pictures per category" }
func (c *ImagesCommand) Usage() string       { return "/images" }
func (c *ImagesCommand) Aliases() []string   { return nil }
func (c *ImagesCommand) Category() string    { return categoryAdmin }
func (c *ImagesCommand) RequireAdmin() bool  { return true }

func (c *ImagesCommand) Run(ctx *core.Context, _ []string) (string, error) {
	if ctx.Images == nil {
		return "Images are disabled.", nil
	}
	stats := ctx.Images.Stats()
	names := make([]string, 0, len(stats))
	for k := range stats {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	total := 0
	for _, n := range names {
		fmt.Fprintf(&b, "%s: %d\n", n, stats[n])
		total += stats[n]
	}
	fmt.Fprintf(&b, "total: %d", total)
	return b.String(), nil
}
