package commands

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/mahiro/internal/core"
	"github.com/keshon/mahiro/internal/mind"
	"github.com/keshon/mahiro/internal/storage"
)

func newTestContext(admin bool) (*core.Registry, *core.Context) {
	e := mind.New(storage.NewMemoryStore(), nil, mind.WithRand(mind.NewRand(1)))
	r := NewRegistry(zerolog.Nop())
	return r, &core.Context{Context: context.Background(), Engine: e, Registry: r, UserID: "u", Admin: admin}
}

func dispatch(t *testing.T, r *core.Registry, ctx *core.Context, text string) string {
	t.Helper()
	reply, handled, err := r.Dispatch(ctx, text)
	require.True(t, handled)
	require.NoError(t, err)
	return reply
}

func TestDispatch_PlainTextIsNotACommand(t *testing.T) {
	r, ctx := newTestContext(false)
	_, handled, err := r.Dispatch(ctx, "hello there")
	assert.False(t, handled)
	assert.NoError(t, err)

	_, handled, err = r.Dispatch(ctx, "/nope")
	assert.True(t, handled)
	assert.ErrorIs(t, err, core.ErrUnknownCommand)
}

func TestSetMood_AdminOnly(t *testing.T) {
	r, ctx := newTestContext(false)
	_, _, err := r.Dispatch(ctx, "/setmood happy")
	assert.ErrorIs(t, err, core.ErrAdminOnly)

	ctx.Admin = true
	assert.Equal(t, "Mood set to happy.", dispatch(t, r, ctx, "/setmood happy"))
	assert.Equal(t, "My mood: happy", dispatch(t, r, ctx, "!mood"))

	_, _, err = r.Dispatch(ctx, "/setmood furious")
	assert.ErrorIs(t, err, mind.ErrUnknownMood)
}

func TestProfileCommands(t *testing.T) {
	r, ctx := newTestContext(false)
	dispatch(t, r, ctx, "/name Kai")
	dispatch(t, r, ctx, "/remember likes green tea")
	dispatch(t, r, ctx, "/fav cats")
	assert.Equal(t, "Usage: /interest <topic>", dispatch(t, r, ctx, "/interest"))

	p := ctx.Engine.Profile(ctx, "u")
	assert.Equal(t, "Kai", p.Name)
	require.Len(t, p.Facts, 1)
	assert.Equal(t, "likes green tea", p.Facts[0].Text)
	assert.Equal(t, []string{"cats"}, p.Favorites)

	stats := dispatch(t, r, ctx, "/stats")
	assert.Contains(t, stats, "Name: Kai")
	assert.Contains(t, stats, "Facts remembered: 1")
	assert.Contains(t, stats, "Trust: 0% (low)")
}

func TestReset(t *testing.T) {
	r, ctx := newTestContext(false)
	_, err := ctx.Engine.Commit(ctx, "u", "hi", "hello")
	require.NoError(t, err)
	require.Len(t, ctx.Engine.History(ctx, "u"), 2)

	dispatch(t, r, ctx, "/reset")
	assert.Empty(t, ctx.Engine.History(ctx, "u"))
}

func TestHelp_HidesAdminCommands(t *testing.T) {
	r, ctx := newTestContext(false)
	out := dispatch(t, r, ctx, "/help")
	assert.Contains(t, out, "/mood")
	assert.NotContains(t, out, "/setmood")

	ctx.Admin = true
	assert.Contains(t, dispatch(t, r, ctx, "/help"), "/setmood")
}

func TestParse(t *testing.T) {
	name, args, ok := core.Parse("  /SetMood@mahiro sad  ")
	require.True(t, ok)
	assert.Equal(t, "setmood", name)
	assert.Equal(t, []string{"sad"}, args)

	_, _, ok = core.Parse("/")
	assert.False(t, ok)
	_, _, ok = core.Parse("hi /mood")
	assert.False(t, ok)
}
