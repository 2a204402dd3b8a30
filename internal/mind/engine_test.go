package mind

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/mahiro/internal/ai"
	"github.com/keshon/mahiro/internal/storage"
)

type stubProvider struct {
	reply string
	err   error
	calls int
	last  []ai.Message
}

func (p *stubProvider) Generate(_ context.Context, messages []ai.Message) (string, error) {
	p.calls++
	p.last = messages
	return p.reply, p.err
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	clock := newFakeClock(afternoon)
	e := New(store, nil, WithSettings(utcSettings()), WithClock(clock), WithRand(noSwing))
	return e, clock, store
}

func TestEngine_ConverseCommits(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	p := &stubProvider{reply: "  hello Kai  "}

	r, err := e.Converse(ctx, p, "u", "hi there")
	require.NoError(t, err)
	assert.Equal(t, "hello Kai", r.Text)
	assert.True(t, r.Event.Admitted)
	assert.Equal(t, 1, r.Event.MessagesToday)
	assert.InDelta(t, 0.05, r.Trust, 1e-9)

	h := e.History(ctx, "u")
	require.Len(t, h, 2)
	assert.Equal(t, Turn{Role: RoleUser, Text: "hi there"}, h[0])
	assert.Equal(t, Turn{Role: RoleAgent, Text: "hello Kai"}, h[1])

	require.Len(t, p.last, 2)
	assert.Equal(t, "system", p.last[0].Role)
	assert.Equal(t, "hi there", p.last[1].Content)
}

func TestEngine_RejectionSkipsEverything(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	p := &stubProvider{reply: "ok"}

	_, err := e.Converse(ctx, p, "u", "first message")
	require.NoError(t, err)

	r, err := e.Converse(ctx, p, "u", "second message")
	require.NoError(t, err)
	assert.False(t, r.Event.Admitted)
	assert.Equal(t, RuleCooldown, r.Event.Rule)
	assert.NotEmpty(t, r.Event.Reason)
	assert.Empty(t, r.Text)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 1, e.Snapshot(ctx, "u").MessagesToday)
}

func TestEngine_FailedGenerationCommitsNothing(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	_, err := e.Converse(ctx, &stubProvider{err: errors.New("backend down")}, "u", "hi there")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)

	_, err = e.Converse(ctx, &stubProvider{reply: "   "}, "v", "hi there")
	assert.ErrorIs(t, err, ErrGeneration)

	for _, id := range []string{"u", "v"} {
		s := e.Snapshot(ctx, id)
		assert.Equal(t, 0, s.HistoryLen, id)
		assert.Equal(t, 0.0, s.Trust, id)
		// the event itself was admitted and counted
		assert.Equal(t, 1, s.MessagesToday, id)
	}
}

func TestEngine_CancelledContext(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Converse(ctx, &stubProvider{reply: "ok"}, "u", "hi there")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, e.Snapshot(context.Background(), "u").HistoryLen)
}

func TestEngine_ResetUserClearsHistoryOnly(t *testing.T) {
	ctx := context.Background()
	e, clock, _ := newTestEngine(t)
	p := &stubProvider{reply: "ok"}
	for i := 0; i < 3; i++ {
		_, err := e.Converse(ctx, p, "u", "hi there")
		require.NoError(t, err)
		clock.Advance(5 * time.Second)
	}
	require.NoError(t, e.Remember(ctx, "u", "likes tea"))
	_, err := e.SetMoodOverride(ctx, "u", "excited")
	require.NoError(t, err)

	require.NoError(t, e.ResetUser(ctx, "u"))

	s := e.Snapshot(ctx, "u")
	assert.Equal(t, 0, s.HistoryLen)
	assert.InDelta(t, 0.15, s.Trust, 1e-9)
	assert.Equal(t, MoodExcited, s.Mood)
	assert.Equal(t, 1, s.Facts)
}

func TestEngine_SetMoodOverride(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	_, err := e.SetMoodOverride(ctx, "u", "furious")
	assert.ErrorIs(t, err, ErrUnknownMood)
	assert.Equal(t, MoodNeutral, e.Mood(ctx, "u"))

	m, err := e.SetMoodOverride(ctx, "u", "SAD")
	require.NoError(t, err)
	assert.Equal(t, MoodSad, m)
	assert.Equal(t, MoodSad, e.Mood(ctx, "u"))
}

func TestEngine_ConcurrentCommitsKeepEveryIncrement(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Commit(ctx, "u", "hi", "hello")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s := e.Snapshot(ctx, "u")
	assert.InDelta(t, 0.5, s.Trust, 1e-9)
	assert.Equal(t, 20, s.HistoryLen)
	assert.Equal(t, 0, e.locks.size())
}

func TestEngine_ProfileReachesDirectives(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	require.NoError(t, e.SetName(ctx, "u", "Kai"))
	require.NoError(t, e.Remember(ctx, "u", "likes tea"))
	require.NoError(t, e.AddInterest(ctx, "u", "music"))
	require.NoError(t, e.AddFavorite(ctx, "u", "green tea"))

	ev, err := e.HandleEvent(ctx, "u", "how are you", afternoon)
	require.NoError(t, err)
	require.True(t, ev.Admitted)
	assert.Equal(t, Afternoon, ev.Period)
	assert.Contains(t, ev.Request.Directives, "Kai")
	assert.Contains(t, ev.Request.Directives, "likes tea")
	assert.Contains(t, ev.Request.Directives, "music")
	assert.Contains(t, ev.Request.Directives, "green tea")
}

func TestEngine_SpamMakesTired(t *testing.T) {
	ctx := context.Background()
	s := utcSettings()
	s.Cooldown = 0
	s.MaxPerMinute = 1000
	s.MaxPerDay = 1000
	e := New(storage.NewMemoryStore(), nil, WithSettings(s), WithClock(newFakeClock(afternoon)), WithRand(noSwing))

	var last *EventResult
	for i := 0; i < 51; i++ {
		ev, err := e.HandleEvent(ctx, "u", "you are cute", afternoon.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		last = ev
	}
	assert.Equal(t, 51, last.MessagesToday)
	assert.Equal(t, MoodTired, last.Mood)
}

func TestEngine_RejectionReportsCurrentState(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t)
	p := &stubProvider{reply: "ok"}

	_, err := e.Converse(ctx, p, "u", "first message")
	require.NoError(t, err)

	r, err := e.Converse(ctx, p, "u", "second message")
	require.NoError(t, err)
	require.False(t, r.Event.Admitted)
	assert.True(t, r.Event.Mood.Valid())
	assert.Equal(t, e.Mood(ctx, "u"), r.Event.Mood)
	assert.InDelta(t, 0.05, r.Event.Trust, 1e-9)
	assert.InDelta(t, 0.05, r.Trust, 1e-9)
	assert.Equal(t, 1, r.Event.MessagesToday)
	assert.Equal(t, Afternoon, r.Event.Period)
}

func TestEngine_CommitIgnoresLateCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newFlakyStore()
	// cancel as soon as the history lands, before the trust write
	s.onPut = func(key string) {
		if isHistoryKey(key) {
			cancel()
		}
	}
	e := New(s, nil, WithSettings(utcSettings()), WithClock(newFakeClock(afternoon)), WithRand(noSwing))

	r, err := e.Converse(ctx, &stubProvider{reply: "hello"}, "u", "hi there")
	require.NoError(t, err)
	assert.InDelta(t, 0.05, r.Trust, 1e-9)

	bg := context.Background()
	assert.Len(t, e.History(bg, "u"), 2)
	assert.InDelta(t, 0.05, e.Snapshot(bg, "u").Trust, 1e-9)
}
