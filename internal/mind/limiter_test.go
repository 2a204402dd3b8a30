package mind

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Cooldown(t *testing.T) {
	l := NewRateLimiter(2*time.Second, 10, 100)
	t0 := afternoon

	require.True(t, l.Admit("u", t0).Allowed)
	l.Record("u", t0)

	d := l.Admit("u", t0.Add(time.Second))
	assert.False(t, d.Allowed)
	assert.Equal(t, RuleCooldown, d.Rule)
	assert.Contains(t, d.Reason, "1.0")
	assert.Equal(t, time.Second, d.RetryAfter)

	assert.True(t, l.Admit("u", t0.Add(2*time.Second)).Allowed)
	assert.True(t, l.Admit("u", t0.Add(3*time.Second)).Allowed)
}

func TestRateLimiter_PerMinute(t *testing.T) {
	l := NewRateLimiter(2*time.Second, 10, 100)
	t0 := afternoon
	for i := 0; i < 10; i++ {
		now := t0.Add(time.Duration(i) * 3 * time.Second)
		require.True(t, l.Admit("u", now).Allowed, "event %d", i)
		l.Record("u", now)
	}

	// 11th at +30s: ten events inside the last minute
	d := l.Admit("u", t0.Add(30*time.Second))
	assert.False(t, d.Allowed)
	assert.Equal(t, RulePerMinute, d.Rule)
	assert.Equal(t, 30*time.Second, d.RetryAfter)

	// once the first event is exactly 60s old it no longer counts
	assert.True(t, l.Admit("u", t0.Add(60*time.Second)).Allowed)
}

func TestRateLimiter_PerDay(t *testing.T) {
	l := NewRateLimiter(0, 1000, 5)
	t0 := afternoon
	for i := 0; i < 5; i++ {
		now := t0.Add(time.Duration(i) * time.Hour)
		require.True(t, l.Admit("u", now).Allowed)
		l.Record("u", now)
	}
	d := l.Admit("u", t0.Add(5*time.Hour))
	assert.False(t, d.Allowed)
	assert.Equal(t, RulePerDay, d.Rule)
	assert.Equal(t, 19*time.Hour, d.RetryAfter)

	assert.True(t, l.Admit("u", t0.Add(24*time.Hour)).Allowed)
	assert.Equal(t, 4, l.WindowLen("u"))
}

func TestRateLimiter_PruneOnReject(t *testing.T) {
	l := NewRateLimiter(2*time.Second, 10, 100)
	t0 := afternoon
	l.Record("u", t0)
	l.Record("u", t0.Add(25*time.Hour))

	d := l.Admit("u", t0.Add(25*time.Hour+time.Second))
	assert.False(t, d.Allowed)
	assert.Equal(t, 1, l.WindowLen("u"))
}

func TestRateLimiter_UsersIndependent(t *testing.T) {
	l := NewRateLimiter(2*time.Second, 10, 100)
	l.Record("a", afternoon)
	assert.False(t, l.Admit("a", afternoon).Allowed)
	assert.True(t, l.Admit("b", afternoon).Allowed)
}

func TestRateLimiter_ResetAndSweep(t *testing.T) {
	l := NewRateLimiter(2*time.Second, 10, 100)
	l.Record("a", afternoon)
	l.Record("b", afternoon)

	l.Reset("a")
	assert.True(t, l.Admit("a", afternoon).Allowed)

	assert.Equal(t, 0, l.Sweep(afternoon.Add(time.Hour)))
	assert.Equal(t, 1, l.Sweep(afternoon.Add(25*time.Hour)))
	assert.Equal(t, 0, l.WindowLen("b"))
}

func TestRunLimiterSweeper_StopsOnCancel(t *testing.T) {
	l := NewRateLimiter(0, 10, 100)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunLimiterSweeper(ctx, l, newFakeClock(afternoon), time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
