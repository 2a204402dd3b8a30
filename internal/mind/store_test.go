package mind

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords_LoadSeparatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	r := flakyRecords(s)
	require.NoError(t, r.save(ctx, "k", trustRecord{Trust: 0.4}))

	s.failNextGets(1)
	var rec trustRecord
	found, err := r.load(ctx, "k", &rec)
	assert.ErrorIs(t, err, errStoreDown)
	assert.False(t, found)

	found, err = r.load(ctx, "missing", &rec)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Put(ctx, "bad", []byte("{oops")))
	found, err = r.load(ctx, "bad", &rec)
	require.NoError(t, err)
	assert.False(t, found)

	s.failNextGets(1)
	assert.False(t, r.read(ctx, "k", &rec))
}

func TestMemory_ProfileSurvivesFailedRead(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	e := New(s, nil, WithSettings(utcSettings()), WithClock(newFakeClock(afternoon)), WithRand(noSwing))

	for _, f := range []string{"a", "b", "c"} {
		require.NoError(t, e.Remember(ctx, "u", f))
	}
	require.NoError(t, e.SetName(ctx, "u", "Kai"))

	s.failNextGets(1)
	assert.ErrorIs(t, e.Remember(ctx, "u", "d"), errStoreDown)

	p := e.Profile(ctx, "u")
	assert.Len(t, p.Facts, 3)
	assert.Equal(t, "Kai", p.Name)

	s.failNextGets(1)
	assert.ErrorIs(t, e.AddInterest(ctx, "u", "tea"), errStoreDown)
	assert.Empty(t, e.Profile(ctx, "u").Interests)

	require.NoError(t, e.Remember(ctx, "u", "d"))
	assert.Len(t, e.Profile(ctx, "u").Facts, 4)
}

func TestMemory_HistorySurvivesFailedRead(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	m := newMemory(flakyRecords(s), 20, 50)

	require.NoError(t, m.Append(ctx, "u", RoleUser, "one"))
	require.NoError(t, m.Append(ctx, "u", RoleAgent, "two"))

	s.failNextGets(1)
	assert.ErrorIs(t, m.Append(ctx, "u", RoleUser, "three"), errStoreDown)
	assert.Len(t, m.Load(ctx, "u"), 2)
}

func TestTrustLedger_FailedReadKeepsTrust(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	l := newTrustLedger(flakyRecords(s), 0.2, 1.0)

	for i := 0; i < 3; i++ {
		_, err := l.Increment(ctx, "u", afternoon)
		require.NoError(t, err)
	}
	require.InDelta(t, 0.6, l.Get(ctx, "u"), 1e-9)

	s.failNextGets(1)
	_, err := l.Increment(ctx, "u", afternoon)
	assert.ErrorIs(t, err, errStoreDown)
	assert.InDelta(t, 0.6, l.Get(ctx, "u"), 1e-9)
}

func TestDailyCounter_FailedReadKeepsCount(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	c := newDailyCounter(flakyRecords(s), afternoon.Location())

	for i := 0; i < 2; i++ {
		_, err := c.Increment(ctx, "u", afternoon)
		require.NoError(t, err)
	}

	s.failNextGets(1)
	_, err := c.Increment(ctx, "u", afternoon)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 2, c.Get(ctx, "u", afternoon))

	n, err := c.Increment(ctx, "u", afternoon)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
