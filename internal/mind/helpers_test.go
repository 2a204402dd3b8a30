package mind

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/keshon/mahiro/internal/storage"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fixedRand never triggers the random swing unless f is below the chance.
type fixedRand struct {
	f float64
	i int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(n int) int   { return r.i % n }

var noSwing = fixedRand{f: 0.99}

// afternoon keeps the base mood neutral.
var afternoon = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func testRecords() records {
	return records{store: storage.NewMemoryStore()}
}

func utcSettings() Settings {
	s := DefaultSettings()
	s.Location = time.UTC
	return s
}

var errStoreDown = errors.New("store unavailable")

// flakyStore fails a number of upcoming Gets, honours ctx cancellation like
// the networked backends and can observe Puts.
type flakyStore struct {
	storage.Store
	mu       sync.Mutex
	failGets int
	onPut    func(key string)
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: storage.NewMemoryStore()}
}

func (s *flakyStore) failNextGets(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGets = n
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	if s.failGets > 0 {
		s.failGets--
		s.mu.Unlock()
		return nil, false, errStoreDown
	}
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return s.Store.Get(ctx, key)
}

func (s *flakyStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.Store.Put(ctx, key, value)
	if s.onPut != nil {
		s.onPut(key)
	}
	return err
}

func flakyRecords(s *flakyStore) records {
	return records{store: s}
}

func isHistoryKey(key string) bool { return strings.HasPrefix(key, nsHistory) }
