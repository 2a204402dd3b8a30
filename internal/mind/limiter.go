package mind

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Rejection rules, in evaluation order.
const (
	RuleCooldown  = "cooldown"
	RulePerMinute = "per_minute"
	RulePerDay    = "per_day"
)

// Decision is the outcome of an admission check. Rejection is not an error.
type Decision struct {
	Allowed    bool
	Rule       string // empty when allowed
	Reason     string
	RetryAfter time.Duration
}

type rateWindow struct {
	events []time.Time // none older than 24h after a prune
	last   time.Time
}

// RateLimiter is the per-user sliding-window + cooldown gate. Process-local.
type RateLimiter struct {
	mu           sync.Mutex
	cooldown     time.Duration
	maxPerMinute int
	maxPerDay    int
	users        map[string]*rateWindow
}

// NewRateLimiter builds a limiter. A negative cooldown falls back to 2s and
// non-positive caps to 10/min and 100/day; a zero cooldown disables it.
func NewRateLimiter(cooldown time.Duration, maxPerMinute, maxPerDay int) *RateLimiter {
	if cooldown < 0 {
		cooldown = 2 * time.Second
	}
	if maxPerMinute <= 0 {
		maxPerMinute = 10
	}
	if maxPerDay <= 0 {
		maxPerDay = 100
	}
	return &RateLimiter{
		cooldown:     cooldown,
		maxPerMinute: maxPerMinute,
		maxPerDay:    maxPerDay,
		users:        make(map[string]*rateWindow),
	}
}

// Admit decides whether an event from userID at now may proceed. The window is
// pruned to 24h whatever the outcome. Admit does not record the event.
func (l *RateLimiter) Admit(userID string, now time.Time) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.users[userID]
	if w == nil {
		return Decision{Allowed: true}
	}
	w.prune(now)

	if !w.last.IsZero() {
		if since := now.Sub(w.last); since < l.cooldown {
			remaining := l.cooldown - since
			return Decision{
				Rule:       RuleCooldown,
				Reason:     fmt.Sprintf("wait %.1f seconds before the next message", remaining.Seconds()),
				RetryAfter: remaining,
			}
		}
	}

	cutMin := now.Add(-time.Minute)
	perMinute := 0
	var oldestMin time.Time
	for _, t := range w.events {
		if t.After(cutMin) {
			perMinute++
			if oldestMin.IsZero() || t.Before(oldestMin) {
				oldestMin = t
			}
		}
	}
	if perMinute >= l.maxPerMinute {
		return Decision{
			Rule:       RulePerMinute,
			Reason:     fmt.Sprintf("too many messages, at most %d per minute", l.maxPerMinute),
			RetryAfter: oldestMin.Sub(cutMin),
		}
	}

	if len(w.events) >= l.maxPerDay {
		oldest := w.events[0]
		for _, t := range w.events {
			if t.Before(oldest) {
				oldest = t
			}
		}
		return Decision{
			Rule:       RulePerDay,
			Reason:     fmt.Sprintf("daily limit reached (%d messages)", l.maxPerDay),
			RetryAfter: oldest.Sub(now.Add(-24 * time.Hour)),
		}
	}
	return Decision{Allowed: true}
}

// Record stores an admitted event. Call exactly once per admitted event.
func (l *RateLimiter) Record(userID string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.users[userID]
	if w == nil {
		w = &rateWindow{events: make([]time.Time, 0, 16)}
		l.users[userID] = w
	}
	w.events = append(w.events, now)
	w.last = now
}

// Reset forgets everything about userID (admin action).
func (l *RateLimiter) Reset(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.users, userID)
}

// Sweep drops users whose window is empty after pruning and returns how many were removed.
func (l *RateLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for id, w := range l.users {
		w.prune(now)
		if len(w.events) == 0 && now.Sub(w.last) >= l.cooldown {
			delete(l.users, id)
			removed++
		}
	}
	return removed
}

// WindowLen returns the number of retained events for userID.
func (l *RateLimiter) WindowLen(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w := l.users[userID]; w != nil {
		return len(w.events)
	}
	return 0
}

// prune removes events older than 24h in place.
func (w *rateWindow) prune(now time.Time) {
	cutDay := now.Add(-24 * time.Hour)
	valid := w.events[:0] // reuse backing array
	for _, t := range w.events {
		if t.After(cutDay) {
			valid = append(valid, t)
		}
	}
	w.events = valid
}

// RunLimiterSweeper sweeps idle users every interval until ctx is done.
func RunLimiterSweeper(ctx context.Context, l *RateLimiter, clock Clock, every time.Duration) {
	if every <= 0 {
		every = 10 * time.Minute
	}
	if clock == nil {
		clock = SystemClock()
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(clock.Now())
		}
	}
}
