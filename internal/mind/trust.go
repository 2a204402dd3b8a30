package mind

import (
	"context"
	"time"
)

type trustRecord struct {
	UserID    string    `json:"user_id"`
	Trust     float64   `json:"trust"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TrustLedger keeps a bounded, monotonic trust score per user.
type TrustLedger struct {
	records records
	delta   float64
	max     float64
}

func newTrustLedger(r records, delta, max float64) *TrustLedger {
	if delta <= 0 {
		delta = 0.05
	}
	if max <= 0 || max > 1 {
		max = 1.0
	}
	return &TrustLedger{records: r, delta: delta, max: max}
}

// Get returns the stored trust, 0.0 when the user is unknown or the record unreadable.
func (t *TrustLedger) Get(ctx context.Context, userID string) float64 {
	var rec trustRecord
	if !t.records.read(ctx, trustKey(userID), &rec) {
		return 0
	}
	return clamp01(rec.Trust)
}

// Increment applies min(trust+delta, max), persists it and returns the new value.
// A failed read writes nothing.
func (t *TrustLedger) Increment(ctx context.Context, userID string, now time.Time) (float64, error) {
	var rec trustRecord
	found, err := t.records.load(ctx, trustKey(userID), &rec)
	if err != nil {
		return 0, err
	}
	cur := 0.0
	if found {
		cur = clamp01(rec.Trust)
	}
	next := cur + t.delta
	if next > t.max {
		next = t.max
	}
	if next < cur {
		// a stored value above max is never lowered
		next = cur
	}
	rec = trustRecord{UserID: userID, Trust: next, UpdatedAt: now.UTC()}
	if err := t.records.save(ctx, trustKey(userID), rec); err != nil {
		return cur, err
	}
	return next, nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
