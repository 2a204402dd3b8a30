package mind

import (
	"context"
	"time"
)

type counterRecord struct {
	UserID string `json:"user_id"`
	Day    string `json:"day"`
	Count  int    `json:"count"`
}

// DailyCounter counts admitted messages per user and local calendar day.
type DailyCounter struct {
	records records
	loc     *time.Location
}

func newDailyCounter(r records, loc *time.Location) *DailyCounter {
	if loc == nil {
		loc = time.Local
	}
	return &DailyCounter{records: r, loc: loc}
}

// Get returns the count for the day containing now.
func (c *DailyCounter) Get(ctx context.Context, userID string, now time.Time) int {
	var rec counterRecord
	if !c.records.read(ctx, counterKey(userID, now.In(c.loc)), &rec) || rec.Count < 0 {
		return 0
	}
	return rec.Count
}

// Increment bumps today's count and returns the new value. A failed read
// writes nothing and returns 0.
func (c *DailyCounter) Increment(ctx context.Context, userID string, now time.Time) (int, error) {
	day := now.In(c.loc)
	key := counterKey(userID, day)

	var rec counterRecord
	found, err := c.records.load(ctx, key, &rec)
	if err != nil {
		return 0, err
	}
	n := 1
	if found && rec.Count > 0 {
		n = rec.Count + 1
	}
	rec = counterRecord{UserID: userID, Day: day.Format("2006-01-02"), Count: n}
	if err := c.records.save(ctx, key, rec); err != nil {
		return n - 1, err
	}
	return n, nil
}
