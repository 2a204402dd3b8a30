package mind

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyText is returned when a memory write carries no text.
var ErrEmptyText = errors.New("empty text")

type historyRecord struct {
	UserID  string `json:"user_id"`
	History []Turn `json:"history"`
}

// Memory holds the short-term dialogue history and the long-term profile.
type Memory struct {
	records      records
	historyLimit int
	factsLimit   int
}

func newMemory(r records, historyLimit, factsLimit int) *Memory {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	if factsLimit <= 0 {
		factsLimit = 50
	}
	return &Memory{records: r, historyLimit: historyLimit, factsLimit: factsLimit}
}

// Load returns the stored history, oldest first. Never longer than the cap.
func (m *Memory) Load(ctx context.Context, userID string) []Turn {
	var rec historyRecord
	if !m.records.read(ctx, historyKey(userID), &rec) {
		return nil
	}
	return trimTurns(rec.History, m.historyLimit)
}

// Append adds one turn and truncates to the last N.
func (m *Memory) Append(ctx context.Context, userID string, role Role, text string) error {
	return m.AppendTurns(ctx, userID, Turn{Role: role, Text: text})
}

// AppendTurns adds several turns under a single write.
func (m *Memory) AppendTurns(ctx context.Context, userID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	var rec historyRecord
	found, err := m.records.load(ctx, historyKey(userID), &rec)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	var history []Turn
	if found {
		history = rec.History
	}
	history = append(trimTurns(history, m.historyLimit), turns...)
	rec = historyRecord{UserID: userID, History: trimTurns(history, m.historyLimit)}
	return m.records.save(ctx, historyKey(userID), rec)
}

// Clear drops the short-term history. The profile is kept.
func (m *Memory) Clear(ctx context.Context, userID string) error {
	if err := m.records.store.Delete(ctx, historyKey(userID)); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Profile returns the long-term profile, empty when unknown.
func (m *Memory) Profile(ctx context.Context, userID string) Profile {
	var p Profile
	if !m.records.read(ctx, profileKey(userID), &p) {
		return Profile{UserID: userID}
	}
	return m.normalize(userID, p)
}

func (m *Memory) normalize(userID string, p Profile) Profile {
	p.UserID = userID
	if len(p.Facts) > m.factsLimit {
		p.Facts = p.Facts[len(p.Facts)-m.factsLimit:]
	}
	return p
}

// AddFact appends a fact, keeping the last M.
func (m *Memory) AddFact(ctx context.Context, userID, text string, now time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	return m.updateProfile(ctx, userID, now, func(p *Profile) {
		p.Facts = append(p.Facts, Fact{Text: text, RecordedAt: now.UTC()})
		if len(p.Facts) > m.factsLimit {
			p.Facts = p.Facts[len(p.Facts)-m.factsLimit:]
		}
	})
}

// SetName records the name the user goes by.
func (m *Memory) SetName(ctx context.Context, userID, name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyText
	}
	return m.updateProfile(ctx, userID, now, func(p *Profile) { p.Name = name })
}

// AddInterest adds to the interest set, keeping insertion order.
func (m *Memory) AddInterest(ctx context.Context, userID, interest string, now time.Time) error {
	interest = strings.TrimSpace(interest)
	if interest == "" {
		return ErrEmptyText
	}
	return m.updateProfile(ctx, userID, now, func(p *Profile) { p.Interests = addUnique(p.Interests, interest) })
}

// AddFavorite adds to the favorites set, keeping insertion order.
func (m *Memory) AddFavorite(ctx context.Context, userID, favorite string, now time.Time) error {
	favorite = strings.TrimSpace(favorite)
	if favorite == "" {
		return ErrEmptyText
	}
	return m.updateProfile(ctx, userID, now, func(p *Profile) { p.Favorites = addUnique(p.Favorites, favorite) })
}

// updateProfile writes nothing when the current profile cannot be read.
func (m *Memory) updateProfile(ctx context.Context, userID string, now time.Time, fn func(*Profile)) error {
	var p Profile
	found, err := m.records.load(ctx, profileKey(userID), &p)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if found {
		p = m.normalize(userID, p)
	} else {
		p = Profile{UserID: userID}
	}
	fn(&p)
	p.UpdatedAt = now.UTC()
	return m.records.save(ctx, profileKey(userID), p)
}

// trimTurns keeps the last n turns. The result never aliases a caller's slice tail.
func trimTurns(turns []Turn, n int) []Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	out := make([]Turn, n)
	copy(out, turns[len(turns)-n:])
	return out
}

func addUnique(list []string, v string) []string {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return list
		}
	}
	return append(list, v)
}
