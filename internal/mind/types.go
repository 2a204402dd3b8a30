package mind

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mood is the persona's displayed emotional state for one user.
type Mood string

const (
	MoodNeutral   Mood = "neutral"
	MoodHappy     Mood = "happy"
	MoodIrritated Mood = "irritated"
	MoodTired     Mood = "tired"
	MoodSleepy    Mood = "sleepy"
	MoodExcited   Mood = "excited"
	MoodSad       Mood = "sad"
)

// Moods is the full enum in a fixed order (random draws index into it).
var Moods = []Mood{MoodNeutral, MoodHappy, MoodIrritated, MoodTired, MoodSleepy, MoodExcited, MoodSad}

var ErrUnknownMood = errors.New("unknown mood")

// Russian labels used by the original bot, accepted by ParseMood.
var moodAliases = map[string]Mood{
	"обычное":       MoodNeutral,
	"счастливая":    MoodHappy,
	"раздражённая":  MoodIrritated,
	"раздраженная":  MoodIrritated,
	"усталая":       MoodTired,
	"сонная":        MoodSleepy,
	"взволнованная": MoodExcited,
	"грустная":      MoodSad,
}

// ParseMood validates a mood name (case-insensitive, English or Russian label).
func ParseMood(s string) (Mood, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Moods {
		if string(m) == name {
			return m, nil
		}
	}
	if m, ok := moodAliases[name]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMood, s)
}

// Valid reports whether m is one of Moods.
func (m Mood) Valid() bool {
	for _, v := range Moods {
		if v == m {
			return true
		}
	}
	return false
}

// Period is the time-of-day band used for directives and the base mood.
type Period string

const (
	Morning   Period = "morning"
	Afternoon Period = "afternoon"
	Evening   Period = "evening"
	Night     Period = "night"
)

// PeriodOf maps the hour of t: [5,12) morning, [12,18) afternoon, [18,23) evening, else night.
func PeriodOf(t time.Time) Period {
	h := t.Hour()
	switch {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 18:
		return Afternoon
	case h >= 18 && h < 23:
		return Evening
	default:
		return Night
	}
}

// Role of a dialogue turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Turn is one entry of the short-term history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Fact is one long-term memory line about a user.
type Fact struct {
	Text       string    `json:"text"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Profile is the accumulated long-term knowledge about a user.
type Profile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name,omitempty"`
	Facts     []Fact    `json:"facts"`
	Interests []string  `json:"interests"`
	Favorites []string  `json:"favorites"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// IsEmpty is true when nothing would be worth putting in a prompt.
func (p Profile) IsEmpty() bool {
	return p.Name == "" && len(p.Facts) == 0 && len(p.Interests) == 0 && len(p.Favorites) == 0
}

// RecentFacts returns the last n facts, oldest first.
func (p Profile) RecentFacts(n int) []Fact {
	if n <= 0 || len(p.Facts) <= n {
		return p.Facts
	}
	return p.Facts[len(p.Facts)-n:]
}

// UserSnapshot is the read-only view behind the /stats command.
type UserSnapshot struct {
	UserID        string  `json:"user_id"`
	Mood          Mood    `json:"mood"`
	Trust         float64 `json:"trust"`
	HistoryLen    int     `json:"history_len"`
	MessagesToday int     `json:"messages_today"`
	Name          string  `json:"name,omitempty"`
	Facts         int     `json:"facts"`
}
