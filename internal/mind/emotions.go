package mind

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Spam thresholds on messages per day.
const (
	spamTiredAbove     = 50
	spamIrritatedAbove = 30
)

// Trust gates for content rules.
const (
	affectionTrustGate = 0.3
	sadnessTrustGate   = 0.5
)

const (
	shortMessageRunes = 3
	longMessageRunes  = 500
)

// DefaultRandomMoodChance is the per-event chance of a random mood swing.
const DefaultRandomMoodChance = 0.05

var affectionWords = []string{
	"love", "cute", "smart", "pretty", "beautiful", "awesome", "adorable", "sweet",
	"люблю", "нравишься", "классная", "милая", "красивая", "хорошая", "умная", "крутая", "супер", "офигенная",
}

var hostileWords = []string{
	"stupid", "shut up", "idiot", "dumb", "go away", "annoying", "hate you",
	"тупая", "глупая", "дура", "идиот", "плохая", "отстань", "заткнись", "достала",
}

var sadnessWords = []string{
	"sad", "lonely", "depressed", "miserable", "unhappy",
	"грустно", "плохо", "печально", "одиноко", "скучно",
}

// Base moods drawn when nothing else applies.
var periodMoods = map[Period][]Mood{
	Morning:   {MoodSleepy, MoodTired, MoodNeutral},
	Afternoon: {MoodNeutral},
	Evening:   {MoodNeutral, MoodHappy},
	Night:     {MoodSleepy, MoodExcited, MoodNeutral},
}

type affectRecord struct {
	UserID      string    `json:"user_id"`
	Mood        Mood      `json:"mood"`
	LastChanged time.Time `json:"last_changed"`
}

// AffectInput is everything Compute looks at for one event.
type AffectInput struct {
	UserID        string
	Text          string
	Period        Period
	Trust         float64
	MessagesToday int
	Now           time.Time
}

// AffectEngine computes and persists the current mood per user.
type AffectEngine struct {
	records records
	rnd     Rand
	chance  float64
}

func newAffectEngine(r records, rnd Rand, chance float64) *AffectEngine {
	if chance < 0 || chance > 1 {
		chance = DefaultRandomMoodChance
	}
	return &AffectEngine{records: r, rnd: rnd, chance: chance}
}

// Get returns the stored mood; unknown, corrupt or missing records read as neutral.
func (a *AffectEngine) Get(ctx context.Context, userID string) Mood {
	var rec affectRecord
	if !a.records.read(ctx, moodKey(userID), &rec) || !rec.Mood.Valid() {
		return MoodNeutral
	}
	return rec.Mood
}

// Set persists m as the current mood.
func (a *AffectEngine) Set(ctx context.Context, userID string, m Mood, now time.Time) error {
	if !m.Valid() {
		return ErrUnknownMood
	}
	rec := affectRecord{UserID: userID, Mood: m, LastChanged: now.UTC()}
	return a.records.save(ctx, moodKey(userID), rec)
}

// Compute runs the rules in priority order (first match wins):
// spam, random swing, message content, sticky stored mood, time-of-day base.
// The result is persisted when it differs from the stored mood.
func (a *AffectEngine) Compute(ctx context.Context, in AffectInput) (Mood, error) {
	stored := a.Get(ctx, in.UserID)

	mood, random := a.decide(stored, in)
	if !random && mood == stored {
		return mood, nil
	}
	// random swings are always written, even when they land on the stored mood
	if err := a.Set(ctx, in.UserID, mood, in.Now); err != nil {
		return mood, err
	}
	return mood, nil
}

func (a *AffectEngine) decide(stored Mood, in AffectInput) (Mood, bool) {
	switch {
	case in.MessagesToday > spamTiredAbove:
		return MoodTired, false
	case in.MessagesToday > spamIrritatedAbove:
		return MoodIrritated, false
	}

	if a.rnd.Float64() < a.chance {
		return Moods[a.rnd.Intn(len(Moods))], true
	}

	if m, ok := AnalyzeMessage(in.Text, in.Trust); ok {
		return m, false
	}

	if stored != MoodNeutral {
		return stored, false
	}

	candidates := periodMoods[in.Period]
	if len(candidates) == 0 {
		return MoodNeutral, false
	}
	if len(candidates) == 1 {
		return candidates[0], false
	}
	return candidates[a.rnd.Intn(len(candidates))], false
}

// AnalyzeMessage applies the content rules to text. The second result is false
// when no rule matched.
func AnalyzeMessage(text string, trust float64) (Mood, bool) {
	lower := normalizeText(text)

	if trust > affectionTrustGate && containsAny(lower, affectionWords) {
		return MoodHappy, true
	}
	if containsAny(lower, hostileWords) {
		return MoodIrritated, true
	}
	if trust > sadnessTrustGate && containsAny(lower, sadnessWords) {
		return MoodSad, true
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < shortMessageRunes {
		return MoodIrritated, true
	}
	if utf8.RuneCountInString(text) > longMessageRunes {
		return MoodExcited, true
	}
	return "", false
}

func normalizeText(s string) string {
	// cases.Caser is stateful, one per call
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
