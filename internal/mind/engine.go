package mind

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/mahiro/internal/ai"
	"github.com/keshon/mahiro/internal/persona"
	"github.com/keshon/mahiro/internal/storage"
)

// ErrGeneration wraps every failure of the generation backend.
var ErrGeneration = errors.New("generation failed")

// Settings are the tunables of the engine.
type Settings struct {
	HistoryLimit     int
	FactsLimit       int
	PromptFacts      int
	TrustIncrement   float64
	MaxTrust         float64
	Cooldown         time.Duration
	MaxPerMinute     int
	MaxPerDay        int
	RandomMoodChance float64
	Location         *time.Location
}

// DefaultSettings mirrors the original bot's limits.
func DefaultSettings() Settings {
	return Settings{
		HistoryLimit:     20,
		FactsLimit:       50,
		PromptFacts:      DefaultPromptFacts,
		TrustIncrement:   0.05,
		MaxTrust:         1.0,
		Cooldown:         2 * time.Second,
		MaxPerMinute:     10,
		MaxPerDay:        100,
		RandomMoodChance: DefaultRandomMoodChance,
		Location:         time.Local,
	}
}

// Option configures an Engine.
type Option func(*Engine)

func WithSettings(s Settings) Option { return func(e *Engine) { e.settings = s } }
func WithClock(c Clock) Option       { return func(e *Engine) { e.clock = c } }
func WithRand(r Rand) Option         { return func(e *Engine) { e.rnd = r } }
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine is the entry point for inbound events. All state mutation for a user
// runs under that user's lock; different users never contend.
type Engine struct {
	settings Settings
	clock    Clock
	rnd      Rand
	log      zerolog.Logger

	locks    *userLocks
	limiter  *RateLimiter
	trust    *TrustLedger
	counter  *DailyCounter
	affect   *AffectEngine
	memory   *Memory
	composer *Composer
}

// New wires the engine over store. A nil persona uses persona.Default().
func New(store storage.Store, p *persona.Persona, opts ...Option) *Engine {
	e := &Engine{
		settings: DefaultSettings(),
		clock:    SystemClock(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		e.rnd = NewRand(time.Now().UnixNano())
	}
	if e.settings.Location == nil {
		e.settings.Location = time.Local
	}
	e.log = e.log.With().Str("component", "mind").Logger()

	s := e.settings
	r := records{store: store, log: e.log}
	e.locks = newUserLocks()
	e.limiter = NewRateLimiter(s.Cooldown, s.MaxPerMinute, s.MaxPerDay)
	e.trust = newTrustLedger(r, s.TrustIncrement, s.MaxTrust)
	e.counter = newDailyCounter(r, s.Location)
	e.affect = newAffectEngine(r, e.rnd, s.RandomMoodChance)
	e.memory = newMemory(r, s.HistoryLimit, s.FactsLimit)
	e.composer = NewComposer(p, s.HistoryLimit, s.PromptFacts)
	return e
}

// Limiter exposes the admission gate, e.g. for the background sweeper.
func (e *Engine) Limiter() *RateLimiter { return e.limiter }

// Clock returns the engine clock.
func (e *Engine) Clock() Clock { return e.clock }

// EventResult is the outcome of HandleEvent.
type EventResult struct {
	Admitted      bool
	Rule          string
	Reason        string
	RetryAfter    time.Duration
	Mood          Mood
	Trust         float64
	MessagesToday int
	Period        Period
	Request       GenerationRequest
}

// HandleEvent runs admission, state update and composition for one message.
// A rejection is reported in the result, not as an error. Store failures are
// logged and degrade to defaults; only a done ctx is returned as an error.
func (e *Engine) HandleEvent(ctx context.Context, userID, text string, now time.Time) (*EventResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := e.locks.Lock(userID)
	defer unlock()

	d := e.limiter.Admit(userID, now)
	if !d.Allowed {
		e.log.Debug().Str("user", userID).Str("rule", d.Rule).Msg("event rejected")
		// read-only view of the current state; nothing is persisted on a rejection
		return &EventResult{
			Rule:          d.Rule,
			Reason:        d.Reason,
			RetryAfter:    d.RetryAfter,
			Mood:          e.affect.Get(ctx, userID),
			Trust:         e.trust.Get(ctx, userID),
			MessagesToday: e.counter.Get(ctx, userID, now),
			Period:        PeriodOf(now.In(e.settings.Location)),
		}, nil
	}
	e.limiter.Record(userID, now)

	today, err := e.counter.Increment(ctx, userID, now)
	if err != nil {
		e.log.Warn().Err(err).Str("user", userID).Msg("daily counter not saved")
	}

	trust := e.trust.Get(ctx, userID)
	period := PeriodOf(now.In(e.settings.Location))

	mood, err := e.affect.Compute(ctx, AffectInput{
		UserID:        userID,
		Text:          text,
		Period:        period,
		Trust:         trust,
		MessagesToday: today,
		Now:           now,
	})
	if err != nil {
		e.log.Warn().Err(err).Str("user", userID).Msg("mood not saved")
	}

	history := e.memory.Load(ctx, userID)
	profile := e.memory.Profile(ctx, userID)

	req := e.composer.Compose(ComposeInput{
		UserID:  userID,
		Period:  period,
		Trust:   trust,
		Mood:    mood,
		History: history,
		Profile: profile,
		Message: text,
	})

	e.log.Info().
		Str("user", userID).
		Str("request", req.ID).
		Str("mood", string(mood)).
		Float64("trust", trust).
		Int("today", today).
		Str("period", string(period)).
		Msg("event admitted")

	return &EventResult{
		Admitted:      true,
		Mood:          mood,
		Trust:         trust,
		MessagesToday: today,
		Period:        period,
		Request:       req,
	}, nil
}

// Commit records a successful exchange: user and agent turns, then a trust step.
// It returns the new trust.
func (e *Engine) Commit(ctx context.Context, userID, text, reply string) (float64, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	if err := e.memory.AppendTurns(ctx, userID,
		Turn{Role: RoleUser, Text: text},
		Turn{Role: RoleAgent, Text: reply},
	); err != nil {
		return 0, fmt.Errorf("commit history: %w", err)
	}
	trust, err := e.trust.Increment(ctx, userID, e.clock.Now())
	if err != nil {
		return trust, fmt.Errorf("commit trust: %w", err)
	}
	return trust, nil
}

// Reply is the outcome of Converse.
type Reply struct {
	Event *EventResult
	Text  string
	Trust float64
}

// Converse runs the whole pipeline with the engine clock. The generation call
// happens outside the user lock. On a rejection Reply.Text is empty and
// Reply.Event carries the reason. A failed, empty or cancelled generation
// commits nothing.
func (e *Engine) Converse(ctx context.Context, provider ai.Provider, userID, text string) (*Reply, error) {
	ev, err := e.HandleEvent(ctx, userID, text, e.clock.Now())
	if err != nil {
		return nil, err
	}
	if !ev.Admitted {
		return &Reply{Event: ev, Trust: ev.Trust}, nil
	}

	messages := ev.Request.Messages()
	LogLLMCall(e.log, "reply", messages, map[string]string{
		"user":    userID,
		"request": ev.Request.ID,
		"mood":    string(ev.Mood),
	})

	out, err := provider.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrGeneration)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	// the reply exists now; a caller cancelling must not split the two writes
	trust, err := e.Commit(context.WithoutCancel(ctx), userID, text, out)
	if err != nil {
		e.log.Error().Err(err).Str("user", userID).Str("request", ev.Request.ID).Msg("commit failed")
		trust = ev.Trust
	}
	return &Reply{Event: ev, Text: out, Trust: trust}, nil
}

// ResetUser clears the short-term history. Trust, mood and profile are kept.
func (e *Engine) ResetUser(ctx context.Context, userID string) error {
	unlock := e.locks.Lock(userID)
	defer unlock()
	return e.memory.Clear(ctx, userID)
}

// ResetLimits forgets the user's rate window.
func (e *Engine) ResetLimits(userID string) {
	e.limiter.Reset(userID)
}

// SetMoodOverride parses name and stores it as the current mood.
func (e *Engine) SetMoodOverride(ctx context.Context, userID, name string) (Mood, error) {
	m, err := ParseMood(name)
	if err != nil {
		return "", err
	}
	unlock := e.locks.Lock(userID)
	defer unlock()
	if err := e.affect.Set(ctx, userID, m, e.clock.Now()); err != nil {
		return "", err
	}
	return m, nil
}

// Mood returns the stored mood.
func (e *Engine) Mood(ctx context.Context, userID string) Mood {
	return e.affect.Get(ctx, userID)
}

// Remember adds a long-term fact.
func (e *Engine) Remember(ctx context.Context, userID, fact string) error {
	unlock := e.locks.Lock(userID)
	defer unlock()
	return e.memory.AddFact(ctx, userID, fact, e.clock.Now())
}

// SetName records the user's name.
func (e *Engine) SetName(ctx context.Context, userID, name string) error {
	unlock := e.locks.Lock(userID)
	defer unlock()
	return e.memory.SetName(ctx, userID, name, e.clock.Now())
}

// AddInterest records an interest.
func (e *Engine) AddInterest(ctx context.Context, userID, interest string) error {
	unlock := e.locks.Lock(userID)
	defer unlock()
	return e.memory.AddInterest(ctx, userID, interest, e.clock.Now())
}

// AddFavorite records a favorite thing.
func (e *Engine) AddFavorite(ctx context.Context, userID, favorite string) error {
	unlock := e.locks.Lock(userID)
	defer unlock()
	return e.memory.AddFavorite(ctx, userID, favorite, e.clock.Now())
}

// Profile returns the long-term profile.
func (e *Engine) Profile(ctx context.Context, userID string) Profile {
	return e.memory.Profile(ctx, userID)
}

// History returns the short-term history.
func (e *Engine) History(ctx context.Context, userID string) []Turn {
	return e.memory.Load(ctx, userID)
}

// Snapshot collects the per-user stats view.
func (e *Engine) Snapshot(ctx context.Context, userID string) UserSnapshot {
	prof := e.memory.Profile(ctx, userID)
	return UserSnapshot{
		UserID:        userID,
		Mood:          e.affect.Get(ctx, userID),
		Trust:         e.trust.Get(ctx, userID),
		HistoryLen:    len(e.memory.Load(ctx, userID)),
		MessagesToday: e.counter.Get(ctx, userID, e.clock.Now()),
		Name:          prof.Name,
		Facts:         len(prof.Facts),
	}
}
