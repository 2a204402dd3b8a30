package mind

import (
	"strings"

	"github.com/google/uuid"

	"github.com/keshon/mahiro/internal/ai"
	"github.com/keshon/mahiro/internal/persona"
)

// DefaultPromptFacts is how many recent facts go into the memory block.
const DefaultPromptFacts = 5

// maxFactChars bounds one fact line in the prompt.
const maxFactChars = 300

// ComposeInput is the per-event state the composer renders.
type ComposeInput struct {
	UserID  string
	Period  Period
	Trust   float64
	Mood    Mood
	History []Turn
	Profile Profile
	Message string
}

// GenerationRequest is what the generation backend receives.
type GenerationRequest struct {
	ID            string // log correlation only
	UserID        string
	Directives    string
	History       []Turn
	LatestMessage string
}

// Messages renders the request as chat messages: system, history, user.
func (r GenerationRequest) Messages() []ai.Message {
	out := make([]ai.Message, 0, len(r.History)+2)
	out = append(out, ai.Message{Role: "system", Content: r.Directives})
	for _, t := range r.History {
		role := "user"
		if t.Role == RoleAgent {
			role = "assistant"
		}
		out = append(out, ai.Message{Role: role, Content: t.Text})
	}
	out = append(out, ai.Message{Role: "user", Content: r.LatestMessage})
	return out
}

// Composer builds generation requests from persona wording.
type Composer struct {
	persona      *persona.Persona
	historyLimit int
	promptFacts  int
}

// NewComposer returns a composer. A nil persona uses persona.Default().
func NewComposer(p *persona.Persona, historyLimit, promptFacts int) *Composer {
	if p == nil {
		p = persona.Default()
	}
	if historyLimit <= 0 {
		historyLimit = 20
	}
	if promptFacts <= 0 {
		promptFacts = DefaultPromptFacts
	}
	return &Composer{persona: p, historyLimit: historyLimit, promptFacts: promptFacts}
}

// Compose is deterministic apart from the request ID.
func (c *Composer) Compose(in ComposeInput) GenerationRequest {
	return GenerationRequest{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		Directives:    c.Directives(in),
		History:       trimTurns(in.History, c.historyLimit),
		LatestMessage: in.Message,
	}
}

// Directives renders the system text for in.
func (c *Composer) Directives(in ComposeInput) string {
	p := c.persona
	var b strings.Builder

	b.WriteString(strings.TrimSpace(p.Identity))
	b.WriteString("\n\n--- Situation ---\n")
	b.WriteString(p.Period(string(in.Period)))
	b.WriteString("\n")
	b.WriteString(p.Tier(TrustTier(in.Trust)))
	b.WriteString("\n")
	mood := in.Mood
	if !mood.Valid() {
		mood = MoodNeutral
	}
	b.WriteString(p.Mood(string(mood)))
	b.WriteString("\n")

	if len(p.Rules) > 0 {
		b.WriteString("\n--- Rules ---\n- ")
		b.WriteString(strings.Join(p.Rules, "\n- "))
		b.WriteString("\n")
	}

	if !in.Profile.IsEmpty() {
		c.writeProfile(&b, in.Profile)
	}
	return b.String()
}

func (c *Composer) writeProfile(b *strings.Builder, prof Profile) {
	labels := c.persona.Memory
	b.WriteString("\n--- ")
	b.WriteString(labels.Heading)
	b.WriteString(" ---\n")
	if prof.Name != "" {
		b.WriteString(labels.Name + ": " + prof.Name + "\n")
	}
	if facts := prof.RecentFacts(c.promptFacts); len(facts) > 0 {
		parts := make([]string, 0, len(facts))
		for _, f := range facts {
			parts = append(parts, TrimToChars(f.Text, maxFactChars))
		}
		b.WriteString(labels.Facts + ": " + strings.Join(parts, ", ") + "\n")
	}
	if len(prof.Interests) > 0 {
		b.WriteString(labels.Interests + ": " + strings.Join(prof.Interests, ", ") + "\n")
	}
	if len(prof.Favorites) > 0 {
		b.WriteString(labels.Favorites + ": " + strings.Join(prof.Favorites, ", ") + "\n")
	}
}

// TrimToChars truncates s to maxChars runes, trying to cut at a word boundary.
func TrimToChars(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	out := string(r[:maxChars])
	lastSpace := strings.LastIndex(out, " ")
	if lastSpace > len(out)/2 {
		return strings.TrimSpace(out[:lastSpace])
	}
	return strings.TrimSpace(out)
}
