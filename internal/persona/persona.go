// Package persona holds the directive wording of the agent: identity, one line per
// time-of-day period, trust tier and mood, plus the labels of the memory block.
package persona

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalid = errors.New("invalid persona")

// Keys every persona must define.
var (
	PeriodKeys = []string{"morning", "afternoon", "evening", "night"}
	TierKeys   = []string{"low", "medium", "high"}
	MoodKeys   = []string{"neutral", "happy", "irritated", "tired", "sleepy", "excited", "sad"}
)

// MemoryLabels name the parts of the long-term memory block.
type MemoryLabels struct {
	Heading   string `yaml:"heading"`
	Name      string `yaml:"name"`
	Facts     string `yaml:"facts"`
	Interests string `yaml:"interests"`
	Favorites string `yaml:"favorites"`
}

// Persona is the wording pack the composer renders from.
type Persona struct {
	Name     string            `yaml:"name"`
	Identity string            `yaml:"identity"`
	Periods  map[string]string `yaml:"time_of_day"`
	Trust    map[string]string `yaml:"trust"`
	Moods    map[string]string `yaml:"moods"`
	Memory   MemoryLabels      `yaml:"memory"`
	Rules    []string          `yaml:"rules"`
}

// Parse decodes a persona document and validates it. Unknown fields are rejected.
func Parse(data []byte) (*Persona, error) {
	var p Persona
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("persona parse: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.applyLabelDefaults()
	return &p, nil
}

// Load reads a persona file. An empty path returns Default().
func Load(path string) (*Persona, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded persona. It panics only if the embedded file is broken.
func Default() *Persona {
	p, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded persona: %v", err))
	}
	return p
}

// Validate checks that every period, tier and mood has a line.
func (p *Persona) Validate() error {
	if strings.TrimSpace(p.Identity) == "" {
		return fmt.Errorf("%w: identity must not be empty", ErrInvalid)
	}
	if missing := missingKeys(p.Periods, PeriodKeys); len(missing) > 0 {
		return fmt.Errorf("%w: time_of_day missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	if missing := missingKeys(p.Trust, TierKeys); len(missing) > 0 {
		return fmt.Errorf("%w: trust missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	if missing := missingKeys(p.Moods, MoodKeys); len(missing) > 0 {
		return fmt.Errorf("%w: moods missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

// Period returns the line for a time-of-day period.
func (p *Persona) Period(name string) string { return p.Periods[name] }

// Tier returns the line for a trust tier.
func (p *Persona) Tier(name string) string { return p.Trust[name] }

// Mood returns the line for a mood.
func (p *Persona) Mood(name string) string { return p.Moods[name] }

func (p *Persona) applyLabelDefaults() {
	if p.Memory.Heading == "" {
		p.Memory.Heading = "What you know about the user"
	}
	if p.Memory.Name == "" {
		p.Memory.Name = "Name"
	}
	if p.Memory.Facts == "" {
		p.Memory.Facts = "Facts"
	}
	if p.Memory.Interests == "" {
		p.Memory.Interests = "Interests"
	}
	if p.Memory.Favorites == "" {
		p.Memory.Favorites = "Favorites"
	}
}

func missingKeys(m map[string]string, keys []string) []string {
	var missing []string
	for _, k := range keys {
		if strings.TrimSpace(m[k]) == "" {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}
