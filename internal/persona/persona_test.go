package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
identity: You are Mahiro.
time_of_day:
  morning: m
  afternoon: a
  evening: e
  night: n
trust:
  low: l
  medium: md
  high: h
moods:
  neutral: n
  happy: h
  irritated: i
  tired: t
  sleepy: s
  excited: x
  sad: sd
`

func TestDefaultIsComplete(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	for _, k := range MoodKeys {
		assert.NotEmpty(t, p.Mood(k), k)
	}
	for _, k := range PeriodKeys {
		assert.NotEmpty(t, p.Period(k), k)
	}
	for _, k := range TierKeys {
		assert.NotEmpty(t, p.Tier(k), k)
	}
	assert.Equal(t, "Mahiro", p.Name)
	assert.NotEmpty(t, p.Rules)
}

func TestParseAppliesLabelDefaults(t *testing.T) {
	p, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "What you know about the user", p.Memory.Heading)
	assert.Equal(t, "Name", p.Memory.Name)
	assert.Equal(t, "Favorites", p.Memory.Favorites)
}

func TestParseRejectsMissingMood(t *testing.T) {
	doc := minimalYAML[:len(minimalYAML)-len("  sad: sd\n")]
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "sad")
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + "colour: red\n"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Mahiro", p.Name)

	path := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML), 0o644))
	p, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "e", p.Period("evening"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
