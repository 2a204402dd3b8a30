// Package media picks the mood picture sent after a reply.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/keshon/mahiro/internal/mind"
)

// Categories are the folder names under the images dir.
var Categories = []string{"happy", "shy", "angry", "tired", "sleepy", "excited", "sad", "neutral"}

var moodCategory = map[mind.Mood]string{
	mind.MoodHappy:     "happy",
	mind.MoodIrritated: "angry",
	mind.MoodTired:     "tired",
	mind.MoodSleepy:    "sleepy",
	mind.MoodExcited:   "excited",
	mind.MoodSad:       "sad",
	mind.MoodNeutral:   "neutral",
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// Images looks up pictures per mood category.
type Images struct {
	dir     string
	chance  float64
	enabled bool
	rnd     mind.Rand
}

func New(dir string, enabled bool, chance float64, rnd mind.Rand) *Images {
	if dir == "" {
		dir = "images"
	}
	return &Images{dir: dir, chance: chance, enabled: enabled, rnd: rnd}
}

// EnsureDirs creates the category folders.
func (im *Images) EnsureDirs() error {
	for _, c := range Categories {
		if err := os.MkdirAll(filepath.Join(im.dir, c), 0o755); err != nil {
			return fmt.Errorf("create image dir %s: %w", c, err)
		}
	}
	return nil
}

// ShouldSend draws against the send chance.
func (im *Images) ShouldSend() bool {
	return im.enabled && im.chance > 0 && im.rnd.Float64() < im.chance
}

// List returns the pictures for a mood, sorted by name.
func (im *Images) List(m mind.Mood) []string {
	category, ok := moodCategory[m]
	if !ok {
		category = "neutral"
	}
	entries, err := os.ReadDir(filepath.Join(im.dir, category))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		out = append(out, filepath.Join(im.dir, category, e.Name()))
	}
	sort.Strings(out)
	return out
}

// Pick returns a random picture for m.
func (im *Images) Pick(m mind.Mood) (string, bool) {
	if !im.enabled {
		return "", false
	}
	images := im.List(m)
	if len(images) == 0 {
		return "", false
	}
	return images[im.rnd.Intn(len(images))], true
}

// Stats counts pictures per category.
func (im *Images) Stats() map[string]int {
	out := make(map[string]int, len(Categories))
	for m, c := range moodCategory {
		out[c] = len(im.List(m))
	}
	return out
}
