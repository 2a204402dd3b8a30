package mind

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/mahiro/internal/storage"
)

// Key namespaces in the durable store. Counter keys put the fixed-width date
// first so no user ID can collide with another namespace.
const (
	nsTrust   = "trust:"
	nsMood    = "mood:"
	nsHistory = "history:"
	nsProfile = "profile:"
	nsCounter = "counter:"
)

func trustKey(userID string) string   { return nsTrust + userID }
func moodKey(userID string) string    { return nsMood + userID }
func historyKey(userID string) string { return nsHistory + userID }
func profileKey(userID string) string { return nsProfile + userID }

func counterKey(userID string, day time.Time) string {
	return nsCounter + day.Format("2006-01-02") + ":" + userID
}

// records wraps the store with JSON encoding. Corrupt documents are logged and
// reported as absent so callers fall back to defaults.
type records struct {
	store storage.Store
	log   zerolog.Logger
}

// load decodes key into v and reports whether v was filled. The error is set
// only when the store itself failed; read-modify-write paths must stop on it.
func (r records) load(ctx context.Context, key string, v any) (bool, error) {
	b, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("corrupt record, using default")
		return false, nil
	}
	return true, nil
}

// read is load for pure reads: a store failure is logged and reads as absent.
func (r records) read(ctx context.Context, key string, v any) bool {
	ok, err := r.load(ctx, key, v)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("store read failed, using default")
		return false
	}
	return ok
}

func (r records) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshalling %s: %w", key, err)
	}
	if err := r.store.Put(ctx, key, b); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
