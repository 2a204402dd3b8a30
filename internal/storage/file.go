package storage

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/keshon/mahiro/datastore"
)

// FileStore persists keys into a single JSON file, autosaved in the
// background with rotating backups.
type FileStore struct {
	ds     *datastore.DataStore
	closed atomic.Bool
}

// NewFileStore opens (or creates) the JSON file at path.
func NewFileStore(path string, log zerolog.Logger) (*FileStore, error) {
	if path == "" {
		path = "data/datastore.json"
	}
	cfg := datastore.DefaultConfig(path)
	cfg.Logger = log.With().Str("component", "datastore").Logger()
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &FileStore{ds: ds}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok, err := s.ds.Get(key)
	return b, ok, mapClosed(err)
}

func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	return mapClosed(s.ds.Put(key, value))
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	return mapClosed(s.ds.Delete(key))
}

// Close flushes the file and stops the autosave loop.
func (s *FileStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.ds.Close()
}

func mapClosed(err error) error {
	if errors.Is(err, datastore.ErrClosed) {
		return ErrClosed
	}
	return err
}
