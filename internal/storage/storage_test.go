package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "trust:u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "trust:u1", []byte(`{"value":0.1}`)))
	require.NoError(t, s.Put(ctx, "trust:u1", []byte(`{"value":0.2}`)))
	b, ok, err := s.Get(ctx, "trust:u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"value":0.2}`, string(b))

	require.NoError(t, s.Delete(ctx, "trust:u1"))
	require.NoError(t, s.Delete(ctx, "never-written"))
	_, ok, err = s.Get(ctx, "trust:u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)

	require.NoError(t, s.Close())
	_, _, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v := []byte(`"abc"`)
	require.NoError(t, s.Put(ctx, "k", v))
	v[1] = 'z'

	got, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(got))
	assert.Equal(t, 1, s.Len())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := NewFileStore(path, zerolog.Nop())
	require.NoError(t, err)
	exerciseStore(t, s)

	require.NoError(t, s.Put(context.Background(), "mood:u1", []byte(`{"mood":"tired"}`)))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	reopened, err := NewFileStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()
	b, ok, err := reopened.Get(context.Background(), "mood:u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"mood":"tired"}`, string(b))
}

func TestFileStore_ClosedMapsError(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data.json"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Put(context.Background(), "k", []byte(`1`)), ErrClosed)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "mahiro.db")
	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	exerciseStore(t, s)

	require.NoError(t, s.Put(ctx, "history:u1", []byte(`[]`)))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	_, ok, err := reopened.Get(ctx, "history:u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := DialRedis(context.Background(), mr.Addr(), "", 0, "")
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)

	require.NoError(t, s.Put(context.Background(), "profile:u1", []byte(`{}`)))
	assert.True(t, mr.Exists("mahiro:profile:u1"))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client, "test")
	defer s.Close()

	require.NoError(t, s.Put(context.Background(), "k", []byte(`1`)))
	got, err := mr.Get("test:k")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestDialRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := DialRedis(context.Background(), addr, "", 0, "")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Path: filepath.Join(t.TempDir(), "d.json"), Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Driver: "mongo"})
	assert.Error(t, err)
}
