package postgres_adapter

import (
	"context"
	"os"
	"property-explorer/internal/core/port"
	"property-explorer/pkg/postgres"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Нужна живая база: TEST_DATABASE_URL=postgres://... go test ./...
func TestPostgresKVStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()

	pool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: dsn})
	require.NoError(t, err)
	s, err := NewPostgresKVStore(ctx, pool)
	require.NoError(t, err)
	defer s.Close()

	prefix := "test_" + uuid.NewString() + "_"
	t.Cleanup(func() {
		keys, _ := s.Keys(ctx, prefix)
		for _, k := range keys {
			_ = s.Delete(ctx, k)
		}
	})

	_, err = s.Get(ctx, prefix+"missing")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, prefix+"a", []byte("one")))
	require.NoError(t, s.Set(ctx, prefix+"a", []byte("two")))
	require.NoError(t, s.Set(ctx, prefix+"%", []byte("pct")))

	v, err := s.Get(ctx, prefix+"a")
	require.NoError(t, err)
	assert.Equal(t, "two", string(v))

	keys, err := s.Keys(ctx, prefix)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{prefix + "a", prefix + "%"}, keys)

	keys, err = s.Keys(ctx, prefix+"%")
	require.NoError(t, err)
	assert.Equal(t, []string{prefix + "%"}, keys)
}

func TestNewPostgresKVStore_NilPool(t *testing.T) {
	_, err := NewPostgresKVStore(context.Background(), nil)
	assert.Error(t, err)
}
