package sqlite

import (
	"context"
	"path/filepath"
	"property-explorer/internal/core/port"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteKVStore(t *testing.T) {
	s, err := OpenKVStore(filepath.Join(t.TempDir(), "explorer.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "filtered_properties_cache_{\"a\":1}", []byte("one")))
	require.NoError(t, s.Set(ctx, "filtered_properties_cache_{\"a\":1}", []byte("two")))
	require.NoError(t, s.Set(ctx, "filtered_properties_cache_%", []byte("pct")))
	require.NoError(t, s.Set(ctx, "session:x:auth_token", []byte("tok")))

	v, err := s.Get(ctx, "filtered_properties_cache_{\"a\":1}")
	require.NoError(t, err)
	assert.Equal(t, "two", string(v))

	keys, err := s.Keys(ctx, "filtered_properties_cache_")
	require.NoError(t, err)
	assert.Equal(t, []string{"filtered_properties_cache_%", "filtered_properties_cache_{\"a\":1}"}, keys)

	keys, err = s.Keys(ctx, "filtered_properties_cache_%")
	require.NoError(t, err)
	assert.Equal(t, []string{"filtered_properties_cache_%"}, keys, "prefix is matched literally")

	require.NoError(t, s.Delete(ctx, "session:x:auth_token"))
	_, err = s.Get(ctx, "session:x:auth_token")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)
}
