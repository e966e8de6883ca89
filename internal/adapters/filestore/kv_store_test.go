package filestore

import (
	"context"
	"os"
	"path/filepath"
	"property-explorer/internal/core/port"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "cache.json")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "filtered_properties_cache_{}", []byte(`{"data":{}}`)))
	require.NoError(t, s.Set(ctx, "session:a:auth_token", []byte("tok")))
	require.NoError(t, s.Delete(ctx, "missing"))

	reopened, err := Open(path)
	require.NoError(t, err)

	v, err := reopened.Get(ctx, "session:a:auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok", string(v))

	keys, err := reopened.Keys(ctx, "filtered_properties_cache_")
	require.NoError(t, err)
	assert.Equal(t, []string{"filtered_properties_cache_{}"}, keys)

	require.NoError(t, reopened.Delete(ctx, "session:a:auth_token"))
	_, err = reopened.Get(ctx, "session:a:auth_token")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)
}

func TestOpen_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}
