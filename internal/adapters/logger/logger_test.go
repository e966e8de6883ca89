package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"property-explorer/internal/core/port"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoster struct {
	mu     sync.Mutex
	posts  []map[string]interface{}
	tags   []string
	closed bool
}

func (f *fakePoster) Post(tag string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, tag)
	f.posts = append(f.posts, map[string]interface{}(message.(port.Fields)))
	return nil
}

func (f *fakePoster) Close() error {
	f.closed = true
	return nil
}

func TestSlogAdapter_JSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true})

	log.WithFields(port.Fields{"component": "QueryCache"}).Error("write failed", errors.New("disk full"), port.Fields{"key": "k1"})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "write failed", rec["msg"])
	assert.Equal(t, "QueryCache", rec["component"])
	assert.Equal(t, "k1", rec["key"])
	assert.Equal(t, "ERROR", rec["level"])
}

func TestSlogAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelWarn})

	log.Debug("hidden", nil)
	log.Info("hidden too", nil)
	assert.Zero(t, buf.Len())

	log.Warn("visible", nil)
	assert.Contains(t, buf.String(), "visible")
}

func TestFluentLoggerAdapter(t *testing.T) {
	poster := &fakePoster{}
	log, err := NewFluentLoggerAdapter(poster, slog.LevelInfo)
	require.NoError(t, err)

	scoped := log.WithFields(port.Fields{"session_id": "s1"})
	scoped.Debug("skipped", nil)
	scoped.Error("boom", errors.New("bad"), port.Fields{"status": 500})

	require.Len(t, poster.posts, 1)
	assert.Equal(t, "error", poster.tags[0])
	assert.Equal(t, "s1", poster.posts[0]["session_id"])
	assert.Equal(t, "bad", poster.posts[0]["error"])
	assert.Equal(t, "boom", poster.posts[0]["message"])

	require.NoError(t, log.Close())
	assert.True(t, poster.closed)

	_, err = NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestMultiLoggerAdapter(t *testing.T) {
	_, err := NewMultiLoggerAdapter()
	require.Error(t, err)

	var a, b bytes.Buffer
	l1 := NewSlogAdapter(SlogConfig{Writer: &a})
	l2 := NewSlogAdapter(SlogConfig{Writer: &b})

	multi, err := NewMultiLoggerAdapter(l1, l2)
	require.NoError(t, err)
	multi.WithFields(port.Fields{"x": 1}).Info("hello", nil)

	assert.Contains(t, a.String(), "hello")
	assert.Contains(t, b.String(), "x=1")

	single, err := NewMultiLoggerAdapter(l1, nil)
	require.NoError(t, err)
	assert.Same(t, l1, single)
}
