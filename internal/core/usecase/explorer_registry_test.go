package usecase

import (
	"context"
	"property-explorer/internal/core/domain"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*ExplorerRegistry, *fakePropertyAPI, fakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	api := newFakePropertyAPI()
	reg := NewExplorerRegistry(context.Background(), RegistryDeps{
		API:      api,
		Cache:    NewQueryCache(newFakeKV(), clock, 0),
		Notifier: &fakeNotifier{},
		Clock:    clock,
	})
	t.Cleanup(reg.CloseAll)
	return reg, api, clock
}

func TestExplorerRegistry_GetCreatesAndStarts(t *testing.T) {
	reg, api, clock := newTestRegistry(t)

	e := reg.Get("s1")
	assert.Same(t, e, reg.Get("s1"))
	assert.Equal(t, 1, reg.Len())
	assert.True(t, e.State().Loading, "first load starts immediately")

	clock.Advance(DefaultDebounceWindow)
	api.nextCall(t).succeed(domain.QueryResult{Items: props(1)})
	require.Eventually(t, func() bool { return e.State().Result != nil }, 2*time.Second, 5*time.Millisecond)
}

func TestExplorerRegistry_SessionsShareCache(t *testing.T) {
	reg, api, clock := newTestRegistry(t)

	first := reg.Get("s1")
	clock.Advance(DefaultDebounceWindow)
	api.nextCall(t).succeed(domain.QueryResult{Items: props(1)})
	require.Eventually(t, func() bool { return first.State().Result != nil }, 2*time.Second, 5*time.Millisecond)

	second := reg.Get("s2")
	st := second.State()
	require.NotNil(t, st.Result)
	assert.True(t, st.FromCache)
	api.noCall(t)
}

func TestExplorerRegistry_EvictIdleAndClose(t *testing.T) {
	reg, api, clock := newTestRegistry(t)

	reg.Get("old")
	clock.Advance(20 * time.Minute)
	reg.Get("new")

	assert.Equal(t, 1, reg.EvictIdle(10*time.Minute))
	_, ok := reg.Lookup("old")
	assert.False(t, ok)

	assert.True(t, reg.Close("new"))
	assert.False(t, reg.Close("new"))
	assert.Zero(t, reg.Len())

	// отложенные запросы закрытых сессий не уходят в бэкенд
	for len(api.calls) > 0 {
		<-api.calls
	}
	clock.Advance(time.Second)
	api.noCall(t)
}
