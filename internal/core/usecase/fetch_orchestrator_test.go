package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock - то, что тестам нужно от часов clockwork.
type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

type harness struct {
	clock    fakeClock
	api      *fakePropertyAPI
	kv       *fakeKV
	cache    *QueryCache
	store    *FilterStore
	notifier *fakeNotifier
	pub      *fakePublisher
	orch     *FetchOrchestrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:    clockwork.NewFakeClock(),
		api:      newFakePropertyAPI(),
		kv:       newFakeKV(),
		store:    NewFilterStore(),
		notifier: &fakeNotifier{},
		pub:      &fakePublisher{},
	}
	h.cache = NewQueryCache(h.kv, h.clock, 0)
	ctx := context.Background()
	h.orch = NewFetchOrchestrator(ctx, OrchestratorDeps{
		SessionID:     "s1",
		API:           h.api,
		Cache:         h.cache,
		Filters:       h.store,
		Selection:     NewSelection(ctx, "s1", h.notifier),
		Notifications: NewNotificationCenter(ctx, "s1", h.notifier, h.clock),
		Notifier:      h.notifier,
		Publisher:     h.pub,
		Normalizer:    errnorm.New("en"),
		Clock:         h.clock,
	}, OrchestratorConfig{})
	t.Cleanup(h.orch.Close)
	return h
}

func (h *harness) settled() bool {
	st := h.orch.State()
	return !st.Loading && !st.Fetching
}

// commit проводит фильтры через debounce и успешный ответ.
func (h *harness) commit(t *testing.T, filters domain.FilterCriteria, result domain.QueryResult) {
	t.Helper()
	h.store.SetFilters(filters)
	h.clock.Advance(DefaultDebounceWindow)
	h.api.nextCall(t).succeed(result)
	eventually(t, h.settled, "fetch should settle")
}

func pageURL(page int) string {
	return fmt.Sprintf("http://localhost:8000/api/properties/filter/?city_name=Tehran&page=%d", page)
}

func TestOrchestrator_CacheMissFetchesOnceAfterDebounce(t *testing.T) {
	h := newHarness(t)
	filters := domain.FilterCriteria{MinPrice: domain.Float(1000), MaxPrice: domain.Float(5000)}

	h.store.SetFilters(filters)
	st := h.orch.State()
	assert.True(t, st.Loading)
	assert.False(t, st.Fetching)
	h.api.noCall(t)

	h.clock.Advance(DefaultDebounceWindow)
	call := h.api.nextCall(t)
	assert.Equal(t, filters.Values().Encode(), call.filters.Values().Encode())

	lat, lng := 35.7, 51.4
	result := domain.QueryResult{Items: []domain.Property{{ID: 1, Title: "Flat", Latitude: &lat, Longitude: &lng}}, TotalCount: 1}
	call.succeed(result)
	eventually(t, h.settled, "fetch should settle")

	st = h.orch.State()
	require.NotNil(t, st.Result)
	assert.Equal(t, result, *st.Result)
	assert.False(t, st.FromCache)
	assert.Nil(t, st.Error)

	cached, ok := h.cache.Get(context.Background(), filters)
	require.True(t, ok)
	assert.Equal(t, result, cached)
	eventually(t, func() bool { return h.pub.count() == 1 }, "search event should be published")
}

func TestOrchestrator_DebounceCollapsesChanges(t *testing.T) {
	h := newHarness(t)

	for i := 1; i <= 5; i++ {
		h.store.SetFilters(domain.FilterCriteria{Bedrooms: domain.Int(i)})
		h.clock.Advance(DefaultDebounceWindow / 3)
	}
	h.api.noCall(t)

	h.clock.Advance(DefaultDebounceWindow)
	call := h.api.nextCall(t)
	assert.Equal(t, 5, *call.filters.Bedrooms)
	h.api.noCall(t)
	call.succeed(domain.QueryResult{})
}

func TestOrchestrator_CacheHitIsSynchronous(t *testing.T) {
	h := newHarness(t)
	filters := domain.FilterCriteria{CityName: "Tehran"}
	h.cache.Put(context.Background(), filters, domain.QueryResult{Items: props(7), TotalCount: 1})

	h.store.SetFilters(filters)

	st := h.orch.State()
	require.NotNil(t, st.Result)
	assert.True(t, st.FromCache)
	assert.False(t, st.Loading)
	assert.Equal(t, []int64{7}, ids(st.Result.Items))

	h.clock.Advance(time.Second)
	h.api.noCall(t)
}

func TestOrchestrator_StaleResponseDiscarded(t *testing.T) {
	h := newHarness(t)
	a := domain.FilterCriteria{CityName: "A"}
	b := domain.FilterCriteria{CityName: "B"}

	h.store.SetFilters(a)
	h.clock.Advance(DefaultDebounceWindow)
	callA := h.api.nextCall(t)

	h.store.SetFilters(b)
	h.clock.Advance(DefaultDebounceWindow)
	// запрос A еще не завершен, B ждет своей очереди
	h.api.noCall(t)

	callA.succeed(domain.QueryResult{Items: props(1), TotalCount: 1})
	callB := h.api.nextCall(t)
	assert.Equal(t, "B", callB.filters.CityName)
	assert.Nil(t, h.orch.State().Result, "stale result must not be committed")

	callB.succeed(domain.QueryResult{Items: props(2), TotalCount: 1})
	eventually(t, h.settled, "fetch should settle")

	st := h.orch.State()
	assert.Equal(t, []int64{2}, ids(st.Result.Items))
	assert.Equal(t, "B", st.Filters.CityName)

	// устаревший ответ все равно верен для своих фильтров
	_, ok := h.cache.Get(context.Background(), a)
	assert.True(t, ok)
}

func TestOrchestrator_FailureKeepsPreviousResult(t *testing.T) {
	h := newHarness(t)
	h.commit(t, domain.FilterCriteria{CityName: "Tehran"}, domain.QueryResult{Items: props(1, 2), TotalCount: 2})

	h.store.SetFilters(domain.FilterCriteria{CityName: "Qom"})
	h.clock.Advance(DefaultDebounceWindow)
	h.api.nextCall(t).fail(&domain.ResponseError{Method: http.MethodGet, URL: "x", StatusCode: 500})
	eventually(t, h.settled, "fetch should settle")

	st := h.orch.State()
	require.NotNil(t, st.Error)
	assert.Equal(t, 500, st.Error.Status)
	assert.Equal(t, errnorm.MsgServerError, st.Error.Message)
	assert.Equal(t, []int64{1, 2}, ids(st.Result.Items))

	notes := h.notifier.notifications()
	require.NotEmpty(t, notes)
	assert.Equal(t, domain.SourceFetch500, notes[len(notes)-1].Source)
}

func TestOrchestrator_ErrorNotificationSources(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		source string
	}{
		{"not found", &domain.ResponseError{StatusCode: 404}, domain.SourceFetch404},
		{"network", errors.New("Network Error"), domain.SourceFetchNetwork},
		{"general", &domain.ResponseError{StatusCode: 400}, domain.SourceFetchGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.store.SetFilters(domain.FilterCriteria{Search: tt.name})
			h.clock.Advance(DefaultDebounceWindow)
			h.api.nextCall(t).fail(tt.err)
			eventually(t, h.settled, "fetch should settle")

			notes := h.notifier.notifications()
			require.Len(t, notes, 1)
			assert.Equal(t, tt.source, notes[0].Source)
		})
	}
}

func TestOrchestrator_LoadMoreAppendsAndBypassesCache(t *testing.T) {
	h := newHarness(t)
	filters := domain.FilterCriteria{CityName: "Tehran"}
	h.commit(t, filters, domain.QueryResult{Items: props(1, 2), TotalCount: 6, Next: pageURL(2)})

	started, err := h.orch.LoadMore(context.Background())
	require.NoError(t, err)
	require.True(t, started)

	call := h.api.nextCall(t)
	assert.Equal(t, 2, *call.filters.Page)
	assert.Equal(t, "Tehran", call.filters.CityName)
	call.succeed(domain.QueryResult{Items: props(3, 4), TotalCount: 6, Next: pageURL(3), Previous: pageURL(1)})
	eventually(t, h.settled, "load more should settle")

	st := h.orch.State()
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(st.Result.Items))
	assert.Equal(t, pageURL(3), st.Result.Next)
	assert.Equal(t, 1, st.LoadMore.Count)
	assert.Equal(t, 1, h.kv.len(), "load more results must not be cached")

	// слишком рано для следующей подгрузки
	started, err = h.orch.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, started)
	h.api.noCall(t)

	h.clock.Advance(DefaultLoadMoreInterval)
	started, _ = h.orch.LoadMore(context.Background())
	assert.True(t, started)
	h.api.nextCall(t).succeed(domain.QueryResult{Items: props(5, 6), TotalCount: 6})
	eventually(t, h.settled, "load more should settle")

	st = h.orch.State()
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids(st.Result.Items))

	h.clock.Advance(DefaultLoadMoreInterval)
	started, _ = h.orch.LoadMore(context.Background())
	assert.False(t, started, "no next link, nothing to load")
}

func TestOrchestrator_LoadMoreCap(t *testing.T) {
	h := newHarness(t)
	h.commit(t, domain.FilterCriteria{CityName: "Tehran"}, domain.QueryResult{Items: props(1), Next: pageURL(2)})

	want := []int64{1}
	for i := 0; i < DefaultLoadMoreLimit; i++ {
		page := i + 2
		h.clock.Advance(DefaultLoadMoreInterval)
		started, err := h.orch.LoadMore(context.Background())
		require.NoError(t, err)
		require.True(t, started, "load more #%d", i+1)

		call := h.api.nextCall(t)
		require.Equal(t, page, *call.filters.Page)
		call.succeed(domain.QueryResult{Items: props(int64(page)), Next: pageURL(page + 1)})
		want = append(want, int64(page))
		eventually(t, h.settled, "load more should settle")
	}

	h.clock.Advance(DefaultLoadMoreInterval)
	started, err := h.orch.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, started)
	h.api.noCall(t)

	st := h.orch.State()
	assert.Equal(t, want, ids(st.Result.Items))
	assert.True(t, st.LoadMore.Disabled)
}

func TestOrchestrator_LoadMoreTimeout(t *testing.T) {
	h := newHarness(t)
	h.commit(t, domain.FilterCriteria{}, domain.QueryResult{Items: props(1), Next: pageURL(2)})

	started, err := h.orch.LoadMore(context.Background())
	require.NoError(t, err)
	require.True(t, started)
	h.api.nextCall(t) // без ответа

	h.clock.Advance(DefaultLoadMoreTimeout)
	eventually(t, h.settled, "load more should time out")

	st := h.orch.State()
	require.NotNil(t, st.Error)
	assert.Equal(t, domain.KindTimeout, st.Error.Kind)
	assert.Equal(t, errnorm.MsgTimeout, st.Error.Message)
	assert.Equal(t, []int64{1}, ids(st.Result.Items), "loaded items must survive a timeout")

	notes := h.notifier.notifications()
	require.NotEmpty(t, notes)
	assert.Equal(t, domain.SourceLoadMoreTimeout, notes[len(notes)-1].Source)
}

func TestOrchestrator_NewQueryResetsLoadMore(t *testing.T) {
	h := newHarness(t)
	h.commit(t, domain.FilterCriteria{CityName: "Tehran"}, domain.QueryResult{Items: props(1), Next: pageURL(2)})

	started, _ := h.orch.LoadMore(context.Background())
	require.True(t, started)
	h.api.nextCall(t).succeed(domain.QueryResult{Items: props(2), Next: pageURL(3)})
	eventually(t, h.settled, "load more should settle")
	require.Equal(t, 1, h.orch.State().LoadMore.Count)

	h.commit(t, domain.FilterCriteria{CityName: "Karaj"}, domain.QueryResult{Items: props(9), Next: pageURL(2)})
	st := h.orch.State()
	assert.Zero(t, st.LoadMore.Count)
	assert.True(t, st.LoadMore.LastAt.IsZero())

	// интервал не действует для нового запроса
	started, _ = h.orch.LoadMore(context.Background())
	assert.True(t, started)
	h.api.nextCall(t).succeed(domain.QueryResult{})
}

func TestOrchestrator_LoadMoreBlockedWhileFetching(t *testing.T) {
	h := newHarness(t)
	h.commit(t, domain.FilterCriteria{}, domain.QueryResult{Items: props(1), Next: pageURL(2)})

	h.store.SetFilters(domain.FilterCriteria{CityName: "Tehran"})
	started, _ := h.orch.LoadMore(context.Background())
	assert.False(t, started, "loading a new query")

	h.clock.Advance(DefaultDebounceWindow)
	call := h.api.nextCall(t)
	started, _ = h.orch.LoadMore(context.Background())
	assert.False(t, started, "fetch in flight")
	call.succeed(domain.QueryResult{})
}

func TestOrchestrator_PageNavigation(t *testing.T) {
	h := newHarness(t)
	h.commit(t, domain.FilterCriteria{CityName: "Tehran", Page: domain.Int(2)}, domain.QueryResult{
		Items:    props(1),
		Next:     pageURL(3),
		Previous: "http://localhost:8000/api/properties/filter/?city_name=Tehran",
	})
	version := h.store.Version()

	require.True(t, h.orch.NextPage())
	assert.Equal(t, 3, *h.store.Filters().Page)
	assert.Equal(t, version+1, h.store.Version())
	h.clock.Advance(DefaultDebounceWindow)
	h.api.nextCall(t).succeed(domain.QueryResult{Items: props(2), Previous: pageURL(2)})
	eventually(t, h.settled, "fetch should settle")

	require.True(t, h.orch.PreviousPage())
	assert.Equal(t, 2, *h.store.Filters().Page)
	assert.Equal(t, "Tehran", h.store.Filters().CityName)

	// страница 2 в кэше, запроса нет
	st := h.orch.State()
	assert.True(t, st.FromCache)
	assert.Equal(t, []int64{1}, ids(st.Result.Items))

	require.True(t, h.orch.PreviousPage())
	assert.Nil(t, h.store.Filters().Page, "previous link without page means first page")
	h.clock.Advance(DefaultDebounceWindow)
	h.api.nextCall(t).succeed(domain.QueryResult{Items: props(1)})
	eventually(t, h.settled, "fetch should settle")

	assert.False(t, h.orch.NextPage(), "no next link")
	assert.False(t, h.orch.PreviousPage(), "no previous link")
}

func TestOrchestrator_EmitsStateEvents(t *testing.T) {
	h := newHarness(t)
	h.commit(t, domain.FilterCriteria{CityName: "Tehran"}, domain.QueryResult{Items: props(1)})

	events := h.notifier.ofType(domain.EventState)
	require.NotEmpty(t, events)
	last := events[len(events)-1].Data.(domain.ExplorerState)
	assert.Equal(t, "s1", events[len(events)-1].SessionID)
	assert.Equal(t, []int64{1}, ids(last.Result.Items))
}

func TestOrchestrator_ClosedIgnoresChanges(t *testing.T) {
	h := newHarness(t)
	h.orch.Close()

	h.store.SetFilters(domain.FilterCriteria{CityName: "Tehran"})
	h.clock.Advance(time.Second)
	h.api.noCall(t)

	_, err := h.orch.LoadMore(context.Background())
	assert.Error(t, err)
}
