package usecase

import (
	"context"
	"property-explorer/internal/core/domain"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_OrderAndEmptyValues(t *testing.T) {
	a := domain.FilterCriteria{MinPrice: domain.Float(1000), MaxPrice: domain.Float(5000)}
	b := domain.FilterCriteria{MaxPrice: domain.Float(5000), MinPrice: domain.Float(1000), Search: "", CityName: ""}
	c := domain.FilterCriteria{Extra: map[string]string{"z": "1", "a": "2", "empty": ""}}
	d := domain.FilterCriteria{Extra: map[string]string{"a": "2", "z": "1"}}

	assert.Equal(t, Canonicalize(a), Canonicalize(b))
	assert.Equal(t, `{"max_price":5000,"min_price":1000}`, Canonicalize(a))
	assert.Equal(t, Canonicalize(c), Canonicalize(d))
	assert.Equal(t, "{}", Canonicalize(domain.FilterCriteria{}))
}

func TestQueryCache_TTLBoundary(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	kv := newFakeKV()
	cache := NewQueryCache(kv, clock, 5*time.Minute)

	filters := domain.FilterCriteria{CityName: "Tehran"}
	result := domain.QueryResult{Items: props(1, 2), TotalCount: 2}
	cache.Put(ctx, filters, result)

	clock.Advance(5*time.Minute - time.Millisecond)
	got, ok := cache.Get(ctx, filters)
	require.True(t, ok)
	if diff := cmp.Diff(result, got); diff != "" {
		t.Errorf("cached result mismatch (-want +got):\n%s", diff)
	}

	clock.Advance(2 * time.Millisecond)
	_, ok = cache.Get(ctx, filters)
	assert.False(t, ok)
	assert.Zero(t, kv.len(), "expired entry must be evicted")
}

func TestQueryCache_EntryFormat(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
	kv := newFakeKV()
	cache := NewQueryCache(kv, clock, 0)

	cache.Put(ctx, domain.FilterCriteria{Bedrooms: domain.Int(2)}, domain.QueryResult{TotalCount: 0})

	raw, err := kv.Get(ctx, `filtered_properties_cache_{"bedrooms":2}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"results":null,"count":0},"timestamp":1700000000000,"filters":{"bedrooms":2}}`, string(raw))
}

func TestQueryCache_CorruptEntryIsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	cache := NewQueryCache(kv, clockwork.NewFakeClock(), 0)
	filters := domain.FilterCriteria{CityName: "Tabriz"}

	require.NoError(t, kv.Set(ctx, CacheKeyPrefix+Canonicalize(filters), []byte("{not json")))

	_, ok := cache.Get(ctx, filters)
	assert.False(t, ok)
	assert.Zero(t, kv.len())
}

func TestQueryCache_StorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.failSet = true
	cache := NewQueryCache(kv, clockwork.NewFakeClock(), 0)

	cache.Put(ctx, domain.FilterCriteria{}, domain.QueryResult{TotalCount: 1})
	_, ok := cache.Get(ctx, domain.FilterCriteria{})
	assert.False(t, ok)

	kv.failGet = true
	_, ok = cache.Get(ctx, domain.FilterCriteria{})
	assert.False(t, ok)
}

func TestQueryCache_Purge(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	kv := newFakeKV()
	cache := NewQueryCache(kv, clock, time.Minute)

	cache.Put(ctx, domain.FilterCriteria{CityName: "old"}, domain.QueryResult{})
	clock.Advance(2 * time.Minute)
	cache.Put(ctx, domain.FilterCriteria{CityName: "fresh"}, domain.QueryResult{})
	require.NoError(t, kv.Set(ctx, CacheKeyPrefix+"broken", []byte("x")))
	require.NoError(t, kv.Set(ctx, "session:abc:auth_token", []byte("t")))

	removed, err := cache.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := cache.Get(ctx, domain.FilterCriteria{CityName: "fresh"})
	assert.True(t, ok)
	assert.Equal(t, 2, kv.len())
}
