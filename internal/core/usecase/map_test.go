package usecase

import (
	"context"
	"errors"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeo struct {
	loc   domain.UserLocation
	err   error
	calls int
}

func (f *fakeGeo) Locate(ctx context.Context, _ string) (domain.UserLocation, error) {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return domain.UserLocation{}, errors.New("locate called without deadline")
	}
	return f.loc, f.err
}

func sessionCtx(id string) context.Context {
	return contextkeys.ContextWithSessionID(context.Background(), id)
}

func TestMapViewport_LoadDefaultsWhenMissingOrCorrupt(t *testing.T) {
	kv := newFakeKV()
	uc := NewMapViewportUseCase(kv, nil, errnorm.New("en"))
	ctx := sessionCtx("s1")

	state, ok := uc.Load(ctx)
	assert.False(t, ok)
	assert.Equal(t, domain.DefaultMapViewState(), state)

	kv.data["session:s1:map_initial_state"] = []byte("{broken")
	state, ok = uc.Load(ctx)
	assert.False(t, ok)
	assert.Equal(t, domain.DefaultMapViewState(), state)
}

func TestMapViewport_SaveIsSessionScoped(t *testing.T) {
	kv := newFakeKV()
	uc := NewMapViewportUseCase(kv, nil, errnorm.New("en"))

	want := domain.MapViewState{Center: [2]float64{59.6, 36.3}, Zoom: 14}
	require.NoError(t, uc.Save(sessionCtx("a"), want))

	got, ok := uc.Load(sessionCtx("a"))
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("map state mismatch (-want +got):\n%s", diff)
	}

	_, ok = uc.Load(sessionCtx("b"))
	assert.False(t, ok)
}

func TestMapViewport_SaveRejectsInvalidState(t *testing.T) {
	uc := NewMapViewportUseCase(newFakeKV(), nil, errnorm.New("en"))

	err := uc.Save(sessionCtx("a"), domain.MapViewState{Center: [2]float64{200, 10}, Zoom: 40})
	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, domain.KindValidation, apiErr.Kind)
	assert.Equal(t, map[string]string{"center": "center is invalid", "zoom": "zoom is invalid"}, apiErr.Details)
}

func TestMapViewport_LocateSuccessPersists(t *testing.T) {
	kv := newFakeKV()
	geo := &fakeGeo{loc: domain.UserLocation{Lat: 32.65, Lng: 51.67, City: "Isfahan"}}
	uc := NewMapViewportUseCase(kv, geo, errnorm.New("en"))
	ctx := sessionCtx("a")

	res := uc.Locate(ctx, "5.160.0.1")
	require.True(t, res.Found)
	assert.Empty(t, res.Message)
	assert.Equal(t, [2]float64{51.67, 32.65}, res.State.Center)
	assert.Equal(t, domain.LocatedMapZoom, res.State.Zoom)
	assert.Equal(t, "Isfahan", res.State.UserLocation.City)

	saved, ok := uc.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, res.State, saved)
}

func TestMapViewport_LocateFailureFallsBack(t *testing.T) {
	kv := newFakeKV()
	uc := NewMapViewportUseCase(kv, &fakeGeo{err: errors.New("rate limited")}, errnorm.New("fa"))

	res := uc.Locate(sessionCtx("a"), "1.1.1.1")
	assert.False(t, res.Found)
	assert.Equal(t, domain.DefaultMapViewState(), res.State)
	assert.Equal(t, "موقعیت یافت نشد", res.Message)
	assert.Zero(t, kv.len())

	res = NewMapViewportUseCase(kv, &fakeGeo{}, nil).Locate(sessionCtx("a"), "1.1.1.1")
	assert.False(t, res.Found, "zero coordinates mean nothing was found")
}

func TestClusterPrecision(t *testing.T) {
	cases := map[int]uint{0: 2, 3: 2, 4: 3, 5: 3, 8: 4, 11: 5, 12: 6, 16: 7, 17: 8, 22: 8}
	for zoom, want := range cases {
		assert.Equal(t, want, ClusterPrecision(zoom), "zoom %d", zoom)
	}
}

func TestClusterProperties(t *testing.T) {
	at := func(id int64, lat, lng float64) domain.Property {
		return domain.Property{ID: id, Latitude: domain.Float(lat), Longitude: domain.Float(lng)}
	}
	items := []domain.Property{
		at(1, 35.6892, 51.3890),
		at(2, 35.6895, 51.3893),
		at(3, 32.6539, 51.6660),
		{ID: 4},
	}

	clusters := ClusterProperties(items, 11)
	require.Len(t, clusters, 2)

	assert.Equal(t, 2, clusters[0].Count)
	assert.Equal(t, []int64{1, 2}, clusters[0].PropertyIDs)
	assert.Len(t, clusters[0].Geohash, 5)
	assert.InDelta(t, 51.38915, clusters[0].Center[0], 1e-9)
	assert.InDelta(t, 35.68935, clusters[0].Center[1], 1e-9)
	b := clusters[0].Bounds
	assert.True(t, b.MinLat <= 35.6892 && 35.6895 <= b.MaxLat)

	assert.Equal(t, []int64{3}, clusters[1].PropertyIDs)

	assert.Len(t, ClusterProperties(items[:2], 2), 1)
	assert.Empty(t, ClusterProperties(nil, 10))
}
