package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/errnorm"
	"property-explorer/internal/core/port"
	"time"
)

const DefaultLocateTimeout = 5 * time.Second

// MapViewportUseCase хранит центр и масштаб карты отдельно для каждой сессии.
type MapViewportUseCase struct {
	store      port.KeyValueStore
	geo        port.GeoLocatorPort
	normalizer *errnorm.Normalizer
	timeout    time.Duration
}

func NewMapViewportUseCase(store port.KeyValueStore, geo port.GeoLocatorPort, normalizer *errnorm.Normalizer) *MapViewportUseCase {
	if normalizer == nil {
		normalizer = errnorm.New("")
	}
	return &MapViewportUseCase{store: store, geo: geo, normalizer: normalizer, timeout: DefaultLocateTimeout}
}

// SessionKey строит ключ хранилища, привязанный к сессии из контекста.
func SessionKey(ctx context.Context, name string) string {
	sessionID := contextkeys.SessionIDFromContext(ctx)
	if sessionID == "" {
		return name
	}
	return "session:" + sessionID + ":" + name
}

// Load возвращает сохраненное состояние. Отсутствующие или битые данные дают состояние по умолчанию.
func (uc *MapViewportUseCase) Load(ctx context.Context) (domain.MapViewState, bool) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "MapViewport.Load"})

	raw, err := uc.store.Get(ctx, SessionKey(ctx, domain.MapStateKeyName))
	if err != nil {
		if !errors.Is(err, port.ErrKeyNotFound) {
			logger.Debug("Map state is not readable, using defaults", port.Fields{"error": err.Error()})
		}
		return domain.DefaultMapViewState(), false
	}

	var state domain.MapViewState
	if err := json.Unmarshal(raw, &state); err != nil {
		logger.Debug("Map state is corrupt, using defaults", port.Fields{"error": err.Error()})
		return domain.DefaultMapViewState(), false
	}
	if state.Center == ([2]float64{}) {
		state.Center = domain.DefaultMapCenter
	}
	if state.Zoom == 0 {
		state.Zoom = domain.DefaultMapZoom
	}
	return state, true
}

// Save проверяет и сохраняет состояние карты.
func (uc *MapViewportUseCase) Save(ctx context.Context, state domain.MapViewState) error {
	if fields := uc.validate(state); len(fields) > 0 {
		return uc.normalizer.Validation(fields)
	}
	return uc.persist(ctx, state)
}

func (uc *MapViewportUseCase) persist(ctx context.Context, state domain.MapViewState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal map state: %w", err)
	}
	if err := uc.store.Set(ctx, SessionKey(ctx, domain.MapStateKeyName), data); err != nil {
		// запись best-effort, как у кэша
		contextkeys.LoggerFromContext(ctx).Debug("Failed to persist map state", port.Fields{"error": err.Error()})
	}
	return nil
}

// Locate определяет местоположение по IP. При неудаче возвращает состояние по умолчанию и сообщение.
func (uc *MapViewportUseCase) Locate(ctx context.Context, ip string) domain.LocateResult {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "MapViewport.Locate", "ip": ip})
	logger.Info("Use case started", nil)

	notFound := domain.LocateResult{State: domain.DefaultMapViewState(), Message: uc.normalizer.Text(errnorm.MsgLocationNotFound)}
	if uc.geo == nil {
		return notFound
	}

	locateCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	loc, err := uc.geo.Locate(locateCtx, ip)
	if err != nil {
		logger.Warn("IP geolocation failed", port.Fields{"error": err.Error()})
		return notFound
	}
	if loc.Lat == 0 && loc.Lng == 0 {
		logger.Warn("IP geolocation returned no coordinates", nil)
		return notFound
	}

	state := domain.MapViewState{
		Center:       [2]float64{loc.Lng, loc.Lat},
		Zoom:         domain.LocatedMapZoom,
		UserLocation: &loc,
	}
	if err := uc.persist(ctx, state); err != nil {
		logger.Error("Failed to save located map state", err, nil)
	}

	logger.Info("Use case finished successfully", port.Fields{"city": loc.City})
	return domain.LocateResult{State: state, Found: true}
}

func (uc *MapViewportUseCase) validate(state domain.MapViewState) map[string]string {
	fields := make(map[string]string)
	lng, lat := state.Center[0], state.Center[1]
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		fields["center"] = uc.normalizer.Text(errnorm.MsgFieldInvalid, "center")
	}
	if state.Zoom < 0 || state.Zoom > 22 {
		fields["zoom"] = uc.normalizer.Text(errnorm.MsgFieldInvalid, "zoom")
	}
	return fields
}
