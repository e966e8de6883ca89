package usecases_port

import (
	"context"
	"property-explorer/internal/core/domain"
)

// MapViewportUseCasePort - сохраненный вид карты сессии.
type MapViewportUseCasePort interface {
	Load(ctx context.Context) (domain.MapViewState, bool)
	Save(ctx context.Context, state domain.MapViewState) error
	Locate(ctx context.Context, ip string) domain.LocateResult
}
