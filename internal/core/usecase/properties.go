package usecase

import (
	"context"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"
)

// PropertiesUseCase - карточка объекта, избранные объекты и текстовый поиск.
// Одновременные запросы одной карточки схлопываются в один вызов бэкенда.
type PropertiesUseCase struct {
	api   port.PropertyAPIPort
	group singleflight.Group
}

func NewPropertiesUseCase(api port.PropertyAPIPort) *PropertiesUseCase {
	return &PropertiesUseCase{api: api}
}

func (uc *PropertiesUseCase) Get(ctx context.Context, id int64) (domain.Property, error) {
	key := strconv.FormatInt(id, 10)

	// запрос не должен обрываться, если первый из ожидающих ушел
	ch := uc.group.DoChan(key, func() (any, error) {
		return uc.api.GetProperty(context.WithoutCancel(ctx), id)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Property{}, res.Err
		}
		if res.Shared {
			contextkeys.LoggerFromContext(ctx).Debug("Property details shared with a concurrent request", port.Fields{"property_id": id})
		}
		return res.Val.(domain.Property), nil
	case <-ctx.Done():
		return domain.Property{}, ctx.Err()
	}
}

func (uc *PropertiesUseCase) Featured(ctx context.Context) ([]domain.Property, error) {
	return uc.api.FeaturedProperties(ctx)
}

func (uc *PropertiesUseCase) Search(ctx context.Context, query string, filters domain.FilterCriteria) (domain.QueryResult, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "SearchProperties", "query": query})
	ucLogger.Info("Use case started", nil)

	result, err := uc.api.SearchProperties(ctx, strings.TrimSpace(query), filters)
	if err != nil {
		ucLogger.Error("Search failed", err, nil)
		return domain.QueryResult{}, err
	}
	ucLogger.Info("Use case finished successfully", port.Fields{"total_count": result.TotalCount})
	return result, nil
}
