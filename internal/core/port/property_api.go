package port

import (
	"context"
	"property-explorer/internal/core/domain"
)

// PropertyAPIPort - контракт для клиента бэкенда объявлений.
// Все ошибки, которые он возвращает, уже нормализованы в *domain.APIError.
type PropertyAPIPort interface {
	FilterProperties(ctx context.Context, filters domain.FilterCriteria) (domain.QueryResult, error)
	GetProperty(ctx context.Context, id int64) (domain.Property, error)
	FeaturedProperties(ctx context.Context) ([]domain.Property, error)
	SearchProperties(ctx context.Context, query string, filters domain.FilterCriteria) (domain.QueryResult, error)
}
