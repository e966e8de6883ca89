package usecases_port

import (
	"context"
	"property-explorer/internal/core/domain"
)

type PropertiesUseCasePort interface {
	Get(ctx context.Context, id int64) (domain.Property, error)
	Featured(ctx context.Context) ([]domain.Property, error)
	Search(ctx context.Context, query string, filters domain.FilterCriteria) (domain.QueryResult, error)
}
