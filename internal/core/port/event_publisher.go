package port

import (
	"context"
	"property-explorer/internal/core/domain"
)

// SearchEventPublisherPort - контракт для публикации событий о выполненных поисках.
type SearchEventPublisherPort interface {
	PublishSearchPerformed(ctx context.Context, event domain.SearchPerformedEvent) error
}
