package backend_client

import (
	"context"
	"net/http"
	"net/url"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
	"strconv"
)

// FilterProperties - GET properties/filter/ с непустыми параметрами фильтра.
func (c *Client) FilterProperties(ctx context.Context, filters domain.FilterCriteria) (domain.QueryResult, error) {
	var list flexList[propertyDTO]
	if err := c.call(ctx, http.MethodGet, "properties/filter/", filters.Values(), nil, &list); err != nil {
		return domain.QueryResult{}, err
	}
	result := toQueryResult(list)

	contextkeys.LoggerFromContext(ctx).Debug("Filtered properties received", port.Fields{
		"component":   "BackendClient",
		"items":       len(result.Items),
		"total_count": result.TotalCount,
	})
	return result, nil
}

func (c *Client) GetProperty(ctx context.Context, id int64) (domain.Property, error) {
	var dto propertyDTO
	if err := c.call(ctx, http.MethodGet, "properties/"+strconv.FormatInt(id, 10)+"/", nil, nil, &dto); err != nil {
		return domain.Property{}, err
	}
	return dto.toDomain(), nil
}

func (c *Client) FeaturedProperties(ctx context.Context) ([]domain.Property, error) {
	var list flexList[propertyDTO]
	if err := c.call(ctx, http.MethodGet, "properties/featured/", nil, nil, &list); err != nil {
		return nil, err
	}
	return toDomainProperties(list.Results), nil
}

// SearchProperties - GET properties/search/?q=... вместе с фильтрами.
func (c *Client) SearchProperties(ctx context.Context, query string, filters domain.FilterCriteria) (domain.QueryResult, error) {
	params := filters.Values()
	if params == nil {
		params = url.Values{}
	}
	if query != "" {
		params.Set("q", query)
	}

	var list flexList[propertyDTO]
	if err := c.call(ctx, http.MethodGet, "properties/search/", params, nil, &list); err != nil {
		return domain.QueryResult{}, err
	}
	return toQueryResult(list), nil
}
