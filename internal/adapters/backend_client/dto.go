package backend_client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"property-explorer/internal/core/domain"
	"strconv"
	"strings"
)

// flexFloat принимает число как JSON-число, строку ("12500.00") или null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// optFloat - то же, но отличает отсутствие значения от нуля.
type optFloat struct {
	value *float64
}

func (o *optFloat) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		o.value = nil
		return nil
	}
	var f flexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	v := float64(f)
	o.value = &v
	return nil
}

// propertyDTO - объект в том виде, в котором его присылает бэкенд.
type propertyDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Price       flexFloat `json:"price"`
	Area        flexFloat `json:"area"`
	Bedrooms    flexFloat `json:"bedrooms"`
	Bathrooms   flexFloat `json:"bathrooms"`
	Latitude    optFloat  `json:"latitude"`
	Longitude   optFloat  `json:"longitude"`
	Image       string    `json:"image"`
	Status      string    `json:"status"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
}

func (d propertyDTO) toDomain() domain.Property {
	return domain.Property{
		ID:          d.ID,
		Title:       d.Title,
		Location:    d.Location,
		Price:       float64(d.Price),
		Area:        float64(d.Area),
		Bedrooms:    int(d.Bedrooms),
		Bathrooms:   int(d.Bathrooms),
		Latitude:    d.Latitude.value,
		Longitude:   d.Longitude.value,
		Image:       d.Image,
		Status:      domain.PropertyStatus(d.Status),
		Type:        d.Type,
		Description: d.Description,
	}
}

func toDomainProperties(dtos []propertyDTO) []domain.Property {
	out := make([]domain.Property, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out
}

// listEnvelope - постраничный ответ. Бэкенд может прислать и голый массив.
type listEnvelope[T any] struct {
	Results    []T     `json:"results"`
	Count      int     `json:"count"`
	Next       *string `json:"next"`
	Previous   *string `json:"previous"`
	Page       *int    `json:"page"`
	TotalPages *int    `json:"total_pages"`
}

// flexList декодирует и массив, и объект {results, count, ...}.
type flexList[T any] struct {
	listEnvelope[T]
}

func (l *flexList[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		l.listEnvelope = listEnvelope[T]{Results: items, Count: len(items)}
		return nil
	}
	var env listEnvelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	l.listEnvelope = env
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toPage[T any](l flexList[T]) domain.Page[T] {
	results := l.Results
	if results == nil {
		results = []T{}
	}
	return domain.Page[T]{
		Results:  results,
		Count:    l.Count,
		Next:     deref(l.Next),
		Previous: deref(l.Previous),
	}
}

func toQueryResult(l flexList[propertyDTO]) domain.QueryResult {
	return domain.QueryResult{
		Items:      toDomainProperties(l.Results),
		TotalCount: l.Count,
		Next:       deref(l.Next),
		Previous:   deref(l.Previous),
		Page:       l.Page,
		TotalPages: l.TotalPages,
	}
}

type bookmarkDTO struct {
	ID         int64        `json:"id"`
	PropertyID *int64       `json:"property_id"`
	Property   *propertyDTO `json:"property"`
	CreatedAt  string       `json:"created_at"`
}

func (d bookmarkDTO) toDomain() domain.Bookmark {
	b := domain.Bookmark{ID: d.ID, CreatedAt: d.CreatedAt}
	if d.Property != nil {
		p := d.Property.toDomain()
		b.Property = &p
		b.PropertyID = p.ID
	}
	if d.PropertyID != nil {
		b.PropertyID = *d.PropertyID
	}
	return b
}

type addBookmarkRequest struct {
	PropertyID int64 `json:"property_id"`
}

type addLikeRequest struct {
	Property int64 `json:"property"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// authResponse - login/register/refresh. Refresh может вернуть access вместо token.
type authResponse struct {
	Token   string       `json:"token"`
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *domain.User `json:"user"`
	Message string       `json:"message"`
}

func (r authResponse) toDomain() domain.AuthTokens {
	token := r.Token
	if token == "" {
		token = r.Access
	}
	return domain.AuthTokens{Token: token, Refresh: r.Refresh, User: r.User, Message: r.Message}
}
