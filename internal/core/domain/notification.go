package domain

import "time"

type NotificationLevel string

const (
	LevelError   NotificationLevel = "error"
	LevelSuccess NotificationLevel = "success"
	LevelInfo    NotificationLevel = "info"
)

// Notification - временное уведомление для UI.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Source    string            `json:"source,omitempty"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

// Ключи источников уведомлений для сбоев выборки.
const (
	SourceFetch500        = "map-fetch-500"
	SourceFetch404        = "map-fetch-404"
	SourceFetchNetwork    = "map-fetch-network"
	SourceFetchGeneral    = "map-fetch-general"
	SourceLoadMoreTimeout = "map-loadmore-timeout"
	SourceLoadMore        = "map-loadmore"
	SourceLocation        = "map-location"
)
