package domain

import "time"

// SearchPerformedEvent публикуется после каждого успешного запроса к бэкенду.
type SearchPerformedEvent struct {
	SessionID   string         `json:"session_id"`
	Filters     map[string]any `json:"filters"`
	TotalCount  int            `json:"total_count"`
	ResultCount int            `json:"result_count"`
	LoadMore    bool           `json:"load_more"`
	OccurredAt  time.Time      `json:"occurred_at"`
}
