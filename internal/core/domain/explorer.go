package domain

import "time"

// Origin - откуда пришло последнее изменение выделения.
type Origin string

const (
	OriginList Origin = "list"
	OriginMap  Origin = "map"
)

func (o Origin) IsValid() bool {
	return o == OriginList || o == OriginMap
}

// SelectionPointer - единственный общий курсор выделения для списка и карты.
type SelectionPointer struct {
	PropertyID *int64 `json:"property_id"`
	Origin     Origin `json:"origin,omitempty"`
}

// LoadMoreState - счетчики подгрузки для текущего запроса.
type LoadMoreState struct {
	Count    int       `json:"count"`
	LastAt   time.Time `json:"last_at,omitempty"`
	Loading  bool      `json:"loading"`
	Disabled bool      `json:"disabled"`
}

// ExplorerState - снимок состояния сессии для UI.
type ExplorerState struct {
	Filters        FilterCriteria   `json:"filters"`
	FiltersVersion uint64           `json:"filters_version"`
	Result         *QueryResult     `json:"result"`
	FromCache      bool             `json:"from_cache"`
	Loading        bool             `json:"loading"`
	Fetching       bool             `json:"fetching"`
	Error          *APIError        `json:"error"`
	LoadMore       LoadMoreState    `json:"load_more"`
	Selection      SelectionPointer `json:"selection"`
}

// Типы событий, которые уходят в UI.
const (
	EventState        = "state"
	EventSelection    = "selection"
	EventNotification = "notification"
)

// SelectionEvent - что UI должен сделать после изменения выделения.
type SelectionEvent struct {
	PropertyID *int64 `json:"property_id"`
	Origin     Origin `json:"origin,omitempty"`
	// Action: "focus_map" для выбора из списка, "scroll_list" для выбора на карте, "clear"
	Action string `json:"action"`
}

const (
	ActionFocusMap   = "focus_map"
	ActionScrollList = "scroll_list"
	ActionClear      = "clear"
)
