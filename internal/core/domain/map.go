package domain

// Центр карты по умолчанию - Тегеран, [lng, lat].
var (
	DefaultMapCenter = [2]float64{51.3890, 35.6892}
)

const (
	DefaultMapZoom  = 11
	LocatedMapZoom  = 12
	MapStateKeyName = "map_initial_state"
)

// UserLocation - местоположение пользователя, определенное по IP.
type UserLocation struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	City string  `json:"city,omitempty"`
}

// MapViewState - сохраненное состояние карты.
type MapViewState struct {
	Center       [2]float64    `json:"center"`
	Zoom         int           `json:"zoom"`
	UserLocation *UserLocation `json:"userLocation,omitempty"`
}

// DefaultMapViewState - состояние, если ничего не сохранено.
func DefaultMapViewState() MapViewState {
	return MapViewState{Center: DefaultMapCenter, Zoom: DefaultMapZoom}
}

// Bounds - прямоугольник в градусах.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// MapCluster - группа объектов в одной geohash-ячейке.
type MapCluster struct {
	Geohash     string     `json:"geohash"`
	Center      [2]float64 `json:"center"`
	Bounds      Bounds     `json:"bounds"`
	Count       int        `json:"count"`
	PropertyIDs []int64    `json:"property_ids"`
}

// LocateResult - итог определения местоположения. Message заполнен, только если найти не удалось.
type LocateResult struct {
	State   MapViewState `json:"state"`
	Found   bool         `json:"found"`
	Message string       `json:"message,omitempty"`
}
