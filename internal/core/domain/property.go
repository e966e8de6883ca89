package domain

// PropertyStatus - статус объявления, как его понимает бэкенд.
type PropertyStatus string

const (
	StatusForSale PropertyStatus = "for_sale"
	StatusForRent PropertyStatus = "for_rent"
	StatusSold    PropertyStatus = "sold"
	StatusRented  PropertyStatus = "rented"
)

// IsValid проверяет, что статус входит в перечисление фильтра.
func (s PropertyStatus) IsValid() bool {
	switch s {
	case StatusForSale, StatusForRent, StatusSold, StatusRented:
		return true
	}
	return false
}

// Property - объект недвижимости в списке. Неизменяем в пределах жизни страницы,
// при повторной загрузке заменяется целиком.
type Property struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Location    string         `json:"location,omitempty"`
	Price       float64        `json:"price"`
	Area        float64        `json:"area"`
	Bedrooms    int            `json:"bedrooms"`
	Bathrooms   int            `json:"bathrooms"`
	Latitude    *float64       `json:"latitude,omitempty"`
	Longitude   *float64       `json:"longitude,omitempty"`
	Image       string         `json:"image,omitempty"`
	Status      PropertyStatus `json:"status,omitempty"`
	Type        string         `json:"type,omitempty"`
	Description string         `json:"description,omitempty"`
}

// Coordinates возвращает координаты, если они есть у объекта.
func (p Property) Coordinates() (lat, lng float64, ok bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return 0, 0, false
	}
	return *p.Latitude, *p.Longitude, true
}
