package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Имена query-параметров фильтра на стороне бэкенда.
const (
	FilterCityName         = "city_name"
	FilterMinPrice         = "min_price"
	FilterMaxPrice         = "max_price"
	FilterMinArea          = "min_area"
	FilterMaxArea          = "max_area"
	FilterBedrooms         = "bedrooms"
	FilterBedroomsMin      = "bedrooms_min"
	FilterBedroomsMax      = "bedrooms_max"
	FilterBathrooms        = "bathrooms"
	FilterStatus           = "status"
	FilterPropertyTypeName = "property_type_name"
	FilterSearch           = "search"
	FilterOrdering         = "ordering"
	FilterPage             = "page"
	FilterLimit            = "limit"
)

var knownFilterKeys = map[string]struct{}{
	FilterCityName: {}, FilterMinPrice: {}, FilterMaxPrice: {}, FilterMinArea: {}, FilterMaxArea: {},
	FilterBedrooms: {}, FilterBedroomsMin: {}, FilterBedroomsMax: {}, FilterBathrooms: {},
	FilterStatus: {}, FilterPropertyTypeName: {}, FilterSearch: {}, FilterOrdering: {},
	FilterPage: {}, FilterLimit: {},
}

// FilterCriteria - набор необязательных границ и строковых условий для списка объектов.
// Пустая структура означает "без фильтрации, порядок по умолчанию".
type FilterCriteria struct {
	CityName         string
	MinPrice         *float64
	MaxPrice         *float64
	MinArea          *float64
	MaxArea          *float64
	Bedrooms         *int
	BedroomsMin      *int
	BedroomsMax      *int
	Bathrooms        *int
	Status           PropertyStatus
	PropertyTypeName string
	Search           string
	Ordering         string
	Page             *int
	Limit            *int

	// Extra - прочие фильтры бэкенда, которые мы передаем как есть
	Extra map[string]string
}

// InvalidFilterError - некорректное значение поля фильтра.
type InvalidFilterError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %s=%q: %s", e.Field, e.Value, e.Reason)
}

// Canonical возвращает только непустые поля в виде map. Порядок ключей не важен,
// json.Marshal сортирует их сам.
func (f FilterCriteria) Canonical() map[string]any {
	out := make(map[string]any)

	addString := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	addFloat := func(key string, val *float64) {
		if val != nil {
			out[key] = *val
		}
	}
	addInt := func(key string, val *int) {
		if val != nil {
			out[key] = *val
		}
	}

	for k, v := range f.Extra {
		if _, known := knownFilterKeys[k]; known {
			continue
		}
		addString(k, v)
	}

	addString(FilterCityName, f.CityName)
	addFloat(FilterMinPrice, f.MinPrice)
	addFloat(FilterMaxPrice, f.MaxPrice)
	addFloat(FilterMinArea, f.MinArea)
	addFloat(FilterMaxArea, f.MaxArea)
	addInt(FilterBedrooms, f.Bedrooms)
	addInt(FilterBedroomsMin, f.BedroomsMin)
	addInt(FilterBedroomsMax, f.BedroomsMax)
	addInt(FilterBathrooms, f.Bathrooms)
	addString(FilterStatus, string(f.Status))
	addString(FilterPropertyTypeName, f.PropertyTypeName)
	addString(FilterSearch, f.Search)
	addString(FilterOrdering, f.Ordering)
	addInt(FilterPage, f.Page)
	addInt(FilterLimit, f.Limit)

	return out
}

// Values возвращает непустые поля как query-параметры.
func (f FilterCriteria) Values() url.Values {
	values := url.Values{}
	for key, val := range f.Canonical() {
		switch v := val.(type) {
		case string:
			values.Set(key, v)
		case float64:
			values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case int:
			values.Set(key, strconv.Itoa(v))
		}
	}
	return values
}

// IsEmpty - true, если ни одно поле не задано.
func (f FilterCriteria) IsEmpty() bool {
	return len(f.Canonical()) == 0
}

// Clone делает глубокую копию, чтобы вызывающий код не мог изменить чужое состояние.
func (f FilterCriteria) Clone() FilterCriteria {
	c := f
	c.MinPrice = cloneFloat(f.MinPrice)
	c.MaxPrice = cloneFloat(f.MaxPrice)
	c.MinArea = cloneFloat(f.MinArea)
	c.MaxArea = cloneFloat(f.MaxArea)
	c.Bedrooms = cloneInt(f.Bedrooms)
	c.BedroomsMin = cloneInt(f.BedroomsMin)
	c.BedroomsMax = cloneInt(f.BedroomsMax)
	c.Bathrooms = cloneInt(f.Bathrooms)
	c.Page = cloneInt(f.Page)
	c.Limit = cloneInt(f.Limit)
	if f.Extra != nil {
		c.Extra = make(map[string]string, len(f.Extra))
		for k, v := range f.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// WithPage возвращает копию фильтра с другой страницей. nil - первая страница.
func (f FilterCriteria) WithPage(page *int) FilterCriteria {
	c := f.Clone()
	c.Page = cloneInt(page)
	return c
}

// MarshalJSON сериализует фильтр в канонический вид.
func (f FilterCriteria) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Canonical())
}

// UnmarshalJSON принимает объект, где числа могут прийти и числом, и строкой.
func (f *FilterCriteria) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FilterCriteriaFromMap(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// FilterCriteriaFromMap строит фильтр из произвольного JSON-объекта.
// nil и пустые строки пропускаются.
func FilterCriteriaFromMap(raw map[string]any) (FilterCriteria, error) {
	values := url.Values{}
	for key, val := range raw {
		switch v := val.(type) {
		case nil:
			continue
		case string:
			values.Set(key, v)
		case float64:
			values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case json.Number:
			values.Set(key, v.String())
		case int:
			values.Set(key, strconv.Itoa(v))
		default:
			return FilterCriteria{}, &InvalidFilterError{Field: key, Value: fmt.Sprint(v), Reason: "unsupported value type"}
		}
	}
	return FilterCriteriaFromValues(values)
}

// FilterCriteriaFromValues разбирает query-параметры в фильтр.
func FilterCriteriaFromValues(values url.Values) (FilterCriteria, error) {
	var f FilterCriteria
	var err error

	get := func(key string) string {
		return strings.TrimSpace(values.Get(key))
	}
	parseFloat := func(key string) (*float64, error) {
		raw := get(key)
		if raw == "" {
			return nil, nil
		}
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return nil, &InvalidFilterError{Field: key, Value: raw, Reason: "not a number"}
		}
		return &v, nil
	}
	parseInt := func(key string) (*int, error) {
		raw := get(key)
		if raw == "" {
			return nil, nil
		}
		v, perr := strconv.Atoi(raw)
		if perr != nil {
			return nil, &InvalidFilterError{Field: key, Value: raw, Reason: "not an integer"}
		}
		return &v, nil
	}

	f.CityName = get(FilterCityName)
	f.PropertyTypeName = get(FilterPropertyTypeName)
	f.Search = get(FilterSearch)
	f.Ordering = get(FilterOrdering)

	if status := get(FilterStatus); status != "" {
		f.Status = PropertyStatus(status)
		if !f.Status.IsValid() {
			return FilterCriteria{}, &InvalidFilterError{Field: FilterStatus, Value: status, Reason: "unknown status"}
		}
	}

	floats := []struct {
		key string
		dst **float64
	}{
		{FilterMinPrice, &f.MinPrice},
		{FilterMaxPrice, &f.MaxPrice},
		{FilterMinArea, &f.MinArea},
		{FilterMaxArea, &f.MaxArea},
	}
	for _, fl := range floats {
		if *fl.dst, err = parseFloat(fl.key); err != nil {
			return FilterCriteria{}, err
		}
	}

	ints := []struct {
		key string
		dst **int
	}{
		{FilterBedrooms, &f.Bedrooms},
		{FilterBedroomsMin, &f.BedroomsMin},
		{FilterBedroomsMax, &f.BedroomsMax},
		{FilterBathrooms, &f.Bathrooms},
		{FilterPage, &f.Page},
		{FilterLimit, &f.Limit},
	}
	for _, in := range ints {
		if *in.dst, err = parseInt(in.key); err != nil {
			return FilterCriteria{}, err
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, known := knownFilterKeys[k]; known {
			continue
		}
		if v := get(k); v != "" {
			if f.Extra == nil {
				f.Extra = make(map[string]string)
			}
			f.Extra[k] = v
		}
	}

	return f, nil
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Float и Int - хелперы для сборки фильтров в коде и тестах.
func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
