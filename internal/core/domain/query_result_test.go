package domain

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageFromURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantPage *int
		wantOK   bool
	}{
		{"empty", "", nil, false},
		{"with page", "http://api/properties/filter/?city_name=Tehran&page=3", Int(3), true},
		{"first page has no param", "http://api/properties/filter/?city_name=Tehran", nil, true},
		{"garbage page", "http://api/properties/filter/?page=abc", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, ok := PageFromURL(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPage, page)
		})
	}
}

func TestFilterCriteria_CanonicalSkipsEmpty(t *testing.T) {
	f := FilterCriteria{CityName: "Tehran", MinPrice: Float(1000), Search: ""}

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"city_name":"Tehran","min_price":1000}`, string(data))
	assert.False(t, f.IsEmpty())
	assert.True(t, FilterCriteria{}.IsEmpty())
}

func TestFilterCriteriaFromValues(t *testing.T) {
	values := url.Values{
		"city_name":   {"Tehran"},
		"bedrooms":    {"2"},
		"max_price":   {"5000.5"},
		"status":      {"for_rent"},
		"has_parking": {"true"},
		"search":      {"  "},
	}

	f, err := FilterCriteriaFromValues(values)
	require.NoError(t, err)
	assert.Equal(t, "Tehran", f.CityName)
	assert.Equal(t, 2, *f.Bedrooms)
	assert.Equal(t, 5000.5, *f.MaxPrice)
	assert.Equal(t, StatusForRent, f.Status)
	assert.Equal(t, map[string]string{"has_parking": "true"}, f.Extra)
	assert.Empty(t, f.Search)

	_, err = FilterCriteriaFromValues(url.Values{"min_price": {"cheap"}})
	var invalid *InvalidFilterError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "min_price", invalid.Field)

	_, err = FilterCriteriaFromValues(url.Values{"status": {"archived"}})
	require.ErrorAs(t, err, &invalid)
}

func TestFilterCriteria_WithPageDoesNotShareState(t *testing.T) {
	orig := FilterCriteria{CityName: "Tehran", Page: Int(1), Extra: map[string]string{"a": "b"}}
	next := orig.WithPage(Int(2))

	*next.Page = 7
	next.Extra["a"] = "c"

	assert.Equal(t, 1, *orig.Page)
	assert.Equal(t, "b", orig.Extra["a"])
	assert.Nil(t, orig.WithPage(nil).Page)
}

func TestFilterCriteria_UnmarshalAcceptsStringNumbers(t *testing.T) {
	var f FilterCriteria
	require.NoError(t, json.Unmarshal([]byte(`{"min_area":"80","bedrooms":3,"status":null}`), &f))
	assert.Equal(t, 80.0, *f.MinArea)
	assert.Equal(t, 3, *f.Bedrooms)
	assert.Empty(t, f.Status)
}
