package geoip

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"property-explorer/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPAPILocator_Locate(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		io.WriteString(w, `{"ip": "5.160.0.1", "city": "Tehran", "latitude": 35.6944, "longitude": 51.4215}`)
	}))
	defer srv.Close()

	l := NewIPAPILocator(srv.URL+"/", srv.Client())

	loc, err := l.Locate(context.Background(), "5.160.0.1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserLocation{Lat: 35.6944, Lng: 51.4215, City: "Tehran"}, loc)

	_, err = l.Locate(context.Background(), "192.168.1.10")
	require.NoError(t, err)
	assert.Equal(t, []string{"/5.160.0.1/json/", "/json/"}, paths)
}

func TestIPAPILocator_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`},
		{"error flag", http.StatusOK, `{"error": true, "reason": "Reserved IP Address"}`},
		{"no coordinates", http.StatusOK, `{"city": "Nowhere"}`},
		{"broken json", http.StatusOK, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewIPAPILocator(srv.URL, nil).Locate(context.Background(), "")
			assert.Error(t, err)
		})
	}
}
