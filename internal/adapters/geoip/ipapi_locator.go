package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/domain"
	"property-explorer/internal/core/port"
	"strings"
)

const DefaultBaseURL = "https://ipapi.co"

// IPAPILocator определяет местоположение через ipapi.co.
type IPAPILocator struct {
	baseURL    string
	httpClient *http.Client
}

var _ port.GeoLocatorPort = (*IPAPILocator)(nil)

func NewIPAPILocator(baseURL string, httpClient *http.Client) *IPAPILocator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &IPAPILocator{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient}
}

type ipapiResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      string   `json:"city"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
}

// Locate ищет координаты по IP. Для пустого или внутреннего адреса ipapi определяет адрес сам.
func (l *IPAPILocator) Locate(ctx context.Context, ip string) (domain.UserLocation, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "IPAPILocator"})

	endpoint := l.baseURL + "/json/"
	if parsed := net.ParseIP(ip); parsed != nil && !parsed.IsPrivate() && !parsed.IsLoopback() {
		endpoint = l.baseURL + "/" + parsed.String() + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.UserLocation{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return domain.UserLocation{}, fmt.Errorf("ip geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.UserLocation{}, fmt.Errorf("ip geolocation returned status %d", resp.StatusCode)
	}

	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.UserLocation{}, fmt.Errorf("failed to decode ip geolocation response: %w", err)
	}
	if body.Error {
		return domain.UserLocation{}, fmt.Errorf("ip geolocation failed: %s", body.Reason)
	}
	if body.Latitude == nil || body.Longitude == nil || (*body.Latitude == 0 && *body.Longitude == 0) {
		return domain.UserLocation{}, fmt.Errorf("no location data")
	}

	logger.Debug("Location resolved", port.Fields{"city": body.City})
	return domain.UserLocation{Lat: *body.Latitude, Lng: *body.Longitude, City: body.City}, nil
}
