// Package ipinfo implements domain.Geolocator using the ipinfo.io API.
package ipinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
)

// Client resolves the location of the machine's public IP address.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an ipinfo.io client. The token is optional; without one
// the API serves a rate-limited anonymous tier.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://ipinfo.io",
		logger:  logger,
	}
}

// NewClientForTesting creates a client pointed at a test server.
func NewClientForTesting(baseURL, token string, logger *slog.Logger) *Client {
	c := NewClient(token, 5*time.Second, logger)
	c.baseURL = baseURL
	return c
}

// Locate looks up the current public IP. Bogon (private-range) addresses and
// payloads without a country are resolution failures.
func (c *Client) Locate(ctx context.Context) (domain.Location, error) {
	u := c.baseURL + "/json"
	if c.token != "" {
		u += "?token=" + url.QueryEscape(c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Location{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Location{}, fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Location{}, fmt.Errorf("ipinfo API error: status %d: %s", resp.StatusCode, body)
	}

	var info response
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return domain.Location{}, fmt.Errorf("decode response: %w", err)
	}

	if info.Bogon {
		return domain.Location{}, fmt.Errorf("ip %s is a bogon address with no location", info.IP)
	}
	if info.Country == "" {
		return domain.Location{}, fmt.Errorf("geolocation response has no country for ip %s", info.IP)
	}

	loc := domain.Location{
		Address: joinAddress(info.City, info.Region, info.Country),
		Country: info.Country,
		Postal:  info.Postal,
	}
	loc.Lat, loc.Lon = parseCoordinates(info.Loc)

	c.logger.Debug("location resolved", "address", loc.Address, "country", loc.Country)
	return loc, nil
}

// joinAddress builds "City, Region, CC" from the non-empty parts.
func joinAddress(parts ...string) string {
	present := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			present = append(present, p)
		}
	}
	return strings.Join(present, ", ")
}

// parseCoordinates splits an ipinfo "lat,lon" string. Malformed values are
// tolerated and yield zero coordinates.
func parseCoordinates(loc string) (float64, float64) {
	latStr, lonStr, ok := strings.Cut(loc, ",")
	if !ok {
		return 0, 0
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if errLat != nil || errLon != nil {
		return 0, 0
	}
	return lat, lon
}

// response models the ipinfo.io JSON payload.
type response struct {
	IP      string `json:"ip"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Loc     string `json:"loc"` // "lat,lon"
	Postal  string `json:"postal"`
	Bogon   bool   `json:"bogon"`
}
