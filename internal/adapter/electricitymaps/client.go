// Package electricitymaps fetches live carbon intensity from the
// Electricity Maps free-tier API.
package electricitymaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
)

const providerName = "electricitymaps"

// Client implements domain.Fetcher using the Electricity Maps API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Electricity Maps client. The token is sent as the
// auth-token header on every request.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api-access.electricitymaps.com/free-tier/carbon-intensity/latest",
		logger:  logger,
	}
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return providerName }

// Suitable reports whether the client can serve the location. Electricity
// Maps covers zones worldwide, so any location is accepted.
func (c *Client) Suitable(domain.Location) bool { return true }

// Fetch retrieves the latest carbon intensity for the location. It queries
// by coordinates first and falls back to the country zone when the
// coordinate lookup fails. The API serves live readings only, so the
// forecast horizon is ignored and the result is never a prediction.
func (c *Client) Fetch(ctx context.Context, loc domain.Location, _ time.Duration) (domain.IntensityResult, error) {
	ci, err := c.intensityByCoordinates(ctx, loc.Lat, loc.Lon)
	if err != nil {
		c.logger.Debug("coordinate lookup failed, retrying by zone",
			"provider", providerName,
			"zone", loc.Country,
			"error", err)
		ci, err = c.intensityByZone(ctx, loc.Country)
		if err != nil {
			return domain.IntensityResult{}, err
		}
	}

	return domain.IntensityResult{
		CarbonIntensity: ci,
		Address:         loc.Address,
		Country:         loc.Country,
		IsFetched:       true,
		IsLocalized:     true,
	}, nil
}

func (c *Client) intensityByCoordinates(ctx context.Context, lat, lon float64) (float64, error) {
	params := url.Values{
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
	}
	return c.doRequest(ctx, c.baseURL+"?"+params.Encode())
}

func (c *Client) intensityByZone(ctx context.Context, zone string) (float64, error) {
	params := url.Values{
		"zone": {zone},
	}
	return c.doRequest(ctx, c.baseURL+"?"+params.Encode())
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, &domain.FetchError{Provider: providerName, Message: "create request", Err: err}
	}
	req.Header.Set("auth-token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &domain.FetchError{Provider: providerName, Message: "intensity request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, &domain.FetchError{
			Provider: providerName,
			Message:  fmt.Sprintf("API error: status %d: %s", resp.StatusCode, body),
		}
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, &domain.FetchError{Provider: providerName, Message: "decode response", Err: err}
	}

	return payload.CarbonIntensity, nil
}

// Electricity Maps API response types.

type response struct {
	Zone            string  `json:"zone"`
	CarbonIntensity float64 `json:"carbonIntensity"`
}
