// Package carbonintensitygb fetches carbon intensity for Great Britain from
// the National Grid ESO Carbon Intensity API.
package carbonintensitygb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
)

const (
	providerName = "carbonintensitygb"

	// The API addresses half-hour settlement periods by minute-precision
	// UTC timestamps with a literal Z suffix.
	windowTimeFormat = "2006-01-02T15:04Z"
)

// Client implements domain.Fetcher using the Carbon Intensity API for GB.
// The API needs no authentication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a GB carbon intensity client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.carbonintensity.org.uk",
		logger:  logger,
	}
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return providerName }

// Suitable reports whether the client can serve the location. The API only
// covers Great Britain.
func (c *Client) Suitable(loc domain.Location) bool { return loc.Country == "GB" }

// Fetch retrieves carbon intensity for the location. When the location
// carries a postcode it queries the regional endpoint first and falls back
// to the national figure if the regional lookup fails. A positive horizon
// requests the forecast window from now until now plus the horizon and
// marks the result as a prediction.
func (c *Client) Fetch(ctx context.Context, loc domain.Location, horizon time.Duration) (domain.IntensityResult, error) {
	var (
		ci  float64
		err error
	)

	if loc.Postal != "" {
		ci, err = c.regionalIntensity(ctx, loc.Postal, horizon)
		if err != nil {
			c.logger.Debug("regional lookup failed, falling back to national intensity",
				"provider", providerName,
				"postcode", loc.Postal,
				"error", err)
		}
	} else {
		err = fmt.Errorf("no postcode for location")
	}

	if err != nil {
		ci, err = c.nationalIntensity(ctx, horizon)
		if err != nil {
			return domain.IntensityResult{}, err
		}
	}

	result := domain.IntensityResult{
		CarbonIntensity: ci,
		Address:         loc.Address,
		Country:         loc.Country,
		IsFetched:       true,
		IsLocalized:     true,
	}
	if horizon > 0 {
		result.IsPrediction = true
		result.TimeDuration = &horizon
	}
	return result, nil
}

// regionalIntensity averages the forecast intensity across the settlement
// periods returned for the postcode's distribution region.
func (c *Client) regionalIntensity(ctx context.Context, postcode string, horizon time.Duration) (float64, error) {
	u := c.baseURL + "/regional"
	if horizon > 0 {
		from, to := forecastWindow(horizon)
		u += "/intensity/" + from + "/" + to
	}
	u += "/postcode/" + url.PathEscape(postcode)

	body, err := c.doRequest(ctx, u)
	if err != nil {
		return 0, err
	}

	var payload regionalResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, &domain.FetchError{Provider: providerName, Message: "decode response", Err: err}
	}

	reg, err := payload.region()
	if err != nil {
		return 0, err
	}
	if len(reg.Data) == 0 {
		return 0, &domain.FetchError{
			Provider: providerName,
			Message:  fmt.Sprintf("no intensity data for postcode %s", postcode),
		}
	}

	var sum float64
	for _, r := range reg.Data {
		sum += r.Intensity.Forecast
	}
	return sum / float64(len(reg.Data)), nil
}

// nationalIntensity returns the forecast intensity of the first settlement
// period for all of GB.
func (c *Client) nationalIntensity(ctx context.Context, horizon time.Duration) (float64, error) {
	u := c.baseURL + "/intensity"
	if horizon > 0 {
		from, to := forecastWindow(horizon)
		u += "/" + from + "/" + to
	}

	body, err := c.doRequest(ctx, u)
	if err != nil {
		return 0, err
	}

	var payload nationalResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, &domain.FetchError{Provider: providerName, Message: "decode response", Err: err}
	}
	if len(payload.Data) == 0 {
		return 0, &domain.FetchError{Provider: providerName, Message: "no national intensity data"}
	}

	return payload.Data[0].Intensity.Forecast, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Provider: providerName, Message: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Provider: providerName, Message: "intensity request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Provider: providerName, Message: "read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{
			Provider: providerName,
			Message:  fmt.Sprintf("API error: status %d: %s", resp.StatusCode, body),
		}
	}
	return body, nil
}

// forecastWindow renders the interval from now until now plus the horizon
// in the API's minute-precision UTC format.
func forecastWindow(horizon time.Duration) (string, string) {
	from := domain.Now().UTC()
	to := from.Add(horizon)
	return from.Format(windowTimeFormat), to.Format(windowTimeFormat)
}

// Carbon Intensity API response types.

type regionalResponse struct {
	// Data is a list of regions for current queries and a single region
	// object for windowed queries.
	Data json.RawMessage `json:"data"`
}

// region decodes the polymorphic data field, taking the first region when
// the API returns a list.
func (r regionalResponse) region() (regionData, error) {
	var regions []regionData
	if err := json.Unmarshal(r.Data, &regions); err == nil {
		if len(regions) == 0 {
			return regionData{}, &domain.FetchError{Provider: providerName, Message: "no regional intensity data"}
		}
		return regions[0], nil
	}

	var single regionData
	if err := json.Unmarshal(r.Data, &single); err != nil {
		return regionData{}, &domain.FetchError{Provider: providerName, Message: "decode regional data", Err: err}
	}
	return single, nil
}

type regionData struct {
	RegionID  int       `json:"regionid"`
	ShortName string    `json:"shortname"`
	Postcode  string    `json:"postcode"`
	Data      []reading `json:"data"`
}

type nationalResponse struct {
	Data []reading `json:"data"`
}

type reading struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Intensity intensity `json:"intensity"`
}

type intensity struct {
	Forecast float64 `json:"forecast"`
	Index    string  `json:"index"`
}
