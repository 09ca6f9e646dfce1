// Package energidataservice fetches carbon intensity for Denmark from the
// Energi Data Service API.
package energidataservice

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
	providerName = "energidataservice"

	// The emission datasets differ only in capitalisation: CO2emis holds
	// 5-minute observations, CO2Emis holds the forecast.
	currentDataset   = "CO2emis"
	prognosisDataset = "CO2Emis"

	// Dataset timestamps are minute-precision UTC without a zone suffix.
	windowTimeFormat = "2006-01-02T15:04"
)

// Client implements domain.Fetcher using the Energi Data Service API. The
// API needs no authentication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Energi Data Service client.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.energidataservice.dk/dataset",
		logger:  logger,
	}
}

// NewClientForTesting creates a client pointed at a test server.
func NewClientForTesting(baseURL string, logger *slog.Logger) *Client {
	c := NewClient(5*time.Second, logger)
	c.baseURL = baseURL
	return c
}

// Name identifies the provider in logs and metrics.
func (c *Client) Name() string { return providerName }

// Suitable reports whether the client can serve the location. The API only
// covers Denmark.
func (c *Client) Suitable(loc domain.Location) bool { return loc.Country == "DK" }

// Fetch retrieves carbon intensity for Denmark. Without a horizon it
// averages the latest observation of the DK1 and DK2 price areas. A
// positive horizon queries the emission prognosis over the window from now
// until now plus the horizon and marks the result as a prediction.
func (c *Client) Fetch(ctx context.Context, loc domain.Location, horizon time.Duration) (domain.IntensityResult, error) {
	var (
		ci  float64
		err error
	)
	if horizon > 0 {
		ci, err = c.emissionPrognosis(ctx, horizon)
	} else {
		ci, err = c.currentEmission(ctx)
	}
	if err != nil {
		return domain.IntensityResult{}, err
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

// currentEmission averages the most recent observation across the two
// Danish price areas.
func (c *Client) currentEmission(ctx context.Context) (float64, error) {
	areas := []string{"DK1", "DK2"}

	var sum float64
	for _, area := range areas {
		params := url.Values{
			"filter": {fmt.Sprintf(`{"PriceArea":"%s"}`, area)},
		}
		records, err := c.fetchRecords(ctx, c.baseURL+"/"+currentDataset+"?"+params.Encode())
		if err != nil {
			return 0, err
		}
		if len(records) == 0 {
			return 0, &domain.FetchError{
				Provider: providerName,
				Message:  fmt.Sprintf("no emission records for price area %s", area),
			}
		}
		sum += records[0].CO2Emission
	}
	return sum / float64(len(areas)), nil
}

// emissionPrognosis averages the forecast records inside the window. The
// API serves 5-minute resolution, so the limit of 4 keeps the sample to
// the first 20 minutes of the window.
func (c *Client) emissionPrognosis(ctx context.Context, horizon time.Duration) (float64, error) {
	from, to := prognosisWindow(horizon)
	params := url.Values{
		"start": {from},
		"end":   {to},
		"limit": {"4"},
	}

	records, err := c.fetchRecords(ctx, c.baseURL+"/"+prognosisDataset+"?"+params.Encode())
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, &domain.FetchError{Provider: providerName, Message: "no emission prognosis records"}
	}

	var sum float64
	for _, r := range records {
		sum += r.CO2Emission
	}
	return sum / float64(len(records)), nil
}

func (c *Client) fetchRecords(ctx context.Context, fullURL string) ([]record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Provider: providerName, Message: "create request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Provider: providerName, Message: "emission request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.FetchError{
			Provider: providerName,
			Message:  fmt.Sprintf("API error: status %d: %s", resp.StatusCode, body),
		}
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &domain.FetchError{Provider: providerName, Message: "decode response", Err: err}
	}
	return payload.Records, nil
}

// prognosisWindow renders the interval from now until now plus the horizon,
// floored to the dataset's 5-minute boundaries.
func prognosisWindow(horizon time.Duration) (string, string) {
	from := domain.Now().UTC()
	to := from.Add(horizon)
	return from.Truncate(5 * time.Minute).Format(windowTimeFormat),
		to.Truncate(5 * time.Minute).Format(windowTimeFormat)
}

// Energi Data Service API response types.

type response struct {
	Records []record `json:"records"`
}

type record struct {
	Minutes5UTC string  `json:"Minutes5UTC"`
	PriceArea   string  `json:"PriceArea"`
	CO2Emission float64 `json:"CO2Emission"`
}
