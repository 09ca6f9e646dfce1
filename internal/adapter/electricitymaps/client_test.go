package electricitymaps

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/carbon-intensity-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func copenhagen() domain.Location {
	return domain.Location{
		Address: "Copenhagen, Capital Region, DK",
		Country: "DK",
		Postal:  "1050",
		Lat:     55.6761,
		Lon:     12.5683,
	}
}

func TestClient_Fetch_ByCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testToken, r.Header.Get("auth-token"))
		assert.Equal(t, "55.6761", r.URL.Query().Get("lat"))
		assert.Equal(t, "12.5683", r.URL.Query().Get("lon"))
		assert.Empty(t, r.URL.Query().Get("zone"))

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Zone: "DK-DK2", CarbonIntensity: 111.0}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.Fetch(context.Background(), copenhagen(), 0)
	require.NoError(t, err)

	assert.Equal(t, 111.0, result.CarbonIntensity)
	assert.Equal(t, "Copenhagen, Capital Region, DK", result.Address)
	assert.Equal(t, "DK", result.Country)
	assert.True(t, result.IsFetched)
	assert.True(t, result.IsLocalized)
	assert.False(t, result.IsPrediction)
	assert.Nil(t, result.TimeDuration)
}

func TestClient_Fetch_FallsBackToZone(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("zone") == "" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"zone not found for coordinates"}`))
			return
		}
		assert.Equal(t, "DK", r.URL.Query().Get("zone"))
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Zone: "DK", CarbonIntensity: 123.4}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.Fetch(context.Background(), copenhagen(), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 123.4, result.CarbonIntensity)
	assert.True(t, result.IsFetched)
	assert.True(t, result.IsLocalized)
}

func TestClient_Fetch_BothQueriesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Fetch(context.Background(), copenhagen(), 0)
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "electricitymaps", fetchErr.Provider)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_Fetch_IgnoresHorizon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotContains(t, r.URL.RawQuery, "horizon")
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{CarbonIntensity: 99.9}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.Fetch(context.Background(), copenhagen(), time.Hour)
	require.NoError(t, err)

	assert.False(t, result.IsPrediction)
	assert.Nil(t, result.TimeDuration)
}

func TestClient_Fetch_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Fetch(context.Background(), copenhagen(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.Fetch(context.Background(), copenhagen(), 0)
	require.Error(t, err)
}

func TestClient_Suitable_AnyLocation(t *testing.T) {
	c := testClient("http://unused")
	assert.True(t, c.Suitable(copenhagen()))
	assert.True(t, c.Suitable(domain.Location{Country: "Unknown"}))
	assert.True(t, c.Suitable(domain.Location{}))
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, "electricitymaps", testClient("http://unused").Name())
}
