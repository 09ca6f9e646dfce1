//go:build ipinfo

package ipinfo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real ipinfo.io API. An IPINFO_TOKEN env var is optional;
// without one the anonymous rate-limited tier is used.
// Run with: go test -tags=ipinfo ./internal/adapter/ipinfo/ -v -count=1

func TestSmoke_Locate(t *testing.T) {
	c := &Client{
		token:      os.Getenv("IPINFO_TOKEN"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://ipinfo.io",
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	loc, err := c.Locate(context.Background())
	require.NoError(t, err)

	assert.Len(t, loc.Country, 2, "country should be an alpha-2 code")
	assert.NotEmpty(t, loc.Address)
}
