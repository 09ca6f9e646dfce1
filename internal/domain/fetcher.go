package domain

import (
	"context"
	"fmt"
	"time"
)

// Fetcher retrieves live carbon intensity from an external provider API.
// Implementations hold no per-call state and are safe for repeated calls;
// thread safety is the implementation's documented responsibility.
type Fetcher interface {
	// Suitable reports whether this provider can serve the given location.
	// Pure predicate: it must not perform I/O.
	Suitable(loc Location) bool

	// Fetch returns the carbon intensity at loc. A non-zero horizon requests
	// a forecast averaged over [now, now+horizon]; providers without forecast
	// capability ignore it and return a current reading with
	// IsPrediction=false. Successful results have IsFetched and IsLocalized
	// set. Any network, parse, or upstream-data problem is returned as a
	// *FetchError, never as a raw transport error. No retries.
	Fetch(ctx context.Context, loc Location, horizon time.Duration) (IntensityResult, error)
}

// CountryAverages looks up the static yearly average carbon intensity for a
// country. A missing country and an unreadable table are both lookup errors;
// callers do not distinguish them.
type CountryAverages interface {
	Lookup(countryCode string) (float64, error)
}

// FetchError reports a failed provider fetch. It is the only error type a
// Fetcher returns.
type FetchError struct {
	Provider string // provider name, e.g. "electricitymaps"
	Message  string
	Err      error // underlying cause, may be nil
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }
