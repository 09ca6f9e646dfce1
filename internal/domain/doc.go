// Package domain models carbon intensity resolution data.
//
// # Carbon Intensity
//
// Carbon intensity is expressed in grams of CO2-equivalent emitted per
// kilowatt-hour of electricity generated (gCO2eq/kWh) for a grid region at
// a point or window in time. Values are always non-negative. Providers
// report either a current reading or a forecast averaged over a future
// window.
//
// # Resolution Tiers
//
// Every resolution produces a value from exactly one of three tiers:
//
//	live    a provider API call for the detected location succeeded
//	country the static per-country yearly average from the reference table
//	world   the global average constant (final fallback)
//
// The tier determines the provenance flags on [IntensityResult]:
//
//	live    IsFetched=true  IsLocalized=true
//	country IsFetched=false IsLocalized=true
//	world   IsFetched=false IsLocalized=false
//
// IsFetched=true with IsLocalized=false cannot be produced by a conforming
// provider; message rendering maps it to the global-default wording.
//
// # Location Conventions
//
// Country codes are ISO 3166-1 alpha-2 ("DK", "GB", "US"). Addresses are
// human-readable "City, Region, CC" strings as reported by the IP
// geolocation provider. When no location could be resolved, both address
// and country render as "Unknown" in user-facing messages. Coordinates are
// WGS-84 and both zero when unreported.
//
// # Forecast Horizons
//
// A horizon is the length of the future window a forecast covers, carried
// as a [time.Duration]. A zero horizon passed to a fetcher requests a
// current reading. Providers without forecast capability ignore the horizon
// entirely and return a current reading with IsPrediction=false.
//
// # World Average
//
// The global fallback value and its reference year live in
// [WorldAverageIntensity] and [WorldAverageIntensityYear]. They are
// process-wide constants, not runtime inputs.
package domain
