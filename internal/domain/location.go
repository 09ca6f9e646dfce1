package domain

import "context"

// Location is a resolved geographic position for the running process, as
// reported by an IP geolocation provider.
type Location struct {
	// Address is a human-readable place string, e.g. "Copenhagen, Capital Region, DK".
	Address string

	// Country is the ISO 3166-1 alpha-2 code, e.g. "DK".
	Country string

	// Postal is the postal code when the provider reports one. Region-capable
	// intensity providers use it for fine-grained queries.
	Postal string

	// Lat and Lon are WGS-84 coordinates. Both zero when unreported.
	Lat float64
	Lon float64
}

// Geolocator resolves the approximate physical location of the running
// process. A failed resolution is an error; callers degrade to global
// defaults rather than propagating it.
type Geolocator interface {
	Locate(ctx context.Context) (Location, error)
}
