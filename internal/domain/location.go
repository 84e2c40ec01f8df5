package domain

import "context"

// GeoPoint is a latitude/longitude pair as supplied by callers.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is a stored, deduplicated coordinate pair. Locations are looked up
// by exact value before insert and never updated in place.
// swagger:model Location
type Location struct {
	ID  int64   `json:"-"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationRepository defines storage operations for locations.
type LocationRepository interface {
	// GetByCoordinates returns the location with exactly these coordinates,
	// or ErrNotFound.
	GetByCoordinates(ctx context.Context, lat, lon float64) (*Location, error)
	Create(ctx context.Context, loc *Location) error
}
