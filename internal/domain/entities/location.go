// Package entities defines the domain values shared by the spatial index, the
// services and the HTTP layer. They have no dependencies on storage, HTTP or
// the geohash algorithms themselves.
//
// Go Learning Note: "internal/" directory
// Packages under internal/ cannot be imported by code outside this module. Go
// enforces this at the compiler level.
package entities

import "time"

// Location represents a geographic coordinate pair (latitude/longitude).
//
// Go Learning Note: Value Types vs Reference Types
// Location is a small, immutable data holder. NewLocation returns it by value
// (not a pointer), which is idiomatic for small structs. Value types are copied
// on assignment, which is fine here since Location is only 16 bytes.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// KeyedLocation is a location stored under a caller-chosen key, together with
// its geohash at the precision of the index that holds it.
//
// Stored values are never mutated: an update replaces the whole value, so a
// pointer handed out by the index stays consistent for its reader.
type KeyedLocation struct {
	Key       string    `json:"key"`
	Location  Location  `json:"location"`
	Geohash   string    `json:"geohash"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLocation creates a Location value from latitude and longitude.
func NewLocation(lat, lng float64) Location {
	return Location{
		Latitude:  lat,
		Longitude: lng,
	}
}

// NewKeyedLocation creates a KeyedLocation with the current timestamp.
// The geohash parameter should be pre-computed by the geo package.
func NewKeyedLocation(key string, lat, lng float64, geohash string) *KeyedLocation {
	return &KeyedLocation{
		Key:       key,
		Location:  NewLocation(lat, lng),
		Geohash:   geohash,
		UpdatedAt: time.Now(),
	}
}
