// Package repository declares the storage contracts the services depend on.
// Implementations live with their storage: geo.SpatialIndex satisfies
// LocationIndex on top of an in-memory go-memdb database.
package repository

import (
	"context"

	"geocell/internal/domain/entities"
	"geocell/internal/geo"
)

// LocationIndex stores keyed locations and answers radius queries.
//
// Go Learning Note: Accept Interfaces, Return Structs
// The service takes this interface rather than *geo.SpatialIndex, so tests
// can substitute a stub and a future persistent store only has to provide
// these five methods. Implementations return (nil, nil) from GetLocation for
// an unknown key; turning that into a "not found" error is the caller's job.
type LocationIndex interface {
	UpdateLocation(key string, lat, lng float64) (*entities.KeyedLocation, error)
	GetLocation(key string) (*entities.KeyedLocation, error)
	RemoveLocation(key string) (bool, error)
	FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]geo.LocationWithDistance, error)
	Count() int
}

var _ LocationIndex = (*geo.SpatialIndex)(nil)
