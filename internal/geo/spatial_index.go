package geo

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/hashicorp/go-memdb"

	"geocell/internal/domain/entities"
)

const (
	locationsTable = "locations"
	idIndex        = "id"
	geohashIndex   = "geohash"
)

// LocationWithDistance pairs a stored location with its distance in
// kilometers from a search point.
type LocationWithDistance struct {
	Location *entities.KeyedLocation `json:"location"`
	Distance float64                 `json:"distance_km"`
}

// SpatialIndex is an in-memory store of keyed locations that answers "what is
// within r of this point" queries. Every location is stored with its geohash,
// and a radius query scans only the geohash ranges planned by GeohashQueries
// before filtering the candidates by exact haversine distance.
//
// Go Learning Note: hashicorp/go-memdb
// memdb is an in-memory database built on immutable radix trees. Readers work
// on a snapshot and never block writers; write transactions are serialised
// by memdb itself, so the index needs no mutex of its own. Each table declares
// its indexes up front: "id" is the unique primary key and "geohash" is a
// secondary index kept in sorted order, which is what makes range scans cheap.
//
// size is only changed while a write transaction is open, so it moves in the
// same order as the commits.
type SpatialIndex struct {
	precision int
	db        *memdb.MemDB
	size      atomic.Int64
}

func locationSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			locationsTable: {
				Name: locationsTable,
				Indexes: map[string]*memdb.IndexSchema{
					idIndex: {
						Name:    idIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
					geohashIndex: {
						Name:    geohashIndex,
						Indexer: &memdb.StringFieldIndex{Field: "Geohash"},
					},
				},
			},
		},
	}
}

// NewSpatialIndex creates an empty index that hashes locations at the given
// precision. Queries can never be finer than that precision.
func NewSpatialIndex(precision int) (*SpatialIndex, error) {
	if err := ValidatePrecision(precision); err != nil {
		return nil, err
	}
	db, err := memdb.NewMemDB(locationSchema())
	if err != nil {
		return nil, fmt.Errorf("create location store: %w", err)
	}
	return &SpatialIndex{precision: precision, db: db}, nil
}

// Precision returns the geohash length used for stored locations.
func (s *SpatialIndex) Precision() int {
	return s.precision
}

// UpdateLocation stores the location for key, replacing any previous one.
func (s *SpatialIndex) UpdateLocation(key string, lat, lng float64) (*entities.KeyedLocation, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ValidateLocation(lat, lng); err != nil {
		return nil, err
	}

	location := entities.NewKeyedLocation(key, lat, lng, encode(lat, lng, s.precision))

	txn := s.db.Txn(true)
	defer txn.Abort()
	existing, err := txn.First(locationsTable, idIndex, key)
	if err != nil {
		return nil, fmt.Errorf("lookup location %q: %w", key, err)
	}
	if err := txn.Insert(locationsTable, location); err != nil {
		return nil, fmt.Errorf("store location %q: %w", key, err)
	}
	if existing == nil {
		s.size.Add(1)
	}
	txn.Commit()

	return location, nil
}

// RemoveLocation deletes the location stored for key. It reports whether a
// location was present.
func (s *SpatialIndex) RemoveLocation(key string) (bool, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(locationsTable, idIndex, key)
	if err != nil {
		return false, fmt.Errorf("lookup location %q: %w", key, err)
	}
	if existing == nil {
		return false, nil
	}
	if err := txn.Delete(locationsTable, existing); err != nil {
		return false, fmt.Errorf("remove location %q: %w", key, err)
	}
	s.size.Add(-1)
	txn.Commit()
	return true, nil
}

// GetLocation returns the location stored for key, or nil if there is none.
func (s *SpatialIndex) GetLocation(key string) (*entities.KeyedLocation, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(locationsTable, idIndex, key)
	if err != nil {
		return nil, fmt.Errorf("lookup location %q: %w", key, err)
	}
	if raw == nil {
		return nil, nil
	}
	return raw.(*entities.KeyedLocation), nil
}

// FindNearby returns every stored location within radiusKm of (lat, lng),
// nearest first.
//
// Strategy: Coarse filter → Fine filter
//  1. Coarse: plan the geohash ranges that cover the circle and walk each
//     range on the sorted geohash index. Near the poles a circle can span
//     every longitude, which the planned ranges do not cover, so it scans
//     the whole index instead.
//  2. Fine: compute the exact haversine distance of each candidate and keep
//     those within the radius.
//  3. Sort results by distance.
func (s *SpatialIndex) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]LocationWithDistance, error) {
	if err := ValidateLocation(lat, lng); err != nil {
		return nil, err
	}
	radius := radiusKm * 1000
	if err := ValidateRadius(radius); err != nil {
		return nil, err
	}

	center := Point{Lat: lat, Lng: lng}
	var queries []QueryRange
	if SpansAllLongitudes(lat, radius) {
		queries = []QueryRange{{Start: base32[:1], End: rangeEnd}}
	} else {
		_, queries = circleQueries(lat, lng, radius, s.precision*BitsPerChar)
	}

	txn := s.db.Txn(false)
	defer txn.Abort()

	var results []LocationWithDistance
	seen := make(map[string]struct{})
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		it, err := txn.LowerBound(locationsTable, geohashIndex, q.Start)
		if err != nil {
			return nil, fmt.Errorf("scan range %s..%s: %w", q.Start, q.End, err)
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			loc := raw.(*entities.KeyedLocation)
			if loc.Geohash >= q.End {
				break
			}
			if _, dup := seen[loc.Key]; dup {
				continue
			}
			seen[loc.Key] = struct{}{}

			d := haversine(center, Point{Lat: loc.Location.Latitude, Lng: loc.Location.Longitude})
			if d <= radiusKm {
				results = append(results, LocationWithDistance{Location: loc, Distance: d})
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance == results[j].Distance {
			return results[i].Location.Key < results[j].Location.Key
		}
		return results[i].Distance < results[j].Distance
	})
	return results, nil
}

// FindNearbyKeys returns just the keys within range, sorted by distance.
func (s *SpatialIndex) FindNearbyKeys(ctx context.Context, lat, lng, radiusKm float64) ([]string, error) {
	nearby, err := s.FindNearby(ctx, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(nearby))
	for i, n := range nearby {
		keys[i] = n.Location.Key
	}
	return keys, nil
}

// Count returns the number of stored locations.
func (s *SpatialIndex) Count() int {
	return int(s.size.Load())
}
