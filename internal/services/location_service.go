package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"geocell/internal/domain/entities"
	"geocell/internal/geo"
	"geocell/internal/metrics"
	"geocell/internal/repository"
)

var ErrLocationNotFound = errors.New("location not found")

// LocationService is the single entry point for keyed locations. It enforces
// the configured query limits, records metrics and logs changes; the index
// behind it does the storage and the geometry.
type LocationService struct {
	index       repository.LocationIndex
	maxRadiusKm float64
	logger      *slog.Logger
}

func NewLocationService(index repository.LocationIndex, maxRadiusKm float64, logger *slog.Logger) *LocationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationService{
		index:       index,
		maxRadiusKm: maxRadiusKm,
		logger:      logger.With("component", "location_service"),
	}
}

// SetLocation stores or replaces the location for key.
func (s *LocationService) SetLocation(ctx context.Context, key string, lat, lng float64) (*entities.KeyedLocation, error) {
	location, err := s.index.UpdateLocation(key, lat, lng)
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("set", "error").Inc()
		return nil, err
	}
	metrics.IndexOperationsTotal.WithLabelValues("set", "ok").Inc()
	metrics.IndexedLocations.Set(float64(s.index.Count()))

	s.logger.DebugContext(ctx, "location stored", "key", key, "geohash", location.Geohash)
	return location, nil
}

// GetLocation returns the location stored for key, or ErrLocationNotFound.
func (s *LocationService) GetLocation(ctx context.Context, key string) (*entities.KeyedLocation, error) {
	if err := geo.ValidateKey(key); err != nil {
		return nil, err
	}
	location, err := s.index.GetLocation(key)
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("get", "error").Inc()
		return nil, err
	}
	if location == nil {
		metrics.IndexOperationsTotal.WithLabelValues("get", "miss").Inc()
		return nil, fmt.Errorf("%w: %q", ErrLocationNotFound, key)
	}
	metrics.IndexOperationsTotal.WithLabelValues("get", "ok").Inc()
	return location, nil
}

// RemoveLocation deletes the location stored for key, or returns
// ErrLocationNotFound if there is none.
func (s *LocationService) RemoveLocation(ctx context.Context, key string) error {
	if err := geo.ValidateKey(key); err != nil {
		return err
	}
	removed, err := s.index.RemoveLocation(key)
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("remove", "error").Inc()
		return err
	}
	if !removed {
		metrics.IndexOperationsTotal.WithLabelValues("remove", "miss").Inc()
		return fmt.Errorf("%w: %q", ErrLocationNotFound, key)
	}
	metrics.IndexOperationsTotal.WithLabelValues("remove", "ok").Inc()
	metrics.IndexedLocations.Set(float64(s.index.Count()))

	s.logger.DebugContext(ctx, "location removed", "key", key)
	return nil
}

// FindNearby returns the stored locations within radiusKm of (lat, lng),
// nearest first. Radii above the configured maximum are rejected as invalid.
func (s *LocationService) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]geo.LocationWithDistance, error) {
	if radiusKm > s.maxRadiusKm {
		return nil, fmt.Errorf("%w: %v km exceeds the maximum of %v km", geo.ErrInvalidRadius, radiusKm, s.maxRadiusKm)
	}
	nearby, err := s.index.FindNearby(ctx, lat, lng, radiusKm)
	if err != nil {
		metrics.IndexOperationsTotal.WithLabelValues("query", "error").Inc()
		return nil, err
	}
	metrics.IndexOperationsTotal.WithLabelValues("query", "ok").Inc()
	metrics.QueryResults.Observe(float64(len(nearby)))

	s.logger.DebugContext(ctx, "radius query", "lat", lat, "lng", lng, "radius_km", radiusKm, "results", len(nearby))
	return nearby, nil
}

// Count returns the number of stored locations.
func (s *LocationService) Count() int {
	return s.index.Count()
}
