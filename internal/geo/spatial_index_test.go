package geo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
)

func newTestIndex(t testing.TB, precision int) *SpatialIndex {
	t.Helper()
	index, err := NewSpatialIndex(precision)
	if err != nil {
		t.Fatalf("NewSpatialIndex(%d) error = %v", precision, err)
	}
	return index
}

func TestNewSpatialIndexInvalidPrecision(t *testing.T) {
	for _, p := range []int{0, MaxPrecision + 1} {
		if _, err := NewSpatialIndex(p); !errors.Is(err, ErrInvalidPrecision) {
			t.Errorf("NewSpatialIndex(%d) error = %v, want ErrInvalidPrecision", p, err)
		}
	}
}

func TestSpatialIndex_UpdateLocation(t *testing.T) {
	index := newTestIndex(t, 6)

	loc, err := index.UpdateLocation("driver-1", 37.7749, -122.4194)
	if err != nil {
		t.Fatalf("UpdateLocation() error = %v", err)
	}

	if loc.Key != "driver-1" {
		t.Errorf("Expected driver-1, got %s", loc.Key)
	}
	if loc.Location.Latitude != 37.7749 {
		t.Errorf("Expected lat 37.7749, got %f", loc.Location.Latitude)
	}
	if loc.Location.Longitude != -122.4194 {
		t.Errorf("Expected lng -122.4194, got %f", loc.Location.Longitude)
	}
	if loc.Geohash != "9q8yyk" {
		t.Errorf("Expected geohash 9q8yyk, got %s", loc.Geohash)
	}
	if loc.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set")
	}
}

func TestSpatialIndex_UpdateLocationInvalidInput(t *testing.T) {
	index := newTestIndex(t, 6)

	if _, err := index.UpdateLocation("a/b", 0, 0); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("UpdateLocation() error = %v, want ErrInvalidKey", err)
	}
	if _, err := index.UpdateLocation("", 0, 0); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("UpdateLocation() error = %v, want ErrInvalidKey", err)
	}
	if _, err := index.UpdateLocation("driver-1", 95, 0); !errors.Is(err, ErrInvalidLocation) {
		t.Errorf("UpdateLocation() error = %v, want ErrInvalidLocation", err)
	}
	if index.Count() != 0 {
		t.Errorf("Expected nothing stored, got %d", index.Count())
	}
}

func TestSpatialIndex_RemoveLocation(t *testing.T) {
	index := newTestIndex(t, 6)

	index.UpdateLocation("driver-1", 37.7749, -122.4194)
	if index.Count() != 1 {
		t.Errorf("Expected count 1, got %d", index.Count())
	}

	removed, err := index.RemoveLocation("driver-1")
	if err != nil {
		t.Fatalf("RemoveLocation() error = %v", err)
	}
	if !removed {
		t.Error("Expected RemoveLocation to report a removal")
	}
	if index.Count() != 0 {
		t.Errorf("Expected count 0 after removal, got %d", index.Count())
	}

	loc, err := index.GetLocation("driver-1")
	if err != nil {
		t.Fatalf("GetLocation() error = %v", err)
	}
	if loc != nil {
		t.Error("Expected nil location after removal")
	}

	removed, err = index.RemoveLocation("driver-1")
	if err != nil {
		t.Fatalf("RemoveLocation() error = %v", err)
	}
	if removed {
		t.Error("Expected a second removal to report nothing removed")
	}
}

func TestSpatialIndex_GetLocation(t *testing.T) {
	index := newTestIndex(t, 6)

	// Non-existent key
	loc, err := index.GetLocation("driver-nonexistent")
	if err != nil {
		t.Fatalf("GetLocation() error = %v", err)
	}
	if loc != nil {
		t.Error("Expected nil for non-existent key")
	}

	// Add and retrieve
	index.UpdateLocation("driver-1", 37.7749, -122.4194)
	loc, err = index.GetLocation("driver-1")
	if err != nil {
		t.Fatalf("GetLocation() error = %v", err)
	}
	if loc == nil {
		t.Fatal("Expected location for driver-1")
	}
	if loc.Key != "driver-1" {
		t.Errorf("Expected driver-1, got %s", loc.Key)
	}
}

func TestSpatialIndex_FindNearby(t *testing.T) {
	index := newTestIndex(t, 6)
	ctx := context.Background()

	// Central point: 37.7749, -122.4194 (San Francisco)

	// Driver 1: same location
	index.UpdateLocation("driver-1", 37.7749, -122.4194)

	// Driver 2: about 0.45km north
	index.UpdateLocation("driver-2", 37.7789, -122.4194)

	// Driver 3: about 1km north
	index.UpdateLocation("driver-3", 37.7839, -122.4194)

	// Driver 4: about 55km north, outside a 5km radius
	index.UpdateLocation("driver-4", 38.2749, -122.4194)

	nearby, err := index.FindNearby(ctx, 37.7749, -122.4194, 5.0)
	if err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}

	if len(nearby) != 3 {
		t.Fatalf("Expected 3 nearby locations, got %d", len(nearby))
	}

	want := []string{"driver-1", "driver-2", "driver-3"}
	for i, key := range want {
		if nearby[i].Location.Key != key {
			t.Errorf("nearby[%d] = %s, want %s", i, nearby[i].Location.Key, key)
		}
	}

	for i := 1; i < len(nearby); i++ {
		if nearby[i].Distance < nearby[i-1].Distance {
			t.Error("Results should be sorted by distance")
		}
	}
	if nearby[0].Distance != 0 {
		t.Errorf("Expected distance 0 for driver-1, got %v", nearby[0].Distance)
	}
}

func TestSpatialIndex_FindNearbyInvalidInput(t *testing.T) {
	index := newTestIndex(t, 6)
	ctx := context.Background()

	if _, err := index.FindNearby(ctx, 91, 0, 1); !errors.Is(err, ErrInvalidLocation) {
		t.Errorf("FindNearby() error = %v, want ErrInvalidLocation", err)
	}
	if _, err := index.FindNearby(ctx, 0, 0, -1); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("FindNearby() error = %v, want ErrInvalidRadius", err)
	}
}

func TestSpatialIndex_FindNearbyCancelled(t *testing.T) {
	index := newTestIndex(t, 6)
	index.UpdateLocation("driver-1", 37.7749, -122.4194)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := index.FindNearby(ctx, 37.7749, -122.4194, 5); !errors.Is(err, context.Canceled) {
		t.Errorf("FindNearby() error = %v, want context.Canceled", err)
	}
}

func TestSpatialIndex_FindNearbyAcrossTheAntimeridian(t *testing.T) {
	index := newTestIndex(t, 8)
	ctx := context.Background()

	index.UpdateLocation("fiji-east", -17.0, 179.99)
	index.UpdateLocation("fiji-west", -17.0, -179.99)

	keys, err := index.FindNearbyKeys(ctx, -17.0, 179.995, 5)
	if err != nil {
		t.Fatalf("FindNearbyKeys() error = %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Expected both sides of the antimeridian, got %v", keys)
	}
}

// Every location comfortably inside the circle must be found, and nothing
// outside it may be returned, whatever the index precision.
func TestSpatialIndex_FindNearbyMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	ctx := context.Background()

	scenarios := []struct {
		name   string
		center Point
		point  func() Point
		radii  []float64
	}{
		{
			name:   "paris",
			center: Point{Lat: 48.8566, Lng: 2.3522},
			point: func() Point {
				return Point{Lat: 48.8566 + rng.Float64()*0.6 - 0.3, Lng: 2.3522 + rng.Float64()*0.9 - 0.45}
			},
			radii: []float64{0.5, 3, 15},
		},
		{
			name:   "north pole",
			center: Point{Lat: 89.9, Lng: 0},
			point: func() Point {
				return Point{Lat: 90 - rng.Float64()*0.6, Lng: rng.Float64()*360 - 180}
			},
			radii: []float64{1, 5, 10, 20, 50},
		},
		{
			name:   "south pole",
			center: Point{Lat: -89.9, Lng: 30},
			point: func() Point {
				return Point{Lat: -90 + rng.Float64()*0.6, Lng: rng.Float64()*360 - 180}
			},
			radii: []float64{1, 5, 10, 20, 50},
		},
	}

	for _, sc := range scenarios {
		for _, precision := range []int{4, 6, 10} {
			t.Run(fmt.Sprintf("%s precision %d", sc.name, precision), func(t *testing.T) {
				index := newTestIndex(t, precision)

				points := make(map[string]Point)
				for i := 0; i < 2000; i++ {
					p := sc.point()
					key := fmt.Sprintf("loc-%d", i)
					points[key] = p
					if _, err := index.UpdateLocation(key, p.Lat, p.Lng); err != nil {
						t.Fatalf("UpdateLocation() error = %v", err)
					}
				}

				for _, radiusKm := range sc.radii {
					nearby, err := index.FindNearby(ctx, sc.center.Lat, sc.center.Lng, radiusKm)
					if err != nil {
						t.Fatalf("FindNearby() error = %v", err)
					}

					found := make(map[string]bool, len(nearby))
					for _, n := range nearby {
						if n.Distance > radiusKm {
							t.Errorf("%s at %.4f km returned for radius %v", n.Location.Key, n.Distance, radiusKm)
						}
						found[n.Location.Key] = true
					}
					for key, p := range points {
						if d := haversine(sc.center, p); d <= 0.9*radiusKm && !found[key] {
							t.Errorf("%s at %.4f km missing for radius %v", key, d, radiusKm)
						}
					}
				}
			})
		}
	}
}

func TestSpatialIndex_FindNearbyAcrossThePole(t *testing.T) {
	index := newTestIndex(t, DefaultPrecision)
	ctx := context.Background()

	// on the far side of the pole, about 16.7 km from the centre
	index.UpdateLocation("far-side", 89.95, 180)
	index.UpdateLocation("near-side", 89.95, 0)
	index.UpdateLocation("oslo", 59.91, 10.75)

	for _, radiusKm := range []float64{20, 50} {
		keys, err := index.FindNearbyKeys(ctx, 89.9, 0, radiusKm)
		if err != nil {
			t.Fatalf("FindNearbyKeys() error = %v", err)
		}
		if strings.Join(keys, ",") != "near-side,far-side" {
			t.Errorf("FindNearbyKeys(radius %v) = %v, want [near-side far-side]", radiusKm, keys)
		}
	}

	// The box stops short of the pole here but still wraps every longitude.
	index.UpdateLocation("across", 89.95, -30)
	keys, err := index.FindNearbyKeys(ctx, 89.9, 10, 10)
	if err != nil {
		t.Fatalf("FindNearbyKeys() error = %v", err)
	}
	if strings.Join(keys, ",") != "near-side,across" {
		t.Errorf("FindNearbyKeys(radius 10) = %v, want [near-side across]", keys)
	}
}

func TestSpatialIndex_FindNearbyKeys(t *testing.T) {
	index := newTestIndex(t, 6)
	ctx := context.Background()

	index.UpdateLocation("driver-1", 37.7749, -122.4194)
	index.UpdateLocation("driver-2", 37.7759, -122.4184)

	keys, err := index.FindNearbyKeys(ctx, 37.7749, -122.4194, 5.0)
	if err != nil {
		t.Fatalf("FindNearbyKeys() error = %v", err)
	}

	if strings.Join(keys, ",") != "driver-1,driver-2" {
		t.Errorf("Expected [driver-1 driver-2], got %v", keys)
	}
}

func TestSpatialIndex_UpdateLocationMovesKey(t *testing.T) {
	index := newTestIndex(t, 6)
	ctx := context.Background()

	index.UpdateLocation("driver-1", 37.7749, -122.4194)
	before, _ := index.GetLocation("driver-1")

	// Move to a different location (different geohash cell)
	index.UpdateLocation("driver-1", 40.7128, -74.0060)
	after, _ := index.GetLocation("driver-1")

	if before.Geohash == after.Geohash {
		t.Error("Geohash should change when the location moves significantly")
	}
	if index.Count() != 1 {
		t.Errorf("Expected count 1, got %d", index.Count())
	}

	// The old cell no longer answers for the key.
	keys, _ := index.FindNearbyKeys(ctx, 37.7749, -122.4194, 5.0)
	if len(keys) != 0 {
		t.Errorf("Expected no keys near the old location, got %v", keys)
	}
}

func TestSpatialIndex_Count(t *testing.T) {
	index := newTestIndex(t, 6)

	if index.Count() != 0 {
		t.Errorf("Expected count 0, got %d", index.Count())
	}

	index.UpdateLocation("driver-1", 37.7749, -122.4194)
	index.UpdateLocation("driver-2", 37.7759, -122.4184)
	index.UpdateLocation("driver-3", 37.7769, -122.4174)

	if index.Count() != 3 {
		t.Errorf("Expected count 3, got %d", index.Count())
	}

	index.RemoveLocation("driver-2")

	if index.Count() != 2 {
		t.Errorf("Expected count 2, got %d", index.Count())
	}
}

func TestSpatialIndex_CountTracksReplacements(t *testing.T) {
	index := newTestIndex(t, 6)

	index.UpdateLocation("driver-1", 37.7749, -122.4194)
	index.UpdateLocation("driver-1", 37.7759, -122.4184)
	index.UpdateLocation("driver-1", 40.7128, -74.0060)
	if index.Count() != 1 {
		t.Errorf("Expected count 1 after replacing a key, got %d", index.Count())
	}

	// rejected writes and removals of unknown keys leave the count alone
	index.UpdateLocation("driver-2", 120, 0)
	index.RemoveLocation("driver-unknown")
	if index.Count() != 1 {
		t.Errorf("Expected count 1, got %d", index.Count())
	}

	index.RemoveLocation("driver-1")
	index.RemoveLocation("driver-1")
	if index.Count() != 0 {
		t.Errorf("Expected count 0, got %d", index.Count())
	}
}

func BenchmarkFindNearby(b *testing.B) {
	index := newTestIndex(b, 6)
	ctx := context.Background()

	// Add 1000 locations
	for i := 0; i < 1000; i++ {
		lat := 37.0 + float64(i%100)*0.01
		lng := -122.0 + float64(i/100)*0.01
		index.UpdateLocation(fmt.Sprintf("driver-%d", i), lat, lng)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		index.FindNearby(ctx, 37.5, -122.0, 5.0)
	}
}
