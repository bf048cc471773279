package geo

import (
	"fmt"
	"math"
	"strings"
)

const (
	// EarthMeriCircumference is the meridional circumference of the earth in meters.
	EarthMeriCircumference = 40007860
	// MetersPerDegreeLatitude is the length of a degree of latitude at the equator.
	MetersPerDegreeLatitude = 110574
	// EarthEqRadius is the equatorial radius of the earth in meters.
	EarthEqRadius = 6378137.0
	// E2 is the squared eccentricity of the WGS-84 ellipsoid,
	// (EarthEqRadius² - polarRadius²) / EarthEqRadius² with a polar radius of
	// 6356752.3 m. The exact value avoids rounding errors.
	E2 = 0.00669447819799
	// Epsilon is the cutoff for rounding errors on float calculations.
	Epsilon = 1e-12
)

// rangeEnd sorts after every base32 character and closes an open-ended range.
const rangeEnd = "~"

// QueryRange is the half-open interval [Start, End) of geohash strings that
// share a bit precision. End may carry the "~" sentinel, which sorts after
// every geohash character.
type QueryRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether hash falls inside the range.
func (q QueryRange) Contains(hash string) bool {
	return hash >= q.Start && hash < q.End
}

// DegreesToRadians converts degrees to radians.
func DegreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// MetersToLongitudeDegrees converts a distance in meters to degrees of
// longitude at the given latitude, on an ellipsoidal earth. Near the poles,
// where a degree of longitude has no length, any positive distance spans the
// full 360 degrees.
func MetersToLongitudeDegrees(distance, latitude float64) float64 {
	radians := DegreesToRadians(latitude)
	num := math.Cos(radians) * EarthEqRadius * math.Pi / 180
	denom := 1 / math.Sqrt(1-E2*math.Sin(radians)*math.Sin(radians))
	deltaDeg := num * denom
	if deltaDeg < Epsilon {
		if distance > 0 {
			return 360
		}
		return 0
	}
	return math.Min(360, distance/deltaDeg)
}

// LongitudeBitsForResolution returns the bits of longitude needed for a cell
// no wider than resolution meters at the given latitude. It never drops
// below 1.
func LongitudeBitsForResolution(resolution, latitude float64) float64 {
	degs := MetersToLongitudeDegrees(resolution, latitude)
	if math.Abs(degs) > 0.000001 {
		return math.Max(1, log2(360/degs))
	}
	return 1
}

// LatitudeBitsForResolution returns the bits of latitude needed for a cell no
// taller than resolution meters.
func LatitudeBitsForResolution(resolution float64) float64 {
	return math.Min(log2(EarthMeriCircumference/2/resolution), MaximumBitsPrecision)
}

// WrapLongitude wraps a longitude into [-180, 180].
func WrapLongitude(longitude float64) float64 {
	if longitude <= 180 && longitude >= -180 {
		return longitude
	}
	adjusted := longitude + 180
	if adjusted > 0 {
		return math.Mod(adjusted, 360) - 180
	}
	return 180 - math.Mod(-adjusted, 360)
}

// BoundingBoxBits returns the number of geohash bits whose cells are at least
// size meters in both directions around the given point. Longitude bits are
// counted at the north and south edges of the box; the narrower cell wins.
func BoundingBoxBits(lat, lng, size float64) int {
	latDeltaDegrees := size / MetersPerDegreeLatitude
	latitudeNorth := math.Min(90, lat+latDeltaDegrees)
	latitudeSouth := math.Max(-90, lat-latDeltaDegrees)
	bitsLat := int(math.Floor(LatitudeBitsForResolution(size))) * 2
	bitsLngNorth := int(math.Floor(LongitudeBitsForResolution(size, latitudeNorth)))*2 - 1
	bitsLngSouth := int(math.Floor(LongitudeBitsForResolution(size, latitudeSouth)))*2 - 1
	return min(bitsLat, bitsLngNorth, bitsLngSouth, MaximumBitsPrecision)
}

// BoundingBoxCoordinates returns the centre of the circle and eight points on
// its bounding box: the centre latitude, the north edge and the south edge,
// each at the centre longitude and at plus and minus the longitude delta. At
// least one of these nine points, hashed at BoundingBoxBits precision, is a
// prefix of the geohash of any point inside the circle.
func BoundingBoxCoordinates(lat, lng, radius float64) []Point {
	latDegrees := radius / MetersPerDegreeLatitude
	latitudeNorth := math.Min(90, lat+latDegrees)
	latitudeSouth := math.Max(-90, lat-latDegrees)
	lngDegsNorth := MetersToLongitudeDegrees(radius, latitudeNorth)
	lngDegsSouth := MetersToLongitudeDegrees(radius, latitudeSouth)
	lngDegs := math.Max(lngDegsNorth, lngDegsSouth)

	west := WrapLongitude(lng - lngDegs)
	east := WrapLongitude(lng + lngDegs)
	return []Point{
		{Lat: lat, Lng: lng},
		{Lat: lat, Lng: west},
		{Lat: lat, Lng: east},
		{Lat: latitudeNorth, Lng: lng},
		{Lat: latitudeNorth, Lng: west},
		{Lat: latitudeNorth, Lng: east},
		{Lat: latitudeSouth, Lng: lng},
		{Lat: latitudeSouth, Lng: west},
		{Lat: latitudeSouth, Lng: east},
	}
}

// GeohashQuery returns the range of geohashes that share the first bits bits
// with hash. A hash shorter than the requested precision matches all of its
// extensions.
func GeohashQuery(hash string, bits int) (QueryRange, error) {
	if err := ValidateGeohash(hash); err != nil {
		return QueryRange{}, err
	}
	if bits < 1 || bits > MaximumBitsPrecision {
		return QueryRange{}, fmt.Errorf("%w: bits must be within [1, %d], got %d", ErrInvalidPrecision, MaximumBitsPrecision, bits)
	}
	return geohashQuery(strings.ToLower(hash), bits), nil
}

// geohashQuery assumes a validated, lower-case hash and bits in range.
//
// The last character of the truncated hash carries bits%5 significant bits
// (5 when bits is a multiple of 5). Masking off the unused low bits of its
// index gives the first character of the range; adding one unit at that
// granularity gives the first character past it.
func geohashQuery(hash string, bits int) QueryRange {
	precision := ceilDiv(bits, BitsPerChar)
	if len(hash) < precision {
		return QueryRange{Start: hash, End: hash + rangeEnd}
	}

	hash = hash[:precision]
	base := hash[:len(hash)-1]
	lastValue := charIndex(hash[len(hash)-1])
	significantBits := bits - len(base)*BitsPerChar
	unusedBits := BitsPerChar - significantBits

	startValue := (lastValue >> unusedBits) << unusedBits
	endValue := startValue + (1 << unusedBits)
	if endValue > len(base32)-1 {
		return QueryRange{Start: base + string(base32[startValue]), End: base + rangeEnd}
	}
	return QueryRange{
		Start: base + string(base32[startValue]),
		End:   base + string(base32[endValue]),
	}
}

// Coverage is a planned circle coverage: the bit precision, the range scans
// and the geohashes enumerated from those ranges.
type Coverage struct {
	Bits   int          `json:"bits"`
	Ranges []QueryRange `json:"ranges"`
	Hashes []string     `json:"hashes"`
}

// GeohashQueries returns the de-duplicated ranges that together cover the
// circle of radius meters around (lat, lng), in the order they were produced.
func GeohashQueries(lat, lng, radius float64) ([]QueryRange, error) {
	if err := validateCircle(lat, lng, radius); err != nil {
		return nil, err
	}
	_, queries := circleQueries(lat, lng, radius, MaximumBitsPrecision)
	return queries, nil
}

// PlanCircle plans the coverage of the circle once and returns the ranges
// together with the hashes enumerated from them.
//
// A circle whose bounding box wraps the globe (see SpansAllLongitudes) is
// only covered on the side of the centre's longitude.
func PlanCircle(lat, lng, radius float64) (Coverage, error) {
	if err := validateCircle(lat, lng, radius); err != nil {
		return Coverage{}, err
	}
	bits, queries := circleQueries(lat, lng, radius, MaximumBitsPrecision)
	return Coverage{Bits: bits, Ranges: queries, Hashes: enumerate(queries)}, nil
}

// CircleOverlappingHashes returns a set of geohashes, all of the same length,
// such that the geohash of every point within radius meters of (lat, lng),
// truncated to that length, is in the set. Hashes are returned in the order
// they were first produced.
func CircleOverlappingHashes(lat, lng, radius float64) ([]string, error) {
	coverage, err := PlanCircle(lat, lng, radius)
	if err != nil {
		return nil, err
	}
	return coverage.Hashes, nil
}

// SpansAllLongitudes reports whether the bounding box of the circle of
// radius meters around lat reaches a pole or is at least 360 degrees wide.
// BoundingBoxCoordinates then collapses onto the centre's meridian, and the
// planned ranges cover only the centre's side of the globe.
func SpansAllLongitudes(lat, radius float64) bool {
	latDegrees := radius / MetersPerDegreeLatitude
	latitudeNorth := math.Min(90, lat+latDegrees)
	latitudeSouth := math.Max(-90, lat-latDegrees)
	if latitudeNorth >= 90 || latitudeSouth <= -90 {
		return true
	}
	lngDegs := math.Max(
		MetersToLongitudeDegrees(radius, latitudeNorth),
		MetersToLongitudeDegrees(radius, latitudeSouth),
	)
	return lngDegs >= 180
}

func validateCircle(lat, lng, radius float64) error {
	if err := ValidateLocation(lat, lng); err != nil {
		return err
	}
	return ValidateRadius(radius)
}

// circleQueries plans the range scans for a circle and returns them with the
// bit precision used. maxBits caps the precision, which lets an index that
// stores shorter hashes still match.
func circleQueries(lat, lng, radius float64, maxBits int) (int, []QueryRange) {
	bits := max(1, min(BoundingBoxBits(lat, lng, radius), maxBits))
	precision := ceilDiv(bits, BitsPerChar)

	coords := BoundingBoxCoordinates(lat, lng, radius)
	queries := make([]QueryRange, 0, len(coords))
	seen := make(map[QueryRange]struct{}, len(coords))
	for _, c := range coords {
		q := geohashQuery(encode(c.Lat, c.Lng, precision), bits)
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}
	return bits, queries
}

func enumerate(queries []QueryRange) []string {
	var hashes []string
	seen := make(map[string]struct{})
	for _, q := range queries {
		for h := q.Start; h < q.End; h = successor(h, q.End) {
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			hashes = append(hashes, h)
		}
	}
	return hashes
}

// successor returns the geohash that follows h when walking towards end. A
// hash shorter than end is extended with the first character of the
// alphabet; otherwise its last character is incremented, and incrementing
// 'z' yields the range sentinel.
func successor(h, end string) string {
	if len(h) < len(end) {
		return h + base32[:1]
	}
	next := charIndex(h[len(h)-1]) + 1
	if next >= len(base32) {
		return h[:len(h)-1] + rangeEnd
	}
	return h[:len(h)-1] + string(base32[next])
}

// log2 is computed as ln(x)/ln(2) rather than with math.Log2 so that bit
// counts sitting exactly on an integer floor the same way as in other GeoFire
// implementations.
func log2(x float64) float64 {
	return math.Log(x) / math.Ln2
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
