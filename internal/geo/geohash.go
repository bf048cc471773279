// Package geo implements geohash encoding/decoding, adjacency, circular-region
// coverage and distance helpers, plus a keyed spatial index built on them.
//
// Go Learning Note: What is a Geohash?
// A geohash is a way to encode a latitude/longitude pair into a short string.
// The key property is that nearby locations share a common prefix. For example,
// two points 100m apart might both start with "9q8yyk", while a point 10km away
// might start with "9q8yz". This lets you use string prefix matching for fast
// proximity searches instead of computing distances between all pairs.
//
// Precision determines the cell size:
//
//	1 → ~5000 km    4 → ~39 km     7 → ~153 m    10 → ~1.2 m
//	2 → ~1250 km    5 → ~5 km      8 → ~19 m     11 → ~15 cm
//	3 → ~156 km     6 → ~1.2 km    9 → ~2.4 m    12 → ~1.9 cm
//
// Every function outside spatial_index.go is pure: no I/O, no logging and no
// shared mutable state, so all of them are safe for concurrent use.
package geo

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// base32 is the geohash character set (32 characters). Note that 'a', 'i',
// 'l', and 'o' are excluded to avoid confusion with digits 0/1.
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

const (
	// DefaultPrecision is the geohash length used when none is given.
	DefaultPrecision = 10
	// MaxPrecision is the longest geohash this package produces or accepts.
	MaxPrecision = 22
	// BitsPerChar is the number of bits encoded by one geohash character.
	BitsPerChar = 5
	// MaximumBitsPrecision is the length of a MaxPrecision geohash in bits.
	MaximumBitsPrecision = MaxPrecision * BitsPerChar
)

// base32Index maps a character to its position in base32, or -1.
var base32Index [256]int8

// init() runs automatically when the package is first imported, before main().
//
// Go Learning Note: init() Functions
// Every Go package can have one or more init() functions. They run once, in
// dependency order, when the program starts. Here we pre-compute a reverse
// lookup table from base32 characters to their index positions. A fixed-size
// array indexed by byte is cheaper than a map for a 32-entry alphabet.
func init() {
	for i := range base32Index {
		base32Index[i] = -1
	}
	for i := 0; i < len(base32); i++ {
		base32Index[base32[i]] = int8(i)
	}
}

func charIndex(c byte) int {
	return int(base32Index[c])
}

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Box is the axis-aligned rectangle covered by a geohash cell.
type Box struct {
	SW Point `json:"sw"`
	NE Point `json:"ne"`
}

// Contains reports whether p lies inside the box, boundary included.
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.SW.Lat && p.Lat <= b.NE.Lat &&
		p.Lng >= b.SW.Lng && p.Lng <= b.NE.Lng
}

// Center returns the unrounded centre of the box.
func (b Box) Center() Point {
	return Point{
		Lat: (b.SW.Lat + b.NE.Lat) / 2,
		Lng: (b.SW.Lng + b.NE.Lng) / 2,
	}
}

// Encode converts latitude and longitude to a geohash string with the given
// precision (string length, 1 to 22).
//
// Algorithm overview (binary interleaving):
//  1. Start with the full range: lat [-90, 90], lng [-180, 180]
//  2. Alternate between longitude (even bits) and latitude (odd bits)
//  3. For each step, bisect the range and set bit=1 if value > midpoint
//  4. Every 5 bits are encoded as one base32 character
//
// Go Learning Note: strings.Builder
// strings.Builder is the idiomatic way to efficiently build strings in Go.
// Never build strings with repeated concatenation (s += "x") in a loop; that
// creates a new string (and allocation) each iteration because Go strings are
// immutable.
func Encode(lat, lng float64, precision int) (string, error) {
	if err := ValidateLocation(lat, lng); err != nil {
		return "", err
	}
	if err := ValidatePrecision(precision); err != nil {
		return "", err
	}
	return encode(lat, lng, precision), nil
}

// EncodePoint encodes p at DefaultPrecision.
func EncodePoint(p Point) (string, error) {
	return Encode(p.Lat, p.Lng, DefaultPrecision)
}

// encode assumes validated input.
func encode(lat, lng float64, precision int) string {
	minLat, maxLat := -90.0, 90.0
	minLng, maxLng := -180.0, 180.0

	var hash strings.Builder
	hash.Grow(precision)
	isEven := true
	bit := 0
	ch := 0

	for hash.Len() < precision {
		if isEven {
			mid := (minLng + maxLng) / 2
			if lng > mid {
				ch |= 1 << (4 - bit)
				minLng = mid
			} else {
				maxLng = mid
			}
		} else {
			mid := (minLat + maxLat) / 2
			if lat > mid {
				ch |= 1 << (4 - bit)
				minLat = mid
			} else {
				maxLat = mid
			}
		}
		isEven = !isEven
		bit++
		if bit == BitsPerChar {
			hash.WriteByte(base32[ch])
			bit = 0
			ch = 0
		}
	}

	return hash.String()
}

// Bounds returns the south-west and north-east corners of the cell encoded by
// hash. It replays the binary subdivision performed by Encode.
func Bounds(hash string) (Box, error) {
	if err := ValidateGeohash(hash); err != nil {
		return Box{}, err
	}
	return bounds(strings.ToLower(hash)), nil
}

// bounds assumes a validated, lower-case hash.
func bounds(hash string) Box {
	minLat, maxLat := -90.0, 90.0
	minLng, maxLng := -180.0, 180.0
	isEven := true

	for i := 0; i < len(hash); i++ {
		cd := charIndex(hash[i])
		for j := BitsPerChar - 1; j >= 0; j-- {
			bit := (cd >> j) & 1
			if isEven {
				mid := (minLng + maxLng) / 2
				if bit == 1 {
					minLng = mid
				} else {
					maxLng = mid
				}
			} else {
				mid := (minLat + maxLat) / 2
				if bit == 1 {
					minLat = mid
				} else {
					maxLat = mid
				}
			}
			isEven = !isEven
		}
	}

	return Box{
		SW: Point{Lat: minLat, Lng: minLng},
		NE: Point{Lat: maxLat, Lng: maxLng},
	}
}

// Decode returns the centre of the cell encoded by hash, rounded to
// floor(2 - log10(span)) decimal places per axis: enough digits to identify
// the cell without implying more precision than it has.
func Decode(hash string) (Point, error) {
	box, err := Bounds(hash)
	if err != nil {
		return Point{}, err
	}

	c := box.Center()
	return Point{
		Lat: roundFixed(c.Lat, decimalsFor(box.NE.Lat-box.SW.Lat)),
		Lng: roundFixed(c.Lng, decimalsFor(box.NE.Lng-box.SW.Lng)),
	}, nil
}

func decimalsFor(span float64) int {
	d := int(math.Floor(2 - math.Log(span)/math.Ln10))
	if d < 0 {
		return 0
	}
	return d
}

// roundFixed rounds x to the given number of decimals. Halves are rounded away
// from zero on the exact binary value of x, so 0.125 becomes 0.13 while
// 1.005 (stored as 1.00499...) becomes 1.0.
func roundFixed(x float64, decimals int) float64 {
	s := new(big.Rat).SetFloat64(x).FloatString(decimals)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return x
	}
	return v
}
