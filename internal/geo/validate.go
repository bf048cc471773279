package geo

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Errors returned by the public functions of this package. They are wrapped
// with the offending value, so callers should match them with errors.Is.
//
// Go Learning Note: Sentinel Errors
// A sentinel error is a package-level error value that callers compare
// against. Wrapping it with fmt.Errorf("%w: ...") adds context for humans
// while errors.Is(err, ErrInvalidGeohash) still reports true for programs.
var (
	ErrInvalidLocation  = errors.New("invalid location")
	ErrInvalidGeohash   = errors.New("invalid geohash")
	ErrInvalidPrecision = errors.New("invalid precision")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidKey       = errors.New("invalid key")
	ErrInvalidRadius    = errors.New("invalid radius")
)

const (
	// maxKeyPathLength is the longest child path a key may produce once it is
	// stored as "i/<geohash><key>".
	maxKeyPathLength  = 755
	forbiddenKeyChars = ".#$][/"
)

// ValidateLocation checks that lat is a finite number in [-90, 90] and lng a
// finite number in [-180, 180].
func ValidateLocation(lat, lng float64) error {
	switch {
	case math.IsNaN(lat) || math.IsInf(lat, 0):
		return fmt.Errorf("%w: latitude must be a number, got %v", ErrInvalidLocation, lat)
	case lat < -90 || lat > 90:
		return fmt.Errorf("%w: latitude %v must be within the range [-90, 90]", ErrInvalidLocation, lat)
	case math.IsNaN(lng) || math.IsInf(lng, 0):
		return fmt.Errorf("%w: longitude must be a number, got %v", ErrInvalidLocation, lng)
	case lng < -180 || lng > 180:
		return fmt.Errorf("%w: longitude %v must be within the range [-180, 180]", ErrInvalidLocation, lng)
	}
	return nil
}

// ValidateGeohash checks that hash is a non-empty geohash of at most
// MaxPrecision characters. Upper-case input is accepted.
func ValidateGeohash(hash string) error {
	if len(hash) == 0 {
		return fmt.Errorf("%w: geohash cannot be the empty string", ErrInvalidGeohash)
	}
	if len(hash) > MaxPrecision {
		return fmt.Errorf("%w: geohash %q is longer than %d characters", ErrInvalidGeohash, hash, MaxPrecision)
	}
	for i := 0; i < len(hash); i++ {
		if charIndex(lower(hash[i])) < 0 {
			return fmt.Errorf("%w: geohash %q cannot contain %q", ErrInvalidGeohash, hash, hash[i])
		}
	}
	return nil
}

// ValidatePrecision checks that precision is a geohash length in [1, 22].
func ValidatePrecision(precision int) error {
	if precision <= 0 {
		return fmt.Errorf("%w: precision must be greater than 0, got %d", ErrInvalidPrecision, precision)
	}
	if precision > MaxPrecision {
		return fmt.Errorf("%w: precision cannot be greater than %d, got %d", ErrInvalidPrecision, MaxPrecision, precision)
	}
	return nil
}

// ValidateKey checks a key used to store a location in a SpatialIndex.
func ValidateKey(key string) error {
	switch {
	case len(key) == 0:
		return fmt.Errorf("%w: key cannot be the empty string", ErrInvalidKey)
	case 1+DefaultPrecision+len(key) > maxKeyPathLength:
		return fmt.Errorf("%w: key of length %d is too long", ErrInvalidKey, len(key))
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c <= 0x1f || c == 0x7f || strings.IndexByte(forbiddenKeyChars, c) >= 0 {
			return fmt.Errorf("%w: key %q cannot contain any of the following characters: . # $ ] [ / or control characters", ErrInvalidKey, key)
		}
	}
	return nil
}

// ValidateRadius checks that a radius in meters is a finite, non-negative number.
func ValidateRadius(meters float64) error {
	if math.IsNaN(meters) || math.IsInf(meters, 0) || meters < 0 {
		return fmt.Errorf("%w: radius must be a non-negative number, got %v", ErrInvalidRadius, meters)
	}
	return nil
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
