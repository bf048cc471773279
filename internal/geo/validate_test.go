package geo

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateLocation(t *testing.T) {
	valid := [][2]float64{{0, 0}, {90, 180}, {-90, -180}, {37.7749, -122.4194}}
	for _, v := range valid {
		if err := ValidateLocation(v[0], v[1]); err != nil {
			t.Errorf("ValidateLocation(%v, %v) error = %v", v[0], v[1], err)
		}
	}

	invalid := [][2]float64{
		{90.0001, 0}, {-91, 0}, {0, 180.5}, {0, -200},
		{math.NaN(), 0}, {0, math.NaN()}, {math.Inf(1), 0}, {0, math.Inf(-1)},
	}
	for _, v := range invalid {
		if err := ValidateLocation(v[0], v[1]); !errors.Is(err, ErrInvalidLocation) {
			t.Errorf("ValidateLocation(%v, %v) error = %v, want ErrInvalidLocation", v[0], v[1], err)
		}
	}
}

func TestValidateGeohash(t *testing.T) {
	for _, hash := range []string{"0", "u4pruyd", "U4PRUYD", strings.Repeat("z", MaxPrecision)} {
		if err := ValidateGeohash(hash); err != nil {
			t.Errorf("ValidateGeohash(%q) error = %v", hash, err)
		}
	}
	for _, hash := range []string{"", "a", "u4pruyi", "9q8-", strings.Repeat("z", MaxPrecision+1)} {
		if err := ValidateGeohash(hash); !errors.Is(err, ErrInvalidGeohash) {
			t.Errorf("ValidateGeohash(%q) error = %v, want ErrInvalidGeohash", hash, err)
		}
	}
}

func TestValidatePrecision(t *testing.T) {
	for p := 1; p <= MaxPrecision; p++ {
		if err := ValidatePrecision(p); err != nil {
			t.Errorf("ValidatePrecision(%d) error = %v", p, err)
		}
	}
	for _, p := range []int{0, -1, MaxPrecision + 1} {
		if err := ValidatePrecision(p); !errors.Is(err, ErrInvalidPrecision) {
			t.Errorf("ValidatePrecision(%d) error = %v, want ErrInvalidPrecision", p, err)
		}
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		valid bool
	}{
		{"simple", "driver-1", true},
		{"unicode", "café", true},
		{"longest allowed", strings.Repeat("k", 744), true},
		{"empty", "", false},
		{"too long", strings.Repeat("k", 745), false},
		{"dot", "a.b", false},
		{"hash", "a#b", false},
		{"dollar", "$a", false},
		{"brackets", "a[0]", false},
		{"slash", "a/b", false},
		{"control character", "a\tb", false},
		{"delete", "a\x7f", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.valid && err != nil {
				t.Errorf("ValidateKey(%q) error = %v", tt.key, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidKey) {
				t.Errorf("ValidateKey(%q) error = %v, want ErrInvalidKey", tt.key, err)
			}
		})
	}
}

func TestValidateRadius(t *testing.T) {
	for _, r := range []float64{0, 1, 1e7} {
		if err := ValidateRadius(r); err != nil {
			t.Errorf("ValidateRadius(%v) error = %v", r, err)
		}
	}
	for _, r := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		if err := ValidateRadius(r); !errors.Is(err, ErrInvalidRadius) {
			t.Errorf("ValidateRadius(%v) error = %v, want ErrInvalidRadius", r, err)
		}
	}
}
