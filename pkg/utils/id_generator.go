// Package utils holds small helpers that are safe to import from outside the
// module.
//
// Go Learning Note: "pkg/" Directory Convention
// Code under pkg/ signals "importable by other projects", unlike internal/,
// which the compiler keeps private. It is a community convention, not a
// language rule.
package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a random (version 4) UUID string. The HTTP layer uses it
// for request ids when the client did not send a usable X-Request-ID.
func GenerateID() string {
	return uuid.New().String()
}
