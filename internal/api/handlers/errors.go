package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"geocell/internal/geo"
	"geocell/internal/services"
)

var validationErrors = []error{
	geo.ErrInvalidLocation,
	geo.ErrInvalidGeohash,
	geo.ErrInvalidPrecision,
	geo.ErrInvalidDirection,
	geo.ErrInvalidKey,
	geo.ErrInvalidRadius,
}

// statusFor maps an error from the geo or services packages to an HTTP status.
func statusFor(err error) int {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, services.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Errors the client did not
// cause are attached to the context for the access log and logged here.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondBindError reports a request that could not be parsed or lacked a
// required field.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
