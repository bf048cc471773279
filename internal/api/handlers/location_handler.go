package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geocell/internal/services"
)

type LocationHandler struct {
	locationService *services.LocationService
}

func NewLocationHandler(locationService *services.LocationService) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
	}
}

type SetLocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// SetLocation handles PUT /v1/locations/:key
func (h *LocationHandler) SetLocation(c *gin.Context) {
	var req SetLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	location, err := h.locationService.SetLocation(c.Request.Context(), c.Param("key"), *req.Lat, *req.Lng)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// GetLocation handles GET /v1/locations/:key
func (h *LocationHandler) GetLocation(c *gin.Context) {
	location, err := h.locationService.GetLocation(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

// RemoveLocation handles DELETE /v1/locations/:key
func (h *LocationHandler) RemoveLocation(c *gin.Context) {
	if err := h.locationService.RemoveLocation(c.Request.Context(), c.Param("key")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type NearbyQuery struct {
	Lat      *float64 `form:"lat" binding:"required"`
	Lng      *float64 `form:"lng" binding:"required"`
	RadiusKm *float64 `form:"radius_km" binding:"required"`
}

// FindNearby handles GET /v1/locations?lat=&lng=&radius_km=
func (h *LocationHandler) FindNearby(c *gin.Context) {
	var q NearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	nearby, err := h.locationService.FindNearby(c.Request.Context(), *q.Lat, *q.Lng, *q.RadiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(nearby),
		"results": nearby,
	})
}
