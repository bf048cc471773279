package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geocell/internal/geo"
	"geocell/internal/metrics"
)

// GeohashHandler exposes the stateless geohash operations. Every call is a
// pure function of its request.
type GeohashHandler struct {
	defaultPrecision int
}

func NewGeohashHandler(defaultPrecision int) *GeohashHandler {
	return &GeohashHandler{defaultPrecision: defaultPrecision}
}

// Coordinates are pointers so that binding:"required" accepts 0, which is a
// valid latitude and longitude.
type EncodeQuery struct {
	Lat       *float64 `form:"lat" binding:"required"`
	Lng       *float64 `form:"lng" binding:"required"`
	Precision *int     `form:"precision"`
}

// Encode handles GET /v1/encode?lat=&lng=&precision=
func (h *GeohashHandler) Encode(c *gin.Context) {
	var q EncodeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	precision := h.defaultPrecision
	if q.Precision != nil {
		precision = *q.Precision
	}

	hash, err := geo.Encode(*q.Lat, *q.Lng, precision)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"geohash":   hash,
		"precision": precision,
	})
}

// Decode handles GET /v1/geohash/:hash/decode
func (h *GeohashHandler) Decode(c *gin.Context) {
	hash := c.Param("hash")

	point, err := geo.Decode(hash)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"geohash": hash,
		"lat":     point.Lat,
		"lng":     point.Lng,
	})
}

// Bounds handles GET /v1/geohash/:hash/bounds
func (h *GeohashHandler) Bounds(c *gin.Context) {
	hash := c.Param("hash")

	box, err := geo.Bounds(hash)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"geohash": hash,
		"sw":      box.SW,
		"ne":      box.NE,
	})
}

// Adjacent handles GET /v1/geohash/:hash/adjacent/:direction
func (h *GeohashHandler) Adjacent(c *gin.Context) {
	hash := c.Param("hash")

	dir, err := geo.ParseDirection(c.Param("direction"))
	if err != nil {
		respondError(c, err)
		return
	}
	adjacent, err := geo.Adjacent(hash, dir)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"geohash":   hash,
		"direction": dir,
		"adjacent":  adjacent,
	})
}

// Neighbours handles GET /v1/geohash/:hash/neighbours. With ?format=list the
// eight cells come back as an array ordered nw, n, ne, w, e, sw, s, se;
// otherwise as an object keyed by compass direction.
func (h *GeohashHandler) Neighbours(c *gin.Context) {
	hash := c.Param("hash")

	set, err := geo.Neighbours(hash)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "list" {
		c.JSON(http.StatusOK, gin.H{"geohash": hash, "neighbours": set.List()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"geohash": hash, "neighbours": set})
}

type CircleQuery struct {
	Lat    *float64 `form:"lat" binding:"required"`
	Lng    *float64 `form:"lng" binding:"required"`
	Radius *float64 `form:"radius" binding:"required"`
}

// Circle handles GET /v1/circle?lat=&lng=&radius= (radius in meters). It
// returns both the covering geohashes and the range scans they came from.
func (h *GeohashHandler) Circle(c *gin.Context) {
	var q CircleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	coverage, err := geo.PlanCircle(*q.Lat, *q.Lng, *q.Radius)
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.CoverageHashes.Observe(float64(len(coverage.Hashes)))

	c.JSON(http.StatusOK, coverage)
}

type PointRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

type DistanceRequest struct {
	From PointRequest `json:"from"`
	To   PointRequest `json:"to"`
}

// Distance handles POST /v1/distance
func (h *GeohashHandler) Distance(c *gin.Context) {
	var req DistanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	from := geo.Point{Lat: *req.From.Lat, Lng: *req.From.Lng}
	to := geo.Point{Lat: *req.To.Lat, Lng: *req.To.Lng}
	km, err := geo.Distance(from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":        from,
		"to":          to,
		"distance_km": km,
	})
}
