package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"geocell/internal/api/handlers"
	"geocell/internal/api/middleware"
	"geocell/internal/metrics"
	"geocell/internal/services"
)

type Router struct {
	geohashHandler  *handlers.GeohashHandler
	locationHandler *handlers.LocationHandler
	locationService *services.LocationService
	logger          *slog.Logger
}

func NewRouter(
	geohashHandler *handlers.GeohashHandler,
	locationHandler *handlers.LocationHandler,
	locationService *services.LocationService,
	logger *slog.Logger,
) *Router {
	return &Router{
		geohashHandler:  geohashHandler,
		locationHandler: locationHandler,
		locationService: locationService,
		logger:          logger,
	}
}

func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.RequestID(), middleware.Logger(r.logger), middleware.Metrics())

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"locations": r.locationService.Count(),
		})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := engine.Group("/v1")
	{
		v1.GET("/encode", r.geohashHandler.Encode)
		v1.GET("/circle", r.geohashHandler.Circle)
		v1.POST("/distance", r.geohashHandler.Distance)

		geohash := v1.Group("/geohash/:hash")
		{
			geohash.GET("/decode", r.geohashHandler.Decode)
			geohash.GET("/bounds", r.geohashHandler.Bounds)
			geohash.GET("/adjacent/:direction", r.geohashHandler.Adjacent)
			geohash.GET("/neighbours", r.geohashHandler.Neighbours)
		}

		locations := v1.Group("/locations")
		{
			locations.GET("", r.locationHandler.FindNearby)
			locations.PUT("/:key", r.locationHandler.SetLocation)
			locations.GET("/:key", r.locationHandler.GetLocation)
			locations.DELETE("/:key", r.locationHandler.RemoveLocation)
		}
	}
}
