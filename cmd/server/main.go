package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"geocell/internal/api"
	"geocell/internal/api/handlers"
	"geocell/internal/config"
	"geocell/internal/geo"
	"geocell/internal/logger"
	"geocell/internal/services"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file with GEOCELL_* settings")
	flag.Parse()

	if err := run(*envFile); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	// Load configuration
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	// Initialize spatial index
	spatialIndex, err := geo.NewSpatialIndex(cfg.Geo.IndexPrecision)
	if err != nil {
		return err
	}

	// Initialize services and handlers
	locationService := services.NewLocationService(spatialIndex, cfg.Geo.MaxQueryRadiusKm, log)
	geohashHandler := handlers.NewGeohashHandler(cfg.Geo.DefaultPrecision)
	locationHandler := handlers.NewLocationHandler(locationService)

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	api.NewRouter(geohashHandler, locationHandler, locationService, log).Setup(engine)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Go Learning Note: Graceful Shutdown
	// signal.NotifyContext cancels ctx on SIGINT/SIGTERM. The server runs in
	// its own goroutine; main waits for either a signal or a listen error,
	// then gives in-flight requests ShutdownTimeout to finish.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting geocell server",
			"addr", cfg.Server.Port,
			"default_precision", cfg.Geo.DefaultPrecision,
			"index_precision", cfg.Geo.IndexPrecision)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped cleanly")
	return nil
}
