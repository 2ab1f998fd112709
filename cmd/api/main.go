package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/projwiz/internal/adapters/http"
	natsadapter "github.com/samirrijal/projwiz/internal/adapters/nats"
	"github.com/samirrijal/projwiz/internal/core/usecases"
	"github.com/samirrijal/projwiz/internal/pkg/config"
	"github.com/samirrijal/projwiz/internal/pkg/geospatial"
	"github.com/samirrijal/projwiz/internal/pkg/logging"
	"github.com/samirrijal/projwiz/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("projwiz-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(envOr("LOG_LEVEL", "info"), envOr("LOG_FORMAT", "json"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{
		Angles: usecases.NewAngleService(regionOptions(cfg.Region)),
	}

	// NATS is optional: sessions still work, summaries just stay on the socket.
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			slog.Warn("nats unavailable, region summaries will not be published", "error", err)
		} else {
			defer pub.Close()
			deps.Output = pub
			deps.NATS = pub.Conn()
		}
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Projection Wizard API",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "dms_precision", cfg.Region.DMSPrecision)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func regionOptions(rc config.RegionConfig) usecases.RegionOptions {
	return usecases.RegionOptions{
		Format: geospatial.Formatter{Precision: rc.DMSPrecision},
		Fit: usecases.FitParams{
			LatFactor:      rc.FitLatFactor,
			LonDivisor:     rc.FitLonDivisor,
			MaxLonHalfSpan: rc.FitMaxLonHalfSpan,
		},
		PolarSnap: rc.PolarSnapLatitude,
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
