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
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/hotspotmap/internal/adapters/csvfile"
	"github.com/samirrijal/hotspotmap/internal/adapters/http"
	"github.com/samirrijal/hotspotmap/internal/adapters/memcache"
	natsadapter "github.com/samirrijal/hotspotmap/internal/adapters/nats"
	"github.com/samirrijal/hotspotmap/internal/adapters/postgres"
	"github.com/samirrijal/hotspotmap/internal/adapters/valkey"
	"github.com/samirrijal/hotspotmap/internal/core/ports"
	"github.com/samirrijal/hotspotmap/internal/core/usecases"
	"github.com/samirrijal/hotspotmap/internal/pkg/config"
	"github.com/samirrijal/hotspotmap/internal/pkg/logging"
	"github.com/samirrijal/hotspotmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("hotspotmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{}

	// Hotspot source
	var source ports.HotspotSource
	switch cfg.Dataset.Source {
	case config.SourcePostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		deps.DB = db
		source = postgres.NewHotspotRepo(db)
	default:
		src := csvSource(cfg.Dataset)
		slog.Info("reading hotspots from csv", "path", src.Path())
		source = src
	}

	// Cache: in-process tier in front of valkey when it is reachable
	near, err := memcache.New(cfg.Cache.MemoryBytes)
	if err != nil {
		log.Fatalf("memory cache: %v", err)
	}
	defer near.Close()

	var cache ports.CacheService = near
	far, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, using memory cache only", "error", err)
	} else {
		defer far.Close()
		deps.Cache = far
		cache = memcache.NewTiered(near, far, cfg.Cache.NearTTL)
	}

	// NATS
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		deps.Publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
		deps.NATS = natsConn
	}

	// Use cases
	charts := usecases.NewChartService(usecases.NewLoaderService(source), cache, cfg.Cache.TTL)
	deps.Charts = charts

	// A failed first load leaves /v1/ready at 503 until a reload succeeds.
	if err := charts.Reload(ctx); err != nil {
		slog.Error("initial hotspot load failed", "error", err)
	}

	// Reload whenever an ingest lands
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.NATS.Durable)
	if err != nil {
		slog.Warn("nats subscriber unavailable, dataset reloads disabled", "error", err)
	} else {
		defer sub.Close()
		err := sub.SubscribeDatasetLoaded(ctx, func(ctx context.Context, ev *ports.DatasetLoaded) error {
			slog.Info("dataset loaded event", "source", ev.Source, "rows", ev.Rows)
			return charts.Reload(ctx)
		})
		if err != nil {
			slog.Warn("subscribe dataset loaded", "error", err)
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Hotspot Map API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// csvSource reads dataset.path when set, else the fixed file name in dataset.dir.
func csvSource(cfg config.DatasetConfig) *csvfile.Source {
	if cfg.Path != "" {
		return csvfile.NewWithPath(cfg.Path)
	}
	return csvfile.New(cfg.Dir)
}
