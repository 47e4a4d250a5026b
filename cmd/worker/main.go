package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/hotspotmap/internal/adapters/csvfile"
	natsadapter "github.com/samirrijal/hotspotmap/internal/adapters/nats"
	"github.com/samirrijal/hotspotmap/internal/adapters/postgres"
	"github.com/samirrijal/hotspotmap/internal/core/ports"
	"github.com/samirrijal/hotspotmap/internal/core/usecases"
	"github.com/samirrijal/hotspotmap/internal/pkg/config"
	"github.com/samirrijal/hotspotmap/internal/pkg/logging"
	"github.com/samirrijal/hotspotmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("hotspotmap-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := postgres.New(context.Background(), cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var pub ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, imports will not be announced", "error", err)
	} else {
		defer nc.Close()
		pub = nc
	}

	src := csvfile.New(cfg.Dataset.Dir)
	if cfg.Dataset.Path != "" {
		src = csvfile.NewWithPath(cfg.Dataset.Path)
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.IngestWorkflow)
	w.RegisterActivity(&workflows.IngestActivities{
		Ingest:   usecases.NewIngestService(src, src.Path(), postgres.NewHotspotRepo(db), pub),
		OpenPath: func(path string) ports.HotspotSource {
			return csvfile.NewWithPath(path)
		},
	})

	slog.Info("ingest worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
