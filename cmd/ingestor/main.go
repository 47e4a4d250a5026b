package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"

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
	file := flag.String("file", "", "CSV to import (default: dataset.path or the fixed file name in dataset.dir); with -workflow, a path on the worker")
	viaWorkflow := flag.Bool("workflow", false, "run the import as a Temporal workflow on the worker")
	flag.Parse()

	cfg, err := config.Load("hotspotmap-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if *viaWorkflow {
		loaded, err := startWorkflow(ctx, cfg, *file)
		if err != nil {
			log.Fatalf("ingest workflow: %v", err)
		}
		report(loaded)
		return
	}

	path := *file
	if path == "" {
		path = cfg.Dataset.Path
	}
	var src *csvfile.Source
	if path != "" {
		src = csvfile.NewWithPath(path)
	} else {
		src = csvfile.New(cfg.Dataset.Dir)
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var pub ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, import will not be announced", "error", err)
	} else {
		defer nc.Close()
		pub = nc
	}

	svc := usecases.NewIngestService(src, src.Path(), postgres.NewHotspotRepo(db), pub)
	loaded, err := svc.Ingest(ctx)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}
	report(loaded)
}

// startWorkflow hands the import to the worker and waits for its result.
// An empty path lets the worker use its configured source.
func startWorkflow(ctx context.Context, cfg *config.Config, path string) (*ports.DatasetLoaded, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal client: %w", err)
	}
	defer c.Close()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        fmt.Sprintf("hotspot-ingest-%d", time.Now().Unix()),
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.IngestWorkflow, workflows.IngestInput{RequestedBy: "ingestor", Path: path})
	if err != nil {
		return nil, fmt.Errorf("start workflow: %w", err)
	}
	slog.Info("ingest workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var loaded *ports.DatasetLoaded
	if err := run.Get(ctx, &loaded); err != nil {
		return nil, err
	}
	return loaded, nil
}

func report(ev *ports.DatasetLoaded) {
	fmt.Printf("imported %d rows from %s\n", ev.Rows, ev.Source)
	for t, n := range ev.Counts {
		fmt.Printf("  %-14s %d\n", t, n)
	}
}
