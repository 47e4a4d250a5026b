package workflows

import (
	"context"
	"log/slog"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/hotspotmap/internal/core/ports"
	"github.com/samirrijal/hotspotmap/internal/core/usecases"
)

// ErrTypeData marks activity failures caused by the data itself. Temporal
// does not retry them.
const ErrTypeData = "HotspotDataError"

// ErrTypePathRejected marks a path the worker was not set up to open.
const ErrTypePathRejected = "HotspotPathRejected"

// DatasetInfo describes a source table without carrying its rows, so
// workflow history stays small whatever the export size.
type DatasetInfo struct {
	Source  string
	Rows    int
	Columns []string
}

// IngestActivities holds the activity implementations for the ingest workflow.
// Activities take the source path rather than the table; an empty path means
// the worker's configured source.
type IngestActivities struct {
	Ingest *usecases.IngestService
	// OpenPath builds a source for an explicit path. Nil rejects paths.
	OpenPath func(path string) ports.HotspotSource
}

func (a *IngestActivities) service(path string) (*usecases.IngestService, error) {
	if path == "" {
		return a.Ingest, nil
	}
	if a.OpenPath == nil {
		return nil, temporal.NewNonRetryableApplicationError("worker does not accept source paths: "+path, ErrTypePathRejected, nil)
	}
	return a.Ingest.WithSource(a.OpenPath(path), path), nil
}

// LoadDataset reads the source and checks it can be split by TYPE.
func (a *IngestActivities) LoadDataset(ctx context.Context, path string) (*DatasetInfo, error) {
	svc, err := a.service(path)
	if err != nil {
		return nil, err
	}
	ds, err := svc.Read(ctx)
	if err != nil {
		return nil, asActivityError(err)
	}
	activity.GetLogger(ctx).Info("hotspot table read", "rows", ds.Len(), "columns", len(ds.Columns))
	return &DatasetInfo{Source: svc.SourceName(), Rows: ds.Len(), Columns: ds.Columns}, nil
}

// StoreDataset reads the source again and replaces the stored table with it.
func (a *IngestActivities) StoreDataset(ctx context.Context, path string) (*ports.DatasetLoaded, error) {
	svc, err := a.service(path)
	if err != nil {
		return nil, err
	}
	ds, err := svc.Read(ctx)
	if err != nil {
		return nil, asActivityError(err)
	}
	ev, err := svc.Store(ctx, ds)
	if err != nil {
		return nil, asActivityError(err)
	}
	return ev, nil
}

// AnnounceDataset publishes the dataset-loaded event.
func (a *IngestActivities) AnnounceDataset(ctx context.Context, ev *ports.DatasetLoaded) error {
	a.Ingest.Announce(ctx, ev)
	slog.InfoContext(ctx, "hotspots ingested", "source", ev.Source, "rows", ev.Rows)
	return nil
}

func asActivityError(err error) error {
	if usecases.IsDataError(err) {
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeData, err)
	}
	return err
}
