package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
	"github.com/samirrijal/hotspotmap/internal/core/ports"
	"github.com/samirrijal/hotspotmap/internal/pkg/metrics"
)

// IngestService copies the hotspot table from a source into the repository
// and announces the new data.
type IngestService struct {
	source     ports.HotspotSource
	sourceName string
	repo       ports.HotspotRepository
	publisher  ports.EventPublisher
}

// NewIngestService creates a new IngestService. publisher may be nil.
func NewIngestService(source ports.HotspotSource, sourceName string, repo ports.HotspotRepository, publisher ports.EventPublisher) *IngestService {
	return &IngestService{source: source, sourceName: sourceName, repo: repo, publisher: publisher}
}

// WithSource returns a copy of s that reads from source, named name in
// events and logs.
func (s *IngestService) WithSource(source ports.HotspotSource, name string) *IngestService {
	c := *s
	c.source = source
	c.sourceName = name
	return &c
}

// SourceName names the source in events and logs.
func (s *IngestService) SourceName() string { return s.sourceName }

// Read loads the source table. It fails when TYPE is missing, since nothing
// downstream could split the data.
func (s *IngestService) Read(ctx context.Context) (*domain.Dataset, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.sourceName, err)
	}
	if err := ds.RequireColumns(domain.ColumnType); err != nil {
		return nil, err
	}
	return ds, nil
}

// Store replaces the repository contents with ds.
func (s *IngestService) Store(ctx context.Context, ds *domain.Dataset) (*ports.DatasetLoaded, error) {
	parts, _, err := Partition(ds)
	if err != nil {
		return nil, err
	}

	n, err := s.repo.ReplaceAll(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("store hotspots: %w", err)
	}
	metrics.RowsIngested.Add(float64(n))

	ev := &ports.DatasetLoaded{Source: s.sourceName, Rows: n, Counts: make(map[domain.HotspotType]int)}
	for t, subset := range parts {
		ev.Counts[t] = subset.Len()
	}
	return ev, nil
}

// Announce publishes ev. Publishing is best effort.
func (s *IngestService) Announce(ctx context.Context, ev *ports.DatasetLoaded) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishDatasetLoaded(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish dataset loaded", "error", err)
	}
}

// Ingest runs Read, Store and Announce in order.
func (s *IngestService) Ingest(ctx context.Context) (*ports.DatasetLoaded, error) {
	ds, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := s.Store(ctx, ds)
	if err != nil {
		return nil, err
	}
	s.Announce(ctx, ev)

	slog.InfoContext(ctx, "hotspots ingested", "source", s.sourceName, "rows", ev.Rows)
	return ev, nil
}
