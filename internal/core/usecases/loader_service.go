package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
	"github.com/samirrijal/hotspotmap/internal/core/ports"
	"github.com/samirrijal/hotspotmap/internal/pkg/metrics"
)

// LoaderService reads the hotspot table and splits it by access tier.
type LoaderService struct {
	source ports.HotspotSource
}

// NewLoaderService creates a new LoaderService.
func NewLoaderService(source ports.HotspotSource) *LoaderService {
	return &LoaderService{source: source}
}

// Load returns the Free and Limited Free subsets. Rows of any other TYPE
// are dropped. Source errors are returned wrapped but otherwise untouched.
func (s *LoaderService) Load(ctx context.Context) (domain.CategorizedDatasets, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load hotspots: %w", err)
	}

	out, dropped, err := Partition(ds)
	if err != nil {
		return nil, err
	}

	for _, t := range domain.HotspotTypes {
		metrics.RowsLoaded.WithLabelValues(string(t)).Add(float64(out[t].Len()))
	}
	metrics.RowsDropped.Add(float64(dropped))

	slog.InfoContext(ctx, "hotspots loaded",
		"rows", ds.Len(),
		"free", out[domain.TypeFree].Len(),
		"limited_free", out[domain.TypeLimitedFree].Len(),
		"dropped", dropped,
	)
	return out, nil
}

// Partition splits ds on the TYPE column. It always returns both tiers and
// the number of rows that matched neither.
func Partition(ds *domain.Dataset) (domain.CategorizedDatasets, int, error) {
	if err := ds.RequireColumns(domain.ColumnType); err != nil {
		return nil, 0, err
	}

	out := make(domain.CategorizedDatasets, len(domain.HotspotTypes))
	kept := 0
	for _, t := range domain.HotspotTypes {
		t := t
		subset := ds.Filter(func(r domain.Row) bool { return r[domain.ColumnType] == string(t) })
		out[t] = subset
		kept += subset.Len()
	}
	return out, ds.Len() - kept, nil
}
