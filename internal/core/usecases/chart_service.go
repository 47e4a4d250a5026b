package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
	"github.com/samirrijal/hotspotmap/internal/core/ports"
	"github.com/samirrijal/hotspotmap/internal/pkg/metrics"
	"github.com/samirrijal/hotspotmap/internal/pkg/telemetry"
)

// ErrNotLoaded is returned before the first successful Reload.
var ErrNotLoaded = errors.New("hotspot dataset not loaded")

// ChartService serves the loaded hotspot subsets and the charts built on them.
type ChartService struct {
	loader *LoaderService
	cache  ports.CacheService
	ttl    int

	mu         sync.RWMutex
	datasets   domain.CategorizedDatasets
	generation uint64
}

// NewChartService creates a new ChartService. cache may be nil.
func NewChartService(loader *LoaderService, cache ports.CacheService, ttlSeconds int) *ChartService {
	return &ChartService{loader: loader, cache: cache, ttl: ttlSeconds}
}

// Reload reads the source again and swaps the served subsets.
// Cached charts from earlier generations are no longer looked up.
func (s *ChartService) Reload(ctx context.Context) error {
	datasets, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.datasets = datasets
	s.generation++
	s.mu.Unlock()
	return nil
}

// Loaded reports whether a dataset has been read since start.
func (s *ChartService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.datasets != nil
}

// Generation counts successful reloads.
func (s *ChartService) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Dataset returns the subset of one category.
func (s *ChartService) Dataset(category domain.HotspotType) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.datasets == nil {
		return nil, ErrNotLoaded
	}
	ds, ok := s.datasets[category]
	if !ok {
		return nil, domain.ErrUnknownCategory
	}
	return ds, nil
}

// Summaries returns the row count of each category.
func (s *ChartService) Summaries() []domain.DatasetSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DatasetSummary, 0, len(domain.HotspotTypes))
	for _, t := range domain.HotspotTypes {
		out = append(out, domain.DatasetSummary{Type: t, Slug: t.Slug(), Rows: s.datasets[t].Len()})
	}
	return out
}

// Hotspots returns a page of typed hotspots and the category total.
func (s *ChartService) Hotspots(category domain.HotspotType, offset, limit int) ([]domain.Hotspot, int, error) {
	ds, err := s.Dataset(category)
	if err != nil {
		return nil, 0, err
	}
	all, err := ds.Hotspots()
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset >= total {
		return []domain.Hotspot{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Stats returns the borough and provider aggregates of one category.
func (s *ChartService) Stats(category domain.HotspotType) (*domain.DistributionStats, error) {
	ds, err := s.Dataset(category)
	if err != nil {
		return nil, err
	}
	return Distribution(ds)
}

// Build constructs the composite chart for one category.
func (s *ChartService) Build(ctx context.Context, category domain.HotspotType, name string) (*domain.CompositeChart, error) {
	_, span := telemetry.Tracer().Start(ctx, "ChartService.Build")
	defer span.End()
	span.SetAttributes(attribute.String("hotspot.category", string(category)))

	ds, err := s.Dataset(category)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	start := time.Now()
	chart, err := BuildChart(ds, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("build %s chart: %w", category, err)
	}
	metrics.ChartBuilds.WithLabelValues(string(category)).Inc()
	metrics.ChartBuildDuration.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("hotspot.rows", ds.Len()))
	return chart, nil
}

// ChartJSON returns the serialized chart spec, served from cache when possible.
func (s *ChartService) ChartJSON(ctx context.Context, category domain.HotspotType, name string) ([]byte, error) {
	s.mu.RLock()
	cacheKey := fmt.Sprintf("charts:v%d:%s:%s", s.generation, category.Slug(), name)
	s.mu.RUnlock()

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			metrics.CacheHits.WithLabelValues("chart").Inc()
			return data, nil
		}
		metrics.CacheMisses.WithLabelValues("chart").Inc()
	}

	chart, err := s.Build(ctx, category, name)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(chart.Spec)
	if err != nil {
		return nil, fmt.Errorf("marshal chart: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, data, s.ttl)
	}
	return data, nil
}

// View evaluates the chart of one category under a selection state.
func (s *ChartService) View(ctx context.Context, category domain.HotspotType, state *SelectionState, name string) (*domain.ChartView, error) {
	_, span := telemetry.Tracer().Start(ctx, "ChartService.View")
	defer span.End()

	ds, err := s.Dataset(category)
	if err != nil {
		return nil, err
	}
	view, err := View(ds, state, name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return view, nil
}

// IsDataError reports whether err comes from the shape or content of the
// data rather than from infrastructure.
func IsDataError(err error) bool {
	var se *domain.SchemaError
	var ve *domain.ValueError
	return errors.As(err, &se) || errors.As(err, &ve)
}
