package usecases_test

import (
	"context"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
)

var hotspotColumns = []string{"OBJECTID", "TYPE", "BORO", "PROVIDER", "LON", "LAT"}

func hotspot(typ, boro, provider, lon, lat string) domain.Row {
	return domain.Row{"TYPE": typ, "BORO": boro, "PROVIDER": provider, "LON": lon, "LAT": lat}
}

func dataset(rows ...domain.Row) *domain.Dataset {
	return &domain.Dataset{Columns: hotspotColumns, Rows: rows}
}

// scenarioRows is the three-row example used across the suite.
func scenarioRows() []domain.Row {
	return []domain.Row{
		hotspot("Free", "Manhattan", "LinkNYC", "-73.9", "40.7"),
		hotspot("Free", "Manhattan", "LinkNYC", "-73.91", "40.71"),
		hotspot("Limited Free", "Queens", "Other", "-73.8", "40.7"),
	}
}

// --- Mock HotspotSource ---

type mockSource struct {
	loadFn func(ctx context.Context) (*domain.Dataset, error)
	calls  int
}

func (m *mockSource) Load(ctx context.Context) (*domain.Dataset, error) {
	m.calls++
	if m.loadFn != nil {
		return m.loadFn(ctx)
	}
	return dataset(), nil
}

func staticSource(ds *domain.Dataset) *mockSource {
	return &mockSource{loadFn: func(ctx context.Context) (*domain.Dataset, error) { return ds, nil }}
}
