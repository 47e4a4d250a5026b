package usecases

import (
	"sort"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
)

// CountBy counts rows per distinct value of field, largest group first.
// Equal counts are ordered by key so the result does not depend on row order.
func CountBy(ds *domain.Dataset, field string) ([]domain.GroupCount, error) {
	if err := ds.RequireColumns(field); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, r := range ds.Rows {
		counts[r[field]]++
	}

	out := make([]domain.GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// MaxCount returns the size of the largest group, 0 for no groups.
func MaxCount(groups []domain.GroupCount) int {
	best := 0
	for _, g := range groups {
		if g.Count > best {
			best = g.Count
		}
	}
	return best
}

// Distribution computes the borough and provider aggregates of ds.
func Distribution(ds *domain.Dataset) (*domain.DistributionStats, error) {
	boroughs, err := CountBy(ds, domain.ColumnBoro)
	if err != nil {
		return nil, err
	}
	providers, err := CountBy(ds, domain.ColumnProvider)
	if err != nil {
		return nil, err
	}
	return &domain.DistributionStats{
		Boroughs:         boroughs,
		Providers:        providers,
		MaxBoroughCount:  MaxCount(boroughs),
		MaxProviderCount: MaxCount(providers),
	}, nil
}
