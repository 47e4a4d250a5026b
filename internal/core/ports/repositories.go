package ports

import (
	"context"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
)

// HotspotSource produces the full hotspot table.
type HotspotSource interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}

// HotspotRepository persists the hotspot table.
type HotspotRepository interface {
	HotspotSource
	// ReplaceAll swaps the stored table for ds and returns the rows written.
	ReplaceAll(ctx context.Context, ds *domain.Dataset) (int, error)
	Count(ctx context.Context) (int, error)
}
