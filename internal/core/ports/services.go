package ports

import (
	"context"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
)

// DatasetLoaded announces a fresh import of the hotspot table.
type DatasetLoaded struct {
	Source string                     `json:"source"`
	Rows   int                        `json:"rows"`
	Counts map[domain.HotspotType]int `json:"counts"`
}

// SelectionChanged records a pointer event applied to a chart session.
type SelectionChanged struct {
	Session  string             `json:"session"`
	Category domain.HotspotType `json:"category"`
	Hover    *domain.BarRef     `json:"hover,omitempty"`
	Filter   *domain.GroupKey   `json:"filter,omitempty"`
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishDatasetLoaded(ctx context.Context, ev *DatasetLoaded) error
	PublishSelection(ctx context.Context, ev *SelectionChanged) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeDatasetLoaded(ctx context.Context, handler func(ctx context.Context, ev *DatasetLoaded) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
