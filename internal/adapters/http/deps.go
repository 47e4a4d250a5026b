package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hotspotmap/internal/adapters/postgres"
	"github.com/samirrijal/hotspotmap/internal/adapters/valkey"
	"github.com/samirrijal/hotspotmap/internal/core/ports"
	"github.com/samirrijal/hotspotmap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// Everything except Charts is optional.
type Dependencies struct {
	Charts    *usecases.ChartService
	Publisher ports.EventPublisher
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
