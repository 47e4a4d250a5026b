package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.GetRespHeader("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		// Default cache times by endpoint pattern
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "no-cache" // Reflects live state

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case strings.HasSuffix(path, "/view"):
			ttl = "private, max-age=0" // Depends on the caller's selection

		case strings.HasPrefix(path, "/v1/charts/"):
			ttl = "public, max-age=600" // Specs change only on reload

		case strings.HasPrefix(path, "/v1/datasets"):
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
