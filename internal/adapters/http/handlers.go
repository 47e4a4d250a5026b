package http

import (
	"bytes"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"google.golang.org/protobuf/proto"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
	"github.com/samirrijal/hotspotmap/internal/core/usecases"
	"github.com/samirrijal/hotspotmap/internal/pkg/render"
)

const mimeProtobuf = "application/x-protobuf"

// categoryParam resolves the :category path segment ("free", "limited-free"
// or the exact label).
func categoryParam(c *fiber.Ctx) (domain.HotspotType, error) {
	return domain.ParseHotspotType(c.Params("category"))
}

// chartName is the ?name= query value, defaulting to the category label.
func chartName(c *fiber.Ctx, category domain.HotspotType) string {
	return c.Query("name", string(category))
}

// selectionFromQuery rebuilds a selection from query parameters:
// hover_panel/hover_key for the highlight, filter_value (and optionally
// filter_field, default BORO) for the click filter.
func selectionFromQuery(c *fiber.Ctx) (*usecases.SelectionState, error) {
	state := usecases.NewSelectionState()

	if p := c.Query("hover_panel"); p != "" {
		panel, err := usecases.ParsePanel(p)
		if err != nil {
			return nil, err
		}
		state.PointerOver(domain.BarRef{Panel: panel, Key: c.Query("hover_key")})
	}
	if v := c.Query("filter_value"); v != "" {
		state.SetFilter(&domain.GroupKey{Field: c.Query("filter_field", domain.ColumnBoro), Value: v})
	}
	return state, nil
}

// ListDatasetsHandler returns the row count of each category.
func ListDatasetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !deps.Charts.Loaded() {
			return errServiceUnavailable(c, usecases.ErrNotLoaded.Error())
		}
		return c.JSON(deps.Charts.Summaries())
	}
}

// DatasetHotspotsHandler returns a page of typed hotspots for a category.
func DatasetHotspotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errNotFound(c, err.Error())
		}

		pg := pageFromQuery(c)
		hotspots, total, err := deps.Charts.Hotspots(category, pg.Offset, pg.Limit)
		if err != nil {
			return errFromService(c, err)
		}

		pg.Total = total
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: hotspots, Pagination: pg})
	}
}

// DatasetStatsHandler returns borough and provider counts with their maxima.
func DatasetStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errNotFound(c, err.Error())
		}

		stats, err := deps.Charts.Stats(category)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(stats)
	}
}

// ChartHandler returns the composite Vega-Lite spec of a category. Clients
// asking for application/x-protobuf get it as a google.protobuf.Struct.
func ChartHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errNotFound(c, err.Error())
		}
		name := chartName(c, category)

		if strings.Contains(c.Get(fiber.HeaderAccept), mimeProtobuf) {
			chart, err := deps.Charts.Build(c.UserContext(), category, name)
			if err != nil {
				return errFromService(c, err)
			}
			st, err := chart.Spec.ProtoStruct()
			if err != nil {
				return errInternal(c, err.Error())
			}
			data, err := proto.Marshal(st)
			if err != nil {
				return errInternal(c, err.Error())
			}
			c.Set(fiber.HeaderContentType, mimeProtobuf)
			return c.Send(data)
		}

		data, err := deps.Charts.ChartJSON(c.UserContext(), category, name)
		if err != nil {
			return errFromService(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(data)
	}
}

// ChartViewHandler evaluates the chart under the selection in the query.
func ChartViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errNotFound(c, err.Error())
		}
		state, err := selectionFromQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		view, err := deps.Charts.View(c.UserContext(), category, state, chartName(c, category))
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(view)
	}
}

// ChartPanelPNGHandler draws one bar panel of the evaluated view as a PNG.
func ChartPanelPNGHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errNotFound(c, err.Error())
		}
		panel, err := usecases.ParsePanel(c.Params("panel"))
		if err != nil {
			return errNotFound(c, err.Error())
		}
		state, err := selectionFromQuery(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		view, err := deps.Charts.View(c.UserContext(), category, state, chartName(c, category))
		if err != nil {
			return errFromService(c, err)
		}

		bars, maxCount := view.Boroughs, view.MaxBoroughCount
		if panel == domain.PanelProviders {
			bars, maxCount = view.Providers, view.MaxProviderCount
		}

		var buf bytes.Buffer
		if err := render.BarsPNG(&buf, view.Title, bars, maxCount); err != nil {
			if errors.Is(err, render.ErrNoBars) {
				return c.SendStatus(fiber.StatusNoContent)
			}
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(buf.Bytes())
	}
}
