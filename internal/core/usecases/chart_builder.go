package usecases

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
	"github.com/samirrijal/hotspotmap/internal/pkg/geospatial"
	"github.com/samirrijal/hotspotmap/internal/pkg/vegalite"
)

// GeographyURL is the NYC zip-code boundary file drawn under the points.
// The chart only references it; the rendering runtime fetches it.
const GeographyURL = "https://raw.githubusercontent.com/hvo/datasets/master/nyc_zip.geojson"

const (
	colorBase      = "LightGrey"
	colorHighlight = "SteelBlue"

	// highlightTest compares the hovered datum with the one being drawn
	// through the runtime's internal row id.
	highlightTest = "highlight._vgsid_==datum._vgsid_"

	mapSize        = 500
	pointMarkSize  = 200
	pointValueSize = 30
)

// Selections shared by the panels. The click filter keeps its historical
// PROVIDER name while being keyed on the borough chart's y channel.
var (
	highlightSelection = vegalite.NamedSelection{
		Name: "highlight",
		Def:  &vegalite.Selection{Type: "single", Empty: "all", On: "mouseover"},
	}
	filterSelection = vegalite.NamedSelection{
		Name: "PROVIDER",
		Def:  &vegalite.Selection{Type: "single", Empty: "all", Encodings: []string{"y"}},
	}
)

// ChartTitle is the heading of the stacked bar charts.
func ChartTitle(name string) string {
	return fmt.Sprintf("%s Hotspot Distribution", name)
}

// BuildChart produces the linked borough / provider / map chart for data.
// It never modifies data and yields the same spec for the same input.
func BuildChart(data *domain.Dataset, name string) (*domain.CompositeChart, error) {
	if _, err := validatedHotspots(data); err != nil {
		return nil, err
	}

	stats, err := Distribution(data)
	if err != nil {
		return nil, err
	}

	boroughs := boroughChart(stats.MaxBoroughCount)
	providers := providerChart(stats.MaxProviderCount)

	title := ChartTitle(name)
	root := &vegalite.Spec{
		Schema: vegalite.SchemaURL,
		Data:   &vegalite.Data{Values: inlineValues(data)},
		HConcat: []*vegalite.Spec{
			{Title: title, VConcat: []*vegalite.Spec{boroughs, providers}},
			{Layer: []*vegalite.Spec{background(), points()}},
		},
	}
	if err := root.Validate(); err != nil {
		return nil, fmt.Errorf("chart wiring: %w", err)
	}

	return &domain.CompositeChart{Title: title, Spec: root, Stats: stats}, nil
}

func boroughChart(maxCount int) *vegalite.Spec {
	s := &vegalite.Spec{
		Mark: &vegalite.Mark{Type: "bar", Stroke: "Black"},
		Encoding: &vegalite.Encoding{
			Y: &vegalite.FieldDef{
				Field: domain.ColumnBoro,
				Type:  vegalite.Ordinal,
				Axis:  &vegalite.Axis{Title: "Location of Hotspot"},
				Sort:  &vegalite.SortField{Field: domain.ColumnBoro, Op: "count", Order: "descending"},
			},
			X: &vegalite.FieldDef{
				Aggregate: "count",
				Type:      vegalite.Quantitative,
				Axis:      &vegalite.Axis{Title: "Number of Hotspot"},
				Scale:     &vegalite.Scale{Domain: []float64{0, float64(maxCount)}},
			},
			Color: highlightColor(),
		},
	}
	// Both selections live on this chart so one click updates both.
	highlightSelection.Declare(s)
	filterSelection.Declare(s)
	return s
}

func providerChart(maxCount int) *vegalite.Spec {
	s := &vegalite.Spec{
		Mark: &vegalite.Mark{Type: "bar", Stroke: "Black"},
		Encoding: &vegalite.Encoding{
			X: &vegalite.FieldDef{
				Field: domain.ColumnProvider,
				Type:  vegalite.Ordinal,
				Axis:  &vegalite.Axis{Title: "PROVIDER"},
				Sort:  &vegalite.SortField{Field: domain.ColumnProvider, Op: "count", Order: "descending"},
			},
			Y: &vegalite.FieldDef{
				Aggregate: "count",
				Type:      vegalite.Quantitative,
				Axis:      &vegalite.Axis{Title: "Number of Hotspot"},
				Scale:     &vegalite.Scale{Domain: []float64{0, float64(maxCount)}},
			},
			Color: highlightColor(),
		},
		Transform: []vegalite.Transform{filterSelection.Ref()},
	}
	highlightSelection.Declare(s)
	return s
}

func background() *vegalite.Spec {
	return &vegalite.Spec{
		Title:      "Map",
		Data:       &vegalite.Data{URL: GeographyURL},
		Width:      mapSize,
		Height:     mapSize,
		Projection: &vegalite.Projection{Type: "albersUsa"},
		Mark:       &vegalite.Mark{Type: "geoshape", Fill: "lightgray", Stroke: "white"},
	}
}

// points keeps the mark size and the encoded size apart; the encoding wins
// when rendered.
func points() *vegalite.Spec {
	return &vegalite.Spec{
		Mark: &vegalite.Mark{Type: "point", Filled: true, Size: pointMarkSize},
		Encoding: &vegalite.Encoding{
			Longitude: &vegalite.FieldDef{Field: domain.ColumnLon, Type: vegalite.Quantitative},
			Latitude:  &vegalite.FieldDef{Field: domain.ColumnLat, Type: vegalite.Quantitative},
			Color:     &vegalite.ValueDef{Value: colorHighlight},
			Size:      &vegalite.ValueDef{Value: pointValueSize},
		},
		Transform: []vegalite.Transform{filterSelection.Ref()},
	}
}

func highlightColor() *vegalite.ValueDef {
	return &vegalite.ValueDef{
		Value:     colorBase,
		Condition: &vegalite.Condition{Test: highlightTest, Value: colorHighlight},
	}
}

// validatedHotspots types every row and rejects coordinates outside WGS 84.
func validatedHotspots(data *domain.Dataset) ([]domain.Hotspot, error) {
	hotspots, err := data.Hotspots()
	if err != nil {
		return nil, err
	}
	for _, h := range hotspots {
		if err := geospatial.Validate(h.Location); err != nil {
			return nil, &domain.ValueError{
				Row:    h.RowID,
				Column: domain.ColumnLat + "/" + domain.ColumnLon,
				Value:  fmt.Sprintf("%g,%g", h.Location.Lat, h.Location.Lon),
				Err:    err,
			}
		}
	}
	return hotspots, nil
}

// inlineValues copies the rows into chart data, emitting LON/LAT as numbers.
func inlineValues(data *domain.Dataset) []map[string]any {
	values := make([]map[string]any, 0, len(data.Rows))
	for _, r := range data.Rows {
		v := make(map[string]any, len(data.Columns))
		for _, c := range data.Columns {
			v[c] = r[c]
		}
		for _, c := range []string{domain.ColumnLon, domain.ColumnLat} {
			if f, err := strconv.ParseFloat(strings.TrimSpace(r[c]), 64); err == nil {
				v[c] = f
			}
		}
		values = append(values, v)
	}
	return values
}
