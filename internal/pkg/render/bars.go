// Package render draws the bar panels of a chart view as PNG images, for
// clients that cannot run the Vega runtime.
package render

import (
	"errors"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
)

// ErrNoBars is returned when a panel has nothing to draw.
var ErrNoBars = errors.New("render: no bars")

var (
	colorBase      = drawing.ColorFromHex("D3D3D3") // LightGrey
	colorHighlight = drawing.ColorFromHex("4682B4") // SteelBlue
	colorStroke    = drawing.ColorBlack
)

const (
	barWidth   = 40
	barSpacing = 12
	minWidth   = 360
	height     = 400
)

// BarsPNG writes one panel as a PNG. maxCount fixes the value axis so panels
// rendered under different filters share a scale.
func BarsPNG(w io.Writer, title string, bars []domain.Bar, maxCount int) error {
	if len(bars) == 0 {
		return ErrNoBars
	}
	if maxCount < 1 {
		maxCount = 1
	}

	values := make([]chart.Value, len(bars))
	for i, b := range bars {
		fill := colorBase
		if b.Highlighted {
			fill = colorHighlight
		}
		values[i] = chart.Value{
			Label: b.Key,
			Value: float64(b.Count),
			Style: chart.Style{FillColor: fill, StrokeColor: colorStroke, StrokeWidth: 1},
		}
	}

	width := len(bars)*(barWidth+barSpacing) + 120
	if width < minWidth {
		width = minWidth
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  "Number of Hotspot",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
		},
		Bars: values,
	}
	return bc.Render(chart.PNG, w)
}
