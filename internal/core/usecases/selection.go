package usecases

import (
	"fmt"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
	"github.com/samirrijal/hotspotmap/internal/pkg/geospatial"
)

// panelFields maps each bar panel to the field its bars are keyed on.
var panelFields = map[domain.Panel]string{
	domain.PanelBoroughs:  domain.ColumnBoro,
	domain.PanelProviders: domain.ColumnProvider,
}

// ParsePanel validates a panel name.
func ParsePanel(s string) (domain.Panel, error) {
	p := domain.Panel(s)
	if _, ok := panelFields[p]; !ok {
		return "", fmt.Errorf("unknown panel %q", s)
	}
	return p, nil
}

// SelectionState tracks the two interactive selections of one chart session:
// the transient hover highlight and the persistent click filter.
// It is not safe for concurrent use; each session owns its own.
type SelectionState struct {
	hover  *domain.BarRef
	filter *domain.GroupKey
}

// NewSelectionState returns a state with nothing hovered or filtered.
func NewSelectionState() *SelectionState {
	return &SelectionState{}
}

// PointerOver highlights the bar under the pointer.
func (s *SelectionState) PointerOver(ref domain.BarRef) {
	r := ref
	s.hover = &r
}

// PointerOut clears the highlight.
func (s *SelectionState) PointerOut() {
	s.hover = nil
}

// Click highlights the bar and, on the borough panel, toggles the filter on
// the clicked key. The filter is bound to the borough chart's y field, so the
// provider panel and the points are narrowed to that borough.
func (s *SelectionState) Click(ref domain.BarRef) {
	s.PointerOver(ref)
	if ref.Panel != domain.PanelBoroughs {
		return
	}
	if s.filter != nil && s.filter.Value == ref.Key {
		s.filter = nil
		return
	}
	s.filter = &domain.GroupKey{Field: panelFields[ref.Panel], Value: ref.Key}
}

// Clear drops both selections.
func (s *SelectionState) Clear() {
	s.hover = nil
	s.filter = nil
}

// Hover returns the highlighted bar, if any.
func (s *SelectionState) Hover() *domain.BarRef { return s.hover }

// Filter returns the active click filter, if any.
func (s *SelectionState) Filter() *domain.GroupKey { return s.filter }

// SetFilter installs a filter directly, e.g. from a query string.
func (s *SelectionState) SetFilter(k *domain.GroupKey) { s.filter = k }

// View evaluates the composite chart under state: the borough panel always
// shows the full data; the provider panel and points show the filtered rows.
// Axis maxima come from the full data so scales stay put while filtering.
func View(data *domain.Dataset, state *SelectionState, name string) (*domain.ChartView, error) {
	if state == nil {
		state = NewSelectionState()
	}
	hotspots, err := validatedHotspots(data)
	if err != nil {
		return nil, err
	}
	full, err := Distribution(data)
	if err != nil {
		return nil, err
	}

	filtered := data
	points := hotspots
	if f := state.Filter(); f != nil {
		if err := data.RequireColumns(f.Field); err != nil {
			return nil, err
		}
		filtered = data.Filter(f.Matches)
		points = make([]domain.Hotspot, 0, filtered.Len())
		for i, r := range data.Rows {
			if f.Matches(r) {
				points = append(points, hotspots[i])
			}
		}
	}
	providers, err := CountBy(filtered, domain.ColumnProvider)
	if err != nil {
		return nil, err
	}

	locations := make([]domain.GeoPoint, len(points))
	for i, p := range points {
		locations[i] = p.Location
	}

	return &domain.ChartView{
		Title:            ChartTitle(name),
		Boroughs:         bars(full.Boroughs, domain.PanelBoroughs, state.Hover()),
		Providers:        bars(providers, domain.PanelProviders, state.Hover()),
		Points:           points,
		MaxBoroughCount:  full.MaxBoroughCount,
		MaxProviderCount: full.MaxProviderCount,
		Hover:            state.Hover(),
		Filter:           state.Filter(),
		Bounds:           geospatial.BoundsOf(locations),
	}, nil
}

func bars(groups []domain.GroupCount, panel domain.Panel, hover *domain.BarRef) []domain.Bar {
	out := make([]domain.Bar, len(groups))
	for i, g := range groups {
		out[i] = domain.Bar{
			Key:         g.Key,
			Count:       g.Count,
			Highlighted: hover != nil && hover.Panel == panel && hover.Key == g.Key,
		}
	}
	return out
}
