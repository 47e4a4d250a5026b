package domain

// Panel identifies one bar chart of the composite view.
type Panel string

const (
	PanelBoroughs  Panel = "boroughs"
	PanelProviders Panel = "providers"
)

// BarRef points at one bar: the panel and the group key it draws.
type BarRef struct {
	Panel Panel  `json:"panel"`
	Key   string `json:"key"`
}

// GroupKey is a field/value predicate over dataset rows.
type GroupKey struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Matches reports whether the row carries the key's value.
func (k GroupKey) Matches(r Row) bool {
	return r[k.Field] == k.Value
}

// Bar is one rendered bar of a ChartView.
type Bar struct {
	Key         string `json:"key"`
	Count       int    `json:"count"`
	Highlighted bool   `json:"highlighted"`
}

// ChartView is the evaluated state of the composite chart under a selection.
type ChartView struct {
	Title            string    `json:"title"`
	Boroughs         []Bar     `json:"boroughs"`
	Providers        []Bar     `json:"providers"`
	Points           []Hotspot `json:"points"`
	MaxBoroughCount  int       `json:"max_borough_count"`
	MaxProviderCount int       `json:"max_provider_count"`
	Hover            *BarRef   `json:"hover,omitempty"`
	Filter           *GroupKey `json:"filter,omitempty"`
	Bounds           *Bounds   `json:"bounds,omitempty"`
}
