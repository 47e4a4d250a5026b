package domain

import (
	"strconv"
	"strings"
)

// Column names of the NYC public WiFi hotspot export.
const (
	ColumnType     = "TYPE"
	ColumnBoro     = "BORO"
	ColumnProvider = "PROVIDER"
	ColumnLon      = "LON"
	ColumnLat      = "LAT"
)

// HotspotType is the access tier of a hotspot.
type HotspotType string

const (
	TypeFree        HotspotType = "Free"
	TypeLimitedFree HotspotType = "Limited Free"
)

// HotspotTypes lists the tiers the loader keeps, in display order.
var HotspotTypes = []HotspotType{TypeFree, TypeLimitedFree}

// Slug returns the URL path segment for the tier ("free", "limited-free").
func (t HotspotType) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(t)), " ", "-")
}

// ParseHotspotType accepts either the exact label or its slug.
func ParseHotspotType(s string) (HotspotType, error) {
	for _, t := range HotspotTypes {
		if s == string(t) || strings.EqualFold(s, t.Slug()) {
			return t, nil
		}
	}
	return "", ErrUnknownCategory
}

// Row is one raw CSV record keyed by column name.
type Row map[string]string

// Dataset is an ordered table of hotspot rows sharing one header.
// Rows are never mutated after load; filters return new Datasets.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// HasColumn reports whether the header contains name.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RequireColumns returns a *SchemaError for the first absent column.
func (d *Dataset) RequireColumns(names ...string) error {
	for _, n := range names {
		if !d.HasColumn(n) {
			return &SchemaError{Column: n}
		}
	}
	return nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Filter returns a Dataset holding the rows keep accepts, in order.
func (d *Dataset) Filter(keep func(Row) bool) *Dataset {
	out := &Dataset{Columns: d.Columns, Rows: make([]Row, 0)}
	for _, r := range d.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Hotspots converts every row into a typed Hotspot.
// BORO, PROVIDER, LON and LAT must be present and LON/LAT numeric.
func (d *Dataset) Hotspots() ([]Hotspot, error) {
	if err := d.RequireColumns(ColumnBoro, ColumnProvider, ColumnLon, ColumnLat); err != nil {
		return nil, err
	}
	out := make([]Hotspot, 0, len(d.Rows))
	for i, r := range d.Rows {
		lon, err := parseCoord(i, ColumnLon, r[ColumnLon])
		if err != nil {
			return nil, err
		}
		lat, err := parseCoord(i, ColumnLat, r[ColumnLat])
		if err != nil {
			return nil, err
		}
		out = append(out, Hotspot{
			RowID:    i,
			Type:     HotspotType(r[ColumnType]),
			Boro:     r[ColumnBoro],
			Provider: r[ColumnProvider],
			Location: GeoPoint{Lat: lat, Lon: lon},
		})
	}
	return out, nil
}

func parseCoord(row int, column, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &ValueError{Row: row, Column: column, Value: raw, Err: err}
	}
	return v, nil
}

// Hotspot is the typed view of one dataset row.
type Hotspot struct {
	RowID    int         `json:"row_id"`
	Type     HotspotType `json:"type"`
	Boro     string      `json:"boro"`
	Provider string      `json:"provider"`
	Location GeoPoint    `json:"location"`
}

// CategorizedDatasets maps each kept tier to its subset.
// The loader always populates both TypeFree and TypeLimitedFree.
type CategorizedDatasets map[HotspotType]*Dataset

// GroupCount is the number of rows sharing one value of a field.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DatasetSummary is the row count of one category.
type DatasetSummary struct {
	Type HotspotType `json:"type"`
	Slug string      `json:"slug"`
	Rows int         `json:"rows"`
}

// DistributionStats holds the aggregates behind both bar charts.
type DistributionStats struct {
	Boroughs         []GroupCount `json:"boroughs"`
	Providers        []GroupCount `json:"providers"`
	MaxBoroughCount  int          `json:"max_borough_count"`
	MaxProviderCount int          `json:"max_provider_count"`
}
