package usecases_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
	"github.com/samirrijal/hotspotmap/internal/core/usecases"
)

func mixedRows() []domain.Row {
	return []domain.Row{
		hotspot("Free", "Manhattan", "LinkNYC", "-73.99", "40.75"),
		hotspot("Free", "Brooklyn", "LinkNYC", "-73.95", "40.65"),
		hotspot("Free", "Manhattan", "Transit Wireless", "-73.98", "40.76"),
		hotspot("Free", "Manhattan", "LinkNYC", "-73.97", "40.77"),
		hotspot("Free", "Queens", "SPECTRUM", "-73.80", "40.70"),
		hotspot("Free", "Brooklyn", "LinkNYC", "-73.94", "40.68"),
	}
}

func TestCountBy_SortedDescending(t *testing.T) {
	groups, err := usecases.CountBy(dataset(mixedRows()...), "BORO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.GroupCount{
		{Key: "Manhattan", Count: 3},
		{Key: "Brooklyn", Count: 2},
		{Key: "Queens", Count: 1},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("expected %v, got %v", want, groups)
	}
}

func TestMaxCount_MatchesLargestGroup(t *testing.T) {
	stats, err := usecases.Distribution(dataset(mixedRows()...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.MaxBoroughCount != 3 {
		t.Errorf("expected max borough count 3, got %d", stats.MaxBoroughCount)
	}
	if stats.MaxProviderCount != 4 {
		t.Errorf("expected max provider count 4, got %d", stats.MaxProviderCount)
	}
}

func TestMaxCount_Empty(t *testing.T) {
	if got := usecases.MaxCount(nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestDistribution_OrderIndependent(t *testing.T) {
	rows := mixedRows()
	reversed := make([]domain.Row, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	a, err := usecases.Distribution(dataset(rows...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := usecases.Distribution(dataset(reversed...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("distribution depends on row order:\n%v\n%v", a, b)
	}
}

func TestCountBy_MissingColumn(t *testing.T) {
	ds := &domain.Dataset{Columns: []string{"TYPE", "BORO"}, Rows: []domain.Row{{"TYPE": "Free", "BORO": "Bronx"}}}
	_, err := usecases.CountBy(ds, "PROVIDER")

	var se *domain.SchemaError
	if !errors.As(err, &se) || se.Column != "PROVIDER" {
		t.Fatalf("expected SchemaError for PROVIDER, got %v", err)
	}
}
