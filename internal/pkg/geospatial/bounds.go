package geospatial

import (
	"fmt"

	"github.com/golang/geo/s2"

	"github.com/samirrijal/hotspotmap/internal/core/domain"
)

// Validate rejects coordinates outside WGS 84 degree ranges.
func Validate(p domain.GeoPoint) error {
	if !s2.LatLngFromDegrees(p.Lat, p.Lon).IsValid() {
		return fmt.Errorf("coordinate out of range: lat=%g lon=%g", p.Lat, p.Lon)
	}
	return nil
}

// BoundsOf returns the smallest box holding every point, or nil when
// points is empty.
func BoundsOf(points []domain.GeoPoint) *domain.Bounds {
	rect := s2.EmptyRect()
	for _, p := range points {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
	}
	if rect.IsEmpty() {
		return nil
	}
	lo, hi := rect.Lo(), rect.Hi()
	return &domain.Bounds{
		MinLat: lo.Lat.Degrees(),
		MinLon: lo.Lng.Degrees(),
		MaxLat: hi.Lat.Degrees(),
		MaxLon: hi.Lng.Degrees(),
	}
}
