package domain

import "github.com/samirrijal/hotspotmap/internal/pkg/vegalite"

// CompositeChart is the linked borough / provider / map view of one dataset.
type CompositeChart struct {
	Title string             `json:"title"`
	Spec  *vegalite.Spec     `json:"spec"`
	Stats *DistributionStats `json:"stats"`
}
