// Package vegalite models the subset of the Vega-Lite v2 grammar used by the
// hotspot charts. Values marshal straight to a spec the Vega runtime renders.
package vegalite

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// SchemaURL is the Vega-Lite version the selection syntax below targets.
const SchemaURL = "https://vega.github.io/schema/vega-lite/v2.6.0.json"

// Field types.
const (
	Quantitative = "quantitative"
	Ordinal      = "ordinal"
	Nominal      = "nominal"
)

// Spec is a unit, layer or concat view. Exactly one of Mark, Layer, HConcat
// or VConcat is expected to be set.
type Spec struct {
	Schema     string                `json:"$schema,omitempty"`
	Title      string                `json:"title,omitempty"`
	Data       *Data                 `json:"data,omitempty"`
	Width      int                   `json:"width,omitempty"`
	Height     int                   `json:"height,omitempty"`
	Projection *Projection           `json:"projection,omitempty"`
	Mark       *Mark                 `json:"mark,omitempty"`
	Encoding   *Encoding             `json:"encoding,omitempty"`
	Selection  map[string]*Selection `json:"selection,omitempty"`
	Transform  []Transform           `json:"transform,omitempty"`
	Layer      []*Spec               `json:"layer,omitempty"`
	HConcat    []*Spec               `json:"hconcat,omitempty"`
	VConcat    []*Spec               `json:"vconcat,omitempty"`
}

// Data is either inline values or a URL the runtime fetches.
type Data struct {
	URL    string           `json:"url,omitempty"`
	Values []map[string]any `json:"values,omitempty"`
}

// MarshalJSON writes url data as {"url":...} and everything else as inline
// values. An empty table still carries "values":[].
func (d Data) MarshalJSON() ([]byte, error) {
	if d.URL != "" {
		return json.Marshal(struct {
			URL string `json:"url"`
		}{d.URL})
	}
	values := d.Values
	if values == nil {
		values = []map[string]any{}
	}
	return json.Marshal(struct {
		Values []map[string]any `json:"values"`
	}{values})
}

type Projection struct {
	Type string `json:"type"`
}

type Mark struct {
	Type   string  `json:"type"`
	Stroke string  `json:"stroke,omitempty"`
	Fill   string  `json:"fill,omitempty"`
	Filled bool    `json:"filled,omitempty"`
	Size   float64 `json:"size,omitempty"`
}

type Encoding struct {
	X         *FieldDef `json:"x,omitempty"`
	Y         *FieldDef `json:"y,omitempty"`
	Longitude *FieldDef `json:"longitude,omitempty"`
	Latitude  *FieldDef `json:"latitude,omitempty"`
	Color     *ValueDef `json:"color,omitempty"`
	Size      *ValueDef `json:"size,omitempty"`
}

type FieldDef struct {
	Field     string     `json:"field,omitempty"`
	Type      string     `json:"type"`
	Aggregate string     `json:"aggregate,omitempty"`
	Axis      *Axis      `json:"axis,omitempty"`
	Sort      *SortField `json:"sort,omitempty"`
	Scale     *Scale     `json:"scale,omitempty"`
}

type Axis struct {
	Title string `json:"title"`
}

// SortField orders a discrete axis by an aggregate of another field.
type SortField struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Order string `json:"order"`
}

type Scale struct {
	Domain []float64 `json:"domain,omitempty"`
}

// ValueDef is a constant channel value with an optional condition.
type ValueDef struct {
	Value     any        `json:"value"`
	Condition *Condition `json:"condition,omitempty"`
}

// Condition switches a channel value when Test (an expression) or
// Selection holds.
type Condition struct {
	Test      string `json:"test,omitempty"`
	Selection string `json:"selection,omitempty"`
	Value     any    `json:"value"`
}

// Selection is a v2 interactive selection definition.
type Selection struct {
	Type      string   `json:"type"`
	Empty     string   `json:"empty,omitempty"`
	On        string   `json:"on,omitempty"`
	Encodings []string `json:"encodings,omitempty"`
	Fields    []string `json:"fields,omitempty"`
}

// Transform holds one data transform; only selection filters are used.
type Transform struct {
	Filter *Predicate `json:"filter,omitempty"`
}

// Predicate references a selection by name.
type Predicate struct {
	Selection string `json:"selection"`
}

// NamedSelection binds a definition to the name views refer to it by.
// Declaring and filtering through the same value keeps the two in step.
type NamedSelection struct {
	Name string
	Def  *Selection
}

// Ref returns the filter transform for this selection.
func (n NamedSelection) Ref() Transform {
	return Transform{Filter: &Predicate{Selection: n.Name}}
}

// Declare adds the selection to a unit spec.
func (n NamedSelection) Declare(s *Spec) {
	if s.Selection == nil {
		s.Selection = make(map[string]*Selection)
	}
	s.Selection[n.Name] = n.Def
}

// Walk visits s and every nested view depth-first.
func (s *Spec) Walk(fn func(*Spec)) {
	if s == nil {
		return
	}
	fn(s)
	for _, group := range [][]*Spec{s.Layer, s.HConcat, s.VConcat} {
		for _, child := range group {
			child.Walk(fn)
		}
	}
}

// Validate checks that every selection a filter or condition names is
// declared somewhere in the tree.
func (s *Spec) Validate() error {
	declared := make(map[string]bool)
	s.Walk(func(v *Spec) {
		for name := range v.Selection {
			declared[name] = true
		}
	})

	var err error
	s.Walk(func(v *Spec) {
		if err != nil {
			return
		}
		for _, t := range v.Transform {
			if t.Filter != nil && !declared[t.Filter.Selection] {
				err = fmt.Errorf("filter references undeclared selection %q", t.Filter.Selection)
				return
			}
		}
		if v.Encoding != nil {
			for _, vd := range []*ValueDef{v.Encoding.Color, v.Encoding.Size} {
				if vd != nil && vd.Condition != nil && vd.Condition.Selection != "" &&
					!declared[vd.Condition.Selection] {
					err = fmt.Errorf("condition references undeclared selection %q", vd.Condition.Selection)
					return
				}
			}
		}
	})
	return err
}

// ProtoStruct converts the spec into a google.protobuf.Struct.
func (s *Spec) ProtoStruct() (*structpb.Struct, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal spec: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode spec: %w", err)
	}
	return structpb.NewStruct(m)
}
