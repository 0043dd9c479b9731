package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Dim is the spatial dimensionality of a hit or marker
type Dim string

const (
	Dim2D Dim = "2D"
	Dim3D Dim = "3D"
)

// Dims lists the dimensions a viewer keeps separate views for
var Dims = []Dim{Dim3D, Dim2D}

// Valid reports whether d is a known dimension
func (d Dim) Valid() bool {
	return d == Dim2D || d == Dim3D
}

// Hit is a single localized energy deposit
type Hit struct {
	ID         string     `json:"id,omitempty" yaml:"id,omitempty"`
	Dim        Dim        `json:"type" yaml:"type" validate:"required,oneof=2D 3D"`
	HitType    string     `json:"hitType,omitempty" yaml:"hitType,omitempty"`
	Position   Position   `json:"position" yaml:"position"`
	Width      *Position  `json:"width,omitempty" yaml:"width,omitempty"`
	Energy     float64    `json:"energy" yaml:"energy"`
	Label      string     `json:"label,omitempty" yaml:"label,omitempty"`
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty" validate:"dive"`
}

// TypeTag returns the tag the hit-type filter matches against: the
// projection sub-tag when present, otherwise the dimension.
func (h *Hit) TypeTag() string {
	if h.HitType != "" {
		return h.HitType
	}
	return string(h.Dim)
}

// MCHit is a Monte Carlo truth hit
type MCHit struct {
	Hit `yaml:",inline"`
	PDG int `json:"pdg" yaml:"pdg"`
}

// Property is a named scalar attached to a hit. The value is kept raw so that
// non-numeric values survive decoding and can be classified later.
type Property struct {
	Name  string          `json:"name" validate:"required"`
	Value json.RawMessage `json:"value"`
}

// NumericProperty builds a property holding a number
func NumericProperty(name string, v float64) Property {
	raw, _ := json.Marshal(v)
	return Property{Name: name, Value: raw}
}

// UnmarshalJSON accepts both {"name": n, "value": v} and the single-key
// form {n: v} written by the event exporter. An object with only a "name"
// key is the single-key form of a property called name.
func (p *Property) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse property: %w", err)
	}

	rawName, hasName := fields["name"]
	rawValue, hasValue := fields["value"]
	if hasName && hasValue && len(fields) == 2 {
		var name string
		if err := json.Unmarshal(rawName, &name); err == nil {
			p.Name = name
			p.Value = rawValue
			return nil
		}
	}

	if len(fields) != 1 {
		return fmt.Errorf("property must have exactly one key, got %d", len(fields))
	}
	for name, value := range fields {
		p.Name = name
		p.Value = value
	}
	return nil
}

// UnmarshalYAML accepts the same two shapes as UnmarshalJSON
func (p *Property) UnmarshalYAML(unmarshal func(any) error) error {
	var fields map[string]any
	if err := unmarshal(&fields); err != nil {
		return fmt.Errorf("failed to parse property: %w", err)
	}

	name, hasName := fields["name"].(string)
	value, hasValue := fields["value"]
	if hasName && hasValue && len(fields) == 2 {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode property %s: %w", name, err)
		}
		p.Name = name
		p.Value = raw
		return nil
	}

	if len(fields) != 1 {
		return fmt.Errorf("property must have exactly one key, got %d", len(fields))
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode property %s: %w", k, err)
		}
		p.Name = k
		p.Value = raw
	}
	return nil
}

// MarshalYAML writes the property in the {name, value} form
func (p Property) MarshalYAML() (any, error) {
	var v any
	if len(p.Value) > 0 {
		dec := json.NewDecoder(bytes.NewReader(p.Value))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("failed to decode property %s: %w", p.Name, err)
		}
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				v = f
			}
		}
	}
	return map[string]any{"name": p.Name, "value": v}, nil
}
