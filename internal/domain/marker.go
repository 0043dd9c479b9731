package domain

// MarkerKind identifies the overlay shape of a marker
type MarkerKind string

const (
	MarkerRing  MarkerKind = "ring"
	MarkerPoint MarkerKind = "point"
	MarkerLine  MarkerKind = "line"
)

// Marker is an overlay annotation, such as a vertex ring
type Marker struct {
	ID       string     `json:"id,omitempty" yaml:"id,omitempty"`
	Kind     MarkerKind `json:"marker" yaml:"marker" validate:"required"`
	Dim      Dim        `json:"type" yaml:"type" validate:"required,oneof=2D 3D"`
	HitType  string     `json:"hitType,omitempty" yaml:"hitType,omitempty"`
	Position Position   `json:"position" yaml:"position"`
	End      *Position  `json:"end,omitempty" yaml:"end,omitempty"`
	Inner    float64    `json:"inner,omitempty" yaml:"inner,omitempty"`
	Outer    float64    `json:"outer,omitempty" yaml:"outer,omitempty"`
	Colour   string     `json:"colour,omitempty" yaml:"colour,omitempty"`
	Label    string     `json:"label,omitempty" yaml:"label,omitempty"`
}

// TypeTag mirrors Hit.TypeTag so markers follow the same hit-type filter
func (m *Marker) TypeTag() string {
	if m.HitType != "" {
		return m.HitType
	}
	return string(m.Dim)
}
