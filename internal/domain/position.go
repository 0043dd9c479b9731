package domain

import "math"

// Position is a point in detector coordinates
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Extent is the per-axis min/max of a set of positions
type Extent struct {
	Min Position `json:"min"`
	Max Position `json:"max"`
}

// Center returns the midpoint of the extent
func (e Extent) Center() Position {
	return Position{
		X: (e.Min.X + e.Max.X) / 2,
		Y: (e.Min.Y + e.Max.Y) / 2,
		Z: (e.Min.Z + e.Max.Z) / 2,
	}
}

// Bounds returns the extent of the given hits. The second return value is false
// when there are no hits to bound.
func Bounds(hits []*Hit) (Extent, bool) {
	if len(hits) == 0 {
		return Extent{}, false
	}

	ext := Extent{
		Min: Position{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: Position{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, h := range hits {
		p := h.Position
		ext.Min.X = math.Min(ext.Min.X, p.X)
		ext.Min.Y = math.Min(ext.Min.Y, p.Y)
		ext.Min.Z = math.Min(ext.Min.Z, p.Z)
		ext.Max.X = math.Max(ext.Max.X, p.X)
		ext.Max.Y = math.Max(ext.Max.Y, p.Y)
		ext.Max.Z = math.Max(ext.Max.Z, p.Z)
	}
	return ext, true
}
