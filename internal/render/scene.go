// Package render is the rendering collaborator: it turns resolved items into
// render groups (flat buffers the browser draws) and tracks their visibility.
// Nothing outside this package looks inside a Group beyond its ID.
package render

import (
	"fmt"
	"strconv"
	"sync"

	"hepevd/internal/domain"
	"hepevd/internal/selection"
)

// Layer names the kind of content a group holds
type Layer string

const (
	LayerGeometry Layer = "geometry"
	LayerHits     Layer = "hits"
	LayerMC       Layer = "mc"
	LayerMarkers  Layer = "markers"
	LayerParticle Layer = "particle"
)

// Style is the per-view drawing configuration
type Style struct {
	HitSize       float64 `json:"hit_size" yaml:"hit_size"`
	DefaultColour string  `json:"default_colour" yaml:"default_colour"`
	ColourMap     string  `json:"colour_map" yaml:"colour_map"`
}

// DefaultStyle returns the style used when none is configured
func DefaultStyle(dim domain.Dim) Style {
	size := 1.0
	if dim == domain.Dim2D {
		size = 2.0
	}
	return Style{HitSize: size, DefaultColour: "#808080", ColourMap: "viridis"}
}

func (s Style) defaultRGB() RGB {
	c, err := ParseHex(s.DefaultColour)
	if err != nil {
		return RGB{0.5, 0.5, 0.5}
	}
	return c
}

// Box is an axis-aligned detector volume
type Box struct {
	Center domain.Position `json:"center"`
	Size   domain.Position `json:"size"`
}

// Line is a segment between two points
type Line struct {
	From   domain.Position `json:"from"`
	To     domain.Position `json:"to"`
	Colour RGB             `json:"colour"`
}

// Ring is an annulus marker
type Ring struct {
	Center domain.Position `json:"center"`
	Inner  float64         `json:"inner"`
	Outer  float64         `json:"outer"`
	Colour RGB             `json:"colour"`
}

// Group is one drawable unit
type Group struct {
	ID        string    `json:"id"`
	View      string    `json:"view"`
	Layer     Layer     `json:"layer"`
	Key       string    `json:"key,omitempty"`
	Visible   bool      `json:"visible"`
	Count     int       `json:"count"`
	Size      float64   `json:"size,omitempty"`
	Positions []float32 `json:"positions,omitempty"`
	Colours   []float32 `json:"colours,omitempty"`
	Boxes     []Box     `json:"boxes,omitempty"`
	Lines     []Line    `json:"lines,omitempty"`
	Rings     []Ring    `json:"rings,omitempty"`
}

// GroupSpec describes what a new group should contain. Only the fields
// relevant to Layer are read.
type GroupSpec struct {
	View     string
	Layer    Layer
	Key      string
	Hits     []*domain.Hit
	Values   []selection.Value
	MCHits   []*domain.MCHit
	Markers  []*domain.Marker
	Geometry []domain.Volume
	Style    Style
}

// Scene owns the groups of one client. It is safe for concurrent use.
type Scene struct {
	mu      sync.Mutex
	seq     int
	groups  map[string]*Group
	order   []string
	pending []*Group
}

// NewScene creates an empty scene
func NewScene() *Scene {
	return &Scene{groups: make(map[string]*Group)}
}

// CreateGroup builds a group from spec and adds it to the scene, hidden
func (s *Scene) CreateGroup(spec GroupSpec) *Group {
	g := &Group{
		View:  spec.View,
		Layer: spec.Layer,
		Key:   spec.Key,
		Size:  spec.Style.HitSize,
	}

	switch spec.Layer {
	case LayerGeometry:
		fillGeometry(g, spec)
	case LayerMC:
		fillMC(g, spec)
	case LayerMarkers:
		fillMarkers(g, spec)
	default:
		fillHits(g, spec.Hits, Colours(spec.Values, spec.Style))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	g.ID = spec.View + "-" + string(spec.Layer) + "-" + strconv.Itoa(s.seq)
	s.groups[g.ID] = g
	s.order = append(s.order, g.ID)
	s.pending = append(s.pending, g)
	return g
}

// SetVisible flips the visibility of a group
func (s *Scene) SetVisible(g *Group, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.Visible = visible
}

// Clear removes a group from the scene
func (s *Scene) Clear(g *Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID]; !ok {
		return
	}
	delete(s.groups, g.ID)
	for i, id := range s.order {
		if id == g.ID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Drain returns the groups created since the previous call, so a client only
// receives each group's buffers once
func (s *Scene) Drain() []*Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// Visibility returns the visibility of every group by id
func (s *Scene) Visibility() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.groups))
	for id, g := range s.groups {
		out[id] = g.Visible
	}
	return out
}

// Groups returns every group in creation order
func (s *Scene) Groups() []*Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Group, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.groups[id])
	}
	return out
}

// Len returns the number of groups in the scene
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups)
}

func fillHits(g *Group, hits []*domain.Hit, colours []float32) {
	g.Count = len(hits)
	g.Positions = make([]float32, 0, len(hits)*3)
	for _, h := range hits {
		g.Positions = append(g.Positions, float32(h.Position.X), float32(h.Position.Y), float32(h.Position.Z))
	}
	g.Colours = colours
}

func fillMC(g *Group, spec GroupSpec) {
	hits := make([]*domain.Hit, len(spec.MCHits))
	values := make([]selection.Value, len(spec.MCHits))
	for i, h := range spec.MCHits {
		hits[i] = &h.Hit
		pdg := h.PDG
		if pdg < 0 {
			pdg = -pdg
		}
		values[i] = selection.CategoricalValue(strconv.Itoa(pdg))
	}
	fillHits(g, hits, Colours(values, spec.Style))
}

func fillMarkers(g *Group, spec GroupSpec) {
	flat := spec.Style.defaultRGB()
	for _, m := range spec.Markers {
		c := flat
		if m.Colour != "" {
			if parsed, err := ParseHex(m.Colour); err == nil {
				c = parsed
			}
		}

		switch m.Kind {
		case domain.MarkerRing:
			g.Rings = append(g.Rings, Ring{Center: m.Position, Inner: m.Inner, Outer: m.Outer, Colour: c})
		case domain.MarkerLine:
			if m.End != nil {
				g.Lines = append(g.Lines, Line{From: m.Position, To: *m.End, Colour: c})
			}
		default:
			g.Positions = append(g.Positions, float32(m.Position.X), float32(m.Position.Y), float32(m.Position.Z))
			g.Colours = append(g.Colours, c[0], c[1], c[2])
		}
	}
	g.Count = len(spec.Markers)
}

var (
	axisX = RGB{1, 0, 0}
	axisY = RGB{0, 1, 0}
)

// fillGeometry draws box volumes in 3D. In 2D the geometry is not projected;
// instead two axes are drawn along the lower and left edge of the hits.
func fillGeometry(g *Group, spec GroupSpec) {
	if spec.View == string(domain.Dim2D) {
		ext, ok := domain.Bounds(spec.Hits)
		if !ok {
			return
		}
		origin := domain.Position{X: ext.Min.X, Y: ext.Min.Y}
		g.Lines = []Line{
			{From: origin, To: domain.Position{X: ext.Max.X, Y: ext.Min.Y}, Colour: axisX},
			{From: origin, To: domain.Position{X: ext.Min.X, Y: ext.Max.Y}, Colour: axisY},
		}
		g.Count = len(g.Lines)
		return
	}

	for _, v := range domain.Boxes(spec.Geometry) {
		g.Boxes = append(g.Boxes, Box{
			Center: v.Position,
			Size:   domain.Position{X: v.XWidth, Y: v.YWidth, Z: v.ZWidth},
		})
	}
	g.Count = len(g.Boxes)
}

// Describe returns a short human-readable summary of a group
func (g *Group) Describe() string {
	return fmt.Sprintf("%s [%s] %d items", g.ID, g.Layer, g.Count)
}
