// Package view ties the selection engine to a renderer for one dimension of
// an event. A View owns the active filters of its dimension and the group
// caches that memoize every combination it has drawn.
package view

import (
	"errors"
	"log"
	"slices"
	"sync"

	"hepevd/internal/domain"
	"hepevd/internal/groupcache"
	"hepevd/internal/hierarchy"
	"hepevd/internal/render"
	"hepevd/internal/selection"
)

// ErrUnknownDimension is returned for a dimension other than 2D or 3D
var ErrUnknownDimension = errors.New("unknown dimension")

// Renderer is the drawing collaborator. Views only pass handles back to it.
type Renderer interface {
	CreateGroup(spec render.GroupSpec) *render.Group
	SetVisible(g *render.Group, visible bool)
	Clear(g *render.Group)
}

// Options configures views
type Options struct {
	Styles     map[domain.Dim]render.Style
	Precedence hierarchy.Precedence
	Observer   groupcache.Observer
}

func (o Options) style(dim domain.Dim) render.Style {
	if s, ok := o.Styles[dim]; ok {
		return s
	}
	return render.DefaultStyle(dim)
}

type groups = groupcache.Cache[*render.Group]

// View is the interactive state of one dimension. All methods are safe for
// concurrent use; mutations are serialized.
type View struct {
	mu       sync.Mutex
	dim      domain.Dim
	data     *domain.Slice
	renderer Renderer
	style    render.Style

	index  *selection.Index
	filter *selection.FilterState
	types  *selection.TagSet
	kinds  *selection.TagSet

	knownTypes []string
	knownKinds []string

	forest   *hierarchy.Forest
	selected string
	mcShown  bool

	geometry  *groups
	hits      *groups
	mc        *groups
	markers   *groups
	particles *groups
}

// New builds the view of one dimension and draws its initial state: the
// geometry and every hit under {all}
func New(data *domain.Slice, r Renderer, opts Options) *View {
	name := string(data.Dim)
	v := &View{
		dim:      data.Dim,
		data:     data,
		renderer: r,
		style:    opts.style(data.Dim),
		index:    selection.BuildIndex(data.Hits, selection.NewRegistry()),
		filter:   selection.NewFilterState(),
		types:    selection.NewTagSet(),
		kinds:    selection.NewTagSet(),
		forest:   hierarchy.Build(data.Particles, opts.Precedence),

		geometry:  groupcache.New[*render.Group](name, string(render.LayerGeometry), r),
		hits:      groupcache.New[*render.Group](name, string(render.LayerHits), r),
		mc:        groupcache.New[*render.Group](name, string(render.LayerMC), r),
		markers:   groupcache.New[*render.Group](name, string(render.LayerMarkers), r),
		particles: groupcache.New[*render.Group](name, string(render.LayerParticle), r),
	}
	for _, c := range v.caches() {
		c.SetObserver(opts.Observer)
	}

	for _, h := range data.Hits {
		v.knownTypes = appendUnique(v.knownTypes, h.TypeTag())
	}
	for _, h := range data.MCHits {
		v.knownTypes = appendUnique(v.knownTypes, h.TypeTag())
	}
	for _, m := range data.Markers {
		v.knownTypes = appendUnique(v.knownTypes, m.TypeTag())
		v.knownKinds = appendUnique(v.knownKinds, string(m.Kind))
	}

	v.geometry.Activate("", func() *render.Group {
		return r.CreateGroup(render.GroupSpec{
			View:     name,
			Layer:    render.LayerGeometry,
			Hits:     data.Hits,
			Geometry: data.Geometry,
			Style:    v.style,
		})
	})
	v.drawHits()
	return v
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}

func (v *View) caches() []*groups {
	return []*groups{v.geometry, v.hits, v.mc, v.markers, v.particles}
}

// Dim returns the dimension of the view
func (v *View) Dim() domain.Dim {
	return v.dim
}

// HitCount returns the number of hits in this dimension
func (v *View) HitCount() int {
	return len(v.data.Hits)
}

// OnHitPropertyChange toggles a property, or clears every property for
// None. Unknown names change nothing. It reports whether the view changed.
func (v *View) OnHitPropertyChange(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.filter.ToggleName(v.index.Registry(), name) {
		return false
	}
	v.selected = ""
	v.drawHits()
	return true
}

// OnHitTypeChange toggles a hit type. The type filter applies to hits, MC
// hits and markers alike.
func (v *View) OnHitTypeChange(hitType string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !slices.Contains(v.knownTypes, hitType) {
		return false
	}
	v.types.Toggle(hitType)
	v.selected = ""
	v.drawHits()
	v.drawMC()
	v.drawMarkers()
	return true
}

// OnMarkerChange toggles a marker kind
func (v *View) OnMarkerChange(kind string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !slices.Contains(v.knownKinds, kind) {
		return false
	}
	v.kinds.Toggle(kind)
	v.drawMarkers()
	return true
}

// OnMCToggle shows or hides the MC hits. Views without MC hits ignore it.
func (v *View) OnMCToggle() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.data.MCHits) == 0 {
		return false
	}
	v.mcShown = !v.mcShown
	v.drawMC()
	return true
}

// OnParticleSelect shows the hits of one particle and its descendants in
// place of the filtered hits. Selecting the shown particle again, or "",
// returns to the filtered hits.
func (v *View) OnParticleSelect(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if id == "" || id == v.selected {
		if v.selected == "" {
			return false
		}
		v.selected = ""
		v.drawHits()
		return true
	}

	if _, ok := v.forest.Find(id); !ok {
		return false
	}
	v.selected = id
	v.drawHits()
	return true
}

// ResetView restores the initial state: {all}, no type or marker filter, MC
// hidden and no particle selected. Cached groups are kept.
func (v *View) ResetView() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filter.Reset()
	v.types.Clear()
	v.kinds.Clear()
	v.mcShown = false
	v.selected = ""
	v.drawHits()
	v.drawMC()
	v.drawMarkers()
}

// Close releases every group of the view through the renderer
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range v.caches() {
		c.Close()
	}
}

func (v *View) drawHits() {
	if v.selected != "" {
		v.hits.HideAll()
		g, built := v.particles.Activate(selection.Key(v.selected), func() *render.Group {
			return v.renderer.CreateGroup(render.GroupSpec{
				View:  string(v.dim),
				Layer: render.LayerParticle,
				Key:   v.selected,
				Hits:  v.forest.Hits(v.selected),
				Style: v.style,
			})
		})
		if built {
			log.Printf("view %s: built %s", v.dim, g.Describe())
		}
		return
	}

	v.particles.HideAll()
	if v.filter.Len() == 0 {
		v.hits.HideAll()
		return
	}
	key := selection.ComposeKey(v.filter.Key(), v.types.Key())
	g, built := v.hits.Activate(key, func() *render.Group {
		res := selection.Resolve(selection.Input{
			Hits:      v.data.Hits,
			Index:     v.index,
			Filter:    v.filter,
			Types:     v.types,
			Particles: v.data.Particles,
		})
		return v.renderer.CreateGroup(render.GroupSpec{
			View:   string(v.dim),
			Layer:  render.LayerHits,
			Key:    v.filter.Describe(v.index.Registry()),
			Hits:   res.Hits,
			Values: res.Values,
			Style:  v.style,
		})
	})
	if built {
		log.Printf("view %s: built %s", v.dim, g.Describe())
	}
}

func (v *View) drawMC() {
	if !v.mcShown {
		v.mc.HideAll()
		return
	}
	v.mc.Activate(v.types.Key(), func() *render.Group {
		return v.renderer.CreateGroup(render.GroupSpec{
			View:   string(v.dim),
			Layer:  render.LayerMC,
			MCHits: selection.ResolveMC(v.data.MCHits, v.types),
			Style:  v.style,
		})
	})
}

func (v *View) drawMarkers() {
	if v.kinds.Len() == 0 {
		v.markers.HideAll()
		return
	}
	key := selection.ComposeKey(v.kinds.Key(), v.types.Key())
	v.markers.Activate(key, func() *render.Group {
		return v.renderer.CreateGroup(render.GroupSpec{
			View:    string(v.dim),
			Layer:   render.LayerMarkers,
			Markers: selection.ResolveMarkers(v.data.Markers, v.kinds, v.types),
			Style:   v.style,
		})
	})
}
