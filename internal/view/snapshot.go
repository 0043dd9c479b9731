package view

import (
	"hepevd/internal/groupcache"
	"hepevd/internal/hierarchy"
	"hepevd/internal/selection"
)

// Snapshot is the UI state of a view: what the dropdowns offer, what is
// active and which groups are on screen
type Snapshot struct {
	Dimension        string                      `json:"dimension"`
	Properties       []string                    `json:"properties"`
	Active           []string                    `json:"active"`
	HitTypes         []string                    `json:"hit_types"`
	ActiveTypes      []string                    `json:"active_types"`
	MarkerKinds      []string                    `json:"marker_kinds"`
	ActiveKinds      []string                    `json:"active_kinds"`
	MCVisible        bool                        `json:"mc_visible"`
	SelectedParticle string                      `json:"selected_particle,omitempty"`
	VisibleHits      int                         `json:"visible_hits"`
	Visible          []string                    `json:"visible_groups"`
	Particles        []hierarchy.MenuItem        `json:"particles,omitempty"`
	Caches           map[string]groupcache.Stats `json:"caches"`
}

// Snapshot returns the current state of the view
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	reg := v.index.Registry()
	s := Snapshot{
		Dimension:        string(v.dim),
		Properties:       append([]string{selection.None}, v.index.Names()...),
		Active:           v.filter.Names(reg),
		HitTypes:         append([]string(nil), v.knownTypes...),
		ActiveTypes:      v.types.Members(),
		MarkerKinds:      append([]string(nil), v.knownKinds...),
		ActiveKinds:      v.kinds.Members(),
		MCVisible:        v.mcShown,
		SelectedParticle: v.selected,
		Particles:        v.forest.Menu(),
		Caches:           make(map[string]groupcache.Stats),
	}

	for _, c := range v.caches() {
		s.Caches[c.Layer()] = c.Stats()
		g, ok := c.Visible()
		if !ok {
			continue
		}
		s.Visible = append(s.Visible, g.ID)
		if c == v.hits || c == v.particles {
			s.VisibleHits = g.Count
		}
	}
	return s
}
