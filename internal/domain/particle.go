package domain

// Particle is a reconstructed object owning hits, arranged in a forest via
// parent and child references
type Particle struct {
	ID              string   `json:"id" yaml:"id" validate:"required"`
	ParentID        string   `json:"parentID" yaml:"parentID"`
	ChildIDs        []string `json:"childIDs" yaml:"childIDs"`
	InteractionType string   `json:"interactionType" yaml:"interactionType"`
	Hits            []Hit    `json:"hits" yaml:"hits" validate:"dive"`
	Vertices        []Marker `json:"vertices,omitempty" yaml:"vertices,omitempty" validate:"dive"`
}

// IsRoot reports whether the particle has no parent
func (p *Particle) IsRoot() bool {
	return p.ParentID == ""
}

// HitPointers returns pointers into the particle's own hit slice
func (p *Particle) HitPointers() []*Hit {
	out := make([]*Hit, len(p.Hits))
	for i := range p.Hits {
		out[i] = &p.Hits[i]
	}
	return out
}

// ParticlesForDim restricts every particle to its hits of one dimension and
// drops particles whose whole subtree is left without hits. A particle with no
// hits of its own is kept while a descendant still has some, so roots such as
// a neutrino interaction keep their children reachable. Child references to
// dropped particles are kept as-is; consumers treat them as having no hits in
// this projection.
func ParticlesForDim(particles []Particle, dim Dim) []Particle {
	projected := make([]Particle, len(particles))
	index := make(map[string]int, len(particles))
	for i, p := range particles {
		var hits []Hit
		for _, h := range p.Hits {
			if h.Dim == dim {
				hits = append(hits, h)
			}
		}
		var vertices []Marker
		for _, v := range p.Vertices {
			if v.Dim == dim {
				vertices = append(vertices, v)
			}
		}
		p.Hits = hits
		p.Vertices = vertices
		projected[i] = p
		if _, dup := index[p.ID]; !dup {
			index[p.ID] = i
		}
	}

	// Walk up from every hit-bearing particle, stopping at the first ancestor
	// already kept, which also ends cycles.
	parent := make(map[int]int, len(particles))
	for i, p := range projected {
		for _, child := range p.ChildIDs {
			if j, ok := index[child]; ok && j != i {
				if _, seen := parent[j]; !seen {
					parent[j] = i
				}
			}
		}
	}
	keep := make([]bool, len(projected))
	for i, p := range projected {
		if len(p.Hits) == 0 {
			continue
		}
		for at := i; !keep[at]; {
			keep[at] = true
			up, ok := parent[at]
			if !ok {
				break
			}
			at = up
		}
	}

	out := make([]Particle, 0, len(projected))
	for i, p := range projected {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}
