package selection

import "hepevd/internal/domain"

// Input is everything Resolve needs. Hits must be the slice Index was built
// from. Types and Particles may be nil.
type Input struct {
	Hits      []*domain.Hit
	Index     *Index
	Filter    *FilterState
	Types     *TagSet
	Particles []domain.Particle
}

// Result holds the visible hits in input order with Values[i] belonging to
// Hits[i]
type Result struct {
	Hits          []*domain.Hit
	Values        []Value
	FromParticles bool
}

// Len returns the number of visible hits
func (r Result) Len() int {
	return len(r.Hits)
}

// Resolve computes the visible hits of a view and their colour values.
//
// Hits not allowed by the type filter are skipped. For the rest, active
// members are walked from the most recently toggled backwards and the first
// one the hit carries decides its value. All is only consulted after every
// specific member failed, and then contributes the hit's All value. A hit
// matching nothing is left out.
//
// When members are active but no hit survives, the hits of all supplied
// particles are returned instead with Absent values so the view is not left
// blank. An empty filter (after None) always resolves to nothing.
func Resolve(in Input) Result {
	var res Result
	if in.Filter == nil || in.Filter.Len() == 0 {
		return res
	}

	members := in.Filter.Members()
	allActive := in.Filter.Has(AllID)

	for i, h := range in.Hits {
		if !in.Types.Allows(h.TypeTag()) {
			continue
		}

		matched := false
		for j := len(members) - 1; j >= 0; j-- {
			id := members[j]
			if id == AllID {
				continue
			}
			if v, ok := in.Index.Get(i, id); ok {
				res.Hits = append(res.Hits, h)
				res.Values = append(res.Values, v)
				matched = true
				break
			}
		}
		if matched || !allActive {
			continue
		}

		v, _ := in.Index.Get(i, AllID)
		res.Hits = append(res.Hits, h)
		res.Values = append(res.Values, v)
	}

	if len(res.Hits) == 0 && len(in.Particles) > 0 {
		for pi := range in.Particles {
			p := &in.Particles[pi]
			for hi := range p.Hits {
				res.Hits = append(res.Hits, &p.Hits[hi])
				res.Values = append(res.Values, Value{})
			}
		}
		res.FromParticles = len(res.Hits) > 0
	}

	return res
}

// ResolveMC filters MC hits by the active hit types only
func ResolveMC(hits []*domain.MCHit, types *TagSet) []*domain.MCHit {
	out := make([]*domain.MCHit, 0, len(hits))
	for _, h := range hits {
		if types.Allows(h.TypeTag()) {
			out = append(out, h)
		}
	}
	return out
}
