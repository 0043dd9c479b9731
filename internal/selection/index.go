package selection

import (
	"slices"

	"hepevd/internal/domain"
)

// Index maps every hit of a view to its named values. It is built once per
// dataset and is positional: entry i belongs to the i-th hit it was built
// from.
type Index struct {
	registry *Registry
	hits     []*domain.Hit
	props    []map[PropertyID]Value
	order    []PropertyID
	counts   map[PropertyID]int
}

// BuildIndex registers the properties of every hit. Each hit gets All and
// Energy set to its energy, its label (if any) with weight 1.0, then its
// explicit properties in order; a later entry overwrites an earlier one of
// the same name.
func BuildIndex(hits []*domain.Hit, reg *Registry) *Index {
	ix := &Index{
		registry: reg,
		hits:     hits,
		props:    make([]map[PropertyID]Value, len(hits)),
		counts:   make(map[PropertyID]int),
	}

	energyID := reg.Intern(Energy)
	for i, h := range hits {
		m := make(map[PropertyID]Value, 3+len(h.Properties))
		m[AllID] = NumericValue(h.Energy)
		m[energyID] = NumericValue(h.Energy)

		if h.Label != "" {
			m[reg.Intern(h.Label)] = NumericValue(1.0)
		}
		for _, p := range h.Properties {
			m[reg.Intern(p.Name)] = ParseValue(p.Value)
		}

		for id := range m {
			if ix.counts[id] == 0 {
				ix.order = append(ix.order, id)
			}
			ix.counts[id]++
		}
		ix.props[i] = m
	}

	// Ids are handed out in first-seen order; map iteration above scrambles
	// the order within a single hit.
	slices.Sort(ix.order)
	return ix
}

// Registry returns the registry the index interned into
func (ix *Index) Registry() *Registry {
	return ix.registry
}

// Hits returns the hits the index was built from
func (ix *Index) Hits() []*domain.Hit {
	return ix.hits
}

// Len returns the number of indexed hits
func (ix *Index) Len() int {
	return len(ix.props)
}

// Get returns the value of property id for the i-th hit
func (ix *Index) Get(i int, id PropertyID) (Value, bool) {
	if ix == nil || i < 0 || i >= len(ix.props) {
		return Value{}, false
	}
	v, ok := ix.props[i][id]
	return v, ok
}

// Properties returns a copy of the i-th hit's values keyed by name
func (ix *Index) Properties(i int) map[string]Value {
	if i < 0 || i >= len(ix.props) {
		return nil
	}
	out := make(map[string]Value, len(ix.props[i]))
	for id, v := range ix.props[i] {
		out[ix.registry.Name(id)] = v
	}
	return out
}

// Names lists the property names present in this index in first-seen order.
// This is the content of a view's property dropdown, minus None.
func (ix *Index) Names() []string {
	out := make([]string, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, ix.registry.Name(id))
	}
	return out
}
