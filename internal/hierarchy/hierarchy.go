// Package hierarchy turns the flat particle list of a view into the ordered
// forest behind the particle menu.
package hierarchy

import (
	"cmp"
	"fmt"
	"slices"

	"hepevd/internal/domain"
)

// Precedence ranks interaction types; lower ranks sort first. Types missing
// from the table sort after every ranked type.
type Precedence map[string]int

// PrecedenceFromList ranks types by their position in list
func PrecedenceFromList(list []string) Precedence {
	p := make(Precedence, len(list))
	for i, t := range list {
		if _, dup := p[t]; !dup {
			p[t] = i
		}
	}
	return p
}

func (p Precedence) rank(t string) (int, bool) {
	r, ok := p[t]
	return r, ok
}

// Node is one particle in the forest
type Node struct {
	Particle  *domain.Particle `json:"-"`
	Children  []*Node          `json:"children,omitempty"`
	Depth     int              `json:"depth"`
	OwnHits   int              `json:"own_hits"`
	TotalHits int              `json:"total_hits"`
}

// ID returns the particle id
func (n *Node) ID() string {
	return n.Particle.ID
}

// Label combines the interaction type with the hit count of the whole subtree
func (n *Node) Label() string {
	return fmt.Sprintf("%s (%d)", n.Particle.InteractionType, n.TotalHits)
}

// Forest is the built hierarchy of one view
type Forest struct {
	Roots []*Node
	byID  map[string]*Node
}

// arena stores particles densely with validated child indices
type arena struct {
	particles []domain.Particle
	index     map[string]int
	children  [][]int
}

func newArena(particles []domain.Particle) *arena {
	a := &arena{
		particles: particles,
		index:     make(map[string]int, len(particles)),
		children:  make([][]int, len(particles)),
	}
	for i, p := range particles {
		if _, dup := a.index[p.ID]; !dup {
			a.index[p.ID] = i
		}
	}
	for i, p := range particles {
		for _, childID := range p.ChildIDs {
			// A child with no hits in this projection is absent from the
			// list; it contributes nothing.
			if ci, ok := a.index[childID]; ok && ci != i {
				a.children[i] = append(a.children[i], ci)
			}
		}
	}
	return a
}

// Build constructs the forest. Only particles without a parent become roots.
// Children keep their declared order; roots are ordered by interaction-type
// precedence and then by total hit count, largest first.
func Build(particles []domain.Particle, prec Precedence) *Forest {
	a := newArena(particles)
	f := &Forest{byID: make(map[string]*Node, len(particles))}

	onPath := make([]bool, len(particles))
	var build func(i, depth int) *Node
	build = func(i, depth int) *Node {
		p := &a.particles[i]
		n := &Node{
			Particle: p,
			Depth:    depth,
			OwnHits:  len(p.Hits),
		}
		n.TotalHits = n.OwnHits
		if _, seen := f.byID[p.ID]; !seen {
			f.byID[p.ID] = n
		}

		onPath[i] = true
		for _, ci := range a.children[i] {
			if onPath[ci] {
				continue
			}
			child := build(ci, depth+1)
			n.Children = append(n.Children, child)
			n.TotalHits += child.TotalHits
		}
		onPath[i] = false
		return n
	}

	for i := range a.particles {
		if a.particles[i].IsRoot() {
			f.Roots = append(f.Roots, build(i, 0))
		}
	}

	SortSiblings(f.Roots, prec)
	return f
}

// SortSiblings orders nodes by interaction-type precedence, then by total hit
// count descending. The sort is stable, so full ties keep input order.
func SortSiblings(nodes []*Node, prec Precedence) {
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		at, bt := a.Particle.InteractionType, b.Particle.InteractionType
		if at != bt {
			ar, aok := prec.rank(at)
			br, bok := prec.rank(bt)
			switch {
			case aok && bok:
				if c := cmp.Compare(ar, br); c != 0 {
					return c
				}
			case aok:
				return -1
			case bok:
				return 1
			default:
				return cmp.Compare(at, bt)
			}
		}
		return cmp.Compare(b.TotalHits, a.TotalHits)
	})
}

// Find returns the node of a particle id
func (f *Forest) Find(id string) (*Node, bool) {
	n, ok := f.byID[id]
	return n, ok
}

// Len returns the number of nodes reachable from the roots
func (f *Forest) Len() int {
	return len(f.byID)
}

// Walk visits every node depth-first in display order. Returning false from
// fn skips the node's children.
func (f *Forest) Walk(fn func(n *Node) bool) {
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if fn(n) {
				walk(n.Children)
			}
		}
	}
	walk(f.Roots)
}

// Hits returns every hit of the subtree rooted at id
func (f *Forest) Hits(id string) []*domain.Hit {
	n, ok := f.byID[id]
	if !ok {
		return nil
	}

	out := make([]*domain.Hit, 0, n.TotalHits)
	var collect func(n *Node)
	collect = func(n *Node) {
		out = append(out, n.Particle.HitPointers()...)
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(n)
	return out
}

// MenuItem is the serializable form of a node for the particle menu
type MenuItem struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Children []MenuItem `json:"children,omitempty"`
}

// Menu returns the forest as nested menu items
func (f *Forest) Menu() []MenuItem {
	var convert func(nodes []*Node) []MenuItem
	convert = func(nodes []*Node) []MenuItem {
		if len(nodes) == 0 {
			return nil
		}
		items := make([]MenuItem, len(nodes))
		for i, n := range nodes {
			items[i] = MenuItem{
				ID:       n.ID(),
				Label:    n.Label(),
				Children: convert(n.Children),
			}
		}
		return items
	}
	return convert(f.Roots)
}
