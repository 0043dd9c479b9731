package selection

import (
	"slices"
	"strings"
)

// FilterState is the ordered set of active properties of one view. Insertion
// order is kept because resolution walks it backwards.
type FilterState struct {
	members []PropertyID
}

// NewFilterState returns the initial state {All}
func NewFilterState() *FilterState {
	return &FilterState{members: []PropertyID{AllID}}
}

// Toggle removes id if active, otherwise appends it
func (f *FilterState) Toggle(id PropertyID) {
	if i := slices.Index(f.members, id); i >= 0 {
		f.members = slices.Delete(f.members, i, i+1)
		return
	}
	f.members = append(f.members, id)
}

// ToggleName applies a named toggle: None clears the set, a registered name
// is toggled and anything else is ignored. It reports whether the state
// changed.
func (f *FilterState) ToggleName(reg *Registry, name string) bool {
	if name == None {
		if len(f.members) == 0 {
			return false
		}
		f.Clear()
		return true
	}

	id, ok := reg.Lookup(name)
	if !ok {
		return false
	}
	f.Toggle(id)
	return true
}

// Clear empties the set
func (f *FilterState) Clear() {
	f.members = f.members[:0]
}

// Reset restores the initial state {All}
func (f *FilterState) Reset() {
	f.members = append(f.members[:0], AllID)
}

// Has reports whether id is active
func (f *FilterState) Has(id PropertyID) bool {
	return slices.Contains(f.members, id)
}

// Len returns the number of active members
func (f *FilterState) Len() int {
	return len(f.members)
}

// Members returns the active ids in insertion order
func (f *FilterState) Members() []PropertyID {
	return slices.Clone(f.members)
}

// Key returns the canonical key of the active set
func (f *FilterState) Key() Key {
	return idKey(f.members)
}

// Names returns the active names in insertion order
func (f *FilterState) Names(reg *Registry) []string {
	out := make([]string, len(f.members))
	for i, id := range f.members {
		out[i] = reg.Name(id)
	}
	return out
}

// Describe returns the sorted active names joined by "_", the readable form
// of Key used in logs
func (f *FilterState) Describe(reg *Registry) string {
	names := f.Names(reg)
	slices.Sort(names)
	return strings.Join(names, "_")
}

// TagSet is an ordered set of plain string tags, used for the active hit
// types and marker kinds of a view
type TagSet struct {
	tags []string
}

// NewTagSet returns an empty set
func NewTagSet() *TagSet {
	return &TagSet{}
}

// Toggle removes tag if present, otherwise appends it
func (s *TagSet) Toggle(tag string) {
	if i := slices.Index(s.tags, tag); i >= 0 {
		s.tags = slices.Delete(s.tags, i, i+1)
		return
	}
	s.tags = append(s.tags, tag)
}

// Has reports whether tag is present
func (s *TagSet) Has(tag string) bool {
	return s != nil && slices.Contains(s.tags, tag)
}

// Allows reports whether tag passes the set used as a filter: an empty (or
// nil) set allows everything
func (s *TagSet) Allows(tag string) bool {
	return s.Len() == 0 || s.Has(tag)
}

// Len returns the number of tags
func (s *TagSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tags)
}

// Clear empties the set
func (s *TagSet) Clear() {
	s.tags = s.tags[:0]
}

// Members returns the tags in insertion order
func (s *TagSet) Members() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.tags)
}

// Key returns the canonical key of the set
func (s *TagSet) Key() Key {
	return tagKey(s.Members())
}
