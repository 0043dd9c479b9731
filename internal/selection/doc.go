// Package selection decides which hits, MC hits and markers of a view are
// visible and which colour value each visible hit is drawn with.
//
// Property names are interned into small integer ids by a Registry. A
// FilterState is the ordered set of active property ids of one view; the
// order matters because the most recently toggled property takes colour
// precedence. Canonical keys derived from a FilterState (and from the hit-type
// and marker-kind TagSets) are what the group cache is keyed on.
//
// Nothing here performs I/O or fails: empty input gives empty output, unknown
// names are ignored and malformed property values resolve to Absent.
package selection
