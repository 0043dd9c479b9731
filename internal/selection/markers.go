package selection

import "hepevd/internal/domain"

// ResolveMarkers returns the markers whose kind is active and whose type
// passes the hit-type filter, in input order. Markers are opt-in: with no
// active kind nothing is shown.
func ResolveMarkers(markers []*domain.Marker, kinds, types *TagSet) []*domain.Marker {
	if kinds.Len() == 0 {
		return nil
	}

	var out []*domain.Marker
	for _, m := range markers {
		if !kinds.Has(string(m.Kind)) {
			continue
		}
		if !types.Allows(m.TypeTag()) {
			continue
		}
		out = append(out, m)
	}
	return out
}
