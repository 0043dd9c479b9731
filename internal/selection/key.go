package selection

import (
	"encoding/binary"
	"slices"
)

// Key canonically identifies a combination of active members. Two sets with
// the same members give the same Key regardless of toggle order.
type Key string

// IsEmpty reports whether the key identifies the empty combination
func (k Key) IsEmpty() bool {
	return k == ""
}

// idKey encodes sorted ids as uvarints
func idKey(ids []PropertyID) Key {
	if len(ids) == 0 {
		return ""
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	buf := make([]byte, 0, len(sorted)*2)
	for _, id := range sorted {
		buf = binary.AppendUvarint(buf, uint64(id))
	}
	return Key(buf)
}

// tagKey encodes sorted tags, each length-prefixed
func tagKey(tags []string) Key {
	if len(tags) == 0 {
		return ""
	}
	sorted := slices.Clone(tags)
	slices.Sort(sorted)

	var buf []byte
	for _, t := range sorted {
		buf = binary.AppendUvarint(buf, uint64(len(t)))
		buf = append(buf, t...)
	}
	return Key(buf)
}

// ComposeKey joins several keys into one without ambiguity. The result is
// empty only when every part is empty.
func ComposeKey(parts ...Key) Key {
	empty := true
	for _, p := range parts {
		if p != "" {
			empty = false
			break
		}
	}
	if empty {
		return ""
	}

	var buf []byte
	for _, p := range parts {
		buf = binary.AppendUvarint(buf, uint64(len(p)))
		buf = append(buf, p...)
	}
	return Key(buf)
}
