package selection

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ValueKind tags how a colour value should be mapped
type ValueKind uint8

const (
	// Absent values are drawn with the flat default colour.
	Absent ValueKind = iota
	// Numeric values go through the colour map.
	Numeric
	// Categorical values get a palette entry per distinct label.
	Categorical
)

func (k ValueKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "absent"
	}
}

// Value is the colour/weight a hit resolves to under one property
type Value struct {
	Kind  ValueKind
	Num   float64
	Label string
}

// NumericValue wraps a number
func NumericValue(f float64) Value {
	return Value{Kind: Numeric, Num: f}
}

// CategoricalValue wraps a label
func CategoricalValue(label string) Value {
	return Value{Kind: Categorical, Label: label}
}

// Float returns the numeric value and whether there is one
func (v Value) Float() (float64, bool) {
	return v.Num, v.Kind == Numeric
}

// ParseValue classifies a raw property value once, at index time. Numbers
// are Numeric, strings Categorical, everything else Absent.
func ParseValue(raw json.RawMessage) Value {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}
		}
		return CategoricalValue(s)
	case 'n', 't', 'f', '[', '{':
		return Value{}
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return Value{}
	}
	return NumericValue(f)
}

// MarshalJSON writes a number, a string or null
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Numeric:
		return json.Marshal(v.Num)
	case Categorical:
		return json.Marshal(v.Label)
	default:
		return []byte("null"), nil
	}
}
