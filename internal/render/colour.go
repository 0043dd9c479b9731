package render

import (
	"fmt"
	"strconv"
	"strings"

	"hepevd/internal/selection"
)

// RGB is a colour with components in [0, 1]
type RGB [3]float32

// ParseHex parses "#rrggbb" or "rrggbb"
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return hexRGB(uint32(v)), nil
}

func hexRGB(v uint32) RGB {
	return RGB{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
	}
}

// Sequential maps, sampled at even stops
var colourMaps = map[string][]RGB{
	"viridis": {
		hexRGB(0x440154), hexRGB(0x472d7b), hexRGB(0x3b528b), hexRGB(0x2c728e), hexRGB(0x21918c),
		hexRGB(0x28ae80), hexRGB(0x5ec962), hexRGB(0xaddc30), hexRGB(0xfde725),
	},
	"greys": {
		hexRGB(0xffffff), hexRGB(0xbdbdbd), hexRGB(0x737373), hexRGB(0x252525), hexRGB(0x000000),
	},
}

// Tableau 10, for categorical values
var categorical = []RGB{
	hexRGB(0x1f77b4), hexRGB(0xff7f0e), hexRGB(0x2ca02c), hexRGB(0xd62728), hexRGB(0x9467bd),
	hexRGB(0x8c564b), hexRGB(0xe377c2), hexRGB(0x7f7f7f), hexRGB(0xbcbd22), hexRGB(0x17becf),
}

// KnownColourMap reports whether name is a built-in sequential map
func KnownColourMap(name string) bool {
	_, ok := colourMaps[name]
	return ok
}

func sample(stops []RGB, t float64) RGB {
	if t <= 0 {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	frac := float32(pos - float64(i))
	a, b := stops[i], stops[i+1]
	return RGB{
		a[0] + (b[0]-a[0])*frac,
		a[1] + (b[1]-a[1])*frac,
		a[2] + (b[2]-a[2])*frac,
	}
}

// Colours maps resolved values to a flat rgb buffer. Numeric values are
// normalized over their own range and sampled from the style's colour map,
// categorical values get a palette entry per distinct label in order of
// first appearance, and absent values use the style's default colour.
func Colours(values []selection.Value, style Style) []float32 {
	stops, ok := colourMaps[style.ColourMap]
	if !ok {
		stops = colourMaps["viridis"]
	}
	flat := style.defaultRGB()

	lo, hi, ranged := 0.0, 0.0, false
	for _, v := range values {
		f, ok := v.Float()
		if !ok {
			continue
		}
		if !ranged || f < lo {
			lo = f
		}
		if !ranged || f > hi {
			hi = f
		}
		ranged = true
	}

	labels := make(map[string]int)
	out := make([]float32, 0, len(values)*3)
	for _, v := range values {
		var c RGB
		switch v.Kind {
		case selection.Numeric:
			t := 1.0
			if hi > lo {
				t = (v.Num - lo) / (hi - lo)
			}
			c = sample(stops, t)
		case selection.Categorical:
			idx, seen := labels[v.Label]
			if !seen {
				idx = len(labels)
				labels[v.Label] = idx
			}
			c = categorical[idx%len(categorical)]
		default:
			c = flat
		}
		out = append(out, c[0], c[1], c[2])
	}
	return out
}
