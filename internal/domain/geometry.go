package domain

// VolumeType represents the shape of a detector volume
type VolumeType string

const (
	VolumeBox       VolumeType = "box"
	VolumeTrapezoid VolumeType = "trapezoid"
)

// Volume is one element of the detector geometry
type Volume struct {
	Type     VolumeType `json:"type" yaml:"type" validate:"required"`
	Position Position   `json:"position" yaml:"position"`
	XWidth   float64    `json:"xWidth" yaml:"xWidth" validate:"gte=0"`
	YWidth   float64    `json:"yWidth" yaml:"yWidth" validate:"gte=0"`
	ZWidth   float64    `json:"zWidth" yaml:"zWidth" validate:"gte=0"`
}

// Boxes returns the box volumes of a geometry
func Boxes(geometry []Volume) []Volume {
	var out []Volume
	for _, v := range geometry {
		if v.Type == VolumeBox {
			out = append(out, v)
		}
	}
	return out
}
