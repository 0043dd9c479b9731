package domain

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/blake2b"
)

// ErrInvalidEvent is returned when an event fails validation
var ErrInvalidEvent = errors.New("invalid event")

// eventValidate is shared; validator caches struct metadata per type.
var eventValidate = validator.New(validator.WithRequiredStructEnabled())

// Event is one complete detector readout as delivered by the exporter
type Event struct {
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Hits      []Hit      `json:"hits" yaml:"hits" validate:"dive"`
	MCHits    []MCHit    `json:"mcHits" yaml:"mcHits" validate:"dive"`
	Markers   []Marker   `json:"markers" yaml:"markers" validate:"dive"`
	Particles []Particle `json:"particles" yaml:"particles" validate:"dive"`
	Geometry  []Volume   `json:"detectorGeometry" yaml:"detectorGeometry" validate:"dive"`
	MCTruth   string     `json:"mcTruth,omitempty" yaml:"mcTruth,omitempty"`
}

// NewEvent creates an empty event with initialized collections
func NewEvent(name string) *Event {
	return &Event{
		Name:      name,
		Hits:      make([]Hit, 0),
		MCHits:    make([]MCHit, 0),
		Markers:   make([]Marker, 0),
		Particles: make([]Particle, 0),
		Geometry:  make([]Volume, 0),
	}
}

// Normalize replaces nil collections with empty ones so the event encodes
// as empty arrays rather than null
func (e *Event) Normalize() {
	if e.Hits == nil {
		e.Hits = make([]Hit, 0)
	}
	if e.MCHits == nil {
		e.MCHits = make([]MCHit, 0)
	}
	if e.Markers == nil {
		e.Markers = make([]Marker, 0)
	}
	if e.Particles == nil {
		e.Particles = make([]Particle, 0)
	}
	if e.Geometry == nil {
		e.Geometry = make([]Volume, 0)
	}
}

// Validate checks the event against its struct constraints and that
// particle ids are unique
func (e *Event) Validate() error {
	if err := eventValidate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %q", ErrInvalidEvent, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	seen := make(map[string]struct{}, len(e.Particles))
	for _, p := range e.Particles {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate particle id %s", ErrInvalidEvent, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Fingerprint returns a content-derived identifier for the event
func (e *Event) Fingerprint() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to encode event: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:16]), nil
}

// Slice is the part of an event belonging to one dimension
type Slice struct {
	Dim       Dim
	Hits      []*Hit
	MCHits    []*MCHit
	Markers   []*Marker
	Particles []Particle
	Geometry  []Volume
}

// ForDim splits out the data of one dimension. Hit and marker pointers refer
// into the event, which must not be mutated afterwards.
func (e *Event) ForDim(dim Dim) *Slice {
	s := &Slice{
		Dim:       dim,
		Particles: ParticlesForDim(e.Particles, dim),
		Geometry:  e.Geometry,
	}
	for i := range e.Hits {
		if e.Hits[i].Dim == dim {
			s.Hits = append(s.Hits, &e.Hits[i])
		}
	}
	for i := range e.MCHits {
		if e.MCHits[i].Dim == dim {
			s.MCHits = append(s.MCHits, &e.MCHits[i])
		}
	}
	for i := range e.Markers {
		if e.Markers[i].Dim == dim {
			s.Markers = append(s.Markers, &e.Markers[i])
		}
	}
	return s
}

// Summary gives record counts for listings
type Summary struct {
	Hits      int `json:"hits"`
	MCHits    int `json:"mc_hits"`
	Markers   int `json:"markers"`
	Particles int `json:"particles"`
	Volumes   int `json:"volumes"`
}

// Summarize counts the records of the event
func (e *Event) Summarize() Summary {
	return Summary{
		Hits:      len(e.Hits),
		MCHits:    len(e.MCHits),
		Markers:   len(e.Markers),
		Particles: len(e.Particles),
		Volumes:   len(e.Geometry),
	}
}
