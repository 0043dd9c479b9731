package view

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"hepevd/internal/domain"
)

// ErrUnknownAction is returned when a session action name is not recognised
var ErrUnknownAction = errors.New("unknown action")

// Actions a client may send
const (
	ActionProperty = "property"
	ActionType     = "type"
	ActionMarker   = "marker"
	ActionMC       = "mc"
	ActionReset    = "reset"
	ActionParticle = "particle"
	ActionScene    = "scene"
)

// Action is one UI event. An empty Dimension targets the active scene.
type Action struct {
	Dimension string `json:"dimension,omitempty"`
	Action    string `json:"action"`
	Name      string `json:"name,omitempty"`
}

// Session pairs the 3D and 2D views of one event for a single client
type Session struct {
	ID      string
	Version uint64

	mu     sync.Mutex
	views  map[domain.Dim]*View
	active domain.Dim
}

// NewSession builds both views of ev. The 3D scene is shown first when it has
// hits, otherwise the 2D one.
func NewSession(ev *domain.Event, version uint64, r Renderer, opts Options) *Session {
	s := &Session{
		ID:      uuid.New().String(),
		Version: version,
		views:   make(map[domain.Dim]*View, len(domain.Dims)),
	}
	for _, dim := range domain.Dims {
		s.views[dim] = New(ev.ForDim(dim), r, opts)
	}

	s.active = domain.Dim3D
	if s.views[domain.Dim3D].HitCount() == 0 {
		s.active = domain.Dim2D
	}
	return s
}

// View returns the view of a dimension
func (s *Session) View(dim domain.Dim) (*View, error) {
	v, ok := s.views[dim]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
	return v, nil
}

// Active returns the dimension currently shown
func (s *Session) Active() domain.Dim {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive switches the shown dimension
func (s *Session) SetActive(dim domain.Dim) error {
	if _, ok := s.views[dim]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
	s.mu.Lock()
	s.active = dim
	s.mu.Unlock()
	return nil
}

// ToggleScene switches between the 3D and 2D scenes and returns the new one
func (s *Session) ToggleScene() domain.Dim {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == domain.Dim3D {
		s.active = domain.Dim2D
	} else {
		s.active = domain.Dim3D
	}
	return s.active
}

// Apply routes an action to the view it targets and reports whether anything
// changed. Unknown names are not errors; unknown actions and dimensions are.
func (s *Session) Apply(a Action) (bool, error) {
	if a.Action == ActionScene {
		if a.Name == "" {
			s.ToggleScene()
			return true, nil
		}
		if err := s.SetActive(domain.Dim(a.Name)); err != nil {
			return false, err
		}
		return true, nil
	}

	dim := domain.Dim(a.Dimension)
	if a.Dimension == "" {
		dim = s.Active()
	}
	v, err := s.View(dim)
	if err != nil {
		return false, err
	}

	switch a.Action {
	case ActionProperty:
		return v.OnHitPropertyChange(a.Name), nil
	case ActionType:
		return v.OnHitTypeChange(a.Name), nil
	case ActionMarker:
		return v.OnMarkerChange(a.Name), nil
	case ActionMC:
		return v.OnMCToggle(), nil
	case ActionReset:
		v.ResetView()
		return true, nil
	case ActionParticle:
		return v.OnParticleSelect(a.Name), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, a.Action)
	}
}

// Snapshot returns the state of the active view
func (s *Session) Snapshot() Snapshot {
	v, _ := s.View(s.Active())
	return v.Snapshot()
}

// Close releases the groups of both views
func (s *Session) Close() {
	for _, v := range s.views {
		v.Close()
	}
}
