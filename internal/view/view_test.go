package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hepevd/internal/domain"
	"hepevd/internal/render"
)

type countingRenderer struct {
	*render.Scene
	created int
}

func (c *countingRenderer) CreateGroup(spec render.GroupSpec) *render.Group {
	c.created++
	return c.Scene.CreateGroup(spec)
}

func newRenderer() *countingRenderer {
	return &countingRenderer{Scene: render.NewScene()}
}

func testEvent() *domain.Event {
	ev := domain.NewEvent("test")
	ev.Hits = []domain.Hit{
		{ID: "a", Dim: domain.Dim3D, HitType: "U", Energy: 1, Properties: []domain.Property{domain.NumericProperty("charge", 2)}},
		{ID: "b", Dim: domain.Dim3D, HitType: "V", Energy: 2},
		{ID: "c", Dim: domain.Dim2D, Energy: 3},
	}
	ev.MCHits = []domain.MCHit{
		{Hit: domain.Hit{ID: "m", Dim: domain.Dim3D, HitType: "U"}, PDG: 13},
	}
	ev.Markers = []domain.Marker{
		{Kind: domain.MarkerRing, Dim: domain.Dim3D, HitType: "U"},
		{Kind: domain.MarkerPoint, Dim: domain.Dim3D, HitType: "V"},
	}
	ev.Particles = []domain.Particle{
		{ID: "p1", InteractionType: "Cosmic", ChildIDs: []string{"p2"}, Hits: []domain.Hit{
			{ID: "p1h1", Dim: domain.Dim3D}, {ID: "p1h2", Dim: domain.Dim3D},
		}},
		{ID: "p2", ParentID: "p1", Hits: []domain.Hit{{ID: "p2h1", Dim: domain.Dim3D}}},
	}
	return ev
}

func newView(t *testing.T) (*View, *countingRenderer) {
	t.Helper()
	r := newRenderer()
	v := New(testEvent().ForDim(domain.Dim3D), r, Options{})
	return v, r
}

func TestNewView(t *testing.T) {
	v, r := newView(t)

	assert.Equal(t, 2, r.created, "geometry and initial hits")
	s := v.Snapshot()
	assert.Equal(t, "3D", s.Dimension)
	assert.Equal(t, []string{"none", "all", "energy", "charge"}, s.Properties)
	assert.Equal(t, []string{"all"}, s.Active)
	assert.Equal(t, []string{"U", "V"}, s.HitTypes)
	assert.Equal(t, []string{"ring", "point"}, s.MarkerKinds)
	assert.Equal(t, 2, s.VisibleHits)
	assert.Len(t, s.Visible, 2)
	require.Len(t, s.Particles, 1)
	assert.Equal(t, "Cosmic (3)", s.Particles[0].Label)
}

func TestPropertyToggles(t *testing.T) {
	t.Run("returning to a combination reuses its group", func(t *testing.T) {
		v, r := newView(t)

		require.True(t, v.OnHitPropertyChange("charge"))
		assert.Equal(t, 3, r.created)
		assert.Equal(t, []string{"all", "charge"}, v.Snapshot().Active)

		require.True(t, v.OnHitPropertyChange("charge"))
		assert.Equal(t, 3, r.created)
		assert.Equal(t, []string{"all"}, v.Snapshot().Active)

		require.True(t, v.OnHitPropertyChange("charge"))
		assert.Equal(t, 3, r.created)
	})

	t.Run("exactly one hit group visible", func(t *testing.T) {
		v, r := newView(t)
		v.OnHitPropertyChange("charge")
		v.OnHitPropertyChange("energy")

		hitsVisible := 0
		for _, g := range r.Groups() {
			if g.Layer == render.LayerHits && g.Visible {
				hitsVisible++
			}
		}
		assert.Equal(t, 1, hitsVisible)
	})

	t.Run("only specific property drops unmatched hits", func(t *testing.T) {
		v, _ := newView(t)
		v.OnHitPropertyChange("charge")
		v.OnHitPropertyChange("all")
		assert.Equal(t, 1, v.Snapshot().VisibleHits)
	})

	t.Run("none empties the view", func(t *testing.T) {
		v, r := newView(t)
		require.True(t, v.OnHitPropertyChange("none"))
		s := v.Snapshot()
		assert.Empty(t, s.Active)
		assert.Zero(t, s.VisibleHits)
		assert.Len(t, s.Visible, 1, "geometry only")

		_, shown := v.hits.Active()
		assert.False(t, shown)
		assert.Equal(t, 2, r.created)

		assert.False(t, v.OnHitPropertyChange("none"))
	})

	t.Run("type toggles under none build nothing", func(t *testing.T) {
		v, r := newView(t)
		v.OnHitPropertyChange("none")
		v.OnHitTypeChange("U")
		v.OnHitTypeChange("V")

		_, shown := v.hits.Active()
		assert.False(t, shown)
		assert.Equal(t, 2, r.created)
		assert.Zero(t, v.Snapshot().VisibleHits)

		require.True(t, v.OnHitPropertyChange("all"))
		assert.Equal(t, 3, r.created)
		assert.Equal(t, 2, v.Snapshot().VisibleHits, "types U and V both active")
	})

	t.Run("unknown names are ignored", func(t *testing.T) {
		v, r := newView(t)
		assert.False(t, v.OnHitPropertyChange("bogus"))
		assert.False(t, v.OnHitTypeChange("W"))
		assert.False(t, v.OnMarkerChange("hexagon"))
		assert.False(t, v.OnParticleSelect("zz"))
		assert.Equal(t, 2, r.created)
	})
}

func TestTypeFilter(t *testing.T) {
	v, _ := newView(t)

	require.True(t, v.OnHitTypeChange("U"))
	s := v.Snapshot()
	assert.Equal(t, []string{"U"}, s.ActiveTypes)
	assert.Equal(t, 1, s.VisibleHits)

	require.True(t, v.OnHitTypeChange("U"))
	assert.Equal(t, 2, v.Snapshot().VisibleHits)
}

func TestMCAndMarkers(t *testing.T) {
	v, r := newView(t)

	require.True(t, v.OnMCToggle())
	assert.True(t, v.Snapshot().MCVisible)
	assert.Len(t, v.Snapshot().Visible, 3)

	require.True(t, v.OnMarkerChange("ring"))
	assert.Len(t, v.Snapshot().Visible, 4)
	assert.Equal(t, []string{"ring"}, v.Snapshot().ActiveKinds)

	v.OnMCToggle()
	v.OnMarkerChange("ring")
	assert.Len(t, v.Snapshot().Visible, 2)
	assert.Equal(t, 4, r.created)

	v.OnMCToggle()
	assert.Equal(t, 4, r.created, "mc group reused")

	flat := New(testEvent().ForDim(domain.Dim2D), r, Options{})
	assert.False(t, flat.OnMCToggle())
}

func TestParticleSelect(t *testing.T) {
	v, _ := newView(t)

	require.True(t, v.OnParticleSelect("p1"))
	s := v.Snapshot()
	assert.Equal(t, "p1", s.SelectedParticle)
	assert.Equal(t, 3, s.VisibleHits)

	require.True(t, v.OnParticleSelect("p1"))
	s = v.Snapshot()
	assert.Empty(t, s.SelectedParticle)
	assert.Equal(t, 2, s.VisibleHits)

	assert.False(t, v.OnParticleSelect(""))

	v.OnParticleSelect("p2")
	v.OnHitPropertyChange("energy")
	assert.Empty(t, v.Snapshot().SelectedParticle)
}

func TestHitlessRootParticle(t *testing.T) {
	ev := domain.NewEvent("nu")
	ev.Hits = []domain.Hit{{ID: "h", Dim: domain.Dim3D}}
	ev.Particles = []domain.Particle{
		{ID: "nu", InteractionType: "CCQE", ChildIDs: []string{"mu"}},
		{ID: "mu", ParentID: "nu", Hits: []domain.Hit{
			{ID: "mu1", Dim: domain.Dim3D}, {ID: "mu2", Dim: domain.Dim3D},
		}},
	}
	v := New(ev.ForDim(domain.Dim3D), newRenderer(), Options{})

	menu := v.Snapshot().Particles
	require.Len(t, menu, 1)
	assert.Equal(t, "nu", menu[0].ID)
	assert.Equal(t, "CCQE (2)", menu[0].Label)
	require.Len(t, menu[0].Children, 1)
	assert.Equal(t, "mu", menu[0].Children[0].ID)

	require.True(t, v.OnParticleSelect("mu"))
	assert.Equal(t, 2, v.Snapshot().VisibleHits)
	require.True(t, v.OnParticleSelect("nu"))
	assert.Equal(t, 2, v.Snapshot().VisibleHits)
}

func TestResetView(t *testing.T) {
	v, r := newView(t)
	v.OnHitPropertyChange("charge")
	v.OnHitTypeChange("V")
	v.OnMCToggle()
	v.OnMarkerChange("point")
	built := r.created

	v.ResetView()
	s := v.Snapshot()
	assert.Equal(t, []string{"all"}, s.Active)
	assert.Empty(t, s.ActiveTypes)
	assert.Empty(t, s.ActiveKinds)
	assert.False(t, s.MCVisible)
	assert.Len(t, s.Visible, 2)
	assert.Equal(t, built, r.created)
}

func TestClose(t *testing.T) {
	v, r := newView(t)
	v.OnHitPropertyChange("charge")
	require.Equal(t, 3, r.Len())

	v.Close()
	assert.Zero(t, r.Len())
}

func TestSession(t *testing.T) {
	t.Run("defaults to 3D when it has hits", func(t *testing.T) {
		s := NewSession(testEvent(), 1, newRenderer(), Options{})
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, domain.Dim3D, s.Active())
		assert.Equal(t, domain.Dim2D, s.ToggleScene())
	})

	t.Run("falls back to 2D", func(t *testing.T) {
		ev := domain.NewEvent("flat")
		ev.Hits = []domain.Hit{{ID: "c", Dim: domain.Dim2D, Energy: 1}}
		s := NewSession(ev, 1, newRenderer(), Options{})
		assert.Equal(t, domain.Dim2D, s.Active())
	})

	t.Run("apply routes actions", func(t *testing.T) {
		s := NewSession(testEvent(), 1, newRenderer(), Options{})

		changed, err := s.Apply(Action{Action: ActionProperty, Name: "charge"})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, []string{"all", "charge"}, s.Snapshot().Active)

		changed, err = s.Apply(Action{Dimension: "2D", Action: ActionProperty, Name: "charge"})
		require.NoError(t, err)
		assert.False(t, changed)

		_, err = s.Apply(Action{Action: ActionScene, Name: "2D"})
		require.NoError(t, err)
		assert.Equal(t, "2D", s.Snapshot().Dimension)

		_, err = s.Apply(Action{Action: "explode"})
		assert.ErrorIs(t, err, ErrUnknownAction)

		_, err = s.Apply(Action{Dimension: "4D", Action: ActionReset})
		assert.ErrorIs(t, err, ErrUnknownDimension)

		_, err = s.Apply(Action{Action: ActionScene, Name: "4D"})
		assert.ErrorIs(t, err, ErrUnknownDimension)
	})
}
