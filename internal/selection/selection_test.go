package selection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hepevd/internal/domain"
)

func hitsAB() []*domain.Hit {
	return []*domain.Hit{
		{ID: "1", Dim: domain.Dim3D, Energy: 5.0},
		{ID: "2", Dim: domain.Dim3D, Energy: 9.0, Label: "track"},
	}
}

func nums(values []Value) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.Num
	}
	return out
}

func TestBuildIndex(t *testing.T) {
	t.Run("registers all, energy, label and explicit properties", func(t *testing.T) {
		hits := []*domain.Hit{{
			Energy: 3,
			Label:  "shower",
			Properties: []domain.Property{
				domain.NumericProperty("charge", 7),
			},
		}}
		ix := BuildIndex(hits, NewRegistry())

		props := ix.Properties(0)
		assert.Equal(t, NumericValue(3), props[All])
		assert.Equal(t, NumericValue(3), props[Energy])
		assert.Equal(t, NumericValue(1), props["shower"])
		assert.Equal(t, NumericValue(7), props["charge"])
		assert.Equal(t, []string{All, Energy, "shower", "charge"}, ix.Names())
	})

	t.Run("explicit property overrides label of same name", func(t *testing.T) {
		hits := []*domain.Hit{{
			Label:      "track",
			Properties: []domain.Property{domain.NumericProperty("track", 0.25)},
		}}
		ix := BuildIndex(hits, NewRegistry())
		assert.Equal(t, NumericValue(0.25), ix.Properties(0)["track"])
	})

	t.Run("non-numeric values are classified once", func(t *testing.T) {
		hits := []*domain.Hit{{
			Properties: []domain.Property{
				{Name: "cluster", Value: json.RawMessage(`"em"`)},
				{Name: "broken", Value: json.RawMessage(`{"x": 1}`)},
			},
		}}
		ix := BuildIndex(hits, NewRegistry())
		props := ix.Properties(0)
		assert.Equal(t, CategoricalValue("em"), props["cluster"])
		assert.Equal(t, Absent, props["broken"].Kind)
	})

	t.Run("empty input gives empty index", func(t *testing.T) {
		ix := BuildIndex(nil, NewRegistry())
		assert.Equal(t, 0, ix.Len())
		assert.Empty(t, ix.Names())
		_, ok := ix.Get(0, AllID)
		assert.False(t, ok)
	})
}

func TestFilterStateToggle(t *testing.T) {
	reg := NewRegistry()
	track := reg.Intern("track")
	shower := reg.Intern("shower")

	t.Run("initial state is all", func(t *testing.T) {
		f := NewFilterState()
		assert.Equal(t, []PropertyID{AllID}, f.Members())
	})

	t.Run("toggling twice restores the member set", func(t *testing.T) {
		f := NewFilterState()
		f.Toggle(track)
		before := f.Members()
		f.Toggle(shower)
		f.Toggle(shower)
		assert.Equal(t, before, f.Members())
	})

	t.Run("all and concrete members coexist", func(t *testing.T) {
		f := NewFilterState()
		f.Toggle(track)
		assert.True(t, f.Has(AllID))
		assert.True(t, f.Has(track))
	})

	t.Run("none clears everything", func(t *testing.T) {
		f := NewFilterState()
		f.Toggle(track)
		require.True(t, f.ToggleName(reg, None))
		assert.Equal(t, 0, f.Len())
		assert.True(t, f.Key().IsEmpty())
		assert.False(t, f.ToggleName(reg, None), "clearing an empty set is a no-op")
	})

	t.Run("unknown names are ignored", func(t *testing.T) {
		f := NewFilterState()
		assert.False(t, f.ToggleName(reg, "missing"))
		assert.Equal(t, []PropertyID{AllID}, f.Members())
	})

	t.Run("reset restores all", func(t *testing.T) {
		f := NewFilterState()
		f.Clear()
		f.Toggle(track)
		f.Reset()
		assert.Equal(t, []PropertyID{AllID}, f.Members())
	})
}

func TestKeyOrderIndependence(t *testing.T) {
	reg := NewRegistry()
	ids := []PropertyID{reg.Intern("a"), reg.Intern("b"), reg.Intern("c")}

	perms := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {2, 0, 1}}
	var keys []Key
	for _, perm := range perms {
		f := NewFilterState()
		f.Clear()
		for _, i := range perm {
			f.Toggle(ids[i])
		}
		keys = append(keys, f.Key())
	}
	for _, k := range keys[1:] {
		assert.Equal(t, keys[0], k)
	}

	f := NewFilterState()
	f.Toggle(ids[0])
	assert.NotEqual(t, keys[0], f.Key())
	assert.Equal(t, "a_all", f.Describe(reg))

	s1, s2 := NewTagSet(), NewTagSet()
	s1.Toggle("U")
	s1.Toggle("W")
	s2.Toggle("W")
	s2.Toggle("U")
	assert.Equal(t, s1.Key(), s2.Key())

	assert.NotEqual(t, ComposeKey("ab", "c"), ComposeKey("a", "bc"))
	assert.True(t, ComposeKey("", "").IsEmpty())
}

func TestResolve(t *testing.T) {
	t.Run("all shows every hit with its energy", func(t *testing.T) {
		hits := hitsAB()
		ix := BuildIndex(hits, NewRegistry())
		res := Resolve(Input{Hits: hits, Index: ix, Filter: NewFilterState()})

		require.Equal(t, hits, res.Hits)
		assert.Equal(t, []float64{5, 9}, nums(res.Values))
	})

	t.Run("later toggle takes precedence, others fall through to all", func(t *testing.T) {
		hits := hitsAB()
		reg := NewRegistry()
		ix := BuildIndex(hits, reg)
		f := NewFilterState()
		require.True(t, f.ToggleName(reg, "track"))

		res := Resolve(Input{Hits: hits, Index: ix, Filter: f})
		require.Equal(t, hits, res.Hits)
		assert.Equal(t, []float64{5, 1}, nums(res.Values))
	})

	t.Run("none hides everything even with particles", func(t *testing.T) {
		hits := hitsAB()
		reg := NewRegistry()
		ix := BuildIndex(hits, reg)
		f := NewFilterState()
		f.ToggleName(reg, None)

		particles := []domain.Particle{{ID: "p", Hits: []domain.Hit{{Dim: domain.Dim3D}}}}
		res := Resolve(Input{Hits: hits, Index: ix, Filter: f, Particles: particles})
		assert.Equal(t, 0, res.Len())
	})

	t.Run("most recent toggle wins colour", func(t *testing.T) {
		hits := []*domain.Hit{{
			Energy: 2,
			Properties: []domain.Property{
				domain.NumericProperty("p1", 10),
				domain.NumericProperty("p2", 20),
			},
		}}
		reg := NewRegistry()
		ix := BuildIndex(hits, reg)
		f := NewFilterState()
		f.Clear()
		f.ToggleName(reg, "p1")
		f.ToggleName(reg, "p2")

		res := Resolve(Input{Hits: hits, Index: ix, Filter: f})
		assert.Equal(t, []float64{20}, nums(res.Values))

		f.ToggleName(reg, "p1")
		f.ToggleName(reg, "p1")
		res = Resolve(Input{Hits: hits, Index: ix, Filter: f})
		assert.Equal(t, []float64{10}, nums(res.Values), "re-toggled p1 is now the most recent")
	})

	t.Run("hits matching nothing are excluded without all", func(t *testing.T) {
		hits := hitsAB()
		reg := NewRegistry()
		ix := BuildIndex(hits, reg)
		f := NewFilterState()
		f.Clear()
		f.ToggleName(reg, "track")

		res := Resolve(Input{Hits: hits, Index: ix, Filter: f})
		require.Len(t, res.Hits, 1)
		assert.Equal(t, "2", res.Hits[0].ID)
	})

	t.Run("type filter skips hits", func(t *testing.T) {
		hits := []*domain.Hit{
			{ID: "u", Dim: domain.Dim2D, HitType: "U", Energy: 1},
			{ID: "v", Dim: domain.Dim2D, HitType: "V", Energy: 2},
		}
		ix := BuildIndex(hits, NewRegistry())
		types := NewTagSet()
		types.Toggle("V")

		res := Resolve(Input{Hits: hits, Index: ix, Filter: NewFilterState(), Types: types})
		require.Len(t, res.Hits, 1)
		assert.Equal(t, "v", res.Hits[0].ID)
	})

	t.Run("falls back to particle hits when nothing matches", func(t *testing.T) {
		hits := hitsAB()
		reg := NewRegistry()
		ix := BuildIndex(hits, reg)
		types := NewTagSet()
		types.Toggle("W")

		particles := []domain.Particle{
			{ID: "a", Hits: []domain.Hit{{ID: "pa1"}, {ID: "pa2"}}},
			{ID: "b", Hits: []domain.Hit{{ID: "pb1"}}},
		}
		res := Resolve(Input{Hits: hits, Index: ix, Filter: NewFilterState(), Types: types, Particles: particles})
		require.Len(t, res.Hits, 3)
		assert.True(t, res.FromParticles)
		assert.Equal(t, Absent, res.Values[0].Kind)
	})

	t.Run("empty input resolves to nothing", func(t *testing.T) {
		res := Resolve(Input{Index: BuildIndex(nil, NewRegistry()), Filter: NewFilterState()})
		assert.Equal(t, 0, res.Len())
	})
}

func TestResolveMarkers(t *testing.T) {
	markers := []*domain.Marker{
		{ID: "r1", Kind: domain.MarkerRing, Dim: domain.Dim2D, HitType: "U"},
		{ID: "p1", Kind: domain.MarkerPoint, Dim: domain.Dim2D, HitType: "U"},
		{ID: "r2", Kind: domain.MarkerRing, Dim: domain.Dim2D, HitType: "W"},
	}

	t.Run("no active kinds shows nothing", func(t *testing.T) {
		assert.Empty(t, ResolveMarkers(markers, NewTagSet(), nil))
	})

	t.Run("kind filter", func(t *testing.T) {
		kinds := NewTagSet()
		kinds.Toggle("ring")
		got := ResolveMarkers(markers, kinds, nil)
		require.Len(t, got, 2)
		assert.Equal(t, "r1", got[0].ID)
		assert.Equal(t, "r2", got[1].ID)
	})

	t.Run("kind and type filter intersect", func(t *testing.T) {
		kinds, types := NewTagSet(), NewTagSet()
		kinds.Toggle("ring")
		types.Toggle("W")
		got := ResolveMarkers(markers, kinds, types)
		require.Len(t, got, 1)
		assert.Equal(t, "r2", got[0].ID)
	})
}

func TestResolveMC(t *testing.T) {
	mc := []*domain.MCHit{
		{Hit: domain.Hit{Dim: domain.Dim2D, HitType: "U"}, PDG: 13},
		{Hit: domain.Hit{Dim: domain.Dim2D, HitType: "V"}, PDG: 11},
	}
	assert.Len(t, ResolveMC(mc, nil), 2)

	types := NewTagSet()
	types.Toggle("U")
	got := ResolveMC(mc, types)
	require.Len(t, got, 1)
	assert.Equal(t, 13, got[0].PDG)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"1.5", NumericValue(1.5)},
		{"-2", NumericValue(-2)},
		{`"muon"`, CategoricalValue("muon")},
		{"null", Value{}},
		{"true", Value{}},
		{"[1]", Value{}},
		{"", Value{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseValue(json.RawMessage(tt.raw)))
		})
	}
}
