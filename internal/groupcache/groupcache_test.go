package groupcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hepevd/internal/selection"
)

type fakeGroup struct {
	name    string
	visible bool
	cleared bool
}

type fakeVis struct{}

func (fakeVis) SetVisible(g *fakeGroup, v bool) { g.visible = v }
func (fakeVis) Clear(g *fakeGroup)              { g.cleared = true }

type countingObserver struct {
	built, reused int
}

func (o *countingObserver) GroupBuilt(string, string)  { o.built++ }
func (o *countingObserver) GroupReused(string, string) { o.reused++ }

func builder(name string, calls map[string]int) BuildFunc[*fakeGroup] {
	return func() *fakeGroup {
		calls[name]++
		return &fakeGroup{name: name}
	}
}

func TestActivateBuildsOncePerKey(t *testing.T) {
	c := New[*fakeGroup]("3D", "hits", fakeVis{})
	obs := &countingObserver{}
	c.SetObserver(obs)
	calls := make(map[string]int)

	reg := selection.NewRegistry()
	track := reg.Intern("track")
	f := selection.NewFilterState()

	// all -> all+track -> all -> all+track -> track+all (other order)
	sequence := []func(){
		func() {},
		func() { f.Toggle(track) },
		func() { f.Toggle(track) },
		func() { f.Toggle(track) },
		func() { f.Toggle(selection.AllID); f.Toggle(selection.AllID) },
	}
	for _, step := range sequence {
		step()
		key := f.Key()
		c.Activate(key, builder(f.Describe(reg), calls))
	}

	assert.Equal(t, map[string]int{"all": 1, "all_track": 1}, calls)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, obs.built)
	assert.Equal(t, 3, obs.reused)
	assert.Equal(t, Stats{Entries: 2, Builds: 2, Reuses: 3}, c.Stats())
}

func TestExactlyOneVisible(t *testing.T) {
	c := New[*fakeGroup]("2D", "hits", fakeVis{})
	calls := make(map[string]int)

	a, _ := c.Activate("a", builder("a", calls))
	b, built := c.Activate("b", builder("b", calls))
	require.True(t, built)
	assert.False(t, a.visible)
	assert.True(t, b.visible)

	again, built := c.Activate("a", builder("a", calls))
	assert.False(t, built)
	assert.Same(t, a, again)
	assert.True(t, a.visible)
	assert.False(t, b.visible)

	key, shown := c.Active()
	assert.True(t, shown)
	assert.Equal(t, selection.Key("a"), key)

	c.HideAll()
	assert.False(t, a.visible)
	assert.False(t, b.visible)
	_, shown = c.Active()
	assert.False(t, shown)
	_, ok := c.Visible()
	assert.False(t, ok)
}

func TestGetOrCreateStartsHidden(t *testing.T) {
	c := New[*fakeGroup]("3D", "markers", fakeVis{})
	g, built := c.GetOrCreate("k", builder("k", map[string]int{}))
	require.True(t, built)
	assert.False(t, g.visible)

	c.SetVisible("missing", true)
	_, shown := c.Active()
	assert.False(t, shown, "unknown keys are ignored")

	c.SetVisible("k", true)
	assert.True(t, g.visible)
	c.SetVisible("k", false)
	assert.False(t, g.visible)
	_, shown = c.Active()
	assert.False(t, shown)
}

func TestClose(t *testing.T) {
	c := New[*fakeGroup]("3D", "hits", fakeVis{})
	calls := make(map[string]int)
	a, _ := c.Activate("a", builder("a", calls))
	b, _ := c.Activate("b", builder("b", calls))

	c.Close()
	assert.True(t, a.cleared)
	assert.True(t, b.cleared)
	assert.Equal(t, 0, c.Len())

	c.Activate("a", builder("a", calls))
	assert.Equal(t, 2, calls["a"], "a closed cache starts over")
}
