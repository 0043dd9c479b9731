// Package groupcache memoizes render groups per combination key so that
// returning to a previously seen combination of filters is a visibility flip
// instead of a geometry rebuild.
package groupcache

import "hepevd/internal/selection"

// BuildFunc constructs the render group for a combination. It is called at
// most once per key for the lifetime of a Cache.
type BuildFunc[H any] func() H

// Visibility is the slice of the rendering collaborator a cache drives
type Visibility[H any] interface {
	SetVisible(h H, visible bool)
	Clear(h H)
}

// Observer is notified of builds and reuses, e.g. for metrics
type Observer interface {
	GroupBuilt(view, layer string)
	GroupReused(view, layer string)
}

type entry[H any] struct {
	handle  H
	visible bool
}

// Stats counts cache activity
type Stats struct {
	Entries int `json:"entries"`
	Builds  int `json:"builds"`
	Reuses  int `json:"reuses"`
}

// Cache holds one handle per distinct key for a single view and layer. At
// most one entry is visible at a time. It is not safe for concurrent use;
// the owning view serializes access.
type Cache[H any] struct {
	view     string
	layer    string
	vis      Visibility[H]
	observer Observer

	entries map[selection.Key]*entry[H]
	order   []selection.Key
	active  selection.Key
	shown   bool
	stats   Stats
}

// New creates a cache for one layer of one view
func New[H any](view, layer string, vis Visibility[H]) *Cache[H] {
	return &Cache[H]{
		view:    view,
		layer:   layer,
		vis:     vis,
		entries: make(map[selection.Key]*entry[H]),
	}
}

// SetObserver attaches an observer; nil detaches
func (c *Cache[H]) SetObserver(o Observer) {
	c.observer = o
}

// GetOrCreate returns the handle for key, building it if this key was never
// seen. The second return value reports whether a build happened. New
// handles start hidden.
func (c *Cache[H]) GetOrCreate(key selection.Key, build BuildFunc[H]) (H, bool) {
	if e, ok := c.entries[key]; ok {
		c.stats.Reuses++
		if c.observer != nil {
			c.observer.GroupReused(c.view, c.layer)
		}
		return e.handle, false
	}

	h := build()
	c.vis.SetVisible(h, false)
	c.entries[key] = &entry[H]{handle: h}
	c.order = append(c.order, key)
	c.stats.Builds++
	if c.observer != nil {
		c.observer.GroupBuilt(c.view, c.layer)
	}
	return h, true
}

// SetVisible flips the visibility of a cached entry. Making an entry visible
// hides every other entry. Unknown keys are ignored.
func (c *Cache[H]) SetVisible(key selection.Key, visible bool) {
	e, ok := c.entries[key]
	if !ok {
		return
	}

	if visible {
		for k, other := range c.entries {
			if k != key && other.visible {
				c.vis.SetVisible(other.handle, false)
				other.visible = false
			}
		}
		c.active = key
		c.shown = true
	} else if c.active == key {
		c.shown = false
	}

	if e.visible != visible {
		c.vis.SetVisible(e.handle, visible)
		e.visible = visible
	}
}

// Activate makes key the single visible combination, building it first if
// needed, and reports whether a build happened
func (c *Cache[H]) Activate(key selection.Key, build BuildFunc[H]) (H, bool) {
	h, built := c.GetOrCreate(key, build)
	c.SetVisible(key, true)
	return h, built
}

// HideAll hides every entry, leaving no combination visible
func (c *Cache[H]) HideAll() {
	for _, e := range c.entries {
		if e.visible {
			c.vis.SetVisible(e.handle, false)
			e.visible = false
		}
	}
	c.shown = false
}

// Active returns the visible key, if any
func (c *Cache[H]) Active() (selection.Key, bool) {
	return c.active, c.shown
}

// Handle returns the cached handle of key
func (c *Cache[H]) Handle(key selection.Key) (H, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero H
		return zero, false
	}
	return e.handle, true
}

// Visible returns the handle currently shown, if any
func (c *Cache[H]) Visible() (H, bool) {
	if !c.shown {
		var zero H
		return zero, false
	}
	return c.Handle(c.active)
}

// Layer returns the layer name the cache was created with
func (c *Cache[H]) Layer() string {
	return c.layer
}

// Len returns the number of cached entries
func (c *Cache[H]) Len() int {
	return len(c.entries)
}

// Stats returns build and reuse counts
func (c *Cache[H]) Stats() Stats {
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// Close releases every handle through the collaborator. The cache is empty
// afterwards and may be reused.
func (c *Cache[H]) Close() {
	for _, key := range c.order {
		c.vis.Clear(c.entries[key].handle)
	}
	c.entries = make(map[selection.Key]*entry[H])
	c.order = nil
	c.active = ""
	c.shown = false
}
