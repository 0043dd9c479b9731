package selection

// Reserved property names
const (
	// All is the blanket property every hit carries; its value is the hit energy.
	All = "all"
	// None is the sentinel that clears a FilterState. It is never interned.
	None = "none"
	// Energy is registered for every hit alongside All.
	Energy = "energy"
)

// PropertyID is an interned property name
type PropertyID uint32

// AllID is the id of All in every Registry
const AllID PropertyID = 0

// Registry interns property names for one view
type Registry struct {
	ids   map[string]PropertyID
	names []string
}

// NewRegistry creates a registry with All pre-registered as AllID
func NewRegistry() *Registry {
	r := &Registry{ids: make(map[string]PropertyID)}
	r.Intern(All)
	return r
}

// Intern returns the id for name, registering it if needed
func (r *Registry) Intern(name string) PropertyID {
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := PropertyID(len(r.names))
	r.ids[name] = id
	r.names = append(r.names, name)
	return id
}

// Lookup returns the id of an already registered name
func (r *Registry) Lookup(name string) (PropertyID, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Name returns the name behind an id, or "" for an unknown id
func (r *Registry) Name(id PropertyID) string {
	if int(id) >= len(r.names) {
		return ""
	}
	return r.names[id]
}
