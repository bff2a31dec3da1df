package profile

import "sort"

// #region registry

// Registry is the load-once, read-many sign name → profile lookup. It is
// populated at startup and never mutated afterwards; the tick path only
// reads it.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]*Profile)}
}

// Register adds a profile. Registering the same sign name again is a no-op,
// so repeated loads cannot create duplicate entries.
func (r *Registry) Register(p *Profile) {
	if p == nil || p.SignName == "" {
		return
	}
	if _, ok := r.profiles[p.SignName]; ok {
		return
	}
	r.profiles[p.SignName] = p
}

// Lookup returns the profile for a sign name. A miss is not an error: the
// caller falls back to a generic correction message.
func (r *Registry) Lookup(signName string) (*Profile, bool) {
	p, ok := r.profiles[signName]
	return p, ok
}

// Names returns all registered sign names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of registered profiles.
func (r *Registry) Len() int {
	return len(r.profiles)
}

// #endregion registry
