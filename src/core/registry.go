package core

import (
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned when a capability or module does not resolve.
var ErrNotFound = errors.New("core: capability not found")

// Registry is the process-wide table of installed modules. It is the single
// source of truth for whether a capability is currently callable.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*entry
	order   []string
}

type entry struct {
	module  Module
	enabled bool
}

// NewRegistry returns an empty registry ready for registration.
func NewRegistry() *Registry {
	return &Registry{modules: map[string]*entry{}}
}

// Register inserts the module under its name, enabled. Re-registering a name
// replaces the prior instance and keeps its original position in the
// registration order.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, exists := r.modules[name]; !exists {
		r.order = append(r.order, name)
	}
	r.modules[name] = &entry{module: m, enabled: true}
}

// Unregister removes the named module and reports whether removal occurred.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.modules[name]; !ok {
		return false
	}
	delete(r.modules, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get fetches a module by name regardless of enabled state.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.modules[name]
	if !ok {
		return nil, false
	}
	return e.module, true
}

// All returns every registered module in registration order.
func (r *Registry) All() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.modules[name].module)
	}
	return out
}

// Enabled returns the enabled modules in registration order.
func (r *Registry) Enabled() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabledLocked()
}

func (r *Registry) enabledLocked() []Module {
	out := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		if e := r.modules[name]; e.enabled {
			out = append(out, e.module)
		}
	}
	return out
}

// SetEnabled toggles a module and reports whether the module exists.
func (r *Registry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.modules[name]
	if !ok {
		return false
	}
	e.enabled = enabled
	return true
}

// IsEnabled reports whether the named module exists and is enabled.
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.modules[name]
	return ok && e.enabled
}

// Resolution is the outcome of resolving a capability name.
type Resolution struct {
	Module     Module
	Capability Capability
	// Action is the name Execute should be invoked with. For a qualified
	// match this is the action part after the separator; for a bare match
	// it is the name as given.
	Action string
}

// Resolve maps a capability name to the module that owns it. Names are
// resolved in two stages: a qualified "module.action" lookup first, then a
// scan of enabled modules in registration order returning the first exact
// descriptor match. Bare names are therefore ambiguous across modules and
// resolve to the earliest-registered enabled match; that is a documented
// design choice, not an error.
func (r *Registry) Resolve(capability string) (*Resolution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if moduleName, action, ok := strings.Cut(capability, "."); ok {
		if e, found := r.modules[moduleName]; found && e.enabled {
			if cap := FindCapability(e.module, capability); cap != nil {
				return &Resolution{Module: e.module, Capability: *cap, Action: action}, nil
			}
		}
	}

	for _, m := range r.enabledLocked() {
		if cap := FindCapability(m, capability); cap != nil {
			return &Resolution{Module: m, Capability: *cap, Action: capability}, nil
		}
	}
	return nil, ErrNotFound
}

// ListCapabilities maps enabled module names to their capability names,
// built fresh on every call.
func (r *Registry) ListCapabilities() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string)
	for _, m := range r.enabledLocked() {
		caps := m.Capabilities()
		names := make([]string, 0, len(caps))
		for _, cap := range caps {
			names = append(names, cap.Name)
		}
		out[m.Name()] = names
	}
	return out
}
