package core

import "context"

// Module is the unit of functionality that owns one or more capabilities and
// their side effects. Implementations must report expected failures (missing
// parameter, unreachable resource) as error-status results rather than
// returning a Go error; returned errors and panics are treated as module
// faults by the dispatcher.
type Module interface {
	Name() string
	Description() string
	Version() string

	// Capabilities returns the module's descriptors in a stable order.
	Capabilities() []Capability

	// Execute runs the named action. Accepts both qualified
	// ("system.status") and bare ("status") action names.
	Execute(ctx context.Context, action string, params map[string]any) Result

	// State returns a lightweight, side-effect-free health snapshot.
	State(ctx context.Context) map[string]any
}

// HasCapability reports whether the module advertises the named capability.
func HasCapability(m Module, name string) bool {
	return FindCapability(m, name) != nil
}

// FindCapability returns the module's descriptor for name, or nil.
func FindCapability(m Module, name string) *Capability {
	for _, cap := range m.Capabilities() {
		if cap.Name == name {
			c := cap
			return &c
		}
	}
	return nil
}
