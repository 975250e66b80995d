package core

import (
	"context"
	"fmt"
	"time"
)

const defaultModuleTimeout = 60 * time.Second

// Dispatcher routes a capability name plus parameters to the module that owns
// it. It holds no state of its own; the registry snapshot at call time
// decides what is callable.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher over the given registry. A timeout of
// zero selects the 60s default applied around every module call.
func NewDispatcher(registry *Registry, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultModuleTimeout
	}
	return &Dispatcher{registry: registry, timeout: timeout}
}

// Dispatch resolves and executes a capability. Capabilities flagged
// requires_confirmation are not executed; the caller receives a
// requires_confirmation result carrying the capability and params and is
// responsible for re-dispatching through DispatchConfirmed once the
// requester affirms.
func (d *Dispatcher) Dispatch(ctx context.Context, capability string, params map[string]any) Result {
	return d.dispatch(ctx, capability, params, false)
}

// DispatchConfirmed executes a capability unconditionally, skipping the
// confirmation gate. This is the completion path of the confirmation
// workflow.
func (d *Dispatcher) DispatchConfirmed(ctx context.Context, capability string, params map[string]any) Result {
	return d.dispatch(ctx, capability, params, true)
}

// ListCapabilities exposes the registry's capability listing to front ends.
func (d *Dispatcher) ListCapabilities() map[string][]string {
	return d.registry.ListCapabilities()
}

func (d *Dispatcher) dispatch(ctx context.Context, capability string, params map[string]any, confirmed bool) Result {
	res, err := d.registry.Resolve(capability)
	if err != nil {
		return Errorf("capability %q not found in any enabled module", capability)
	}

	if res.Capability.RequiresConfirmation && !confirmed {
		return Result{
			Status:  StatusRequiresConfirmation,
			Message: fmt.Sprintf("action %q requires confirmation", capability),
			Data: map[string]any{
				"capability": capability,
				"params":     params,
				"dangerous":  res.Capability.Dangerous,
			},
			Timestamp: time.Now().UTC(),
		}
	}

	return d.invoke(ctx, res, capability, params)
}

// invoke runs exactly one Execute call under the module timeout. A module
// that overruns is abandoned and reported as an error result; a panic is
// caught so a module fault never escapes the dispatcher.
func (d *Dispatcher) invoke(ctx context.Context, res *Resolution, capability string, params map[string]any) Result {
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Errorf("error executing %q: %v", capability, r)
			}
		}()
		done <- res.Module.Execute(callCtx, res.Action, params)
	}()

	select {
	case out := <-done:
		return out
	case <-callCtx.Done():
		return Errorf("error executing %q: %v", capability, callCtx.Err())
	}
}
