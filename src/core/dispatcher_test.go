package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// behaviorModule lets a test script the Execute body.
type behaviorModule struct {
	fakeModule
	fn func(ctx context.Context, action string, params map[string]any) Result
}

func (b *behaviorModule) Execute(ctx context.Context, action string, params map[string]any) Result {
	b.executed = append(b.executed, action)
	return b.fn(ctx, action, params)
}

func TestDispatchSuccess(t *testing.T) {
	r := NewRegistry()
	m := newFakeModule("system", capNamed("system.status"))
	r.Register(m)
	d := NewDispatcher(r, 0)

	result := d.Dispatch(context.Background(), "system.status", nil)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, []string{"status"}, m.executed)
	assert.False(t, result.Timestamp.IsZero())
}

func TestDispatchNotFound(t *testing.T) {
	d := NewDispatcher(NewRegistry(), 0)

	result := d.Dispatch(context.Background(), "nonexistent.capability", nil)
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Message, "nonexistent.capability")
}

func TestDispatchConfirmationGate(t *testing.T) {
	r := NewRegistry()
	m := newFakeModule("shell", Capability{
		Name:                 "shell.run",
		RequiresConfirmation: true,
		Dangerous:            true,
	})
	r.Register(m)
	d := NewDispatcher(r, 0)

	params := map[string]any{"command": "ls"}
	result := d.Dispatch(context.Background(), "shell.run", params)

	// The gate must fire without invoking the module.
	require.Equal(t, StatusRequiresConfirmation, result.Status)
	assert.Empty(t, m.executed)
	assert.Equal(t, "shell.run", result.Data["capability"])
	assert.Equal(t, params, result.Data["params"])
	assert.Equal(t, true, result.Data["dangerous"])
}

func TestDispatchConfirmedBypassesGate(t *testing.T) {
	r := NewRegistry()
	m := newFakeModule("shell", Capability{Name: "shell.run", RequiresConfirmation: true})
	r.Register(m)
	d := NewDispatcher(r, 0)

	result := d.DispatchConfirmed(context.Background(), "shell.run", nil)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, []string{"run"}, m.executed)
}

func TestDispatchRecoversPanic(t *testing.T) {
	r := NewRegistry()
	m := &behaviorModule{
		fakeModule: fakeModule{name: "bad", caps: []Capability{capNamed("bad.boom")}},
		fn: func(context.Context, string, map[string]any) Result {
			panic("kaboom")
		},
	}
	r.Register(m)
	d := NewDispatcher(r, 0)

	result := d.Dispatch(context.Background(), "bad.boom", nil)
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Message, "bad.boom")
	assert.Contains(t, result.Message, "kaboom")
}

func TestDispatchTimeout(t *testing.T) {
	r := NewRegistry()
	m := &behaviorModule{
		fakeModule: fakeModule{name: "slow", caps: []Capability{capNamed("slow.wait")}},
		fn: func(ctx context.Context, _ string, _ map[string]any) Result {
			<-ctx.Done()
			time.Sleep(time.Hour) // never returns in time
			return Success("late")
		},
	}
	r.Register(m)
	d := NewDispatcher(r, 20*time.Millisecond)

	start := time.Now()
	result := d.Dispatch(context.Background(), "slow.wait", nil)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Message, "slow.wait")
}

func TestDispatchExactlyOneExecutePerCall(t *testing.T) {
	r := NewRegistry()
	m := newFakeModule("system", capNamed("system.status"))
	r.Register(m)
	d := NewDispatcher(r, 0)

	d.Dispatch(context.Background(), "system.status", nil)
	d.Dispatch(context.Background(), "system.status", nil)
	assert.Len(t, m.executed, 2)
}
