package launcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-labs/home-agent/src/core"
)

func TestOpenAppUnknown(t *testing.T) {
	m := New()

	res := m.Execute(context.Background(), "launcher.open_app", map[string]any{"app": "doomemacs"})
	assert.Equal(t, core.StatusError, res.Status)
	assert.Contains(t, res.Message, "doomemacs")
	assert.Contains(t, res.Message, "list_apps")
}

func TestOpenAppMissingParam(t *testing.T) {
	m := New()

	for _, params := range []map[string]any{nil, {"app": ""}, {"app": "   "}} {
		res := m.Execute(context.Background(), "launcher.open_app", params)
		assert.Equal(t, core.StatusError, res.Status)
	}
}

func TestListApps(t *testing.T) {
	m := New()

	res := m.Execute(context.Background(), "launcher.list_apps", nil)
	require.Equal(t, core.StatusSuccess, res.Status)

	apps, ok := res.Data["apps"].([]string)
	require.True(t, ok)
	assert.Len(t, apps, len(appTable))
	assert.Contains(t, apps, "chrome")
	assert.Contains(t, apps, "terminal")
	// Sorted for stable output.
	for i := 1; i < len(apps); i++ {
		assert.LessOrEqual(t, apps[i-1], apps[i])
	}
}

func TestRunCommandEcho(t *testing.T) {
	m := New()

	res := m.Execute(context.Background(), "launcher.run_command", map[string]any{"command": "echo hello"})
	require.Equal(t, core.StatusSuccess, res.Status)
	assert.Equal(t, "hello", res.Message)
	assert.Equal(t, "hello", res.Data["output"])
}

func TestRunCommandNoOutput(t *testing.T) {
	m := New()

	res := m.Execute(context.Background(), "launcher.run_command", map[string]any{"command": "true"})
	require.Equal(t, core.StatusSuccess, res.Status)
	assert.Contains(t, res.Message, "no output")
}

func TestRunCommandFailure(t *testing.T) {
	m := New()

	res := m.Execute(context.Background(), "launcher.run_command", map[string]any{"command": "exit 3"})
	assert.Equal(t, core.StatusError, res.Status)
	assert.Contains(t, res.Message, "command failed")
}

func TestRunCommandMissingParam(t *testing.T) {
	m := New()

	res := m.Execute(context.Background(), "launcher.run_command", nil)
	assert.Equal(t, core.StatusError, res.Status)
}

func TestRunCommandIsGated(t *testing.T) {
	m := New()

	c := core.FindCapability(m, "launcher.run_command")
	require.NotNil(t, c)
	assert.True(t, c.RequiresConfirmation)
	assert.True(t, c.Dangerous)

	// open_app stays whitelisted and ungated.
	c = core.FindCapability(m, "launcher.open_app")
	require.NotNil(t, c)
	assert.False(t, c.RequiresConfirmation)
}

func TestBareActionNames(t *testing.T) {
	m := New()

	res := m.Execute(context.Background(), "list_apps", nil)
	assert.Equal(t, core.StatusSuccess, res.Status)
}

func TestUnknownAction(t *testing.T) {
	m := New()

	res := m.Execute(context.Background(), "launcher.self_destruct", nil)
	assert.Equal(t, core.StatusError, res.Status)
}
