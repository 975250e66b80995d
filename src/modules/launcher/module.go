// Package launcher starts desktop applications and, behind the confirmation
// gate, raw shell commands on the agent host.
package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/halcyon-labs/home-agent/src/core"
)

// appTable maps friendly app names to the binary per platform. Launching is
// restricted to this table; arbitrary binaries go through run_command and
// its confirmation gate instead.
var appTable = map[string]map[string]string{
	"chrome":     {"linux": "google-chrome", "darwin": "Google Chrome"},
	"firefox":    {"linux": "firefox", "darwin": "Firefox"},
	"code":       {"linux": "code", "darwin": "Visual Studio Code"},
	"cursor":     {"linux": "cursor", "darwin": "Cursor"},
	"terminal":   {"linux": "gnome-terminal", "darwin": "Terminal"},
	"files":      {"linux": "nautilus", "darwin": "Finder"},
	"calculator": {"linux": "gnome-calculator", "darwin": "Calculator"},
	"slack":      {"linux": "slack", "darwin": "Slack"},
	"spotify":    {"linux": "spotify", "darwin": "Spotify"},
}

type Module struct{}

func New() *Module { return &Module{} }

func (m *Module) Name() string        { return "launcher" }
func (m *Module) Description() string { return "Application launcher and host command execution" }
func (m *Module) Version() string     { return "1.0.0" }

func (m *Module) Capabilities() []core.Capability {
	return []core.Capability{
		{
			Name:        "launcher.open_app",
			Description: "Open a known application by name",
			Parameters:  map[string]string{"app": "Application name, e.g. chrome, code, terminal"},
		},
		{
			Name:        "launcher.list_apps",
			Description: "List applications the launcher knows how to open",
		},
		{
			Name:                 "launcher.run_command",
			Description:          "Run a raw shell command on the agent host",
			Parameters:           map[string]string{"command": "The shell command to execute"},
			RequiresConfirmation: true,
			Dangerous:            true,
		},
	}
}

func (m *Module) Execute(ctx context.Context, action string, params map[string]any) core.Result {
	switch strings.TrimPrefix(action, "launcher.") {
	case "open_app":
		return m.openApp(ctx, params)
	case "list_apps":
		return m.listApps()
	case "run_command":
		return m.runCommand(ctx, params)
	default:
		return core.Errorf("unknown action: %s", action)
	}
}

func (m *Module) State(context.Context) map[string]any {
	return map[string]any{
		"platform":   runtime.GOOS,
		"known_apps": len(appTable),
	}
}

func (m *Module) openApp(ctx context.Context, params map[string]any) core.Result {
	app, _ := params["app"].(string)
	app = strings.ToLower(strings.TrimSpace(app))
	if app == "" {
		return core.Errorf("app parameter is required")
	}

	targets, ok := appTable[app]
	if !ok {
		return core.Errorf("unknown app %q; use launcher.list_apps to see what I can open", app)
	}
	target, ok := targets[runtime.GOOS]
	if !ok {
		return core.Errorf("app %q is not available on %s", app, runtime.GOOS)
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "darwin" {
		cmd = exec.CommandContext(ctx, "open", "-a", target)
	} else {
		cmd = exec.CommandContext(ctx, target)
	}
	if err := cmd.Start(); err != nil {
		return core.Errorf("failed to open %s: %v", app, err)
	}
	// Detach; the app outlives the dispatch.
	go func() { _ = cmd.Wait() }()

	res := core.Success(fmt.Sprintf("Opened %s", app))
	res.Data = map[string]any{"app": app, "pid": cmd.Process.Pid}
	return res
}

func (m *Module) listApps() core.Result {
	apps := make([]string, 0, len(appTable))
	for name := range appTable {
		apps = append(apps, name)
	}
	sort.Strings(apps)

	res := core.Success("Known apps: " + strings.Join(apps, ", "))
	res.Data = map[string]any{"apps": apps}
	return res
}

func (m *Module) runCommand(ctx context.Context, params map[string]any) core.Result {
	command, _ := params["command"].(string)
	if strings.TrimSpace(command) == "" {
		return core.Errorf("command parameter is required")
	}

	out, err := exec.CommandContext(ctx, "sh", "-c", command).CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return core.Errorf("command failed: %v\n%s", err, output)
	}

	res := core.Success(orDefault(output, "Command completed with no output"))
	res.Data = map[string]any{"command": command, "output": output}
	return res
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
