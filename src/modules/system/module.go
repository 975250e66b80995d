// Package system exposes host utilities: status snapshots, screenshots,
// notes, and window listing.
package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/halcyon-labs/home-agent/src/audit"
	"github.com/halcyon-labs/home-agent/src/core"
)

type Module struct {
	auditLog    *audit.Store
	artifactDir string
	startedAt   time.Time
}

// New creates the system module. Screenshots are written under artifactDir.
func New(auditLog *audit.Store, artifactDir string) *Module {
	return &Module{
		auditLog:    auditLog,
		artifactDir: artifactDir,
		startedAt:   time.Now().UTC(),
	}
}

func (m *Module) Name() string        { return "system" }
func (m *Module) Description() string { return "System utilities: screenshots, status, notes, windows" }
func (m *Module) Version() string     { return "1.0.0" }

func (m *Module) Capabilities() []core.Capability {
	return []core.Capability{
		{
			Name:        "system.screenshot",
			Description: "Take a screenshot of the current screen",
			Parameters:  map[string]string{"save_path": "Optional path to save the screenshot"},
		},
		{
			Name:        "system.status",
			Description: "Get current system status including time, platform, and uptime",
		},
		{
			Name:        "system.add_note",
			Description: "Save a note for later reference",
			Parameters:  map[string]string{"content": "The note content to save"},
		},
		{
			Name:        "system.get_notes",
			Description: "Retrieve saved notes",
			Parameters:  map[string]string{"limit": "Number of notes to retrieve (default 10)"},
		},
		{
			Name:        "system.list_windows",
			Description: "List open windows on the system",
		},
	}
}

func (m *Module) Execute(ctx context.Context, action string, params map[string]any) core.Result {
	switch strings.TrimPrefix(action, "system.") {
	case "screenshot":
		return m.screenshot(ctx, params)
	case "status":
		return m.status()
	case "add_note":
		return m.addNote(params)
	case "get_notes":
		return m.getNotes(params)
	case "list_windows":
		return m.listWindows(ctx)
	default:
		return core.Errorf("unknown action: %s", action)
	}
}

func (m *Module) State(context.Context) map[string]any {
	return map[string]any{
		"platform":   runtime.GOOS,
		"arch":       runtime.GOARCH,
		"hostname":   hostname(),
		"uptime":     time.Since(m.startedAt).Round(time.Second).String(),
		"goroutines": runtime.NumGoroutine(),
	}
}

func (m *Module) status() core.Result {
	host := hostname()
	res := core.Success(fmt.Sprintf("Agent online on %s (%s)", host, runtime.GOOS))
	res.Data = map[string]any{
		"time":     time.Now().UTC().Format(time.RFC3339),
		"platform": runtime.GOOS,
		"arch":     runtime.GOARCH,
		"hostname": host,
		"uptime":   time.Since(m.startedAt).Round(time.Second).String(),
		"status":   "online",
	}
	return res
}

func (m *Module) screenshot(ctx context.Context, params map[string]any) core.Result {
	savePath, _ := params["save_path"].(string)
	if savePath == "" {
		savePath = filepath.Join(m.artifactDir, "screenshot_"+uuid.NewString()+".png")
	}
	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return core.Errorf("failed to prepare screenshot dir: %v", err)
	}

	cmd, err := screenshotCommand(ctx, savePath)
	if err != nil {
		return core.Errorf("%v", err)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return core.Errorf("failed to take screenshot: %v: %s", err, strings.TrimSpace(string(out)))
	}

	res := core.Success("Screenshot taken")
	res.ArtifactPath = savePath
	res.Data = map[string]any{"path": savePath}
	return res
}

// screenshotCommand picks the native capture tool for the platform.
func screenshotCommand(ctx context.Context, path string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "screencapture", "-x", path), nil
	case "linux":
		for _, tool := range []string{"gnome-screenshot", "scrot"} {
			if _, err := exec.LookPath(tool); err == nil {
				if tool == "gnome-screenshot" {
					return exec.CommandContext(ctx, tool, "-f", path), nil
				}
				return exec.CommandContext(ctx, tool, path), nil
			}
		}
		return nil, fmt.Errorf("no screenshot tool available (tried gnome-screenshot, scrot)")
	default:
		return nil, fmt.Errorf("screenshots not supported on %s", runtime.GOOS)
	}
}

func (m *Module) addNote(params map[string]any) core.Result {
	content, _ := params["content"].(string)
	if strings.TrimSpace(content) == "" {
		return core.Errorf("note content is required")
	}

	id, err := m.auditLog.AddNote(content)
	if err != nil {
		return core.Errorf("failed to save note: %v", err)
	}

	res := core.Success(fmt.Sprintf("Note saved (ID: %d)", id))
	res.Data = map[string]any{"note_id": id, "content": content}
	return res
}

func (m *Module) getNotes(params map[string]any) core.Result {
	limit := intParam(params, "limit", 10)

	notes, err := m.auditLog.RecentNotes(limit)
	if err != nil {
		return core.Errorf("failed to get notes: %v", err)
	}
	if len(notes) == 0 {
		res := core.Success("No notes found")
		res.Data = map[string]any{"notes": []audit.Note{}}
		return res
	}

	var lines []string
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("[%s] %s", n.Timestamp.Format(time.RFC3339), n.Content))
	}
	res := core.Success(fmt.Sprintf("Found %d notes:\n%s", len(notes), strings.Join(lines, "\n")))
	res.Data = map[string]any{"notes": notes}
	return res
}

func (m *Module) listWindows(ctx context.Context) core.Result {
	if runtime.GOOS != "linux" {
		res := core.Success("Window listing only available on linux hosts")
		res.Data = map[string]any{"windows": []string{}}
		return res
	}
	if _, err := exec.LookPath("wmctrl"); err != nil {
		return core.Errorf("wmctrl not available")
	}

	out, err := exec.CommandContext(ctx, "wmctrl", "-l").Output()
	if err != nil {
		return core.Errorf("failed to list windows: %v", err)
	}

	var windows []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if fields := strings.SplitN(line, " ", 4); len(fields) == 4 {
			windows = append(windows, strings.TrimSpace(fields[3]))
		}
	}
	res := core.Success(fmt.Sprintf("Found %d windows", len(windows)))
	res.Data = map[string]any{"windows": windows}
	return res
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func intParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		// JSON numbers decode to float64.
		return int(v)
	default:
		return def
	}
}
