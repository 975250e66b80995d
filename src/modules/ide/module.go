// Package ide drives the owner's code editor and workspace directory.
package ide

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/halcyon-labs/home-agent/src/core"
)

var projectName = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type Module struct {
	editorCmd    string
	workspaceDir string
}

// New creates the IDE module. editorCmd is the editor binary ("code",
// "cursor"); workspaceDir is where projects live and are created.
func New(editorCmd, workspaceDir string) *Module {
	if editorCmd == "" {
		editorCmd = "code"
	}
	return &Module{editorCmd: editorCmd, workspaceDir: workspaceDir}
}

func (m *Module) Name() string        { return "ide" }
func (m *Module) Description() string { return "IDE control: open, create, and list workspace projects" }
func (m *Module) Version() string     { return "1.0.0" }

func (m *Module) Capabilities() []core.Capability {
	return []core.Capability{
		{
			Name:        "ide.open_project",
			Description: "Open a workspace project in the editor",
			Parameters:  map[string]string{"name": "Project directory name"},
		},
		{
			Name:        "ide.create_project",
			Description: "Create a new project directory and open it",
			Parameters: map[string]string{
				"name":        "Project name (letters, digits, dot, dash, underscore)",
				"description": "Optional one-line description written to the README",
			},
		},
		{
			Name:        "ide.list_projects",
			Description: "List projects in the workspace directory",
		},
	}
}

func (m *Module) Execute(ctx context.Context, action string, params map[string]any) core.Result {
	switch strings.TrimPrefix(action, "ide.") {
	case "open_project":
		return m.openProject(ctx, params)
	case "create_project":
		return m.createProject(ctx, params)
	case "list_projects":
		return m.listProjects()
	default:
		return core.Errorf("unknown action: %s", action)
	}
}

func (m *Module) State(context.Context) map[string]any {
	projects, _ := m.projectNames()
	return map[string]any{
		"editor":    m.editorCmd,
		"workspace": m.workspaceDir,
		"projects":  len(projects),
	}
}

func (m *Module) openProject(ctx context.Context, params map[string]any) core.Result {
	name, _ := params["name"].(string)
	if !projectName.MatchString(name) {
		return core.Errorf("valid project name is required")
	}

	path := filepath.Join(m.workspaceDir, name)
	if _, err := os.Stat(path); err != nil {
		return core.Errorf("project %q not found in workspace", name)
	}

	if err := m.launchEditor(ctx, path); err != nil {
		return core.Errorf("failed to open editor: %v", err)
	}
	res := core.Success(fmt.Sprintf("Opened project %s", name))
	res.Data = map[string]any{"project": name, "path": path}
	return res
}

func (m *Module) createProject(ctx context.Context, params map[string]any) core.Result {
	name, _ := params["name"].(string)
	if !projectName.MatchString(name) {
		return core.Errorf("valid project name is required")
	}

	path := filepath.Join(m.workspaceDir, name)
	if _, err := os.Stat(path); err == nil {
		return core.Errorf("project %q already exists", name)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return core.Errorf("failed to create project: %v", err)
	}

	readme := "# " + name + "\n"
	if desc, _ := params["description"].(string); desc != "" {
		readme += "\n" + desc + "\n"
	}
	if err := os.WriteFile(filepath.Join(path, "README.md"), []byte(readme), 0o644); err != nil {
		return core.Errorf("failed to write README: %v", err)
	}

	if err := m.launchEditor(ctx, path); err != nil {
		// Project exists even if the editor did not start.
		res := core.Success(fmt.Sprintf("Created project %s (editor failed to start: %v)", name, err))
		res.Data = map[string]any{"project": name, "path": path}
		return res
	}
	res := core.Success(fmt.Sprintf("Created and opened project %s", name))
	res.Data = map[string]any{"project": name, "path": path}
	return res
}

func (m *Module) listProjects() core.Result {
	projects, err := m.projectNames()
	if err != nil {
		return core.Errorf("failed to read workspace: %v", err)
	}
	if len(projects) == 0 {
		res := core.Success("Workspace is empty")
		res.Data = map[string]any{"projects": []string{}}
		return res
	}
	res := core.Success(fmt.Sprintf("Found %d projects: %s", len(projects), strings.Join(projects, ", ")))
	res.Data = map[string]any{"projects": projects}
	return res
}

func (m *Module) projectNames() ([]string, error) {
	entries, err := os.ReadDir(m.workspaceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func (m *Module) launchEditor(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, m.editorCmd, path)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
