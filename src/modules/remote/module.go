// Package remote executes commands on a remote host over SSH. The box is
// typically a lab machine the owner drives from chat; every command is
// confirmation-gated.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/halcyon-labs/home-agent/src/core"
)

// Config identifies the remote host and how to authenticate.
type Config struct {
	Host     string // host:port
	User     string
	Password string
	KeyFile  string // PEM private key path; preferred over Password when set
}

type Module struct {
	cfg Config
}

func New(cfg Config) *Module {
	return &Module{cfg: cfg}
}

func (m *Module) Name() string        { return "remote" }
func (m *Module) Description() string { return "Remote shell execution on the configured SSH host" }
func (m *Module) Version() string     { return "1.0.0" }

func (m *Module) Capabilities() []core.Capability {
	return []core.Capability{
		{
			Name:                 "remote.run_command",
			Description:          "Run a shell command on the remote host",
			Parameters:           map[string]string{"command": "The shell command to execute remotely"},
			RequiresConfirmation: true,
			Dangerous:            true,
		},
		{
			Name:        "remote.check_connection",
			Description: "Check SSH connectivity to the remote host",
		},
	}
}

func (m *Module) Execute(ctx context.Context, action string, params map[string]any) core.Result {
	switch strings.TrimPrefix(action, "remote.") {
	case "run_command":
		return m.runCommand(ctx, params)
	case "check_connection":
		return m.checkConnection(ctx)
	default:
		return core.Errorf("unknown action: %s", action)
	}
}

func (m *Module) State(context.Context) map[string]any {
	return map[string]any{
		"host":       m.cfg.Host,
		"user":       m.cfg.User,
		"configured": m.configured(),
	}
}

func (m *Module) configured() bool {
	return m.cfg.Host != "" && m.cfg.User != "" && (m.cfg.Password != "" || m.cfg.KeyFile != "")
}

func (m *Module) runCommand(ctx context.Context, params map[string]any) core.Result {
	command, _ := params["command"].(string)
	if strings.TrimSpace(command) == "" {
		return core.Errorf("command parameter is required")
	}
	if !m.configured() {
		return core.Errorf("remote host is not configured")
	}

	client, err := m.dial(ctx)
	if err != nil {
		return core.Errorf("remote host unreachable: %v", err)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return core.Errorf("failed to open session: %v", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Run(command); err != nil {
		return core.Errorf("remote command failed: %v\n%s", err, strings.TrimSpace(stderr.String()))
	}

	output := strings.TrimSpace(stdout.String())
	res := core.Success(orDefault(output, "Command completed with no output"))
	res.Data = map[string]any{"host": m.cfg.Host, "command": command, "output": output}
	return res
}

func (m *Module) checkConnection(ctx context.Context) core.Result {
	if !m.configured() {
		return core.Errorf("remote host is not configured")
	}

	client, err := m.dial(ctx)
	if err != nil {
		return core.Errorf("remote host unreachable: %v", err)
	}
	defer client.Close()

	res := core.Success(fmt.Sprintf("Connected to %s as %s", m.cfg.Host, m.cfg.User))
	res.Data = map[string]any{"host": m.cfg.Host, "user": m.cfg.User}
	return res
}

func (m *Module) dial(ctx context.Context) (*ssh.Client, error) {
	auth, err := m.authMethods()
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User: m.cfg.User,
		Auth: auth,
		// Single-owner agent talking to the owner's own box.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	dialer := net.Dialer{Timeout: config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.cfg.Host)
	if err != nil {
		return nil, err
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, m.cfg.Host, config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (m *Module) authMethods() ([]ssh.AuthMethod, error) {
	if m.cfg.KeyFile != "" {
		key, err := os.ReadFile(m.cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parse key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	return []ssh.AuthMethod{ssh.Password(m.cfg.Password)}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
