package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/halcyon-labs/home-agent/src/audit"
	"github.com/halcyon-labs/home-agent/src/config"
	"github.com/halcyon-labs/home-agent/src/core"
	"github.com/halcyon-labs/home-agent/src/interpreter"
)

type stubModule struct {
	executed []string
}

func (s *stubModule) Name() string        { return "system" }
func (s *stubModule) Description() string { return "test module" }
func (s *stubModule) Version() string     { return "0.0.1" }

func (s *stubModule) Capabilities() []core.Capability {
	return []core.Capability{
		{Name: "system.status", Description: "report status"},
		{Name: "system.wipe", Description: "dangerous thing", RequiresConfirmation: true, Dangerous: true},
	}
}

func (s *stubModule) Execute(_ context.Context, action string, _ map[string]any) core.Result {
	s.executed = append(s.executed, action)
	return core.Success("done " + action)
}

func (s *stubModule) State(context.Context) map[string]any {
	return map[string]any{"ok": true}
}

type testServer struct {
	engine   *gin.Engine
	mod      *stubModule
	auditLog *audit.Store
	cfg      config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	auditLog, err := audit.New(db)
	require.NoError(t, err)

	registry := core.NewRegistry()
	mod := &stubModule{}
	registry.Register(mod)
	dispatcher := core.NewDispatcher(registry, 0)
	interp := interpreter.New(registry, dispatcher, auditLog, nil)

	cfg := config.Config{
		JWTSecret:   "test-jwt-secret",
		OwnerSecret: "hunter2",
	}
	engine := New(cfg, Deps{
		Registry:    registry,
		Dispatcher:  dispatcher,
		Interpreter: interp,
		AuditLog:    auditLog,
		ArtifactDir: t.TempDir(),
	})
	return &testServer{engine: engine, mod: mod, auditLog: auditLog, cfg: cfg}
}

func (s *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	w := s.request(t, http.MethodPost, "/v1/auth/token", "", gin.H{"secret": s.cfg.OwnerSecret})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodPost, "/v1/auth/token", "", gin.H{"secret": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.request(t, http.MethodPost, "/v1/auth/token", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/v1/capabilities", "/v1/modules", "/v1/logs"} {
		w := s.request(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := s.request(t, http.MethodGet, "/v1/capabilities", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestActionDispatchAndAudit(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t)

	w := s.request(t, http.MethodPost, "/v1/action", tok, gin.H{"capability": "system.status"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result core.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, core.StatusSuccess, result.Status)
	assert.Equal(t, []string{"status"}, s.mod.executed)

	records, err := s.auditLog.Recent(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "system", records[0].Module)
	assert.Equal(t, "status", records[0].Action)
	assert.Equal(t, "owner", records[0].RequesterID)
}

func TestActionConfirmationGate(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t)

	before, err := s.auditLog.Count()
	require.NoError(t, err)

	w := s.request(t, http.MethodPost, "/v1/action", tok, gin.H{"capability": "system.wipe"})
	require.Equal(t, http.StatusOK, w.Code)

	var result core.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, core.StatusRequiresConfirmation, result.Status)
	assert.Empty(t, s.mod.executed)

	// Nothing ran, so nothing was audited.
	after, err := s.auditLog.Count()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	w = s.request(t, http.MethodPost, "/v1/action/confirm", tok, gin.H{"capability": "system.wipe"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, core.StatusSuccess, result.Status)
	assert.Equal(t, []string{"wipe"}, s.mod.executed)
}

func TestActionConfirmedFlag(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t)

	w := s.request(t, http.MethodPost, "/v1/action", tok, gin.H{"capability": "system.wipe", "confirmed": true})
	require.Equal(t, http.StatusOK, w.Code)

	var result core.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, core.StatusSuccess, result.Status)
	assert.Equal(t, []string{"wipe"}, s.mod.executed)
}

func TestMessageInterpretsAndExecutes(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t)

	// The nil AI client forces the rule-based fallback, which maps "status"
	// to system.status.
	w := s.request(t, http.MethodPost, "/v1/message", tok, gin.H{"message": "what's the status"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Response     string       `json:"response"`
		ActionResult *core.Result `json:"action_result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.ActionResult)
	assert.Equal(t, core.StatusSuccess, resp.ActionResult.Status)
	assert.Equal(t, []string{"status"}, s.mod.executed)
}

func TestMessageWithoutAction(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t)

	w := s.request(t, http.MethodPost, "/v1/message", tok, gin.H{"message": "xyzzy plugh"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ActionResult *core.Result `json:"action_result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.ActionResult)
	assert.Empty(t, s.mod.executed)
}

func TestCapabilities(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t)

	w := s.request(t, http.MethodGet, "/v1/capabilities", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Capabilities map[string][]string `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"system.status", "system.wipe"}, resp.Capabilities["system"])
}

func TestModuleEnableDisable(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t)

	w := s.request(t, http.MethodPost, "/v1/modules/system/disable", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.request(t, http.MethodPost, "/v1/action", tok, gin.H{"capability": "system.status"})
	require.Equal(t, http.StatusOK, w.Code)
	var result core.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, core.StatusError, result.Status)

	w = s.request(t, http.MethodPost, "/v1/modules/system/enable", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.request(t, http.MethodPost, "/v1/modules/nope/enable", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotesRoundTrip(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t)

	w := s.request(t, http.MethodPost, "/v1/notes", tok, gin.H{"content": "buy milk"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.request(t, http.MethodGet, "/v1/notes", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "buy milk")
}

func TestLogsEndpoint(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t)

	w := s.request(t, http.MethodPost, "/v1/action", tok, gin.H{"capability": "system.status"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.request(t, http.MethodGet, "/v1/logs", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "system")
	assert.Contains(t, w.Body.String(), "status")
}

func TestArtifactPathTraversalBlocked(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t)

	w := s.request(t, http.MethodGet, "/v1/artifacts/..%2F..%2Fetc%2Fpasswd", tok, nil)
	assert.NotEqual(t, http.StatusOK, w.Code)
}
