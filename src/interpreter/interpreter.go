package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	aicore "github.com/halcyon-labs/home-agent/src/ai/core"
	"github.com/halcyon-labs/home-agent/src/audit"
	"github.com/halcyon-labs/home-agent/src/core"
)

const (
	historyCap  = 10
	historySent = 5
)

// Action names the capability an interpretation wants dispatched.
type Action struct {
	Capability string         `json:"capability"`
	Params     map[string]any `json:"params"`
}

// Interpretation is the structured intent produced from free text. A nil
// Action means "nothing to dispatch, just answer".
type Interpretation struct {
	Thought  string  `json:"thought"`
	Action   *Action `json:"action"`
	Response string  `json:"response"`
}

type turn struct {
	role    string
	content string
}

// Interpreter turns free text into structured intents. The LLM backend is
// treated as an unreliable external service: when it is unreachable or
// returns something unparseable, deterministic keyword rules take over
// before giving up with a no-action clarification.
type Interpreter struct {
	registry   *core.Registry
	dispatcher *core.Dispatcher
	auditLog   *audit.Store
	client     aicore.Client

	mu      sync.Mutex
	history []turn
}

// New builds an interpreter. client may be nil, which forces the rule-based
// fallback on every request.
func New(registry *core.Registry, dispatcher *core.Dispatcher, auditLog *audit.Store, client aicore.Client) *Interpreter {
	return &Interpreter{
		registry:   registry,
		dispatcher: dispatcher,
		auditLog:   auditLog,
		client:     client,
	}
}

// Interpret maps the user message to an intent. The returned error is only
// ever an audit write failure; interpretation problems degrade to the
// fallback rules instead of failing the call.
func (i *Interpreter) Interpret(ctx context.Context, message, requesterID string) (Interpretation, error) {
	i.pushHistory(turn{role: "user", content: message})

	parsed, ok := i.tryBackend(ctx, message)
	if !ok {
		parsed = i.fallback(message)
	}

	i.pushHistory(turn{role: "assistant", content: parsed.Response})

	if _, err := i.auditLog.Log("interpreter", "interpret", string(core.StatusSuccess), audit.Entry{
		RequesterID: requesterID,
		Params:      map[string]any{"message": message},
		Result:      encodeInterpretation(parsed),
	}); err != nil {
		return parsed, err
	}
	return parsed, nil
}

// ExecuteInterpreted dispatches the interpretation's action, if any. The
// interpreter's conversational response wins over the module's message on
// success, so the user reads one coherent voice.
func (i *Interpreter) ExecuteInterpreted(ctx context.Context, in Interpretation) core.Result {
	if in.Action == nil {
		res := core.Success(orDefault(in.Response, "No action needed."))
		res.Data = map[string]any{"type": "message_only"}
		return res
	}

	result := i.dispatcher.Dispatch(ctx, in.Action.Capability, in.Action.Params)
	if result.Status == core.StatusSuccess && in.Response != "" {
		result.Message = in.Response
	}
	return result
}

// ClearHistory drops the conversation window. History is context for the
// backend only, never authoritative state, so clearing is always safe.
func (i *Interpreter) ClearHistory() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.history = nil
}

func (i *Interpreter) tryBackend(ctx context.Context, message string) (Interpretation, bool) {
	if i.client == nil {
		return Interpretation{}, false
	}

	prompt := i.buildPrompt(message)
	raw, err := i.client.Complete(ctx, prompt, aicore.Options{ForceJSON: true})
	if err != nil {
		log.Printf("interpreter: backend unavailable, using fallback: %v", err)
		return Interpretation{}, false
	}

	parsed, err := parseInterpretation(raw)
	if err != nil {
		log.Printf("interpreter: unparseable backend output, using fallback: %v", err)
		return Interpretation{}, false
	}
	return parsed, true
}

func (i *Interpreter) pushHistory(t turn) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.history = append(i.history, t)
	if len(i.history) > historyCap {
		i.history = i.history[len(i.history)-historyCap:]
	}
}

func (i *Interpreter) recentHistory() []turn {
	i.mu.Lock()
	defer i.mu.Unlock()

	n := len(i.history)
	if n > historySent {
		n = historySent
	}
	out := make([]turn, n)
	copy(out, i.history[len(i.history)-n:])
	return out
}

// parseInterpretation decodes the backend output, salvaging the first JSON
// object when the model wrapped it in prose.
func parseInterpretation(raw string) (Interpretation, error) {
	var parsed Interpretation
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return Interpretation{}, fmt.Errorf("no JSON object in output")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return Interpretation{}, fmt.Errorf("decode extracted object: %w", err)
	}
	return parsed, nil
}

func encodeInterpretation(in Interpretation) string {
	b, err := json.Marshal(in)
	if err != nil {
		return ""
	}
	return string(b)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
