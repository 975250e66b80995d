package interpreter

import (
	"fmt"
	"strings"
)

var knownApps = []string{
	"chrome", "firefox", "code", "cursor", "terminal",
	"files", "calculator", "slack", "spotify",
}

// fallback classifies common intents with deterministic keyword rules. It
// never touches the LLM backend, so the agent keeps answering screenshot,
// launch, status, note and help requests while the backend is down.
func (i *Interpreter) fallback(message string) Interpretation {
	lower := strings.ToLower(message)

	if containsAny(lower, "screenshot", "screen", "show me", "what's on") {
		return Interpretation{
			Thought:  "User wants to see the screen",
			Action:   &Action{Capability: "system.screenshot", Params: map[string]any{}},
			Response: "Taking a screenshot...",
		}
	}

	if containsAny(lower, "open", "start", "launch", "run") {
		for _, app := range knownApps {
			if strings.Contains(lower, app) {
				return Interpretation{
					Thought:  fmt.Sprintf("User wants to open %s", app),
					Action:   &Action{Capability: "launcher.open_app", Params: map[string]any{"app": app}},
					Response: fmt.Sprintf("Opening %s...", app),
				}
			}
		}
	}

	if containsAny(lower, "status", "how are you", "what's up") {
		return Interpretation{
			Thought:  "User asking for status",
			Action:   &Action{Capability: "system.status", Params: map[string]any{}},
			Response: "Checking system status...",
		}
	}

	if containsAny(lower, "note", "remember", "save") {
		return Interpretation{
			Thought:  "User wants to save a note",
			Action:   &Action{Capability: "system.add_note", Params: map[string]any{"content": message}},
			Response: "Saving note...",
		}
	}

	if containsAny(lower, "help", "what can you do", "capabilities") {
		return Interpretation{
			Thought:  "User asking for help",
			Response: "I can help you with:\n" + i.capabilitiesSummary() + "\n\nJust tell me what you want to do in natural language.",
		}
	}

	return Interpretation{
		Thought:  "Could not determine intent",
		Response: fmt.Sprintf("I received your message: %q but I'm not sure what action to take. Could you be more specific?", message),
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
