package interpreter

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a personal automation assistant that controls the owner's machines and applications.

You have access to the following modules and their capabilities:
%s

When the user gives you a request, decide which capability to use and respond with valid JSON in this exact format:
{
    "thought": "Brief explanation of what you understood and why you chose this action",
    "action": {
        "capability": "module.action_name",
        "params": {}
    },
    "response": "What to tell the user"
}

If you cannot fulfill the request or need clarification, set "action" to null and explain in "response".

Capability details:
%s

Be helpful and concise, and take action when possible. Do not ask for confirmation yourself; confirmation-gated capabilities are handled by the system.`

func (i *Interpreter) buildPrompt(message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, systemPrompt, i.capabilitiesSummary(), i.capabilityDetails())

	b.WriteString("\n\nConversation:\n")
	for _, t := range i.recentHistory() {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(t.role), t.content)
	}
	fmt.Fprintf(&b, "USER: %s\n\nRespond with JSON:", message)
	return b.String()
}

func (i *Interpreter) capabilitiesSummary() string {
	var lines []string
	for _, m := range i.registry.Enabled() {
		lines = append(lines, fmt.Sprintf("- %s: %s", m.Name(), m.Description()))
		for _, cap := range m.Capabilities() {
			lines = append(lines, "  - "+cap.Name)
		}
	}
	if len(lines) == 0 {
		return "No modules loaded yet."
	}
	return strings.Join(lines, "\n")
}

func (i *Interpreter) capabilityDetails() string {
	var lines []string
	for _, m := range i.registry.Enabled() {
		for _, cap := range m.Capabilities() {
			lines = append(lines, fmt.Sprintf("- %s: %s", cap.Name, cap.Description))
			if len(cap.Parameters) > 0 {
				var params []string
				for name, desc := range cap.Parameters {
					params = append(params, fmt.Sprintf("%s (%s)", name, desc))
				}
				lines = append(lines, "  Parameters: "+strings.Join(params, ", "))
			}
			if cap.Dangerous {
				lines = append(lines, "  WARNING: this action is dangerous and requires confirmation")
			}
		}
	}
	if len(lines) == 0 {
		return "No capabilities available."
	}
	return strings.Join(lines, "\n")
}
