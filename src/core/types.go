package core

import (
	"fmt"
	"time"
)

// Status enumerates the outcome states of an action execution.
type Status string

const (
	StatusSuccess              Status = "success"
	StatusError                Status = "error"
	StatusPending              Status = "pending"
	StatusRequiresConfirmation Status = "requires_confirmation"
)

// Capability advertises a single named action a module knows how to perform.
// Parameters map parameter names to human-readable constraints; they are used
// for documentation and LLM prompting only, never enforced at dispatch time.
type Capability struct {
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	Parameters           map[string]string `json:"parameters,omitempty"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	Dangerous            bool              `json:"dangerous"`
}

// Result is the structured output of one Execute call. Produced exactly once
// per call and never mutated afterwards.
type Result struct {
	Status       Status         `json:"status"`
	Message      string         `json:"message"`
	Data         map[string]any `json:"data,omitempty"`
	ArtifactPath string         `json:"artifact_path,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Success builds a success result with the given message.
func Success(message string) Result {
	return Result{Status: StatusSuccess, Message: message, Timestamp: time.Now().UTC()}
}

// Errorf builds an error result from a format string.
func Errorf(format string, args ...any) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, args...), Timestamp: time.Now().UTC()}
}
