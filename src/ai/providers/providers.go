package providers

import (
	_ "github.com/halcyon-labs/home-agent/src/ai/ollama"
	_ "github.com/halcyon-labs/home-agent/src/ai/openai"
)
