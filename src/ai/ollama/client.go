package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/halcyon-labs/home-agent/src/ai/core"
	"github.com/halcyon-labs/home-agent/src/webclient"
)

func init() {
	core.RegisterProvider("ollama", NewClient, "local")
}

const (
	defaultEndpoint = "http://localhost:11434"
	defaultModel    = "llama3.1"
)

type client struct {
	endpoint   string
	httpClient *http.Client
	defaults   core.Options
}

// NewClient constructs an Ollama-backed implementation of core.Client
// against a local or remote Ollama daemon.
func NewClient(cfg core.FactoryConfig) (core.Client, error) {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	return &client{
		endpoint:   endpoint,
		httpClient: webclient.NewDefault(60 * time.Second),
		defaults: core.Options{
			Model:               valueOrDefault(cfg.Model, defaultModel),
			Temperature:         cfg.Temperature,
			MaxCompletionTokens: cfg.MaxCompletionTokens,
			SystemPrompt:        cfg.SystemPrompt,
		},
	}, nil
}

func (c *client) Complete(ctx context.Context, prompt string, opts core.Options) (string, error) {
	merged := c.merge(opts)

	full := prompt
	if merged.SystemPrompt != "" {
		full = merged.SystemPrompt + "\n\n" + prompt
	}

	body := map[string]any{
		"model":  merged.Model,
		"prompt": full,
		"stream": false,
	}
	if merged.ForceJSON {
		body["format"] = "json"
	}
	if merged.Temperature != 0 {
		body["options"] = map[string]any{"temperature": merged.Temperature}
	}

	bodyBytes, _ := json.Marshal(body)
	_, respBody, err := webclient.DoWithRetry(ctx, 3, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewBuffer(bodyBytes))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, b, fmt.Errorf("status %d", resp.StatusCode)
		}
		return resp.StatusCode, b, nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama API error: %w", err)
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if strings.TrimSpace(result.Response) == "" {
		return "", fmt.Errorf("ollama: empty response")
	}
	return result.Response, nil
}

func (c *client) merge(opts core.Options) core.Options {
	out := c.defaults
	if opts.Model != "" {
		out.Model = opts.Model
	}
	if opts.Temperature != 0 {
		out.Temperature = opts.Temperature
	}
	if opts.MaxCompletionTokens != 0 {
		out.MaxCompletionTokens = opts.MaxCompletionTokens
	}
	if opts.SystemPrompt != "" {
		out.SystemPrompt = opts.SystemPrompt
	}
	if opts.ForceJSON {
		out.ForceJSON = true
	}
	return out
}

func valueOrDefault(val, def string) string {
	if strings.TrimSpace(val) != "" {
		return val
	}
	return def
}
