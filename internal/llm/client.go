// Package llm holds the text-understanding backends used for extraction.
// A backend is selected once, at construction, from configuration.
package llm

import (
	"context"
)

// Backend sends one prompt and returns the raw text reply.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Name identifies provider and model, e.g. "anthropic/claude-sonnet-4-20250514".
	Name() string
}

// Provider identifiers accepted by NewBackend.
const (
	ProviderAnthropic = "anthropic"
	ProviderClaude    = "claude"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderGemini    = "gemini"
	ProviderStub      = "stub"
)

const defaultMaxTokens = 4096

func backendName(provider, model string) string {
	if model == "" {
		return provider
	}
	return provider + "/" + model
}
