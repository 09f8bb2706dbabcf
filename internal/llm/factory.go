package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openfoia/foiagraph/internal/config"
	"go.uber.org/zap"
)

// NewBackend builds the backend named by cfg.Provider, wrapped in retries
// when cfg.Retry.MaxRetries is positive. An unknown provider is an error.
func NewBackend(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var b Backend
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case ProviderOpenAI:
		b = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL)

	case ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		b = c

	case ProviderClaude, ProviderAnthropic:
		b = NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens)

	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		// Ollama ignores the key but the client requires one.
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		logger.Info("Initializing Ollama via OpenAI-compatible API", zap.String("base_url", baseURL))
		c := NewOpenAIClient(apiKey, cfg.Model, baseURL)
		c.provider = ProviderOllama
		b = c

	case ProviderStub:
		return NewStubClient(`{"entities": [], "relationships": []}`), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}

	if cfg.Retry.MaxRetries > 0 {
		b = NewRetryingBackend(b, RetryPolicy{
			MaxRetries:      cfg.Retry.MaxRetries,
			InitialInterval: cfg.Retry.InitialInterval(),
			MaxInterval:     cfg.Retry.MaxInterval(),
		}, logger)
	}
	return b, nil
}
