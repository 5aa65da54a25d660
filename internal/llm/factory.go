package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jbarrena/calverify/internal/model"
)

// NewProvider creates a single provider from configuration.
func NewProvider(ctx context.Context, config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "gemini", "google":
		return NewGeminiProvider(ctx, config)

	case "openai":
		return NewOpenAIProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: gemini, openai)", config.Provider)
	}
}

// NewProviderPair builds the primary/fallback pair from the app config,
// resolving API keys from the environment when not set explicitly.
func NewProviderPair(ctx context.Context, cfg model.LLMConfig) (Provider, error) {
	primary, err := NewProvider(ctx, providerConfig(cfg, cfg.Provider, cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("primary provider: %w", err)
	}
	if primary == nil {
		return nil, fmt.Errorf("no primary LLM provider configured")
	}

	if cfg.FallbackProvider == "" || cfg.FallbackProvider == cfg.Provider {
		return NewFallbackProvider(primary, nil), nil
	}

	fallback, err := NewProvider(ctx, providerConfig(cfg, cfg.FallbackProvider, cfg.FallbackModel))
	if err != nil {
		// A misconfigured fallback should not block the primary path.
		return NewFallbackProvider(primary, nil), nil
	}
	return NewFallbackProvider(primary, fallback), nil
}

// NewEmbedderFromConfig builds the embedding collaborator.
func NewEmbedderFromConfig(cfg model.LLMConfig) (Embedder, error) {
	return NewOpenAIEmbedder(resolveKey(cfg.APIKey, "OPENAI_API_KEY"), cfg.BaseURL, cfg.EmbeddingModel)
}

func providerConfig(cfg model.LLMConfig, provider, modelName string) Config {
	c := Config{
		Provider:  provider,
		Model:     modelName,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		MaxTokens: cfg.MaxTokens,
		Grounding: cfg.Grounding,
	}
	switch strings.ToLower(provider) {
	case "gemini", "google":
		c.APIKey = resolveKey(cfg.GeminiAPIKey, "GEMINI_API_KEY")
	case "openai":
		c.APIKey = resolveKey(cfg.APIKey, "OPENAI_API_KEY")
	}
	return c
}

func resolveKey(configured, envVar string) string {
	if configured != "" {
		return configured
	}
	return os.Getenv(envVar)
}
