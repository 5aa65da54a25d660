package llm

import (
	"context"

	"github.com/jbarrena/calverify/internal/model"
)

// Provider defines the interface for generative providers.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces a completion for the given request.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Embedder defines the interface for embedding providers.
type Embedder interface {
	// Embed converts text into a vector. Failure is fatal to the calling
	// request path and must be distinguishable from cancellation.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Message is one turn of prior conversation history.
type Message struct {
	Role    string // "user" or "model"
	Content string
}

// GenerateRequest contains the input for a generative call.
type GenerateRequest struct {
	// Prompt is the user-turn content.
	Prompt string

	// System is an optional system instruction.
	System string

	// History carries prior conversation turns, oldest first.
	History []Message

	// JSONOutput asks the provider for a structured JSON response where the
	// backend supports response typing.
	JSONOutput bool

	// Grounding enables the provider's own web-search grounding tool where
	// supported. Ignored by providers without one.
	Grounding bool

	// MaxTokens limits the response length (0 uses the provider default).
	MaxTokens int

	// Temperature overrides the default sampling temperature when > 0.
	Temperature float32
}

// GenerateResponse contains a provider's completion output.
type GenerateResponse struct {
	Text string

	// GroundingUsed reports whether the provider performed live web-search
	// grounding for this response.
	GroundingUsed bool

	// GroundingSources lists web sources the provider grounded on, already
	// normalized to the common Source shape.
	GroundingSources []model.Source

	// Model that generated the response.
	Model string

	// TokensUsed tracks token consumption where the backend reports it.
	TokensUsed int
}

// Config holds generative-provider configuration.
type Config struct {
	// Provider name: "gemini" or "openai"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Grounding enables web-search grounding on providers that support it
	Grounding bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "gemini",
		Model:     "gemini-2.0-flash",
		Timeout:   60,
		MaxTokens: 2048,
	}
}
