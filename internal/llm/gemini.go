package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/jbarrena/calverify/internal/model"
)

// GeminiProvider implements Provider using the google.golang.org/genai SDK.
// It is the only provider with a web-search grounding tool, which the
// confidence gate treats as authoritative current evidence.
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Generate produces a completion via the Gemini API.
func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	modelName := p.config.Model
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var contents []*genai.Content
	for _, m := range req.History {
		role := genai.RoleUser
		if m.Role == "model" || m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.Prompt}},
	})

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(req.Temperature)
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}
	// The grounding tool and typed JSON output are mutually exclusive on the
	// Gemini API; grounding wins when both are requested.
	if req.Grounding && p.config.Grounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else if req.JSONOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := p.client.Models.GenerateContent(ctxWithTimeout, modelName, contents, cfg)
	if err != nil {
		return nil, WrapError("gemini", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, WrapError("gemini", fmt.Errorf("empty response from model %s", modelName))
	}

	out := &GenerateResponse{
		Text:  text,
		Model: modelName,
	}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		gm := resp.Candidates[0].GroundingMetadata
		if len(gm.GroundingChunks) > 0 {
			out.GroundingUsed = true
			for _, chunk := range gm.GroundingChunks {
				if chunk.Web == nil || chunk.Web.URI == "" {
					continue
				}
				out.GroundingSources = append(out.GroundingSources, model.Source{
					Title: chunk.Web.Title,
					URL:   chunk.Web.URI,
				})
			}
		}
	}

	return out, nil
}
