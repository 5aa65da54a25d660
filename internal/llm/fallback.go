package llm

import (
	"context"
	"log/slog"
)

// FallbackProvider pairs a primary provider with a fallback. A capacity-class
// error (rate limit, overload, quota) or a model-not-found error from the
// primary is retried once against the fallback before surfacing; auth and
// validation errors surface immediately.
type FallbackProvider struct {
	primary  Provider
	fallback Provider // nil disables failover
}

// NewFallbackProvider creates a provider pair. fallback may be nil.
func NewFallbackProvider(primary, fallback Provider) *FallbackProvider {
	return &FallbackProvider{primary: primary, fallback: fallback}
}

// Name returns the primary provider's name.
func (p *FallbackProvider) Name() string {
	return p.primary.Name()
}

// Generate tries the primary provider, substituting the fallback on
// capacity/model-not-found failures.
func (p *FallbackProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	resp, err := p.primary.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}

	if p.fallback == nil || !ShouldFallback(err) {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	slog.Warn("primary provider failed, retrying on fallback",
		"primary", p.primary.Name(),
		"fallback", p.fallback.Name(),
		"class", Classify(err).String())

	return p.fallback.Generate(ctx, req)
}
