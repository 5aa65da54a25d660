package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jbarrena/calverify/internal/cache"
	"github.com/jbarrena/calverify/internal/cite"
	"github.com/jbarrena/calverify/internal/guard"
	"github.com/jbarrena/calverify/internal/llm"
	"github.com/jbarrena/calverify/internal/model"
	"github.com/jbarrena/calverify/internal/retrieval"
	"github.com/jbarrena/calverify/internal/verify"
	"github.com/jbarrena/calverify/internal/worker"
)

// NewFromConfig assembles the full production pipeline: provider pair,
// caches, search fan-out, citation resolver, and guardrails.
func NewFromConfig(ctx context.Context, cfg *model.Config, mode model.SourceMode) (*Pipeline, error) {
	provider, err := llm.NewProviderPair(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("build providers: %w", err)
	}

	verifierProvider := provider
	if cfg.LLM.VerifierModel != "" && cfg.LLM.VerifierModel != cfg.LLM.Model {
		vcfg := cfg.LLM
		vcfg.Model = cfg.LLM.VerifierModel
		if vp, err := llm.NewProviderPair(ctx, vcfg); err == nil {
			verifierProvider = vp
		}
	}

	durable := durableCache(cfg.Cache)
	limiter := worker.NewLimiter(cfg.Retrieval.LookupRatePerSecond, cfg.Retrieval.LookupBatchSize)

	courtListener := retrieval.NewCourtListenerClient(cfg.HTTP, limiter)
	providers := []retrieval.SearchProvider{
		courtListener,
		retrieval.NewLegInfoProvider(cfg.HTTP, limiter),
	}

	if cfg.Retrieval.CorpusPath != "" {
		if vp := vectorProvider(cfg, durable); vp != nil {
			providers = append(providers, vp)
		}
	}

	retriever := retrieval.NewRetriever(providers,
		cfg.Retrieval.MaxRetries,
		time.Duration(cfg.Retrieval.RetryBaseDelayMS)*time.Millisecond)

	resolver := cite.NewResolver(courtListener, durable,
		cfg.Retrieval.LookupRatePerSecond, cfg.Retrieval.LookupBatchSize)

	var linkChecker *guard.LinkChecker
	if cfg.Guard.LinkCheck {
		linkChecker = guard.NewLinkChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}
	guardRunner := guard.NewRunner(cfg.Guard, linkChecker)

	return New(Options{
		Config:    cfg,
		Retriever: retriever,
		Provider:  provider,
		Verifier:  verify.NewVerifier(verifierProvider),
		Resolver:  resolver,
		Guard:     guardRunner,
		Mode:      mode,
	}), nil
}

// durableCache builds the disk tier, or nil when caching is disabled.
func durableCache(cfg model.CacheConfig) cache.Cache {
	if !cfg.Enabled {
		return nil
	}
	dir := cfg.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Debug("cache disabled, no home directory", "err", err)
			return nil
		}
		dir = filepath.Join(home, ".calverify", "cache")
	}
	return cache.NewLayeredCache(
		cache.NewMemoryCache(cfg.MemoryTTL, cfg.MemoryTTL),
		cache.NewDiskCache(dir, cfg.DiskTTL))
}

// vectorProvider loads the curated corpus and wires the two-tier embedding
// cache in front of the embedder. A missing or unreadable corpus disables
// the provider rather than failing startup.
func vectorProvider(cfg *model.Config, durable cache.Cache) *retrieval.VectorProvider {
	docs, err := retrieval.LoadCorpus(cfg.Retrieval.CorpusPath)
	if err != nil {
		slog.Warn("corpus unavailable, vector search disabled", "path", cfg.Retrieval.CorpusPath, "err", err)
		return nil
	}

	embedder, err := llm.NewEmbedderFromConfig(cfg.LLM)
	if err != nil {
		slog.Warn("embedder unavailable, vector search disabled", "err", err)
		return nil
	}

	embeddings := cache.NewEmbeddingCache(cfg.Cache.EmbeddingLRU, durable, cfg.Cache.DiskTTL, embedder)
	return retrieval.NewVectorProvider(embeddings, docs, cfg.Retrieval.MinVectorScore)
}
