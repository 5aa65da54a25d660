package model

import "time"

// Config is the complete runtime configuration.
//
// Hierarchy (highest to lowest priority): CLI flags, environment variables
// (CALVERIFY_*), config file (~/.calverify/config.yaml), defaults.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Cache       CacheConfig       `yaml:"cache"`
	Guard       GuardConfig       `yaml:"guardrails"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	HTTP        HTTPConfig        `yaml:"http"`
	Output      OutputConfig      `yaml:"output"`
}

// LLMConfig configures the generative providers and embedder.
type LLMConfig struct {
	// Primary provider: "gemini" or "openai"
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	// Fallback provider used on capacity/model-not-found errors from the
	// primary. Empty disables failover.
	FallbackProvider string `yaml:"fallback_provider"`
	FallbackModel    string `yaml:"fallback_model"`

	// VerifierModel runs the verification pass; defaults to Model.
	VerifierModel string `yaml:"verifier_model"`

	EmbeddingModel string `yaml:"embedding_model"`

	APIKey       string `yaml:"api_key,omitempty"`
	GeminiAPIKey string `yaml:"gemini_api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`

	// Grounding enables the provider's own web-search grounding tool.
	Grounding bool `yaml:"grounding"`

	Timeout   int `yaml:"timeout"` // seconds
	MaxTokens int `yaml:"max_tokens"`
}

// RetrievalConfig configures the evidence fan-out and pruner.
type RetrievalConfig struct {
	MaxResults          int     `yaml:"max_results"`           // per-source result limit
	ExhaustiveResults   int     `yaml:"exhaustive_results"`    // raised limit in exhaustive mode
	TopK                int     `yaml:"top_k"`                 // pruner truncation
	SimilarityThreshold float64 `yaml:"similarity_threshold"`  // Jaccard dedupe threshold
	MaxRetries          int     `yaml:"max_retries"`           // per-source retry attempts
	RetryBaseDelayMS    int     `yaml:"retry_base_delay_ms"`   // backoff base, doubles per attempt
	LookupBatchSize     int     `yaml:"lookup_batch_size"`     // case-citation resolution batch size
	LookupRatePerSecond float64 `yaml:"lookup_rate_per_second"`

	// CorpusPath points at the curated practice-guide corpus (YAML with
	// precomputed vectors). Empty disables the vector provider.
	CorpusPath string `yaml:"corpus_path,omitempty"`

	// MinVectorScore filters weak cosine-similarity matches.
	MinVectorScore float64 `yaml:"min_vector_score"`
}

// CacheConfig configures the embedding and resolution caches.
type CacheConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Dir         string        `yaml:"dir"`
	EmbeddingLRU int          `yaml:"embedding_lru"` // tier-1 capacity
	DiskTTL     time.Duration `yaml:"disk_ttl"`      // tier-2 TTL
	MemoryTTL   time.Duration `yaml:"memory_ttl"`
}

// GuardConfig configures the post-gate deterministic checks.
type GuardConfig struct {
	// Strict downgrades a gated answer to refusal when a guardrail reports a
	// blocking error. Default false: errors append a visible warning only.
	Strict    bool `yaml:"strict"`
	LinkCheck bool `yaml:"link_check"` // HEAD-check resolved citation URLs
}

// ConcurrencyConfig bounds fan-out across the pipeline.
type ConcurrencyConfig struct {
	SearchWorkers int `yaml:"search_workers"`
	BatchWorkers  int `yaml:"batch_workers"`
}

// HTTPConfig configures outbound HTTP behavior.
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty"`
	NoProxy    string        `yaml:"no_proxy,omitempty"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:         "gemini",
			Model:            "gemini-2.0-flash",
			FallbackProvider: "openai",
			FallbackModel:    "gpt-4o-mini",
			EmbeddingModel:   "text-embedding-3-small",
			Grounding:        true,
			Timeout:          60,
			MaxTokens:        2048,
		},
		Retrieval: RetrievalConfig{
			MaxResults:          5,
			ExhaustiveResults:   20,
			TopK:                3,
			SimilarityThreshold: 0.8,
			MaxRetries:          3,
			RetryBaseDelayMS:    500,
			LookupBatchSize:     3,
			LookupRatePerSecond: 2,
			MinVectorScore:      0.3,
		},
		Cache: CacheConfig{
			Enabled:      true,
			Dir:          "", // resolved to ~/.calverify/cache at startup
			EmbeddingLRU: 100,
			DiskTTL:      24 * time.Hour,
			MemoryTTL:    1 * time.Hour,
		},
		Guard: GuardConfig{
			Strict:    false,
			LinkCheck: false,
		},
		Concurrency: ConcurrencyConfig{
			SearchWorkers: 4,
			BatchWorkers:  3,
		},
		HTTP: HTTPConfig{
			Timeout:   15 * time.Second,
			UserAgent: "calverify/0.2 (+https://github.com/jbarrena/calverify)",
		},
		Output: OutputConfig{},
	}
}
