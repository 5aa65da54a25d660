package retrieval

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jbarrena/calverify/internal/cache"
	"github.com/jbarrena/calverify/internal/model"
)

// Document is one entry of the curated practice-guide corpus. Vectors are
// precomputed offline with the same embedding model the query path uses.
type Document struct {
	Title         string    `yaml:"title"`
	URL           string    `yaml:"url"`
	Text          string    `yaml:"text"`
	Vector        []float32 `yaml:"vector"`
	Authoritative bool      `yaml:"authoritative"`
	Category      string    `yaml:"category"`
}

type corpusFile struct {
	Documents []Document `yaml:"documents"`
}

// LoadCorpus reads a YAML corpus file.
func LoadCorpus(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	return f.Documents, nil
}

// VectorProvider ranks the curated corpus by cosine similarity between the
// query embedding and precomputed document vectors. Embeddings go through
// the two-tier cache, so repeated questions skip the embedder entirely.
type VectorProvider struct {
	embeddings *cache.EmbeddingCache
	docs       []Document
	minScore   float64
}

// NewVectorProvider builds a provider over docs. minScore filters weak
// matches; 0 keeps everything.
func NewVectorProvider(embeddings *cache.EmbeddingCache, docs []Document, minScore float64) *VectorProvider {
	return &VectorProvider{
		embeddings: embeddings,
		docs:       docs,
		minScore:   minScore,
	}
}

func (p *VectorProvider) Name() string { return "vector" }

func (p *VectorProvider) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	if len(p.docs) == 0 {
		return &SearchResult{}, nil
	}

	queryVec, _, err := p.embeddings.Get(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	type scored struct {
		doc   Document
		score float64
	}
	matches := make([]scored, 0, len(p.docs))
	for _, doc := range p.docs {
		score := cosineSimilarity(queryVec, doc.Vector)
		if score < p.minScore {
			continue
		}
		matches = append(matches, scored{doc: doc, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	limit := opts.Limit
	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}

	sources := make([]model.Source, 0, limit)
	for _, m := range matches[:limit] {
		category := m.doc.Category
		if category == "" && m.doc.Authoritative {
			category = model.CategoryPracticeGuide
		}
		sources = append(sources, model.Source{
			Title:         m.doc.Title,
			URL:           m.doc.URL,
			Excerpt:       m.doc.Text,
			Confidence:    m.score,
			Authoritative: m.doc.Authoritative,
			Category:      category,
		})
	}

	return &SearchResult{Sources: sources}, nil
}

// cosineSimilarity returns 0 for mismatched or zero-length vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
