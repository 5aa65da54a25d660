package retrieval

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jbarrena/calverify/internal/cache"
)

type fixedEmbedder struct {
	vec   []float32
	calls int
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vec, nil
}

func testDocs() []Document {
	return []Document{
		{Title: "Premarital agreements", URL: "https://guides.example.com/prenup", Text: "enforceability", Vector: []float32{1, 0, 0}, Authoritative: true},
		{Title: "Spousal support", URL: "https://guides.example.com/support", Text: "duration", Vector: []float32{0, 1, 0}, Authoritative: true},
		{Title: "Unrelated", URL: "https://guides.example.com/other", Text: "noise", Vector: []float32{-1, 0, 0}},
	}
}

func TestVectorProvider_RanksBySimilarity(t *testing.T) {
	embedder := &fixedEmbedder{vec: []float32{0.9, 0.1, 0}}
	ec := cache.NewEmbeddingCache(10, nil, time.Hour, embedder)
	p := NewVectorProvider(ec, testDocs(), 0.1)

	res, err := p.Search(context.Background(), "is my prenup enforceable", SearchOptions{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Sources) == 0 {
		t.Fatal("expected matches")
	}
	if res.Sources[0].Title != "Premarital agreements" {
		t.Errorf("best match must rank first, got %q", res.Sources[0].Title)
	}
	for _, s := range res.Sources {
		if s.Title == "Unrelated" {
			t.Error("negative-similarity document must be filtered")
		}
	}
	if !res.Sources[0].Authoritative || res.Sources[0].Category != "practice_guide" {
		t.Error("authoritative corpus documents must carry the practice-guide category")
	}
}

func TestVectorProvider_RepeatQueryHitsCache(t *testing.T) {
	embedder := &fixedEmbedder{vec: []float32{1, 0, 0}}
	ec := cache.NewEmbeddingCache(10, nil, time.Hour, embedder)
	p := NewVectorProvider(ec, testDocs(), 0)

	ctx := context.Background()
	if _, err := p.Search(ctx, "community property", SearchOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Search(ctx, "  Community   Property ", SearchOptions{}); err != nil {
		t.Fatal(err)
	}
	if embedder.calls != 1 {
		t.Errorf("normalized repeat query must hit the cache, got %d embed calls", embedder.calls)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Errorf("mismatched lengths must score 0, got %f", got)
	}
	if got := cosineSimilarity(nil, nil); got != 0 {
		t.Errorf("empty vectors must score 0, got %f", got)
	}
}
