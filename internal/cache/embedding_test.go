package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type stubEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *stubEmbedder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  What Is  Alimony? ", "what is alimony?"},
		{"spousal\tsupport\nrules", "spousal support rules"},
		{"simple", "simple"},
	}
	for _, tt := range tests {
		if got := NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmbeddingCache_MissThenHit(t *testing.T) {
	embedder := &stubEmbedder{}
	c := NewEmbeddingCache(10, nil, 0, embedder)

	vec, cached, err := c.Get(context.Background(), "community property")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached {
		t.Error("first lookup should be a miss")
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3-dim vector, got %d", len(vec))
	}

	// Normalization variants hit the same entry.
	_, cached, err = c.Get(context.Background(), "  Community   PROPERTY ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cached {
		t.Error("normalized repeat should be a hit")
	}
	if embedder.callCount() != 1 {
		t.Errorf("expected 1 embedder call, got %d", embedder.callCount())
	}
}

func TestEmbeddingCache_SecondaryPromotion(t *testing.T) {
	embedder := &stubEmbedder{}
	secondary := NewMemoryCache(time.Hour, time.Hour)
	warm := NewEmbeddingCache(10, secondary, time.Hour, embedder)

	if _, _, err := warm.Get(context.Background(), "prenup validity"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The secondary write is fire-and-forget; give it a moment.
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := secondary.Get(Key(NormalizeQuery("prenup validity"))); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("secondary tier was never written")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A fresh cache sharing the secondary tier should hit without embedding.
	cold := NewEmbeddingCache(10, secondary, time.Hour, embedder)
	_, cached, err := cold.Get(context.Background(), "prenup validity")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cached {
		t.Error("expected secondary-tier hit")
	}
	if embedder.callCount() != 1 {
		t.Errorf("expected no second embedder call, got %d", embedder.callCount())
	}
}

func TestEmbeddingCache_EmbedderErrorPropagates(t *testing.T) {
	wantErr := errors.New("embedding backend down")
	c := NewEmbeddingCache(10, nil, 0, &stubEmbedder{err: wantErr})

	_, _, err := c.Get(context.Background(), "anything")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected embedder error to propagate, got %v", err)
	}
}
