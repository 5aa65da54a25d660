package retrieval

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jbarrena/calverify/internal/model"
)

// stubSearch implements SearchProvider
type stubSearch struct {
	name    string
	sources []model.Source
	content string
	errs    []error // one per attempt; nil-padded afterwards
	calls   int32
}

func (s *stubSearch) Name() string { return s.name }

func (s *stubSearch) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	attempt := int(atomic.AddInt32(&s.calls, 1)) - 1
	if attempt < len(s.errs) && s.errs[attempt] != nil {
		return nil, s.errs[attempt]
	}
	return &SearchResult{Content: s.content, Sources: s.sources}, nil
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func TestRetrieve_MergesAndDedupes(t *testing.T) {
	retrieverSleep = noSleep
	defer func() { retrieverSleep = sleepCtx }()

	a := &stubSearch{name: "vector", sources: []model.Source{
		{Title: "FC 1615 v1", URL: "https://shared.example"},
		{Title: "Only A", URL: "https://a.example"},
	}}
	b := &stubSearch{name: "caselaw", sources: []model.Source{
		{Title: "FC 1615 v2", URL: "https://shared.example"},
	}}

	r := NewRetriever([]SearchProvider{a, b}, 3, time.Millisecond)
	sources, _, err := r.Retrieve(context.Background(), "q", SearchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sources) != 2 {
		t.Fatalf("expected 2 deduped sources, got %d", len(sources))
	}
	for _, src := range sources {
		if src.URL == "https://shared.example" && src.Title != "FC 1615 v2" {
			t.Errorf("expected last-write-wins on URL collision, got %q", src.Title)
		}
	}
}

func TestRetrieve_IsolatesFailingSource(t *testing.T) {
	retrieverSleep = noSleep
	defer func() { retrieverSleep = sleepCtx }()

	bad := &stubSearch{name: "flaky", errs: []error{
		errors.New("boom"), errors.New("boom"), errors.New("boom"),
	}}
	good := &stubSearch{name: "steady", sources: []model.Source{
		{Title: "ok", URL: "https://ok.example"},
	}}

	r := NewRetriever([]SearchProvider{bad, good}, 3, time.Millisecond)
	sources, _, err := r.Retrieve(context.Background(), "q", SearchOptions{})
	if err != nil {
		t.Fatalf("one failing source must not fail the fan-out: %v", err)
	}
	if len(sources) != 1 || sources[0].URL != "https://ok.example" {
		t.Errorf("expected the healthy source's result, got %v", sources)
	}
}

func TestRetrieve_RetriesTransientNotPermanent(t *testing.T) {
	retrieverSleep = noSleep
	defer func() { retrieverSleep = sleepCtx }()

	transient := &stubSearch{name: "transient", errs: []error{errors.New("503")},
		sources: []model.Source{{URL: "https://t.example"}}}
	permanent := &stubSearch{name: "permanent", errs: []error{
		Permanent(errors.New("400 bad request")),
	}}

	r := NewRetriever([]SearchProvider{transient, permanent}, 3, time.Millisecond)
	sources, _, err := r.Retrieve(context.Background(), "q", SearchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if atomic.LoadInt32(&transient.calls) != 2 {
		t.Errorf("transient failure should be retried once then succeed, got %d calls", transient.calls)
	}
	if atomic.LoadInt32(&permanent.calls) != 1 {
		t.Errorf("permanent failure must not be retried, got %d calls", permanent.calls)
	}
	if len(sources) != 1 {
		t.Errorf("expected only the transient source's result, got %v", sources)
	}
}

func TestRetrieve_CancellationPropagates(t *testing.T) {
	retrieverSleep = noSleep
	defer func() { retrieverSleep = sleepCtx }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &stubSearch{name: "any", sources: []model.Source{{URL: "https://x.example"}}}
	r := NewRetriever([]SearchProvider{p}, 3, time.Millisecond)

	_, _, err := r.Retrieve(ctx, "q", SearchOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
