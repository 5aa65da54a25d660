package cite

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jbarrena/calverify/internal/model"
)

func TestResolveCode_WithSubpart(t *testing.T) {
	citations := Extract("Family Code § 1615(c)")
	if len(citations) == 0 {
		t.Fatal("expected a citation")
	}

	src := ResolveCode(citations[0])
	if src == nil {
		t.Fatal("expected a resolved source")
	}
	if !strings.Contains(src.URL, "lawCode=FAM") {
		t.Errorf("URL missing lawCode=FAM: %s", src.URL)
	}
	if !strings.Contains(src.URL, "sectionNum=1615.c") {
		t.Errorf("URL missing sectionNum=1615.c: %s", src.URL)
	}
}

func TestResolveCode_InvalidSubpartFallsBack(t *testing.T) {
	src := ResolveCode(Citation{
		Raw:     "Family Code § 1615(xyz)",
		Kind:    KindCode,
		LawCode: "FAM",
		Section: "1615",
		Subpart: "xyz",
	})
	if src == nil {
		t.Fatal("expected a resolved source")
	}
	if !strings.Contains(src.URL, "sectionNum=1615") || strings.Contains(src.URL, "1615.xyz") {
		t.Errorf("expected bare section for invalid subpart: %s", src.URL)
	}
}

// stubCaseSearcher implements CaseSearcher
type stubCaseSearcher struct {
	mu       sync.Mutex
	inflight int32
	peak     int32
	result   *model.Source
	err      error
}

func (s *stubCaseSearcher) FindCase(ctx context.Context, name string) (*model.Source, error) {
	cur := atomic.AddInt32(&s.inflight, 1)
	defer atomic.AddInt32(&s.inflight, -1)

	s.mu.Lock()
	if cur > s.peak {
		s.peak = cur
	}
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		out := *s.result
		out.Title = name
		return &out, nil
	}
	return nil, nil
}

func TestResolve_CaseLookupBounded(t *testing.T) {
	searcher := &stubCaseSearcher{result: &model.Source{URL: "https://case.example"}}
	resolver := NewResolver(searcher, nil, 1000, 3)

	var citations []Citation
	names := []string{"Aa v. Ba", "Ca v. Da", "Ea v. Fa", "Ga v. Ha", "Ia v. Ja", "Ka v. La", "Ma v. Na"}
	for _, n := range names {
		citations = append(citations, Citation{Raw: n, Kind: KindCase, CaseName: n})
	}

	sources, err := resolver.Resolve(context.Background(), citations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != len(names) {
		t.Errorf("expected %d sources, got %d", len(names), len(sources))
	}
	if searcher.peak > 3 {
		t.Errorf("expected at most 3 simultaneous lookups, saw %d", searcher.peak)
	}
}

func TestResolve_LookupErrorFallsBackToSearchLink(t *testing.T) {
	searcher := &stubCaseSearcher{err: errors.New("backend down")}
	resolver := NewResolver(searcher, nil, 1000, 3)

	sources, err := resolver.Resolve(context.Background(), []Citation{
		{Raw: "Marvin v. Marvin", Kind: KindCase, CaseName: "Marvin v. Marvin"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected fallback source, got %d", len(sources))
	}
	if !strings.Contains(sources[0].URL, "courtlistener.com") {
		t.Errorf("expected generic search link, got %s", sources[0].URL)
	}
}

func TestResolve_Cancellation(t *testing.T) {
	searcher := &stubCaseSearcher{result: &model.Source{URL: "https://case.example"}}
	resolver := NewResolver(searcher, nil, 1000, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := resolver.Resolve(ctx, []Citation{
		{Raw: "Aa v. Ba", Kind: KindCase, CaseName: "Aa v. Ba"},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
