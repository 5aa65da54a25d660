package cite

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sync"

	"golang.org/x/time/rate"

	"github.com/jbarrena/calverify/internal/cache"
	"github.com/jbarrena/calverify/internal/model"
)

// leginfoURL is the legislature's public code-section viewer.
const leginfoURL = "https://leginfo.legislature.ca.gov/faces/codes_displaySection.xhtml"

// caseSearchURL is the generic fallback search link for unresolved cases.
const caseSearchURL = "https://www.courtlistener.com/"

// validSubpart accepts a single lowercase letter, optionally followed by one
// digit, as a section sub-part; anything else falls back to the bare section.
var validSubpart = regexp.MustCompile(`^[a-z][0-9]?$`)

// CaseSearcher is the case-law search collaborator.
type CaseSearcher interface {
	// FindCase looks up a case by name. A nil Source with nil error means
	// no exact match was found.
	FindCase(ctx context.Context, caseName string) (*model.Source, error)
}

// Resolver resolves extracted citations to canonical reference sources.
// Code citations resolve by deterministic URL construction; case citations
// require a network lookup, run with bounded concurrency and cached with
// last-writer-wins semantics.
type Resolver struct {
	searcher  CaseSearcher
	cache     cache.Cache // nil disables the resolution cache
	limiter   *rate.Limiter
	batchSize int
}

// NewResolver creates a resolver. resolutionCache may be nil.
func NewResolver(searcher CaseSearcher, resolutionCache cache.Cache, lookupsPerSecond float64, batchSize int) *Resolver {
	if lookupsPerSecond <= 0 {
		lookupsPerSecond = 2
	}
	if batchSize <= 0 {
		batchSize = 3
	}
	return &Resolver{
		searcher:  searcher,
		cache:     resolutionCache,
		limiter:   rate.NewLimiter(rate.Limit(lookupsPerSecond), batchSize),
		batchSize: batchSize,
	}
}

// ResolveCode constructs the canonical leginfo URL for a code citation.
// Pure function of (citation, registry); no network call.
func ResolveCode(c Citation) *model.Source {
	if c.Kind != KindCode || c.LawCode == "" || c.Section == "" {
		return nil
	}

	sectionNum := c.Section
	if c.Subpart != "" && validSubpart.MatchString(c.Subpart) {
		sectionNum = c.Section + "." + c.Subpart
	}

	return &model.Source{
		Title: c.Raw,
		URL: fmt.Sprintf("%s?lawCode=%s&sectionNum=%s",
			leginfoURL, c.LawCode, url.QueryEscape(sectionNum)),
	}
}

// Resolve maps every citation to a Source. Code citations resolve locally;
// case citations are looked up in batches of at most batchSize simultaneous
// in-flight requests to respect external rate limits. A failed or empty
// lookup falls back to a generic search link. Unresolvable citations are
// omitted.
func (r *Resolver) Resolve(ctx context.Context, citations []Citation) ([]model.Source, error) {
	resolved := make([]*model.Source, len(citations))

	var caseIdx []int
	for i, c := range citations {
		switch c.Kind {
		case KindCode:
			resolved[i] = ResolveCode(c)
		case KindCase:
			caseIdx = append(caseIdx, i)
		}
	}

	for start := 0; start < len(caseIdx); start += r.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + r.batchSize
		if end > len(caseIdx) {
			end = len(caseIdx)
		}

		var wg sync.WaitGroup
		for _, idx := range caseIdx[start:end] {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				resolved[i] = r.resolveCase(ctx, citations[i])
			}(idx)
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]model.Source, 0, len(resolved))
	for _, src := range resolved {
		if src != nil {
			out = append(out, *src)
		}
	}
	return out, nil
}

func (r *Resolver) resolveCase(ctx context.Context, c Citation) *model.Source {
	if c.CaseName == "" {
		return nil
	}

	cacheKey := cache.Key("case:" + c.Key())
	if r.cache != nil {
		if data, ok := r.cache.Get(cacheKey); ok {
			var src model.Source
			if err := json.Unmarshal(data, &src); err == nil {
				return &src
			}
		}
	}

	src := r.lookupCase(ctx, c)
	if src == nil {
		return nil
	}

	if r.cache != nil {
		if data, err := json.Marshal(src); err == nil {
			if err := r.cache.Set(cacheKey, data, 0); err != nil {
				slog.Debug("citation cache write failed", "err", err)
			}
		}
	}
	return src
}

func (r *Resolver) lookupCase(ctx context.Context, c Citation) *model.Source {
	if r.searcher != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil
		}
		src, err := r.searcher.FindCase(ctx, c.CaseName)
		if err == nil && src != nil {
			out := *src
			if out.Title == "" {
				out.Title = c.CaseName
			}
			return &out
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("case lookup failed, using search link", "case", c.CaseName, "err", err)
		}
	}

	// Generic search-link fallback.
	return &model.Source{
		Title: c.CaseName,
		URL:   fmt.Sprintf("%s?q=%s&type=o", caseSearchURL, url.QueryEscape(c.CaseName)),
	}
}
