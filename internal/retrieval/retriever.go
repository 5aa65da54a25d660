package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jbarrena/calverify/internal/model"
)

// PermanentError marks a provider failure that must not be retried
// (4xx-class / malformed request).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the retriever will not retry it.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}

// retrieverSleep is the delay function between retries (injectable for tests)
var retrieverSleep = sleepCtx

// Retriever fans out a query to heterogeneous evidence sources concurrently,
// each wrapped in a retry policy with exponential backoff and isolated
// failure handling: one failing source degrades to an empty result rather
// than failing the whole fan-out.
type Retriever struct {
	providers  []SearchProvider
	maxRetries int
	baseDelay  time.Duration
}

// NewRetriever creates a retriever over the given providers.
func NewRetriever(providers []SearchProvider, maxRetries int, baseDelay time.Duration) *Retriever {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &Retriever{
		providers:  providers,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// Retrieve runs the query against all providers in parallel and merges the
// results into a flat list deduplicated by URL (last-write-wins in provider
// registration order). Cancellation propagates rather than returning a
// partial success.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts SearchOptions) ([]model.Source, string, error) {
	results := make([]*SearchResult, len(r.providers))
	var wg sync.WaitGroup

	for i, provider := range r.providers {
		wg.Add(1)
		go func(idx int, p SearchProvider) {
			defer wg.Done()
			res, err := r.searchWithRetry(ctx, p, query, opts)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Warn("evidence source failed", "source", p.Name(), "err", err)
				}
				results[idx] = &SearchResult{}
				return
			}
			results[idx] = res
		}(i, provider)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	var content strings.Builder
	merged := make([]model.Source, 0)
	byURL := make(map[string]int)
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Content != "" {
			if content.Len() > 0 {
				content.WriteString("\n\n")
			}
			content.WriteString(res.Content)
		}
		for _, src := range res.Sources {
			if idx, seen := byURL[src.URL]; seen {
				merged[idx] = src // last write wins on exact key collision
				continue
			}
			byURL[src.URL] = len(merged)
			merged = append(merged, src)
		}
	}

	return merged, content.String(), nil
}

// searchWithRetry retries transient failures with delay doubling from the
// base delay. Permanent failures and cancellation abort immediately.
func (r *Retriever) searchWithRetry(ctx context.Context, p SearchProvider, query string, opts SearchOptions) (*SearchResult, error) {
	var lastErr error
	delay := r.baseDelay

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.Search(ctx, query, opts)
		if err == nil {
			return res, nil
		}
		lastErr = err

		var perm *PermanentError
		if errors.As(err, &perm) {
			return nil, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			if err := retrieverSleep(ctx, delay); err != nil {
				return nil, err
			}
			delay *= 2
		}
	}

	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
