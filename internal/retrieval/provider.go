package retrieval

import (
	"context"
	"time"

	"github.com/jbarrena/calverify/internal/model"
)

// SearchOptions carries per-call retrieval parameters.
type SearchOptions struct {
	Limit      int
	DateAfter  time.Time
	DateBefore time.Time
}

// SearchResult is the normalized output of one evidence source.
type SearchResult struct {
	Content string
	Sources []model.Source
}

// SearchProvider is the uniform contract for heterogeneous evidence sources
// (vector index, case-law search, legislative-bill search). "Nothing found"
// is a valid empty result, never an error.
type SearchProvider interface {
	// Name identifies the source for logging.
	Name() string

	// Search runs one query against the source.
	Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error)
}
