package retrieval

import (
	"sort"

	"github.com/jbarrena/calverify/internal/model"
)

// Pruner deduplicates near-identical sources, reranks by lexical overlap
// with the query, and truncates to a bounded top-K set.
type Pruner struct {
	similarityThreshold float64
}

// NewPruner creates a pruner. threshold <= 0 uses the default 0.8.
func NewPruner(similarityThreshold float64) *Pruner {
	if similarityThreshold <= 0 {
		similarityThreshold = 0.8
	}
	return &Pruner{similarityThreshold: similarityThreshold}
}

// Prune applies rerank → dedupe → truncate, in that order. Deduping before
// ranking would risk discarding the better-scoring near-duplicate.
// Idempotent and order-independent in its final top-K selection for a fixed
// input set; ties keep the earlier source.
func (p *Pruner) Prune(sources []model.Source, query string, maxK int) []model.Source {
	if maxK <= 0 {
		maxK = 3
	}
	if len(sources) == 0 {
		return []model.Source{}
	}

	type scored struct {
		source model.Source
		score  float64
		order  int
	}

	queryTokens := significantTokens(query)
	distinct := make(map[string]bool, len(queryTokens))
	for _, tok := range queryTokens {
		distinct[tok] = true
	}

	ranked := make([]scored, 0, len(sources))
	for i, src := range sources {
		ranked = append(ranked, scored{
			source: src,
			score:  overlapScore(distinct, src),
			order:  i,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	// Scanning in score order, drop any source too similar to one already
	// kept; the kept one always has the higher (or tied-earlier) score.
	kept := make([]scored, 0, len(ranked))
	keptSets := make([]map[string]bool, 0, len(ranked))
	for _, cand := range ranked {
		candSet := tokenSet(cand.source.Title + " " + cand.source.Excerpt)
		duplicate := false
		for _, keptSet := range keptSets {
			if jaccard(candSet, keptSet) > p.similarityThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		kept = append(kept, cand)
		keptSets = append(keptSets, candSet)
	}

	if len(kept) > maxK {
		kept = kept[:maxK]
	}

	out := make([]model.Source, len(kept))
	for i, s := range kept {
		out[i] = s.source
	}
	return out
}

// overlapScore is matched-query-token-count / distinct-query-token-count
// over the source's title+excerpt tokens. Whole-token matches only; a query
// token must not score against a longer word that merely contains it.
func overlapScore(queryTokens map[string]bool, src model.Source) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	sourceTokens := make(map[string]bool)
	for _, tok := range significantTokens(src.Title + " " + src.Excerpt) {
		sourceTokens[tok] = true
	}
	matched := 0
	for tok := range queryTokens {
		if sourceTokens[tok] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
