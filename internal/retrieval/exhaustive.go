package retrieval

import "strings"

// exhaustivePhrases trigger exhaustive mode from user phrasing. Data-driven
// so the heuristic can grow its own test corpus.
var exhaustivePhrases = []string{
	"all cases",
	"every case",
	"all the cases",
	"exhaustive",
	"complete list",
	"comprehensive list",
	"full list",
	"list all",
	"list every",
}

// IsExhaustive reports whether the question asks for exhaustive results.
// In exhaustive mode callers raise per-source limits and bypass pruning so
// no evidence is silently dropped before synthesis.
func IsExhaustive(question string) bool {
	q := strings.ToLower(question)
	for _, phrase := range exhaustivePhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}

// QueryVariants expands one query into topical variants for parallel search.
// The original query is always the first variant.
func QueryVariants(query string) []string {
	base := strings.TrimSpace(query)
	variants := []string{base}

	lower := strings.ToLower(base)
	if !strings.Contains(lower, "california") {
		variants = append(variants, "California "+base)
	}
	if !strings.Contains(lower, "case") {
		variants = append(variants, base+" case law")
	}
	if !strings.Contains(lower, "statute") && !strings.Contains(lower, "code") {
		variants = append(variants, base+" statute")
	}

	return variants
}
