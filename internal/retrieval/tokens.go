package retrieval

import "strings"

// stopwords excluded from significance scoring. Short function words are
// already dropped by the length>2 rule; this covers the longer ones common
// in legal questions.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"was": true, "what": true, "when": true, "where": true, "which": true,
	"with": true, "about": true, "does": true, "how": true, "that": true,
	"this": true, "from": true, "have": true, "will": true, "would": true,
	"there": true, "their": true, "they": true, "been": true, "being": true,
}

// significantTokens lowercases and tokenizes text, keeping tokens longer
// than two characters that are not stopwords.
func significantTokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]\"'")
		if len(f) > 2 && !stopwords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// tokenSet returns the distinct whitespace tokens of lowercased text.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(text)) {
		set[f] = true
	}
	return set
}

// jaccard computes set similarity over two token sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
