package model

// SourceMode selects which evidence corpus an answer is built from.
type SourceMode string

const (
	// SourceModeAuthoritative answers only from the curated practice-guide
	// corpus; verification is skipped entirely.
	SourceModeAuthoritative SourceMode = "authoritative"
	// SourceModeGeneral runs the full pipeline against open retrieval.
	SourceModeGeneral SourceMode = "general"
	// SourceModeHybrid merges curated and open evidence; verification applies
	// only to the non-authoritative portion.
	SourceModeHybrid SourceMode = "hybrid"
)

// Source categories. CategoryBillText marks verbatim statutory or bill text,
// which lowers the confidence-gate threshold downstream.
const (
	CategoryBillText      = "bill_text"
	CategoryPracticeGuide = "practice_guide"
	CategoryCaseLaw       = "case_law"
	CategoryWebGrounding  = "web_grounding"
)

// Source represents one piece of retrieved evidence.
// Immutable once produced by a retrieval call; ID is assigned later by the
// pipeline for citation-number mapping (1-based, stable within one answer).
type Source struct {
	ID         int     `json:"id,omitempty"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Excerpt    string  `json:"excerpt,omitempty"`
	Confidence float64 `json:"confidence,omitempty"` // 0..1, retrieval score if known

	// Authoritative tags curated practice-guide excerpts that are exempt from
	// verification. Category is only set when Authoritative is true.
	Authoritative bool   `json:"authoritative,omitempty"`
	Category      string `json:"category,omitempty"`
}

// SplitByAuthority partitions sources into authoritative and open evidence.
func SplitByAuthority(sources []Source) (authoritative, open []Source) {
	for _, s := range sources {
		if s.Authoritative {
			authoritative = append(authoritative, s)
		} else {
			open = append(open, s)
		}
	}
	return authoritative, open
}

// AssignIDs numbers sources 1-based in order, returning the same slice.
// IDs are stable for the duration of one answer cycle.
func AssignIDs(sources []Source) []Source {
	for i := range sources {
		sources[i].ID = i + 1
	}
	return sources
}
