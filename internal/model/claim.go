package model

// Claim represents a sentence-level factual assertion extracted from a
// generated answer. Derived, not persisted; recomputed per answer.
type Claim struct {
	Text      string    `json:"text"`                // The claim text itself
	Cites     []int     `json:"cites,omitempty"`     // Inline citation markers found in the claim (1-based source IDs)
	Kind      ClaimKind `json:"kind"`                // Coarse classification
	Heuristic string    `json:"heuristic,omitempty"` // Which indicator pattern matched (e.g., "modal")
	Sentence  int       `json:"sentence,omitempty"`  // Sentence index in answer (0-based)
}

// ClaimKind categorizes the nature of the claim
type ClaimKind string

const (
	ClaimKindStatute ClaimKind = "statute" // Cites or describes a code section
	ClaimKindCase    ClaimKind = "case"    // Adjudicative or party-v-party language
	ClaimKindFact    ClaimKind = "fact"    // Any other checkable assertion
)
