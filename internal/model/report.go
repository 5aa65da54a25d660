package model

// VerificationStatus is the trust level assigned to an answer after the
// verification pass and confidence gate.
type VerificationStatus string

const (
	StatusVerified          VerificationStatus = "verified"           // Full coverage, unambiguous
	StatusPartiallyVerified VerificationStatus = "partially_verified" // Coverage above threshold but below 1.0
	StatusRefusal           VerificationStatus = "refusal"            // Below threshold or ambiguous; answer withheld
	StatusUnverified        VerificationStatus = "unverified"         // Verification could not complete (e.g., parse failure)
	StatusNotNeeded         VerificationStatus = "not_needed"         // Answer built exclusively from authoritative sources
)

// QuoteMatch records verbatim supporting quotes located for one claim.
type QuoteMatch struct {
	Claim    string   `json:"claim"`
	Quotes   []string `json:"quotes"`
	SourceID int      `json:"source_id,omitempty"`
}

// VerificationReport is the structured result of re-checking extracted
// claims against the pruned evidence.
//
// Invariant: Coverage == len(SupportedClaims) / (len(SupportedClaims) +
// len(UnsupportedClaims)) when the denominator is nonzero; an answer with
// zero claims is treated as fully covered.
type VerificationReport struct {
	Coverage          float64      `json:"coverage"` // 0..1
	MinSupport        int          `json:"min_support"`
	Ambiguity         bool         `json:"ambiguity"`
	SupportedClaims   []Claim      `json:"supported_claims"`
	UnsupportedClaims []Claim      `json:"unsupported_claims"`
	VerifiedQuotes    []QuoteMatch `json:"verified_quotes,omitempty"`
}

// GuardrailResult aggregates the post-gate deterministic checks.
// Purely advisory once a status has already been set to refusal.
type GuardrailResult struct {
	Passed   bool     `json:"passed"`
	Blocked  bool     `json:"blocked"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Merge folds another guardrail result into this one.
func (g *GuardrailResult) Merge(other GuardrailResult) {
	g.Errors = append(g.Errors, other.Errors...)
	g.Warnings = append(g.Warnings, other.Warnings...)
	g.Blocked = g.Blocked || other.Blocked
	g.Passed = g.Passed && other.Passed
}

// Answer is the final object returned to the caller for one user turn.
type Answer struct {
	Text            string              `json:"text"`
	Sources         []Source            `json:"sources"`
	Status          VerificationStatus  `json:"verification_status,omitempty"`
	Report          *VerificationReport `json:"verification_report,omitempty"`
	Claims          []Claim             `json:"claims,omitempty"`
	Caveat          string              `json:"caveat,omitempty"`
	IsAuthoritative bool                `json:"is_authoritative,omitempty"`
	SourceMode      SourceMode          `json:"source_mode,omitempty"`
	Guardrails      *GuardrailResult    `json:"guardrails,omitempty"`
	GroundingUsed   bool                `json:"grounding_used,omitempty"`
}
