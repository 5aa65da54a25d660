package verify

import (
	"encoding/json"
	"strings"

	"github.com/jbarrena/calverify/internal/model"
)

// wireReport is the JSON shape requested from the verification call.
type wireReport struct {
	Coverage          *float64 `json:"coverage"`
	MinSupport        int      `json:"min_support"`
	Ambiguity         *bool    `json:"ambiguity"`
	SupportedClaims   []string `json:"supported_claims"`
	UnsupportedClaims []string `json:"unsupported_claims"`
	VerifiedQuotes    []struct {
		Claim    string   `json:"claim"`
		Quotes   []string `json:"quotes"`
		SourceID int      `json:"source_id"`
	} `json:"verified_quotes"`
	VerifiedAnswer string `json:"verified_answer"`
}

// parseReport extracts the structured report from the model's raw output,
// tolerating commentary around the JSON and fenced code blocks. Missing
// fields default to their safest values; coverage is clamped into [0,1] and
// recomputed from the claim lists when they disagree with the stated value.
func parseReport(raw string, claimList []model.Claim) (model.VerificationReport, string, bool) {
	payload, ok := extractJSON(raw)
	if !ok {
		return model.VerificationReport{}, "", false
	}

	var wire wireReport
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return model.VerificationReport{}, "", false
	}

	byText := make(map[string]model.Claim, len(claimList))
	for _, c := range claimList {
		byText[normalizeClaim(c.Text)] = c
	}
	lookup := func(text string) model.Claim {
		if c, ok := byText[normalizeClaim(text)]; ok {
			return c
		}
		return model.Claim{Text: text, Kind: model.ClaimKindFact}
	}

	report := model.VerificationReport{
		MinSupport: wire.MinSupport,
		// Missing ambiguity defaults to true: absence of the flag must not
		// read as "no conflict".
		Ambiguity: wire.Ambiguity == nil || *wire.Ambiguity,
	}
	for _, text := range wire.SupportedClaims {
		report.SupportedClaims = append(report.SupportedClaims, lookup(text))
	}
	for _, text := range wire.UnsupportedClaims {
		report.UnsupportedClaims = append(report.UnsupportedClaims, lookup(text))
	}
	for _, q := range wire.VerifiedQuotes {
		report.VerifiedQuotes = append(report.VerifiedQuotes, model.QuoteMatch{
			Claim:    q.Claim,
			Quotes:   q.Quotes,
			SourceID: q.SourceID,
		})
	}

	// The coverage invariant is enforced here, not trusted from the model.
	total := len(report.SupportedClaims) + len(report.UnsupportedClaims)
	if total > 0 {
		report.Coverage = float64(len(report.SupportedClaims)) / float64(total)
	} else if wire.Coverage != nil {
		report.Coverage = clamp01(*wire.Coverage)
	}

	if report.MinSupport < 0 {
		report.MinSupport = 0
	}

	return report, wire.VerifiedAnswer, true
}

// extractJSON finds the JSON object in raw model output, stripping fenced
// blocks and surrounding commentary.
func extractJSON(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)

	// Prefer the content of a fenced block when present.
	if idx := strings.Index(raw, "```"); idx >= 0 {
		rest := raw[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			raw = rest[:end]
		} else {
			raw = rest
		}
		raw = strings.TrimSpace(raw)
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

func normalizeClaim(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
