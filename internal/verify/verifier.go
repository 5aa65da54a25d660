package verify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jbarrena/calverify/internal/llm"
	"github.com/jbarrena/calverify/internal/model"
)

// Output bundles the verifier's result for the confidence gate.
type Output struct {
	// VerifiedAnswer is the answer to show: the original on full coverage,
	// or a rewrite with unsupported material removed on partial coverage.
	VerifiedAnswer string
	Report         model.VerificationReport
	Status         model.VerificationStatus
}

// Verifier re-checks extracted claims against the pruned evidence with a
// second generative call.
type Verifier struct {
	provider llm.Provider
}

// NewVerifier creates a verifier over the given provider (normally the
// primary/fallback pair).
func NewVerifier(provider llm.Provider) *Verifier {
	return &Verifier{provider: provider}
}

// Verify checks each claim against the sources. An answer with zero claims
// cannot be "unsupported": verification is skipped entirely and the answer
// reported as verified with full coverage, without issuing any model call.
//
// A verification call whose output cannot be parsed degrades
// deterministically to StatusUnverified with the safest report values; a
// parse failure must never silently report success.
func (v *Verifier) Verify(ctx context.Context, answerText string, claimList []model.Claim, sources []model.Source) (*Output, error) {
	if len(claimList) == 0 {
		return &Output{
			VerifiedAnswer: answerText,
			Report: model.VerificationReport{
				Coverage:   1.0,
				MinSupport: 0,
			},
			Status: model.StatusVerified,
		}, nil
	}

	resp, err := v.provider.Generate(ctx, llm.GenerateRequest{
		Prompt:      buildPrompt(answerText, claimList, sources),
		System:      systemInstruction,
		JSONOutput:  true,
		Temperature: 0.1,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("verification call: %w", err)
	}

	report, verifiedAnswer, ok := parseReport(resp.Text, claimList)
	if !ok {
		slog.Warn("verifier output unparseable, degrading to unverified")
		return &Output{
			VerifiedAnswer: answerText,
			Report:         fallbackReport(claimList),
			Status:         model.StatusUnverified,
		}, nil
	}

	if strings.TrimSpace(verifiedAnswer) == "" {
		verifiedAnswer = answerText
	}

	return &Output{
		VerifiedAnswer: verifiedAnswer,
		Report:         report,
		Status:         statusFromReport(report),
	}, nil
}

// fallbackReport is the deterministic parse-failure report: every field at
// its safest value (ambiguous, nothing supported).
func fallbackReport(claimList []model.Claim) model.VerificationReport {
	return model.VerificationReport{
		Coverage:          0,
		MinSupport:        0,
		Ambiguity:         true,
		UnsupportedClaims: claimList,
	}
}

// statusFromReport derives the provisional status; the confidence gate makes
// the final call with its context-sensitive thresholds.
func statusFromReport(report model.VerificationReport) model.VerificationStatus {
	if report.Coverage >= 1.0 && !report.Ambiguity && report.MinSupport >= 1 {
		return model.StatusVerified
	}
	return model.StatusPartiallyVerified
}
