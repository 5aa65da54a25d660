package gate

import (
	"fmt"

	"github.com/jbarrena/calverify/internal/model"
)

// Coverage thresholds. The base threshold applies to plain retrieval;
// verbatim primary-source text (full statutory/bill text) and live
// web-search grounding are inherently authoritative evidence and lower the
// bar accordingly.
const (
	BaseThreshold      = 0.6
	BillTextThreshold  = 0.3
	GroundingThreshold = 0.2
)

// Decision is the gate's outcome for one verification report.
type Decision struct {
	Status     model.VerificationStatus
	ShouldShow bool
	Caveat     string
}

// Evaluate maps a verification report (plus context flags) to a final trust
// status. Pure function; no I/O.
//
// Rules, in order: full coverage with at least one supporting quote and no
// ambiguity is verified; coverage at or above the context threshold is
// partially verified with a caveat; below-threshold coverage or ambiguity is
// a refusal and the generated answer is not shown.
func Evaluate(report model.VerificationReport, hasBillText, hasGrounding bool) Decision {
	threshold := Threshold(hasBillText, hasGrounding)

	if report.Coverage >= 1.0 && report.MinSupport >= 1 && !report.Ambiguity {
		return Decision{
			Status:     model.StatusVerified,
			ShouldShow: true,
		}
	}

	if !report.Ambiguity && report.Coverage >= threshold && report.Coverage < 1.0 {
		return Decision{
			Status:     model.StatusPartiallyVerified,
			ShouldShow: true,
			Caveat:     partialCaveat(report, hasBillText, hasGrounding),
		}
	}

	if report.Ambiguity || report.Coverage < threshold {
		return Decision{
			Status:     model.StatusRefusal,
			ShouldShow: false,
			Caveat:     refusalCaveat(report),
		}
	}

	// Unreachable given the rules above are exhaustive; kept as the
	// deterministic fallback rather than a panic.
	return Unverified()
}

// Unverified is the degraded decision for a verification pass whose output
// could not be used. The answer is shown with a generic caveat; degrading
// must never turn into a refusal.
func Unverified() Decision {
	return Decision{
		Status:     model.StatusUnverified,
		ShouldShow: true,
		Caveat:     "This answer could not be fully verified against the available sources.",
	}
}

// Threshold returns the context-sensitive coverage threshold.
func Threshold(hasBillText, hasGrounding bool) float64 {
	switch {
	case hasGrounding:
		return GroundingThreshold
	case hasBillText:
		return BillTextThreshold
	default:
		return BaseThreshold
	}
}

func partialCaveat(report model.VerificationReport, hasBillText, hasGrounding bool) string {
	unsupported := len(report.UnsupportedClaims)
	basis := "the retrieved sources"
	switch {
	case hasGrounding:
		basis = "live web results and the retrieved sources"
	case hasBillText:
		basis = "the full bill text and the retrieved sources"
	}

	noun := "claims"
	verb := "were"
	if unsupported == 1 {
		noun = "claim"
		verb = "was"
	}
	return fmt.Sprintf(
		"%d %s in this answer %s not confirmed against %s and %s removed or may be incomplete.",
		unsupported, noun, verb, basis, verb)
}

func refusalCaveat(report model.VerificationReport) string {
	reason := fmt.Sprintf(
		"too few of its factual claims (%.0f%%) could be confirmed against the available sources",
		report.Coverage*100)
	if report.Ambiguity {
		reason = "the available sources conflict with each other on key points"
	}
	return fmt.Sprintf(
		"I can't provide a reliable answer because %s. Please consult a licensed California attorney for guidance on this question.",
		reason)
}
