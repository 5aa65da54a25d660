package gate

import (
	"testing"

	"github.com/jbarrena/calverify/internal/model"
)

func TestEvaluate_FullCoverageVerified(t *testing.T) {
	d := Evaluate(model.VerificationReport{
		Coverage:   1.0,
		MinSupport: 1,
		Ambiguity:  false,
	}, false, false)

	if d.Status != model.StatusVerified {
		t.Errorf("expected verified, got %s", d.Status)
	}
	if !d.ShouldShow {
		t.Error("verified answers must be shown")
	}
}

func TestEvaluate_HalfCoverageRefusedByDefault(t *testing.T) {
	d := Evaluate(model.VerificationReport{Coverage: 0.5, MinSupport: 1}, false, false)

	if d.Status != model.StatusRefusal {
		t.Errorf("0.5 < 0.6 default threshold: expected refusal, got %s", d.Status)
	}
	if d.ShouldShow {
		t.Error("refused answers must not be shown")
	}
	if d.Caveat == "" {
		t.Error("refusal must carry a caveat")
	}
}

func TestEvaluate_BillTextLowersThreshold(t *testing.T) {
	d := Evaluate(model.VerificationReport{Coverage: 0.5, MinSupport: 1}, true, false)

	if d.Status != model.StatusPartiallyVerified {
		t.Errorf("0.5 >= 0.3 bill-text threshold: expected partially_verified, got %s", d.Status)
	}
	if !d.ShouldShow {
		t.Error("partially verified answers are shown")
	}
	if d.Caveat == "" {
		t.Error("partial verification must carry a caveat")
	}
}

func TestEvaluate_GroundingLowersThresholdFurther(t *testing.T) {
	d := Evaluate(model.VerificationReport{Coverage: 0.25, MinSupport: 1}, false, true)

	if d.Status != model.StatusPartiallyVerified {
		t.Errorf("0.25 >= 0.2 grounding threshold: expected partially_verified, got %s", d.Status)
	}
}

func TestEvaluate_AmbiguityForcesRefusal(t *testing.T) {
	d := Evaluate(model.VerificationReport{
		Coverage:   1.0,
		MinSupport: 2,
		Ambiguity:  true,
	}, false, false)

	if d.Status != model.StatusRefusal {
		t.Errorf("ambiguity must refuse even at full coverage, got %s", d.Status)
	}
}

func TestEvaluate_FullCoverageWithoutQuotesNotVerified(t *testing.T) {
	d := Evaluate(model.VerificationReport{Coverage: 1.0, MinSupport: 0}, false, false)

	if d.Status == model.StatusVerified {
		t.Error("verified requires at least one supporting quote")
	}
}

func TestEvaluate_Monotonic(t *testing.T) {
	rank := map[model.VerificationStatus]int{
		model.StatusRefusal:           0,
		model.StatusUnverified:        1,
		model.StatusPartiallyVerified: 2,
		model.StatusVerified:          3,
	}

	for _, flags := range [][2]bool{{false, false}, {true, false}, {false, true}} {
		prev := -1
		for coverage := 0.0; coverage <= 1.0; coverage += 0.05 {
			d := Evaluate(model.VerificationReport{
				Coverage:   coverage,
				MinSupport: 1,
				Ambiguity:  false,
			}, flags[0], flags[1])

			cur := rank[d.Status]
			if cur < prev {
				t.Fatalf("status moved backward at coverage %.2f (billText=%v grounding=%v): %s",
					coverage, flags[0], flags[1], d.Status)
			}
			prev = cur
		}
	}
}

func TestThreshold(t *testing.T) {
	if Threshold(false, false) != 0.6 {
		t.Error("base threshold must be 0.6")
	}
	if Threshold(true, false) != 0.3 {
		t.Error("bill-text threshold must be 0.3")
	}
	if Threshold(false, true) != 0.2 {
		t.Error("grounding threshold must be 0.2")
	}
	if Threshold(true, true) != 0.2 {
		t.Error("grounding takes precedence over bill text")
	}
}
