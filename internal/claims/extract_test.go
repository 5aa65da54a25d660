package claims

import (
	"testing"

	"github.com/jbarrena/calverify/internal/model"
)

func TestSplitSentences_ProtectsAbbreviations(t *testing.T) {
	text := "The court in Marvin v. Marvin, 18 Cal.3d 660, recognized these contracts. " +
		"Family Code § 1615 governs enforceability."

	sentences := SplitSentences(text)

	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "The court in Marvin v. Marvin, 18 Cal.3d 660, recognized these contracts." {
		t.Errorf("abbreviations were not restored: %q", sentences[0])
	}
}

func TestExtract_IndicatorCoverage(t *testing.T) {
	tests := []struct {
		sentence  string
		heuristic string
	}{
		{"A premarital agreement must be in writing and signed by both parties.", "modal"},
		{"The response is due within 30 days of service.", "deadline"},
		{"Family Code section 4320 lists the support factors.", "code"},
		{"The court held that the agreement was unconscionable.", "adjudicative"},
		{"Under California law, community property is divided equally.", "attribution"},
		{"Separate property is defined as property owned before marriage.", "definitional"},
		{"Violation carries a fine of up to $10,000 and imprisonment.", "penalty"},
		{"The standard is preponderance of the evidence.", "proof"},
		{"Spousal support may be modified [2].", "citation-marker"},
	}

	extractor := NewExtractor()
	for _, tt := range tests {
		claims := extractor.Extract(tt.sentence, nil)
		if len(claims) != 1 {
			t.Errorf("%q: expected 1 claim, got %d", tt.sentence, len(claims))
			continue
		}
	}
}

func TestExtract_NonClaimsSkipped(t *testing.T) {
	extractor := NewExtractor()
	claims := extractor.Extract("I hope this helps you with your situation. Feel free to follow up.", nil)
	if len(claims) != 0 {
		t.Errorf("expected no claims from pleasantries, got %v", claims)
	}
}

func TestExtract_DedupesByLeadingSubstring(t *testing.T) {
	text := "The agreement must be in writing. The agreement must be in writing."
	extractor := NewExtractor()
	claims := extractor.Extract(text, nil)
	if len(claims) != 1 {
		t.Errorf("expected 1 deduplicated claim, got %d", len(claims))
	}
}

func TestExtract_KindClassification(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		text string
		kind model.ClaimKind
	}{
		{"Family Code § 1615 requires voluntary execution.", model.ClaimKindStatute},
		{"The court held in Marvin v. Marvin that such contracts are enforceable.", model.ClaimKindCase},
		{"Spousal support must be paid monthly.", model.ClaimKindFact},
	}

	for _, tt := range tests {
		claims := extractor.Extract(tt.text, nil)
		if len(claims) != 1 {
			t.Fatalf("%q: expected 1 claim, got %d", tt.text, len(claims))
		}
		if claims[0].Kind != tt.kind {
			t.Errorf("%q: expected kind %s, got %s", tt.text, tt.kind, claims[0].Kind)
		}
	}
}

func TestExtract_RecordsInlineCites(t *testing.T) {
	sources := []model.Source{{ID: 1}, {ID: 2}, {ID: 3}}
	extractor := NewExtractor()

	claims := extractor.Extract("The agreement must be notarized [1][3].", sources)
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	cites := claims[0].Cites
	if len(cites) != 2 || cites[0] != 1 || cites[1] != 3 {
		t.Errorf("expected cites [1 3], got %v", cites)
	}
}

func TestExtract_DropsOutOfRangeCites(t *testing.T) {
	sources := []model.Source{{ID: 1}}
	extractor := NewExtractor()

	claims := extractor.Extract("Support is required [7].", sources)
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}
	if len(claims[0].Cites) != 0 {
		t.Errorf("marker beyond source list must be dropped, got %v", claims[0].Cites)
	}
}
