package verify

import (
	"context"
	"testing"

	"github.com/jbarrena/calverify/internal/llm"
	"github.com/jbarrena/calverify/internal/model"
)

// stubProvider implements llm.Provider
type stubProvider struct {
	text  string
	calls int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.calls++
	return &llm.GenerateResponse{Text: s.text}, nil
}

func someClaims() []model.Claim {
	return []model.Claim{
		{Text: "The agreement must be in writing.", Kind: model.ClaimKindStatute},
		{Text: "The court held it enforceable.", Kind: model.ClaimKindCase},
	}
}

func TestVerify_ZeroClaimsSkipsModelCall(t *testing.T) {
	provider := &stubProvider{}
	v := NewVerifier(provider)

	out, err := v.Verify(context.Background(), "Hello, how can I help?", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("zero claims must not issue a verification call, got %d calls", provider.calls)
	}
	if out.Status != model.StatusVerified {
		t.Errorf("expected verified, got %s", out.Status)
	}
	if out.Report.Coverage != 1.0 {
		t.Errorf("expected coverage 1.0, got %f", out.Report.Coverage)
	}
}

func TestVerify_FullCoverage(t *testing.T) {
	provider := &stubProvider{text: `{
		"coverage": 1.0,
		"min_support": 1,
		"ambiguity": false,
		"supported_claims": ["The agreement must be in writing.", "The court held it enforceable."],
		"unsupported_claims": [],
		"verified_quotes": [{"claim": "The agreement must be in writing.", "quotes": ["shall be in writing"], "source_id": 1}],
		"verified_answer": "original answer"
	}`}
	v := NewVerifier(provider)

	out, err := v.Verify(context.Background(), "original answer", someClaims(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != model.StatusVerified {
		t.Errorf("expected verified, got %s", out.Status)
	}
	if out.Report.Coverage != 1.0 {
		t.Errorf("expected coverage 1.0, got %f", out.Report.Coverage)
	}
}

func TestVerify_ParseFailureDegradesToUnverified(t *testing.T) {
	provider := &stubProvider{text: "I could not produce JSON, sorry!"}
	v := NewVerifier(provider)

	out, err := v.Verify(context.Background(), "the answer", someClaims(), nil)
	if err != nil {
		t.Fatalf("parse failure must not be an error: %v", err)
	}
	if out.Status != model.StatusUnverified {
		t.Errorf("expected unverified, got %s", out.Status)
	}
	if !out.Report.Ambiguity {
		t.Error("fallback report must set ambiguity true")
	}
	if len(out.Report.SupportedClaims) != 0 {
		t.Error("fallback report must support zero claims")
	}
	if out.VerifiedAnswer != "the answer" {
		t.Errorf("fallback must keep the original answer, got %q", out.VerifiedAnswer)
	}
}

func TestParseReport_FencedBlockAndCommentary(t *testing.T) {
	raw := "Sure! Here is the verification:\n```json\n" +
		`{"coverage": 0.5, "ambiguity": false, "supported_claims": ["a"], "unsupported_claims": ["b"], "verified_answer": "trimmed"}` +
		"\n```\nLet me know if you need more."

	report, answer, ok := parseReport(raw, nil)
	if !ok {
		t.Fatal("expected parse success")
	}
	if report.Coverage != 0.5 {
		t.Errorf("expected coverage 0.5, got %f", report.Coverage)
	}
	if answer != "trimmed" {
		t.Errorf("expected rewritten answer, got %q", answer)
	}
}

func TestParseReport_CoverageRecomputedFromClaims(t *testing.T) {
	raw := `{"coverage": 0.9, "ambiguity": false,
		"supported_claims": ["a"], "unsupported_claims": ["b", "c"]}`

	report, _, ok := parseReport(raw, nil)
	if !ok {
		t.Fatal("expected parse success")
	}
	want := 1.0 / 3.0
	if report.Coverage != want {
		t.Errorf("coverage must equal supported/(supported+unsupported): got %f, want %f", report.Coverage, want)
	}
	if report.Coverage < 0 || report.Coverage > 1 {
		t.Error("coverage out of [0,1]")
	}
}

func TestParseReport_ClampsCoverage(t *testing.T) {
	raw := `{"coverage": 3.7, "ambiguity": false}`
	report, _, ok := parseReport(raw, nil)
	if !ok {
		t.Fatal("expected parse success")
	}
	if report.Coverage != 1.0 {
		t.Errorf("expected clamp to 1.0, got %f", report.Coverage)
	}
}

func TestParseReport_MissingAmbiguityDefaultsTrue(t *testing.T) {
	raw := `{"coverage": 1.0, "supported_claims": ["a"]}`
	report, _, ok := parseReport(raw, nil)
	if !ok {
		t.Fatal("expected parse success")
	}
	if !report.Ambiguity {
		t.Error("missing ambiguity must default to true")
	}
}
