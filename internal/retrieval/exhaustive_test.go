package retrieval

import "testing"

func TestIsExhaustive(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"List all cases about premarital agreements", true},
		{"Give me an exhaustive survey of custody standards", true},
		{"I need a complete list of support factors", true},
		{"What is the statute of limitations for fraud?", false},
		{"In case of divorce, who keeps the house?", false},
	}
	for _, tt := range tests {
		if got := IsExhaustive(tt.question); got != tt.want {
			t.Errorf("IsExhaustive(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestQueryVariants(t *testing.T) {
	variants := QueryVariants("premarital agreement enforceability")
	if variants[0] != "premarital agreement enforceability" {
		t.Error("original query must be the first variant")
	}
	if len(variants) < 3 {
		t.Errorf("expected topical expansion, got %v", variants)
	}
}
