// Package guard runs deterministic post-verification checks over a gated
// answer: entity containment, inline citation markers, jurisdiction scope,
// and an optional link check on resolved citations. The checks never call a
// model; they are regex and string work over text the pipeline already has.
package guard

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jbarrena/calverify/internal/model"
)

// Runner executes the guardrail suite. When Strict is set, a blocked result
// downgrades the answer; otherwise findings are attached as advisory output.
type Runner struct {
	strict      bool
	linkChecker *LinkChecker
}

func NewRunner(cfg model.GuardConfig, linkChecker *LinkChecker) *Runner {
	if !cfg.LinkCheck {
		linkChecker = nil
	}
	return &Runner{strict: cfg.Strict, linkChecker: linkChecker}
}

// Run applies every enabled check to the answer and returns the merged
// result. citationURLs are the already-resolved statute and case links; they
// are probed only when a link checker is configured.
func (r *Runner) Run(ctx context.Context, question string, answer *model.Answer, citationURLs []string) model.GuardrailResult {
	result := model.GuardrailResult{Passed: true}

	result.Merge(CheckEntities(answer.Text, answer.Sources))
	result.Merge(CheckCitationMarkers(answer.Text, answer.Sources))
	result.Merge(CheckJurisdiction(question, answer.Text))

	if r.linkChecker != nil && len(citationURLs) > 0 {
		result.Merge(r.linkChecker.Check(ctx, citationURLs))
	}

	if result.Blocked {
		slog.Warn("guardrail check failed",
			"errors", len(result.Errors),
			"warnings", len(result.Warnings),
			"strict", r.strict)
	}
	return result
}

// Apply folds a guardrail result into the answer. In strict mode a blocked
// result demotes shown statuses to refusal. In advisory mode the blocking
// findings are appended to the answer text itself so they reach the reader,
// not only the structured guardrail report.
func (r *Runner) Apply(answer *model.Answer, result model.GuardrailResult) {
	answer.Guardrails = &result
	if !result.Blocked {
		return
	}

	if r.strict && answer.Status != model.StatusRefusal {
		answer.Status = model.StatusRefusal
		answer.Caveat = "This answer was withheld because it referenced facts or authorities not present in the retrieved sources. Please consult a licensed California attorney for guidance on this question."
		answer.Text = ""
		return
	}

	if answer.Text == "" {
		return
	}
	var b strings.Builder
	b.WriteString(answer.Text)
	b.WriteString("\n\nWarning: this answer did not pass all verification checks:")
	for _, e := range result.Errors {
		b.WriteString("\n- ")
		b.WriteString(e)
	}
	answer.Text = b.String()
}
