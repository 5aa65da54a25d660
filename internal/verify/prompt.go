package verify

import (
	"fmt"
	"strings"

	"github.com/jbarrena/calverify/internal/model"
)

const systemInstruction = `You are a meticulous legal fact-checker. You verify draft answers about California law strictly against the supplied sources. You never invent support: a claim without a verbatim supporting quote in the sources is unsupported. Respond only with the requested JSON object.`

// buildPrompt constructs the verification instruction. The model must locate
// 1-2 verbatim quotes per claim, classify each claim, flag ambiguity when
// sources conflict, and propose either the original answer (full coverage)
// or a rewrite with unsupported material removed (partial coverage),
// preserving existing citation markers.
func buildPrompt(answerText string, claimList []model.Claim, sources []model.Source) string {
	var b strings.Builder

	b.WriteString("Verify the following draft answer against the numbered sources.\n\n")

	b.WriteString("SOURCES:\n")
	for _, src := range sources {
		b.WriteString(fmt.Sprintf("[%d] %s\n", src.ID, src.Title))
		if src.Excerpt != "" {
			b.WriteString(src.Excerpt)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("CLAIMS TO CHECK:\n")
	for i, c := range claimList {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, c.Text))
	}

	b.WriteString("\nDRAFT ANSWER:\n")
	b.WriteString(answerText)

	b.WriteString(`

For each claim, find 1-2 verbatim supporting quotes from the sources and classify it "supported" or "unsupported". Set "ambiguity" true if sources conflict with each other on any claim. Compute "coverage" as supported/total.

Return exactly this JSON object:
{
  "coverage": <0..1>,
  "min_support": <minimum quote count across supported claims>,
  "ambiguity": <bool>,
  "supported_claims": ["<claim text>", ...],
  "unsupported_claims": ["<claim text>", ...],
  "verified_quotes": [{"claim": "<claim text>", "quotes": ["<verbatim quote>"], "source_id": <n>}, ...],
  "verified_answer": "<the answer to show>"
}

If every claim is supported, "verified_answer" must be the draft answer unchanged. Otherwise rewrite it with unsupported material removed, preserving the existing [n] citation markers of what remains.`)

	return b.String()
}
