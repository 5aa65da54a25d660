package guard

import (
	"fmt"
	"regexp"

	"github.com/jbarrena/calverify/internal/cite"
	"github.com/jbarrena/calverify/internal/model"
)

// federalAsk recognizes questions that explicitly reach beyond California
// law, in which case federal authority is fair game.
var federalAsk = regexp.MustCompile(
	`(?i)\b(federal|u\.s\.c|united states|supreme court of the united states|ninth circuit|circuit court|another state|out[- ]of[- ]state)\b`)

// CheckJurisdiction flags case citations to federal reporters when the
// question never asked about federal law. California-scoped answers citing
// F.2d or U.S. reporters usually signal model confusion rather than genuine
// cross-jurisdiction analysis.
func CheckJurisdiction(question, answerText string) model.GuardrailResult {
	result := model.GuardrailResult{Passed: true}

	if federalAsk.MatchString(question) {
		return result
	}

	for _, c := range cite.Extract(answerText) {
		if c.Kind != cite.KindCase || c.Reporter == "" {
			continue
		}
		if cite.IsFederalReporter(c.Reporter) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("answer cites federal authority %q but the question is about California law", c.Raw))
		}
	}

	if len(result.Errors) > 0 {
		result.Passed = false
		result.Blocked = true
	}
	return result
}
