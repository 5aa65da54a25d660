package guard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jbarrena/calverify/internal/cite"
	"github.com/jbarrena/calverify/internal/model"
)

var (
	dollarPattern = regexp.MustCompile(`\$\d[\d,]*(?:\.\d{1,2})?`)
	periodPattern = regexp.MustCompile(`(?i)\b\d+\s+(?:calendar\s+|court\s+)?(?:days?|years?|months?)\b`)
)

// CheckEntities verifies that every case name, statute citation, dollar
// amount, and time period appearing in the answer also appears in the
// concatenated source excerpts. Absence is an error for case names,
// statutes, and dollar amounts; a warning for time periods, which survive
// natural paraphrase with weaker precision.
func CheckEntities(answerText string, sources []model.Source) model.GuardrailResult {
	result := model.GuardrailResult{Passed: true}

	var corpus strings.Builder
	for _, src := range sources {
		corpus.WriteString(strings.ToLower(src.Title))
		corpus.WriteString("\n")
		corpus.WriteString(strings.ToLower(src.Excerpt))
		corpus.WriteString("\n")
	}
	haystack := corpus.String()

	for _, c := range cite.Extract(answerText) {
		switch c.Kind {
		case cite.KindCase:
			if !strings.Contains(haystack, strings.ToLower(c.CaseName)) {
				result.Errors = append(result.Errors,
					fmt.Sprintf("case %q does not appear in any source", c.CaseName))
			}
		case cite.KindCode:
			if !statuteInCorpus(c, haystack) {
				result.Errors = append(result.Errors,
					fmt.Sprintf("statute %q does not appear in any source", c.Raw))
			}
		}
	}

	for _, amount := range dedupe(dollarPattern.FindAllString(answerText, -1)) {
		if !strings.Contains(haystack, strings.ToLower(amount)) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("dollar amount %s does not appear in any source", amount))
		}
	}

	for _, period := range dedupe(periodPattern.FindAllString(answerText, -1)) {
		if !strings.Contains(haystack, strings.ToLower(period)) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("time period %q not found verbatim in sources", period))
		}
	}

	if len(result.Errors) > 0 {
		result.Passed = false
		result.Blocked = true
	}
	return result
}

// statuteInCorpus allows a partial match on code+section: the section number
// must appear, and either the code name or its lawCode identifier must
// appear somewhere in the corpus.
func statuteInCorpus(c cite.Citation, haystack string) bool {
	if c.Section == "" {
		return strings.Contains(haystack, strings.ToLower(c.Raw))
	}
	if !strings.Contains(haystack, c.Section) {
		return false
	}
	if c.LawCode != "" && strings.Contains(haystack, strings.ToLower(c.LawCode)) {
		return true
	}
	// Any significant word of the matched code name counts ("family",
	// "penal", "civil"...).
	for _, word := range strings.Fields(strings.ToLower(c.Raw)) {
		if len(word) > 3 && word != "code" && strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

func dedupe(items []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		key := strings.ToLower(item)
		if !seen[key] {
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}
