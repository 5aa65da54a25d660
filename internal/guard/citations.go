package guard

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/jbarrena/calverify/internal/model"
)

var (
	indexMarker = regexp.MustCompile(`\[(\d+)\]`)
	idMarker    = regexp.MustCompile(`\[id:(\w+)\]`)
)

// CheckCitationMarkers validates inline source references in the answer.
// A "[n]" marker must point at a 1-based position in the source list; an
// "[id:x]" marker must name an assigned source ID. A marker pointing
// nowhere is an error.
func CheckCitationMarkers(answerText string, sources []model.Source) model.GuardrailResult {
	result := model.GuardrailResult{Passed: true}

	for _, m := range indexMarker.FindAllStringSubmatch(answerText, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(sources) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("citation marker %s does not match any of the %d sources", m[0], len(sources)))
		}
	}

	known := make(map[string]bool, len(sources))
	for _, src := range sources {
		known[strconv.Itoa(src.ID)] = true
	}
	for _, m := range idMarker.FindAllStringSubmatch(answerText, -1) {
		if !known[m[1]] {
			result.Errors = append(result.Errors,
				fmt.Sprintf("citation marker %s names an unknown source id", m[0]))
		}
	}

	if len(result.Errors) > 0 {
		result.Passed = false
		result.Blocked = true
	}
	return result
}
