package claims

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jbarrena/calverify/internal/model"
)

// indicator pairs a name with a compiled claim-indicator pattern. A sentence
// becomes a claim iff at least one indicator matches.
type indicator struct {
	name    string
	pattern *regexp.Regexp
}

var indicators = []indicator{
	{"modal", regexp.MustCompile(`(?i)\b(must|shall|required|requires|mandates|prohibits|prohibited)\b`)},
	{"deadline", regexp.MustCompile(`(?i)\b(within\s+\d+|\d+\s+(?:calendar\s+|court\s+)?(?:days?|years?|months?))\b`)},
	{"code", regexp.MustCompile(`(?i)(§|\bsection\s+\d|\b(?:family|penal|civil|probate|vehicle|evidence|labor|government|corporations|insurance|education|welfare)\s+code\b|\bcode\s+of\s+civil\s+procedure\b)`)},
	{"adjudicative", regexp.MustCompile(`(?i)\b(held|ruled|decided|found|affirmed|reversed|overruled)\b`)},
	{"attribution", regexp.MustCompile(`(?i)\b(under\s+california\s+law|pursuant\s+to|according\s+to\s+the\s+(?:statute|code|court))\b`)},
	{"definitional", regexp.MustCompile(`(?i)\b(is\s+defined\s+as|means|includes|excludes)\b`)},
	{"penalty", regexp.MustCompile(`(?i)\b(penalty|penalties|fine[sd]?|imprisonment|damages|restitution)\b`)},
	{"proof", regexp.MustCompile(`(?i)\b(preponderance\s+of\s+the\s+evidence|clear\s+and\s+convincing|beyond\s+a\s+reasonable\s+doubt|burden\s+of\s+proof)\b`)},
	{"citation-marker", regexp.MustCompile(`\[\d+\]|\[id:[^\]]+\]`)},
}

var (
	casePattern   = regexp.MustCompile(`(?i)\b(held|ruled|decided|affirmed|reversed)\b|\bv\.\s|\bIn\s+re\s`)
	codePattern   = regexp.MustCompile(`(?i)§|\bsection\s+\d|\bcode\b`)
	citeMarker    = regexp.MustCompile(`\[(\d+)\]`)
	claimDedupLen = 80
)

// legalAbbrevs are abbreviations protected from being treated as sentence
// boundaries, longest-first so "Cal.App." is shielded before "Cal.".
var legalAbbrevs = []string{
	"Cal.App.4th", "Cal.App.3d", "Cal.App.2d", "Cal.Rptr.3d", "Cal.Rptr.2d",
	"Cal.Rptr.", "Cal.App.", "Cal.4th", "Cal.3d", "Cal.2d", "Cal.5th",
	"F.Supp.", "S.Ct.", "L.Ed.", "U.S.", "Cal.", "App.", "Civ.", "Proc.",
	"Pen.", "Fam.", "Prob.", "Evid.", "Gov.", "Corp.", "Sec.", "Stat.",
	"Rptr.", "Supp.", "Dept.", "Inc.", "No.", "Nos.", "v.", "vs.",
	"etc.", "e.g.", "i.e.",
}

// Extractor splits an answer into sentences and flags the subset that
// constitute checkable legal claims.
type Extractor struct{}

// NewExtractor creates a claim extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the checkable claims in answerText. Each claim records
// any inline citation markers found in it and a coarse kind classification.
// Duplicate claims (by normalized leading substring) are suppressed.
func (e *Extractor) Extract(answerText string, sources []model.Source) []model.Claim {
	sentences := SplitSentences(answerText)

	var out []model.Claim
	seen := make(map[string]bool)

	for i, sentence := range sentences {
		name, ok := matchIndicator(sentence)
		if !ok {
			continue
		}

		key := dedupKey(sentence)
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, model.Claim{
			Text:      strings.TrimSpace(sentence),
			Cites:     inlineCites(sentence, len(sources)),
			Kind:      classify(sentence),
			Heuristic: name,
			Sentence:  i,
		})
	}

	return out
}

// SplitSentences splits text into sentences, protecting legal abbreviations
// by placeholder substitution and restoring them afterwards.
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	// Shield abbreviations: swap their trailing periods for a placeholder
	// rune that cannot appear in normal prose.
	const shield = "\x01"
	for i, abbrev := range legalAbbrevs {
		marker := shield + strconv.Itoa(i) + shield
		text = strings.ReplaceAll(text, abbrev, strings.ReplaceAll(abbrev, ".", marker))
	}

	var sentences []string
	var current strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			atEnd := i+1 >= len(runes)
			if atEnd || runes[i+1] == ' ' || runes[i+1] == '\t' {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	// Restore shielded abbreviations.
	for i := range sentences {
		for j, abbrev := range legalAbbrevs {
			marker := shield + strconv.Itoa(j) + shield
			sentences[i] = strings.ReplaceAll(sentences[i], strings.ReplaceAll(abbrev, ".", marker), abbrev)
		}
	}

	return sentences
}

func matchIndicator(sentence string) (string, bool) {
	for _, ind := range indicators {
		if ind.pattern.MatchString(sentence) {
			return ind.name, true
		}
	}
	return "", false
}

// classify assigns the coarse claim kind: statute when a code/section
// pattern is present, case when adjudicative or party-v-party language is
// present, else fact.
func classify(sentence string) model.ClaimKind {
	if codePattern.MatchString(sentence) {
		return model.ClaimKindStatute
	}
	if casePattern.MatchString(sentence) {
		return model.ClaimKindCase
	}
	return model.ClaimKindFact
}

// inlineCites returns the 1-based source IDs referenced by [n] markers,
// dropping markers that index past the known source list.
func inlineCites(sentence string, sourceCount int) []int {
	var cites []int
	seen := make(map[int]bool)
	for _, m := range citeMarker.FindAllStringSubmatch(sentence, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || (sourceCount > 0 && n > sourceCount) {
			continue
		}
		if !seen[n] {
			seen[n] = true
			cites = append(cites, n)
		}
	}
	return cites
}

func dedupKey(sentence string) string {
	key := strings.ToLower(strings.TrimSpace(sentence))
	if len(key) > claimDedupLen {
		key = key[:claimDedupLen]
	}
	return key
}
