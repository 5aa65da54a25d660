package cite

import (
	"fmt"
	"regexp"
	"strings"
)

// CitationKind distinguishes statutory from case citations.
type CitationKind string

const (
	KindCode CitationKind = "code"
	KindCase CitationKind = "case"
)

// Citation is one extracted legal citation.
type Citation struct {
	Raw  string
	Kind CitationKind

	// Code citations
	LawCode string
	Section string
	Subpart string

	// Case citations
	CaseName string
	Volume   string
	Reporter string
	Page     string
	Year     string
}

// Key is the deduplication key: citation text, case-insensitive,
// whitespace-collapsed.
func (c Citation) Key() string {
	return strings.Join(strings.Fields(strings.ToLower(c.Raw)), " ")
}

var (
	// Canonical code-citation pattern: optional jurisdiction prefix, a code
	// name or known abbreviation, an optional section marker, a numeric
	// section with optional one decimal sub-section, and an optional
	// parenthesized sub-part.
	codePattern = regexp.MustCompile(
		`(?i)\b(?:cal(?:ifornia)?\.?\s+)?(` + codeNamesAlternation() + `)\s*` +
			`(?:§§?|sections?|sec\.?)?\s*` +
			`(\d+(?:\.\d+)?)` +
			`(?:\s*\(([A-Za-z0-9]{1,3})\))?`)

	reporterTail = `(?:,?\s*(\d+)\s+(` + reporterAlternation() + `)\s*(\d+))?(?:\s*\((\d{4})\))?`

	// "Party v. Party" case names.
	partyPattern = regexp.MustCompile(
		`\b([A-Z][A-Za-z'&.\-]+(?:\s+[A-Z][A-Za-z'&.\-]+){0,4})\s+v\.?\s+` +
			`([A-Z][A-Za-z'&.\-]+(?:\s+[A-Z][A-Za-z'&.\-]+){0,4})` + reporterTail)

	// "Estate/Matter/Marriage/Conservatorship/Guardianship of X".
	ofPattern = regexp.MustCompile(
		`\b((?:Estate|Matter|Marriage|Conservatorship|Guardianship)\s+of\s+` +
			`[A-Z][A-Za-z'&.\-]+(?:\s+(?:and\s+)?[A-Z][A-Za-z'&.\-]+){0,3})` + reporterTail)

	// "In re X", including the "In re Marriage of X" family-law form.
	inRePattern = regexp.MustCompile(
		`\bIn\s+re\s+((?:(?:Estate|Matter|Marriage|Conservatorship|Guardianship)\s+of\s+)?` +
			`[A-Z][A-Za-z'&.\-]+(?:\s+[A-Z][A-Za-z'&.\-]+){0,3})` + reporterTail)
)

// Extract scans free text for statutory and case-law citation patterns.
// A citation seen once is not re-emitted: feeding the same citation text
// twice into one extraction call yields one citation.
func Extract(text string) []Citation {
	var citations []Citation
	seen := make(map[string]bool)

	add := func(c Citation) {
		key := c.Key()
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		citations = append(citations, c)
	}

	// Pass 1: code citations.
	for _, m := range codePattern.FindAllStringSubmatch(text, -1) {
		lawCode := LawCodeFor(m[1])
		if lawCode == "" {
			continue
		}
		add(Citation{
			Raw:     strings.TrimSpace(m[0]),
			Kind:    KindCode,
			LawCode: lawCode,
			Section: m[2],
			Subpart: strings.ToLower(m[3]),
		})
	}

	// Pass 2: case citations.
	for _, m := range partyPattern.FindAllStringSubmatch(text, -1) {
		// "Party v. Party" is also how statutes are cited in running prose
		// ("People v. Smith" yes, "Code v. Statute" no); require capitalized
		// names, which the pattern already does.
		add(caseCitation(m[0], fmt.Sprintf("%s v. %s", m[1], m[2]), m[3], m[4], m[5], m[6]))
	}
	for _, m := range inRePattern.FindAllStringSubmatch(text, -1) {
		add(caseCitation(m[0], "In re "+m[1], m[2], m[3], m[4], m[5]))
	}
	for _, idx := range ofPattern.FindAllStringSubmatchIndex(text, -1) {
		// Skip matches already swallowed by an "In re" citation.
		if prefixedByInRe(text, idx[0]) {
			continue
		}
		m := submatches(text, idx, 5)
		add(caseCitation(m[0], m[1], m[2], m[3], m[4], m[5]))
	}

	return citations
}

// prefixedByInRe reports whether the text immediately before pos ends with
// an "In re" marker.
func prefixedByInRe(text string, pos int) bool {
	prefix := text[:pos]
	prefix = strings.TrimRight(prefix, " \t")
	return strings.HasSuffix(strings.ToLower(prefix), "in re")
}

// submatches materializes n+1 submatch strings (whole match plus n groups)
// from a FindAllStringSubmatchIndex entry.
func submatches(text string, idx []int, n int) []string {
	out := make([]string, n+1)
	for i := 0; i <= n; i++ {
		start, end := idx[2*i], idx[2*i+1]
		if start >= 0 && end >= 0 {
			out[i] = text[start:end]
		}
	}
	return out
}

func caseCitation(raw, name, volume, reporter, page, year string) Citation {
	return Citation{
		Raw:      strings.TrimSpace(raw),
		Kind:     KindCase,
		CaseName: strings.TrimSpace(name),
		Volume:   volume,
		Reporter: strings.TrimSpace(reporter),
		Page:     page,
		Year:     year,
	}
}
