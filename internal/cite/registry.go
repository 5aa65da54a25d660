package cite

import (
	"regexp"
	"sort"
	"strings"
)

// codeEntry maps the spoken/written names of a California code to the
// lawCode identifier used by the legislature's public site.
type codeEntry struct {
	LawCode string
	Names   []string
}

// codeRegistry is the fixed code→identifier table. Resolution for code
// citations is deterministic URL construction from this table; no network
// call is involved.
var codeRegistry = []codeEntry{
	{"FAM", []string{"family code", "fam. code", "fam code"}},
	{"PEN", []string{"penal code", "pen. code", "pen code"}},
	{"CIV", []string{"civil code", "civ. code", "civ code"}},
	{"CCP", []string{"code of civil procedure", "code civ. proc.", "civ. proc. code", "ccp"}},
	{"PROB", []string{"probate code", "prob. code", "prob code"}},
	{"VEH", []string{"vehicle code", "veh. code", "veh code"}},
	{"EVID", []string{"evidence code", "evid. code", "evid code"}},
	{"LAB", []string{"labor code", "lab. code", "lab code"}},
	{"GOV", []string{"government code", "gov. code", "gov code", "govt. code"}},
	{"CORP", []string{"corporations code", "corp. code", "corp code"}},
	{"BPC", []string{"business and professions code", "bus. & prof. code", "b&p code"}},
	{"WIC", []string{"welfare and institutions code", "welf. & inst. code"}},
	{"HSC", []string{"health and safety code", "health & safety code", "h&s code"}},
	{"INS", []string{"insurance code", "ins. code"}},
	{"EDC", []string{"education code", "ed. code", "educ. code"}},
	{"UIC", []string{"unemployment insurance code", "unemp. ins. code"}},
	{"RTC", []string{"revenue and taxation code", "rev. & tax. code"}},
	{"FGC", []string{"fish and game code", "fish & game code"}},
}

// californiaReporters are reporter abbreviations for California decisions.
var californiaReporters = []string{
	"Cal.5th", "Cal.4th", "Cal.3d", "Cal.2d", "Cal.",
	"Cal.App.5th", "Cal.App.4th", "Cal.App.3d", "Cal.App.2d", "Cal.App.",
	"Cal.Rptr.3d", "Cal.Rptr.2d", "Cal.Rptr.",
	"P.3d", "P.2d", "P.",
}

// federalReporters are reporter abbreviations that signal non-California
// authority (federal reporters, U.S. Reports, Supreme Court Reporter).
var federalReporters = []string{
	"U.S.", "S.Ct.", "S. Ct.", "L.Ed.2d", "L.Ed.", "L. Ed.",
	"F.4th", "F.3d", "F.2d", "F.Supp.3d", "F.Supp.2d", "F.Supp.", "F. Supp.",
}

// LawCodeFor returns the lawCode identifier for a matched code name, or ""
// when the name is not in the registry.
func LawCodeFor(name string) string {
	normalized := normalizeCodeName(name)
	for _, entry := range codeRegistry {
		for _, n := range entry.Names {
			if normalizeCodeName(n) == normalized {
				return entry.LawCode
			}
		}
	}
	return ""
}

// normalizeCodeName collapses whitespace and periods so "Fam. Code" and
// "fam code" compare equal.
func normalizeCodeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, ".", "")
	return strings.Join(strings.Fields(name), " ")
}

// codeNamesAlternation builds the regex alternation of every registered code
// name plus bare lawCode abbreviations, longest-first so greedy matching
// prefers the most specific name.
func codeNamesAlternation() string {
	var names []string
	for _, entry := range codeRegistry {
		names = append(names, entry.Names...)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	escaped := make([]string, 0, len(names))
	for _, n := range names {
		e := regexp.QuoteMeta(n)
		// Let whitespace in names match any run of spaces.
		e = strings.ReplaceAll(e, " ", `\s+`)
		escaped = append(escaped, e)
	}
	return strings.Join(escaped, "|")
}

// reporterAlternation builds the regex alternation of all known reporters.
func reporterAlternation() string {
	all := make([]string, 0, len(californiaReporters)+len(federalReporters))
	all = append(all, californiaReporters...)
	all = append(all, federalReporters...)
	sort.Slice(all, func(i, j int) bool { return len(all[i]) > len(all[j]) })

	escaped := make([]string, 0, len(all))
	for _, r := range all {
		e := regexp.QuoteMeta(r)
		e = strings.ReplaceAll(e, `\ `, `\s?`)
		escaped = append(escaped, e)
	}
	return strings.Join(escaped, "|")
}

// IsFederalReporter reports whether a reporter abbreviation is a federal or
// U.S. Supreme Court reporter.
func IsFederalReporter(reporter string) bool {
	r := strings.Join(strings.Fields(reporter), " ")
	for _, f := range federalReporters {
		if strings.EqualFold(r, f) || strings.EqualFold(strings.ReplaceAll(r, " ", ""), strings.ReplaceAll(f, " ", "")) {
			return true
		}
	}
	return false
}
