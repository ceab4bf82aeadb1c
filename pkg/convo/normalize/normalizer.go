package normalize

import (
	"math"
	"strings"
	"unicode"

	"agent-sim-be/pkg/catalog"
)

// categoryKeywords maps common synonyms onto canonical category keys.
// Checked after the exact pass and before the substring pass.
var categoryKeywords = map[string]string{
	"fintech":     "finance",
	"banking":     "finance",
	"bank":        "finance",
	"payments":    "finance",
	"payment":     "finance",
	"investing":   "finance",
	"insurance":   "finance",
	"medical":     "health",
	"healthcare":  "health",
	"wellness":    "health",
	"fitness":     "health",
	"clinic":      "health",
	"edtech":      "education",
	"learning":    "education",
	"school":      "education",
	"tutoring":    "education",
	"courses":     "education",
	"shop":        "ecommerce",
	"store":       "ecommerce",
	"retail":      "ecommerce",
	"marketplace": "ecommerce",
	"restaurant":  "food",
	"cafe":        "food",
	"catering":    "food",
	"grocery":     "food",
	"delivery":    "transport",
	"logistics":   "transport",
	"shipping":    "transport",
	"mobility":    "transport",
	"gaming":      "entertainment",
	"games":       "entertainment",
	"streaming":   "entertainment",
	"media":       "entertainment",
	"property":    "realestate",
	"housing":     "realestate",
	"rental":      "realestate",
	"tourism":     "travel",
	"hotel":       "travel",
	"booking":     "travel",
	"saas":        "technology",
	"software":    "technology",
	"devtools":    "technology",
}

var maturityKeywords = map[string]string{
	"idea":     catalog.MaturityConcept,
	"thought":  catalog.MaturityConcept,
	"poc":      catalog.MaturityPrototype,
	"demo":     catalog.MaturityPrototype,
	"beta":     catalog.MaturityMVP,
	"pilot":    catalog.MaturityMVP,
	"live":     catalog.MaturityLaunched,
	"released": catalog.MaturityLaunched,
	"market":   catalog.MaturityLaunched,
}

// Canonicalize lower-cases the input and strips everything that is not a
// letter or digit. Substring matching happens in this space so that
// "E-Commerce!" and "ecommerce" compare equal.
func Canonicalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Category maps free text onto a canonical category key.
// Rule order is fixed: exact (case-insensitive) -> keyword table ->
// canonicalized substring containment in both directions. First match wins;
// unmatched input returns ("", false), never a guessed default.
func Category(raw string) (string, bool) {
	return match(raw, catalog.Categories(), categoryKeywords)
}

// Maturity maps free text onto one of the idea maturity levels.
func Maturity(raw string) (string, bool) {
	return match(raw, catalog.Maturities(), maturityKeywords)
}

// OptionList maps a list of free-text values onto canonical keys from the
// given catalog. Duplicates are removed; unmatched values are dropped.
// Order of the result is not guaranteed to be meaningful.
func OptionList(raw []string, entries []catalog.Entry) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, v := range raw {
		key, ok := match(v, entries, nil)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

// Risk normalizes a risk appetite value to an integer in 0..100.
// Values <= 1 are treated as a 0..1 fraction and scaled by 100; anything
// else is treated as already being on the 0..100 scale. The <=1 guess is a
// known ambiguity (a literal "1" always means 100, never 1%) and is kept
// deliberately; see the package tests pinning the boundary.
func Risk(raw float64) int {
	if raw <= 1 {
		raw = raw * 100
	}
	v := int(math.Round(raw))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func match(raw string, entries []catalog.Entry, keywords map[string]string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	// (a) exact, case-insensitive, against keys and localized labels
	lower := strings.ToLower(trimmed)
	for _, e := range entries {
		if lower == e.Key {
			return e.Key, true
		}
		for _, label := range e.Label {
			if lower == strings.ToLower(label) {
				return e.Key, true
			}
		}
	}

	// (b) keyword table, token by token in input order
	for _, tok := range tokens(trimmed) {
		if target, ok := keywords[tok]; ok {
			if _, found := catalog.Find(entries, target); found {
				return target, true
			}
		}
	}

	// (c) canonicalized substring containment, both directions
	canon := Canonicalize(trimmed)
	if canon == "" {
		return "", false
	}
	for _, e := range entries {
		candidates := []string{e.Key}
		for _, label := range e.Label {
			candidates = append(candidates, label)
		}
		for _, c := range candidates {
			cc := Canonicalize(c)
			if cc == "" {
				continue
			}
			if strings.Contains(canon, cc) || strings.Contains(cc, canon) {
				return e.Key, true
			}
		}
	}

	return "", false
}
