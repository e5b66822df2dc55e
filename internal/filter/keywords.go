package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-jobsearch-rpa/internal/models"
)

// normalizeText lowercases str and strips diacritics, so "Señor" and
// "senor" compare equal. Used for record identity only.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		result = str
	}
	return strings.ToLower(result)
}

// Keywords is a compiled keyword set. A record whose title or description
// contains any keyword is rejected. Blank keywords are dropped.
type Keywords struct {
	terms []string
}

// NewKeywords lowercases terms once for repeated matching. Matching is a
// plain case-insensitive substring test; accents must match exactly.
func NewKeywords(terms []string) Keywords {
	k := Keywords{terms: make([]string, 0, len(terms))}
	for _, t := range terms {
		t = strings.TrimSpace(strings.ToLower(t))
		if t != "" {
			k.terms = append(k.terms, t)
		}
	}
	return k
}

// Len is the number of usable keywords.
func (k Keywords) Len() int { return len(k.terms) }

// Match returns the first keyword found in the record, if any.
func (k Keywords) Match(rec models.JobRecord) (string, bool) {
	if len(k.terms) == 0 {
		return "", false
	}
	text := strings.ToLower(rec.Title + " " + rec.Description)
	for _, t := range k.terms {
		if strings.Contains(text, t) {
			return t, true
		}
	}
	return "", false
}

// Rejects reports whether rec matches a keyword and must be skipped.
func (k Keywords) Rejects(rec models.JobRecord) bool {
	_, hit := k.Match(rec)
	return hit
}

// Key is the identity used to spot a listing seen on an earlier run.
func Key(rec models.JobRecord) string {
	parts := []string{rec.Title, rec.Company, rec.Location}
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(normalizeText(p)), " ")
	}
	return strings.Join(parts, "|")
}
