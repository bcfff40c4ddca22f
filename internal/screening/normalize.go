package screening

import (
	"strings"
	"unicode"
)

// Normalize standardises the identity fields of a candidate in place so
// that matching across runs (by email) and display are consistent. This is
// cleanup for matching, not format validation.
func Normalize(c *Candidate) {
	c.FirstName = titleCase(strings.TrimSpace(c.FirstName))
	c.LastName = titleCase(strings.TrimSpace(c.LastName))
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = normalizePhone(c.Phone)
}

// NormalizeEmail is the matching key used everywhere a record is looked up
// across sheets: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizePhone strips everything but digits, then drops a leading Indian
// country code or zero so stored numbers compare equal regardless of how
// the form rendered them:
//
//	+919876543210 -> 9876543210
//	919876543210  -> 9876543210
//	09876543210   -> 9876543210
func normalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	p := b.String()
	switch {
	case len(p) == 13 && strings.HasPrefix(p, "091"):
		return p[3:]
	case len(p) == 12 && strings.HasPrefix(p, "91"):
		return p[2:]
	case len(p) == 11 && strings.HasPrefix(p, "0"):
		return p[1:]
	}
	return p
}

// titleCase upper-cases the first letter of each space-separated word and
// lower-cases the rest, mirroring how the intake sheet stored names.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
