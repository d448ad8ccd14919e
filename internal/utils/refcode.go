package utils

import "strings"

// maxGroupCodeLen caps how much of a group name feeds the reference base.
const maxGroupCodeLen = 5

// PersonInitials extracts initials from a person's display name. A name in
// "Surname, Given[, Middle]" form yields the first letter of each segment in
// order; otherwise the first letters of the first and last whitespace-separated
// words are used (a single-word name yields a single letter).
func PersonInitials(name string) string {
	var b strings.Builder

	if strings.Contains(name, ",") {
		for _, seg := range strings.Split(name, ",") {
			seg = strings.TrimSpace(seg)
			if seg != "" {
				b.WriteString(firstChar(seg))
			}
		}
	} else {
		words := strings.Fields(name)
		switch len(words) {
		case 0:
		case 1:
			b.WriteString(firstChar(words[0]))
		default:
			b.WriteString(firstChar(words[0]))
			b.WriteString(firstChar(words[len(words)-1]))
		}
	}

	return strings.ToUpper(b.String())
}

// GroupCode takes the leading characters of a group name, whitespace removed,
// capped at five. Shorter names are used as-is, no padding.
func GroupCode(name string) string {
	compact := strings.Join(strings.Fields(name), "")
	runes := []rune(compact)
	if len(runes) > maxGroupCodeLen {
		runes = runes[:maxGroupCodeLen]
	}
	return strings.ToUpper(string(runes))
}

// ReferenceBase builds the base reference code for an entry from its borrower
// and lender labels. Collision suffixes are the caller's concern.
func ReferenceBase(borrowerLabel string, borrowerIsGroup bool, lenderLabel string) string {
	if borrowerIsGroup {
		return GroupCode(borrowerLabel) + PersonInitials(lenderLabel)
	}
	return PersonInitials(borrowerLabel) + PersonInitials(lenderLabel)
}

// firstChar returns the first rune of s as a string, not the first byte, so
// non-ASCII names keep their full leading character.
func firstChar(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
