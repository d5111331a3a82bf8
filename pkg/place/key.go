package place

import (
	"strings"
	"unicode"
)

// DefaultKeyAddressPrefix is how many runes of the normalized address
// take part in the canonical key. The prefix keeps minor address-suffix
// differences ("2층", building wings) from splitting one place into two
// entities, at the cost of occasional collisions between close neighbors.
// Collisions are tolerated, not prevented.
const DefaultKeyAddressPrefix = 10

// CanonicalKey derives the grouping key for a candidate from its name and
// address. The key is a heuristic for "same real-world place", not an
// identity guarantee.
func CanonicalKey(name, address string, addressPrefix int) string {
	if addressPrefix <= 0 {
		addressPrefix = DefaultKeyAddressPrefix
	}

	addr := []rune(normalizeKeyPart(address))
	if len(addr) > addressPrefix {
		addr = addr[:addressPrefix]
	}

	return normalizeKeyPart(name) + "_" + string(addr)
}

// normalizeKeyPart lowercases and strips everything that is not a letter
// or digit. Letters include non-Latin scripts, so Hangul place names
// survive normalization.
func normalizeKeyPart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
