package utils

import "strings"

const (
	countryCode = "20"
	trunkPrefix = "01"
	minDigits   = 10
)

// NormalizeNumber canonicalizes a raw recipient number. All non-digit
// characters are stripped; an 11-digit local number starting with the
// trunk prefix is rewritten to international form (leading 0 replaced by
// the country code). Numbers shorter than 10 digits are rejected.
// The function is idempotent: a normalized number normalizes to itself.
func NormalizeNumber(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) == 11 && strings.HasPrefix(digits, trunkPrefix) {
		digits = countryCode + digits[1:]
	}
	if len(digits) < minDigits {
		return "", false
	}
	return digits, true
}

// NormalizeNumbers normalizes a batch of raw numbers, dropping invalid
// entries and deduplicating by the normalized form, preserving the
// first-seen order.
func NormalizeNumbers(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		n, ok := NormalizeNumber(r)
		if !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
