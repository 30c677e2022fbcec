package utils

import "strings"

// NormalizeText lowercases the input and folds Arabic letter variants to
// canonical forms: hamza-bearing alef variants become bare alef,
// alef-maksura becomes ya, ta-marbuta becomes ha. Combining diacritic
// marks (tashkeel) are stripped. Deterministic, no locale state.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 'أ', 'إ', 'آ', 'ٱ':
			b.WriteRune('ا')
		case 'ى':
			b.WriteRune('ي')
		case 'ة':
			b.WriteRune('ه')
		default:
			if isArabicDiacritic(r) {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tashkeel and related combining marks.
func isArabicDiacritic(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || r == 0x0670
}

// Levenshtein computes the edit distance between two rune slices.
func Levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// FuzzyContains reports whether keyword occurs in text, either as a
// literal substring or approximately. The approximate scan slides windows
// of length k-1, k and k+1 over the text and accepts any window within
// edit distance min(2, floor(k*0.3)+1) of the keyword. Both arguments are
// expected to be normalized already.
func FuzzyContains(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	if strings.Contains(text, keyword) {
		return true
	}

	kw := []rune(keyword)
	t := []rune(text)
	k := len(kw)

	tolerance := k*3/10 + 1
	if tolerance > 2 {
		tolerance = 2
	}

	for _, w := range []int{k - 1, k, k + 1} {
		if w <= 0 || w > len(t) {
			continue
		}
		for i := 0; i+w <= len(t); i++ {
			if Levenshtein(t[i:i+w], kw) <= tolerance {
				return true
			}
		}
	}
	return false
}
