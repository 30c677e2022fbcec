package utils

import (
	"fmt"
	"math/rand"
	"strings"
)

const idPlaceholder = "{{id}}"

// ApplyTemplate replaces every occurrence of the {{id}} placeholder with
// an independently drawn random 6-digit number. Each occurrence gets its
// own draw. Empty input passes through unchanged.
func ApplyTemplate(text string) string {
	if text == "" || !strings.Contains(text, idPlaceholder) {
		return text
	}

	var b strings.Builder
	for {
		i := strings.Index(text, idPlaceholder)
		if i < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:i])
		b.WriteString(fmt.Sprintf("%06d", 100000+rand.Intn(900000)))
		text = text[i+len(idPlaceholder):]
	}
	return b.String()
}
