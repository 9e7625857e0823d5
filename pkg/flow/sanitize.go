package flow

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/lantern/pkg/domain"
)

// sanitizeWish rejects invalid UTF-8, strips control characters and trims
// surrounding whitespace. Tabs and line breaks inside the text are kept.
func sanitizeWish(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", domain.ErrInvalidWishText
	}

	clean := true
	for _, r := range text {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return strings.TrimSpace(text), nil
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
