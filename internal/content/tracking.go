package content

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"lamah/internal/models"
)

const (
	// store ids are at least this long; anything shorter is treated as absent
	minStoreIDLength  = 10
	contentHashLength = 32
)

// GenerateTrackingID derives the lazy-loading id of a question within a
// category. Once the question has a store id the id form is used; before
// that a digest of the normalized text and answer stands in.
func GenerateTrackingID(q *models.Question, categoryID string) string {
	if len(q.ID) >= minStoreIDLength {
		return Sanitize(categoryID + "-" + q.ID)
	}
	return Sanitize(categoryID) + "-h" + ContentHash(q.Text, q.Answer)
}

func ContentHash(text, answer string) string {
	sum := sha256.Sum256([]byte(Normalize(text) + "\x00" + Normalize(answer)))
	return hex.EncodeToString(sum[:])[:contentHashLength]
}

// Normalize folds a string for hashing: NFC, single spaces, lower case.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Sanitize keeps ascii letters and digits, arabic letters and digits, '-'
// and '_'. Every other rune becomes '_'.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '-' || r == '_' || isIDRune(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}

func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case unicode.Is(unicode.Arabic, r):
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	default:
		return false
	}
}
