package content

import (
	"strings"
	"unicode"
)

const maxCategoryIDLength = 50

// CategoryIDFromName derives the id a category created by an import gets.
func CategoryIDFromName(name string) string {
	var b strings.Builder
	count := 0
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if count >= maxCategoryIDLength {
			break
		}
		switch {
		case unicode.IsSpace(r) || r == '_':
			if lastUnderscore {
				continue
			}
			b.WriteRune('_')
			lastUnderscore = true
		case isIDRune(r):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			continue
		}
		count++
	}

	id := strings.Trim(b.String(), "_")
	if id == "" {
		return "category_" + ContentHash(name, "")[:8]
	}
	return id
}
