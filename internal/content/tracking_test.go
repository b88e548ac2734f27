package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"lamah/internal/models"
)

func TestGenerateTrackingID(t *testing.T) {
	t.Run("store id form", func(t *testing.T) {
		q := &models.Question{ID: "abcdef0123456789", Text: "x", Answer: "y"}
		assert.Equal(t, "history-abcdef0123456789", GenerateTrackingID(q, "history"))
	})

	t.Run("short id falls back to content hash", func(t *testing.T) {
		q := &models.Question{ID: "short", Text: "What is 2+2?", Answer: "4"}
		id := GenerateTrackingID(q, "math")
		assert.True(t, strings.HasPrefix(id, "math-h"))
		assert.Len(t, id, len("math-h")+32)
	})

	t.Run("deterministic", func(t *testing.T) {
		q := &models.Question{Text: "عاصمة مصر؟", Answer: "القاهرة"}
		assert.Equal(t, GenerateTrackingID(q, "جغرافيا"), GenerateTrackingID(q, "جغرافيا"))
	})

	t.Run("hash ignores case and spacing", func(t *testing.T) {
		a := &models.Question{Text: "What  is\tGo?", Answer: "A Language"}
		b := &models.Question{Text: "what is go?", Answer: "a language"}
		assert.Equal(t, GenerateTrackingID(a, "tech"), GenerateTrackingID(b, "tech"))
	})

	t.Run("different content differs", func(t *testing.T) {
		a := &models.Question{Text: "Question one", Answer: "same"}
		b := &models.Question{Text: "Question two", Answer: "same"}
		assert.NotEqual(t, GenerateTrackingID(a, "c"), GenerateTrackingID(b, "c"))
	})

	t.Run("sanitizes category", func(t *testing.T) {
		q := &models.Question{ID: "0123456789ab"}
		assert.Equal(t, "my_cat_-0123456789ab", GenerateTrackingID(q, "my cat!"))
	})
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "abc-_123", Sanitize("abc-_123"))
	assert.Equal(t, "فئة1_x", Sanitize("فئة1 x"))
	assert.Equal(t, "a_b", Sanitize("a؛b"))
	assert.Equal(t, "__", Sanitize("/."))
}

func TestCategoryIDFromName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and spaces", "  World History ", "world_history"},
		{"collapses whitespace", "a   b\tc", "a_b_c"},
		{"drops punctuation", "Sports & Games!", "sports_games"},
		{"arabic", "فئة 1", "فئة_1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CategoryIDFromName(c.in))
		})
	}

	t.Run("truncates", func(t *testing.T) {
		id := CategoryIDFromName(strings.Repeat("a", 80))
		assert.Equal(t, 50, len([]rune(id)))
	})

	t.Run("empty falls back to hash", func(t *testing.T) {
		id := CategoryIDFromName("!!!")
		assert.True(t, strings.HasPrefix(id, "category_"))
		assert.Len(t, id, len("category_")+8)
		assert.Equal(t, id, CategoryIDFromName("!!!"))
	})
}
