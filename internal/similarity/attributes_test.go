package similarity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     int64
		expected float64
	}{
		{"identical sizes", 1000, 1000, 1},
		{"half", 500, 1000, 0.5},
		{"symmetric", 1000, 500, 0.5},
		{"zero left", 0, 1000, 0},
		{"zero right", 1000, 0, 0},
		{"both zero", 0, 0, 0},
		{"scale invariant", 5, 10, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SizeSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTextSimilarity(t *testing.T) {
	t.Run("missing text scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, TextSimilarity("", "some text", DefaultMaxTextLen))
		assert.Equal(t, 0.0, TextSimilarity("some text", "", DefaultMaxTextLen))
		assert.Equal(t, 0.0, TextSimilarity("", "", DefaultMaxTextLen))
	})

	t.Run("identical text", func(t *testing.T) {
		assert.Equal(t, 1.0, TextSimilarity("hello world", "hello world", DefaultMaxTextLen))
	})

	t.Run("divergence past the prefix is ignored", func(t *testing.T) {
		prefix := strings.Repeat("lorem ipsum ", 500)[:DefaultMaxTextLen]
		a := prefix + strings.Repeat("a", 3000)
		b := prefix + strings.Repeat("zq", 4000)

		assert.Equal(t, 1.0, TextSimilarity(a, b, DefaultMaxTextLen))
	})

	t.Run("custom limit", func(t *testing.T) {
		assert.Equal(t, 1.0, TextSimilarity("abcXXX", "abcYYY", 3))
		assert.InDelta(t, 0.5, TextSimilarity("abcXXX", "abcYYY", 6), 1e-9)
	})

	t.Run("non-positive limit uses default", func(t *testing.T) {
		assert.Equal(t, TextSimilarity("abc", "abd", DefaultMaxTextLen), TextSimilarity("abc", "abd", 0))
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ca", Truncate("café", 2))
	assert.Equal(t, "café", Truncate("café", 4))
}
