package report

import (
	"bytes"
	"strings"
	"testing"

	"docmatch/internal/matching"

	"github.com/stretchr/testify/assert"
)

func result(src, dst string, score float64) matching.Result {
	return matching.Result{
		Source: matching.Item{Path: src},
		Target: matching.Item{Path: dst},
		Score:  score,
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		results  []matching.Result
		expected string
	}{
		{
			name:     "no results",
			results:  nil,
			expected: "",
		},
		{
			name:     "single result",
			results:  []matching.Result{result("a/one.pdf", "b/one.pdf", 1)},
			expected: "a/one.pdf\nb/one.pdf\n----------------",
		},
		{
			name: "keeps order and repeats shared targets",
			results: []matching.Result{
				result("a/two.pdf", "b/x.pdf", 0.9),
				result("a/one.pdf", "b/x.pdf", 0.8),
			},
			expected: "a/two.pdf\nb/x.pdf\n----------------\na/one.pdf\nb/x.pdf\n----------------",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.results))
		})
	}
}

func TestFormat_SeparatorLength(t *testing.T) {
	assert.Len(t, Separator, 16)
	assert.Equal(t, strings.Repeat("-", 16), Separator)
}

func TestFormat_Idempotent(t *testing.T) {
	results := []matching.Result{result("a", "b", 1), result("c", "d", 0.75)}
	assert.Equal(t, Format(results), Format(results))
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, []matching.Result{result("a/one.pdf", "b/one.pdf", 0.9123)})

	out := buf.String()
	assert.Contains(t, out, "a/one.pdf")
	assert.Contains(t, out, "b/one.pdf")
	assert.Contains(t, out, "0.912")
	assert.Contains(t, strings.ToUpper(out), "SOURCE")
}
