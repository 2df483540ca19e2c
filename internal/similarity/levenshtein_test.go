package similarity

import (
	"testing"

	"github.com/agnivade/levenshtein"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"both empty", "", "", 0},
		{"empty left", "", "abc", 3},
		{"empty right", "abc", "", 3},
		{"identical", "invoice", "invoice", 0},
		{"single substitution", "cat", "cut", 1},
		{"kitten sitting", "kitten", "sitting", 3},
		{"insertion", "report.pdf", "report1.pdf", 1},
		{"case differs", "A", "a", 1},
		{"multibyte runes", "café", "cafe", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.a, tt.b))
		})
	}
}

func TestDistance_AgreesWithReferenceImplementation(t *testing.T) {
	pairs := [][2]string{
		{"invoice_2023.pdf", "invoice-2023.pdf"},
		{"Relazione finale.pdf", "relazione_finale_v2.pdf"},
		{"zzzzzzzz.pdf", "a.pdf"},
		{"naïve résumé", "naive resume"},
		{"abcdef", "fedcba"},
		{"", "something"},
	}

	for _, p := range pairs {
		assert.Equal(t, levenshtein.ComputeDistance(p[0], p[1]), Distance(p[0], p[1]), "%q vs %q", p[0], p[1])
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"both empty are equal", "", "", 1},
		{"identical", "invoice.pdf", "invoice.pdf", 1},
		{"one side empty", "", "invoice.pdf", 0},
		{"other side empty", "invoice.pdf", "", 0},
		{"completely different", "abc", "xyz", 0},
		{"one edit in four", "abcd", "abce", 0.75},
		{"kitten sitting", "kitten", "sitting", 1 - 3.0/7.0},
		{"case sensitive", "ABC", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_Properties(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"invoice.pdf",
		"Invoice.PDF",
		"zzzzzzzz.pdf",
		"relazione annuale 2022.pdf",
		"übersicht.pdf",
	}

	for _, a := range inputs {
		if a != "" {
			assert.Equal(t, 1.0, Similarity(a, a), "self similarity of %q", a)
		}
		for _, b := range inputs {
			ab := Similarity(a, b)
			ba := Similarity(b, a)
			assert.Equal(t, ab, ba, "symmetry for %q, %q", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}
}
