package similarity

// DefaultMaxTextLen is the number of leading characters of extracted text that
// take part in content comparison.
const DefaultMaxTextLen = 5000

// SizeSimilarity returns the ratio of the smaller size to the larger one.
// A zero size on either side never counts as similar, not even to another
// zero-length file.
func SizeSimilarity(sizeA, sizeB int64) float64 {
	if sizeA <= 0 || sizeB <= 0 {
		return 0
	}
	return float64(min(sizeA, sizeB)) / float64(max(sizeA, sizeB))
}

// TextSimilarity compares the first maxLen characters of two texts.
// Differences past that prefix are invisible. Missing text on either side
// scores 0. A non-positive maxLen selects DefaultMaxTextLen.
func TextSimilarity(textA, textB string, maxLen int) float64 {
	if maxLen <= 0 {
		maxLen = DefaultMaxTextLen
	}

	ta := Truncate(textA, maxLen)
	tb := Truncate(textB, maxLen)
	if ta == "" || tb == "" {
		return 0
	}
	return Similarity(ta, tb)
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
