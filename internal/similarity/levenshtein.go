// Package similarity provides normalized similarity measures used to compare
// document names, sizes and extracted text.
package similarity

// Distance returns the Levenshtein edit distance between a and b, counted in
// Unicode code points.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	m, n := len(ra), len(rb)

	// Rolling rows of the (m+1) x (n+1) table: prev is row i-1, curr is row i.
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// Similarity returns 1 - distance/maxLen for a and b, a value in [0, 1].
// Equal strings (including two empty strings) score 1; a single empty side
// scores 0. Comparison is case-sensitive: lower-case both inputs first if
// case should be ignored.
//
// Cost is O(len(a)*len(b)) in time, so long text must be truncated
// by the caller (see TextSimilarity).
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	return 1 - float64(Distance(a, b))/float64(max(la, lb))
}
