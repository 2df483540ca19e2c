package matching

import (
	"errors"
	"fmt"

	"docmatch/internal/similarity"
)

// DefaultThreshold is the minimum composite score for a pair to be reported.
const DefaultThreshold = 0.7

// Weights scale each sub-similarity before they are summed. They should add
// up to 1 so the composite score stays in [0, 1].
type Weights struct {
	Name float64 `json:"name"`
	Size float64 `json:"size"`
	Text float64 `json:"text"`
}

// DefaultWeights is used when extracted content is available.
var DefaultWeights = Weights{
	Name: 0.3,
	Size: 0.2,
	Text: 0.5,
}

// NameSizeWeights is the degraded two-factor configuration used when content
// is unavailable, so missing text does not zero out every score.
var NameSizeWeights = Weights{
	Name: 0.5,
	Size: 0.5,
	Text: 0,
}

// SelectWeights returns DefaultWeights when content can be compared and
// NameSizeWeights otherwise.
func SelectWeights(hasContent bool) Weights {
	if hasContent {
		return DefaultWeights
	}
	return NameSizeWeights
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Name + w.Size + w.Text
}

// Validate rejects negative weights and an all-zero configuration.
func (w Weights) Validate() error {
	if w.Name < 0 || w.Size < 0 || w.Text < 0 {
		return fmt.Errorf("weights must be non-negative, got name=%g size=%g text=%g", w.Name, w.Size, w.Text)
	}
	if w.Sum() == 0 {
		return errors.New("at least one weight must be positive")
	}
	return nil
}

// Options configures a matching run.
type Options struct {
	// Threshold is the minimum score (inclusive) for a match to be accepted.
	Threshold float64
	Weights   Weights
	// MaxTextLen bounds how many characters of content are compared.
	MaxTextLen int
	// Workers > 1 scans source items in parallel.
	Workers int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Threshold:  DefaultThreshold,
		Weights:    DefaultWeights,
		MaxTextLen: similarity.DefaultMaxTextLen,
		Workers:    1,
	}
}

// Scorer computes composite similarity scores for item pairs.
type Scorer struct {
	Weights    Weights
	MaxTextLen int
}

// Score returns the weighted sum of name, size and content similarity.
func (s Scorer) Score(a, b Item) float64 {
	w := s.Weights
	score := w.Name * similarity.Similarity(NormalizeName(a.Name), NormalizeName(b.Name))
	score += w.Size * similarity.SizeSimilarity(a.Size, b.Size)
	if w.Text != 0 {
		score += w.Text * similarity.TextSimilarity(a.Content, b.Content, s.MaxTextLen)
	}
	return score
}

// Score is a convenience wrapper using the default text length.
func Score(a, b Item, w Weights) float64 {
	return Scorer{Weights: w, MaxTextLen: similarity.DefaultMaxTextLen}.Score(a, b)
}
