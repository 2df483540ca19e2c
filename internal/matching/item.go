package matching

// Item is a document taking part in a matching run.
type Item struct {
	// Path identifies the document within its collection (file path or
	// storage object key).
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	// Content is the extracted text; empty when extraction failed or was
	// skipped.
	Content string `json:"-"`
}

// Result is an accepted pair whose score reached the threshold.
type Result struct {
	Source Item    `json:"source"`
	Target Item    `json:"target"`
	Score  float64 `json:"score"`
}

// HasContent reports whether any item in items carries extracted text.
func HasContent(items []Item) bool {
	for _, it := range items {
		if it.Content != "" {
			return true
		}
	}
	return false
}
