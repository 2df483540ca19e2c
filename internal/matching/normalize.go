// Package matching scores document pairs and pairs each document of one
// collection with its closest counterpart in another.
package matching

import (
	"path/filepath"
	"strings"
)

// NormalizeName lower-cases a display name so name comparison ignores case.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// NormalizeExtension lower-cases an extension and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// NormalizeExtensions normalizes each extension and drops blanks.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		if ext = NormalizeExtension(ext); ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

// HasExtension reports whether name ends in one of exts, ignoring case.
// exts are expected to be normalized with NormalizeExtension.
func HasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Ext returns the lower-cased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
