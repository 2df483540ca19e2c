// Package filesystem lists and reads documents stored under a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"docmatch/internal/logger"
	"docmatch/internal/matching"
	"docmatch/internal/source"
)

// Name is the registry name of the filesystem source.
const Name = "filesystem"

// Config controls which files are listed and read.
type Config struct {
	// Extensions are the recognised document extensions, e.g. ".pdf".
	Extensions []string
	// MaxFileSize skips extraction for larger files; 0 means no limit.
	MaxFileSize int64
}

// Source walks directory trees recursively.
type Source struct {
	extensions  []string
	maxFileSize int64
}

var _ source.Source = (*Source)(nil)

// New creates a filesystem source.
func New(cfg Config) *Source {
	return &Source{
		extensions:  matching.NormalizeExtensions(cfg.Extensions),
		maxFileSize: cfg.MaxFileSize,
	}
}

// Name implements source.Enumerator.
func (s *Source) Name() string {
	return Name
}

// List walks root in lexical order and returns every regular file with a
// recognised extension. Unreadable entries below root are skipped.
func (s *Source) List(ctx context.Context, root string) ([]matching.Item, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", source.ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("failed to access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var items []matching.Item
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !matching.HasExtension(d.Name(), s.extensions) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("skipping file without stat info")
			return nil
		}

		items = append(items, matching.Item{
			Path: path,
			Name: d.Name(),
			Size: fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return items, nil
}

// Extract implements source.Extractor. PDFs are parsed for text and plain
// text files are read as is; anything else has no content.
func (s *Source) Extract(ctx context.Context, item matching.Item) string {
	if ctx.Err() != nil {
		return ""
	}
	if s.maxFileSize > 0 && item.Size > s.maxFileSize {
		logger.Debug().Str("path", item.Path).Int64("size", item.Size).Msg("file too large to extract")
		return ""
	}

	switch matching.Ext(item.Name) {
	case ".pdf":
		text, err := readPDF(item.Path)
		if err != nil {
			logger.Debug().Err(err).Str("path", item.Path).Msg("pdf extraction failed")
			return ""
		}
		return text
	case ".txt", ".md":
		data, err := os.ReadFile(item.Path)
		if err != nil || !utf8.Valid(data) {
			logger.Debug().Err(err).Str("path", item.Path).Msg("text extraction failed")
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

func readPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	return source.PDFText(f, info.Size())
}
