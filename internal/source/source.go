// Package source enumerates document collections and extracts their text.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docmatch/internal/logger"
	"docmatch/internal/matching"

	"golang.org/x/sync/errgroup"
)

// ErrRootNotFound is returned when a collection root does not exist.
var ErrRootNotFound = errors.New("collection root not found")

// DefaultConcurrency is the number of extractions run at once when none is configured.
const DefaultConcurrency = 4

// Enumerator lists the documents under a collection root.
type Enumerator interface {
	// Name identifies the source, e.g. "filesystem" or "storage".
	Name() string

	// List returns the documents under root in a stable order with Path, Name
	// and Size populated. Failing to read root is an error.
	List(ctx context.Context, root string) ([]matching.Item, error)
}

// Extractor returns the text of a document. It never fails: any read, parse
// or format problem yields an empty string.
type Extractor interface {
	Extract(ctx context.Context, item matching.Item) string
}

// Source is a collection backend able to both list and read documents.
type Source interface {
	Enumerator
	Extractor
}

// LoadOptions controls how a collection is loaded.
type LoadOptions struct {
	// SkipContent leaves Content empty and skips extraction entirely.
	SkipContent bool
	// Concurrency bounds parallel extractions.
	Concurrency int
}

// Load lists root and fills in each item's content with bounded parallelism.
// Item order is the enumeration order whatever order extractions finish in.
func Load(ctx context.Context, src Source, root string, opts LoadOptions) ([]matching.Item, error) {
	items, err := src.List(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s collection %q: %w", src.Name(), root, err)
	}

	logger.Debug().
		Str("source", src.Name()).
		Str("root", root).
		Int("documents", len(items)).
		Msg("collection listed")

	if opts.SkipContent || len(items) == 0 {
		return items, nil
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range items {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i].Content = src.Extract(gctx, items[i])
			if items[i].Content == "" {
				logger.Debug().Str("path", items[i].Path).Msg("no text extracted")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("content extraction interrupted: %w", err)
	}

	logger.Debug().
		Str("source", src.Name()).
		Str("root", root).
		Dur("elapsed", time.Since(start)).
		Msg("collection content extracted")

	return items, nil
}
