package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"docmatch/internal/config"
	"docmatch/internal/logger"
	"docmatch/internal/matching"
	"docmatch/internal/report"
	"docmatch/internal/repository"
	"docmatch/internal/source"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownSource is returned when a request names a source that is not
	// registered, usually because it is not configured.
	ErrUnknownSource = errors.New("unknown document source")
	// ErrInvalidThreshold is returned when the threshold is not a number.
	ErrInvalidThreshold = errors.New("threshold must be a number")
)

// MatchRequest describes one matching run.
type MatchRequest struct {
	// Source names the registered backend; empty uses the default.
	Source string
	// First and Second are the collection roots: directories for the
	// filesystem source, prefixes for the storage source.
	First  string
	Second string
	// Threshold overrides the configured threshold when set.
	Threshold   *float64
	SkipContent bool
}

// RunRecorder persists finished runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *repository.MatchRun) error
}

type sourceLookup interface {
	Get(name string) (source.Source, bool)
	Names() []string
}

// MatchOptions holds service defaults.
type MatchOptions struct {
	DefaultSource string
	Threshold     float64
	MaxTextLen    int
	Workers       int
	Concurrency   int
}

// MatchOptionsFromConfig builds MatchOptions from the matching configuration.
func MatchOptionsFromConfig(cfg config.MatchingConfig, defaultSource string) MatchOptions {
	return MatchOptions{
		DefaultSource: defaultSource,
		Threshold:     cfg.Threshold,
		MaxTextLen:    cfg.MaxTextLen,
		Workers:       cfg.Workers,
		Concurrency:   cfg.ExtractConcurrency,
	}
}

// MatchService loads two collections and reports likely duplicates.
type MatchService struct {
	sources  sourceLookup
	recorder RunRecorder
	opts     MatchOptions
}

// NewMatchService creates a new match service. recorder may be nil.
func NewMatchService(sources sourceLookup, recorder RunRecorder, opts MatchOptions) *MatchService {
	return &MatchService{
		sources:  sources,
		recorder: recorder,
		opts:     opts,
	}
}

// Sources lists the registered source names.
func (s *MatchService) Sources() []string {
	return s.sources.Names()
}

// Run loads both collections, pairs each item of the first with its best
// counterpart in the second and formats the report.
func (s *MatchService) Run(ctx context.Context, req MatchRequest) (*repository.MatchRun, error) {
	threshold := s.opts.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	// Scores lie in [0, 1], so a threshold above 1 simply matches nothing.
	if math.IsNaN(threshold) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidThreshold, threshold)
	}

	name := req.Source
	if name == "" {
		name = s.opts.DefaultSource
	}
	src, ok := s.sources.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}

	started := time.Now()
	loadOpts := source.LoadOptions{
		SkipContent: req.SkipContent,
		Concurrency: s.opts.Concurrency,
	}

	var first, second []matching.Item
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := source.Load(gctx, src, req.First, loadOpts)
		if err != nil {
			return fmt.Errorf("failed to load first collection: %w", err)
		}
		first = items
		return nil
	})
	g.Go(func() error {
		items, err := source.Load(gctx, src, req.Second, loadOpts)
		if err != nil {
			return fmt.Errorf("failed to load second collection: %w", err)
		}
		second = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Without text on one side every pair would lose the content share of
	// the score, so fall back to name and size only.
	hasContent := !req.SkipContent && matching.HasContent(first) && matching.HasContent(second)
	weights := matching.SelectWeights(hasContent)

	results := matching.Match(first, second, matching.Options{
		Threshold:  threshold,
		Weights:    weights,
		MaxTextLen: s.opts.MaxTextLen,
		Workers:    s.opts.Workers,
	})

	run := &repository.MatchRun{
		ID:          uuid.New(),
		Source:      src.Name(),
		First:       req.First,
		Second:      req.Second,
		Threshold:   threshold,
		Weights:     weights,
		SourceCount: len(first),
		TargetCount: len(second),
		MatchCount:  len(results),
		Results:     results,
		Report:      report.Format(results),
		StartedAt:   started.UTC(),
		DurationMs:  time.Since(started).Milliseconds(),
	}

	logger.Info().
		Str("run_id", run.ID.String()).
		Str("source", run.Source).
		Int("source_count", run.SourceCount).
		Int("target_count", run.TargetCount).
		Int("matches", run.MatchCount).
		Bool("content", hasContent).
		Dur("elapsed", run.Duration()).
		Msg("match run completed")

	if s.recorder != nil {
		if err := s.recorder.RecordRun(ctx, run); err != nil {
			logger.Warn().Err(err).Str("run_id", run.ID.String()).Msg("failed to record match run")
		}
	}

	return run, nil
}
