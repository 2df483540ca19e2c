package repository

import (
	"context"
	"fmt"
	"time"

	"docmatch/internal/db"
	"docmatch/internal/matching"

	"github.com/google/uuid"
)

// MatchRun is one execution of the matcher over two collections.
type MatchRun struct {
	ID          uuid.UUID         `json:"id"`
	Source      string            `json:"source"`
	First       string            `json:"first_prefix"`
	Second      string            `json:"second_prefix"`
	Threshold   float64           `json:"threshold"`
	Weights     matching.Weights  `json:"weights"`
	SourceCount int               `json:"source_count"`
	TargetCount int               `json:"target_count"`
	MatchCount  int               `json:"match_count"`
	Results     []matching.Result `json:"results,omitempty"`
	Report      string            `json:"-"`
	StartedAt   time.Time         `json:"started_at"`
	DurationMs  int64             `json:"duration_ms"`
}

// Duration returns how long the run took.
func (r *MatchRun) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}

// RunRepository persists match run history
type RunRepository struct {
	database *db.Database
}

// NewRunRepository creates a new run repository
func NewRunRepository(database *db.Database) *RunRepository {
	return &RunRepository{database: database}
}

func convertDbMatchRun(row *db.MatchRun) MatchRun {
	return MatchRun{
		ID:        pgUUIDToUUID(row.ID),
		Source:    row.Source,
		First:     row.FirstRoot,
		Second:    row.SecondRoot,
		Threshold: row.Threshold,
		Weights: matching.Weights{
			Name: row.WeightName,
			Size: row.WeightSize,
			Text: row.WeightText,
		},
		SourceCount: int(row.SourceCount),
		TargetCount: int(row.TargetCount),
		MatchCount:  int(row.MatchCount),
		StartedAt:   pgTimestamptzToTime(row.StartedAt),
		DurationMs:  row.DurationMs,
	}
}

func convertDbMatchResult(row *db.MatchResult) matching.Result {
	return matching.Result{
		Source: matching.Item{Path: row.SourcePath, Name: row.SourceName, Size: row.SourceSize},
		Target: matching.Item{Path: row.TargetPath, Name: row.TargetName, Size: row.TargetSize},
		Score:  row.Score,
	}
}

// RecordRun stores a run and its accepted pairs in one transaction.
func (r *RunRepository) RecordRun(ctx context.Context, run *MatchRun) error {
	runID := uuidToPgUUID(run.ID)

	results := make([]db.MatchResult, len(run.Results))
	for i, res := range run.Results {
		results[i] = db.MatchResult{
			RunID:      runID,
			Position:   int32(i),
			SourcePath: res.Source.Path,
			SourceName: res.Source.Name,
			SourceSize: res.Source.Size,
			TargetPath: res.Target.Path,
			TargetName: res.Target.Name,
			TargetSize: res.Target.Size,
			Score:      res.Score,
		}
	}

	return r.database.ExecTx(ctx, func(q *db.Queries) error {
		_, err := q.CreateMatchRun(ctx, db.CreateMatchRunParams{
			ID:          runID,
			Source:      run.Source,
			FirstRoot:   run.First,
			SecondRoot:  run.Second,
			Threshold:   run.Threshold,
			WeightName:  run.Weights.Name,
			WeightSize:  run.Weights.Size,
			WeightText:  run.Weights.Text,
			SourceCount: int32(run.SourceCount),
			TargetCount: int32(run.TargetCount),
			MatchCount:  int32(run.MatchCount),
			StartedAt:   timeToPgTimestamptz(run.StartedAt),
			DurationMs:  run.DurationMs,
		})
		if err != nil {
			return fmt.Errorf("failed to insert match run: %w", err)
		}

		if len(results) == 0 {
			return nil
		}
		if _, err := q.InsertMatchResults(ctx, results); err != nil {
			return fmt.Errorf("failed to insert match results: %w", err)
		}
		return nil
	})
}

// ListRuns returns run summaries, most recent first, plus the total count.
// Results are not loaded.
func (r *RunRepository) ListRuns(ctx context.Context, limit, offset int) ([]MatchRun, int64, error) {
	q := r.database.Queries

	rows, err := q.ListMatchRuns(ctx, int32(limit), int32(offset))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list match runs: %w", err)
	}
	total, err := q.CountMatchRuns(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count match runs: %w", err)
	}

	runs := make([]MatchRun, len(rows))
	for i := range rows {
		runs[i] = convertDbMatchRun(&rows[i])
	}
	return runs, total, nil
}

// GetRun returns a run with its results. Missing runs yield db.ErrNotFound.
func (r *RunRepository) GetRun(ctx context.Context, id uuid.UUID) (*MatchRun, error) {
	q := r.database.Queries

	row, err := q.GetMatchRun(ctx, uuidToPgUUID(id))
	if err != nil {
		return nil, err
	}
	run := convertDbMatchRun(&row)

	rows, err := q.ListMatchResults(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	run.Results = make([]matching.Result, len(rows))
	for i := range rows {
		run.Results[i] = convertDbMatchResult(&rows[i])
	}
	return &run, nil
}
