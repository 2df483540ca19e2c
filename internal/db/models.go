package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// MatchRun is a row of match_runs.
type MatchRun struct {
	ID          pgtype.UUID        `json:"id"`
	Source      string             `json:"source"`
	FirstRoot   string             `json:"first_root"`
	SecondRoot  string             `json:"second_root"`
	Threshold   float64            `json:"threshold"`
	WeightName  float64            `json:"weight_name"`
	WeightSize  float64            `json:"weight_size"`
	WeightText  float64            `json:"weight_text"`
	SourceCount int32              `json:"source_count"`
	TargetCount int32              `json:"target_count"`
	MatchCount  int32              `json:"match_count"`
	StartedAt   pgtype.Timestamptz `json:"started_at"`
	DurationMs  int64              `json:"duration_ms"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

// MatchResult is a row of match_results.
type MatchResult struct {
	RunID      pgtype.UUID `json:"run_id"`
	Position   int32       `json:"position"`
	SourcePath string      `json:"source_path"`
	SourceName string      `json:"source_name"`
	SourceSize int64       `json:"source_size"`
	TargetPath string      `json:"target_path"`
	TargetName string      `json:"target_name"`
	TargetSize int64       `json:"target_size"`
	Score      float64     `json:"score"`
}
