package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// Queries runs statements against a pool or a transaction.
type Queries struct {
	db DBTX
}

// New wraps a connection or pool.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const matchRunColumns = `id, source, first_root, second_root, threshold,
	weight_name, weight_size, weight_text,
	source_count, target_count, match_count,
	started_at, duration_ms, created_at`

func scanMatchRun(row pgx.Row) (MatchRun, error) {
	var r MatchRun
	err := row.Scan(
		&r.ID, &r.Source, &r.FirstRoot, &r.SecondRoot, &r.Threshold,
		&r.WeightName, &r.WeightSize, &r.WeightText,
		&r.SourceCount, &r.TargetCount, &r.MatchCount,
		&r.StartedAt, &r.DurationMs, &r.CreatedAt,
	)
	return r, err
}

// CreateMatchRunParams holds the columns written for a new run.
type CreateMatchRunParams struct {
	ID          pgtype.UUID
	Source      string
	FirstRoot   string
	SecondRoot  string
	Threshold   float64
	WeightName  float64
	WeightSize  float64
	WeightText  float64
	SourceCount int32
	TargetCount int32
	MatchCount  int32
	StartedAt   pgtype.Timestamptz
	DurationMs  int64
}

const createMatchRun = `INSERT INTO match_runs (
	id, source, first_root, second_root, threshold,
	weight_name, weight_size, weight_text,
	source_count, target_count, match_count,
	started_at, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + matchRunColumns

func (q *Queries) CreateMatchRun(ctx context.Context, arg CreateMatchRunParams) (MatchRun, error) {
	row := q.db.QueryRow(ctx, createMatchRun,
		arg.ID, arg.Source, arg.FirstRoot, arg.SecondRoot, arg.Threshold,
		arg.WeightName, arg.WeightSize, arg.WeightText,
		arg.SourceCount, arg.TargetCount, arg.MatchCount,
		arg.StartedAt, arg.DurationMs,
	)
	return scanMatchRun(row)
}

var matchResultColumns = []string{
	"run_id", "position",
	"source_path", "source_name", "source_size",
	"target_path", "target_name", "target_size",
	"score",
}

// InsertMatchResults bulk loads results with COPY.
func (q *Queries) InsertMatchResults(ctx context.Context, results []MatchResult) (int64, error) {
	return q.db.CopyFrom(ctx, pgx.Identifier{"match_results"}, matchResultColumns,
		pgx.CopyFromSlice(len(results), func(i int) ([]any, error) {
			r := results[i]
			return []any{
				r.RunID, r.Position,
				r.SourcePath, r.SourceName, r.SourceSize,
				r.TargetPath, r.TargetName, r.TargetSize,
				r.Score,
			}, nil
		}),
	)
}

const getMatchRun = `SELECT ` + matchRunColumns + ` FROM match_runs WHERE id = $1`

func (q *Queries) GetMatchRun(ctx context.Context, id pgtype.UUID) (MatchRun, error) {
	run, err := scanMatchRun(q.db.QueryRow(ctx, getMatchRun, id))
	return run, translate(err)
}

const listMatchRuns = `SELECT ` + matchRunColumns + ` FROM match_runs
ORDER BY started_at DESC, id
LIMIT $1 OFFSET $2`

func (q *Queries) ListMatchRuns(ctx context.Context, limit, offset int32) ([]MatchRun, error) {
	rows, err := q.db.Query(ctx, listMatchRuns, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MatchRun
	for rows.Next() {
		run, err := scanMatchRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, run)
	}
	return items, rows.Err()
}

const countMatchRuns = `SELECT count(*) FROM match_runs`

func (q *Queries) CountMatchRuns(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countMatchRuns).Scan(&count)
	return count, err
}

const listMatchResults = `SELECT run_id, position,
	source_path, source_name, source_size,
	target_path, target_name, target_size,
	score
FROM match_results
WHERE run_id = $1
ORDER BY position`

func (q *Queries) ListMatchResults(ctx context.Context, runID pgtype.UUID) ([]MatchResult, error) {
	rows, err := q.db.Query(ctx, listMatchResults, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MatchResult
	for rows.Next() {
		var r MatchResult
		if err := rows.Scan(
			&r.RunID, &r.Position,
			&r.SourcePath, &r.SourceName, &r.SourceSize,
			&r.TargetPath, &r.TargetName, &r.TargetSize,
			&r.Score,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
