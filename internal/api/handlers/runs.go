package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"docmatch/internal/api"
	"docmatch/internal/db"
	"docmatch/internal/matching"
	"docmatch/internal/report"
	"docmatch/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RunStore reads recorded match runs.
type RunStore interface {
	ListRuns(ctx context.Context, limit, offset int) ([]repository.MatchRun, int64, error)
	GetRun(ctx context.Context, id uuid.UUID) (*repository.MatchRun, error)
}

// RunHandler serves match run history
type RunHandler struct {
	runs      RunStore
	validator *validator.Validate
}

// NewRunHandler creates a new run handler
func NewRunHandler(runs RunStore) *RunHandler {
	return &RunHandler{
		runs:      runs,
		validator: validator.New(),
	}
}

// ListRunsQuery holds GET /runs query parameters
type ListRunsQuery struct {
	Page  int `form:"page" validate:"omitempty,min=1"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// MatchRunResponse is the JSON form of a match run
type MatchRunResponse struct {
	ID           uuid.UUID         `json:"id"`
	Source       string            `json:"source"`
	FirstPrefix  string            `json:"first_prefix"`
	SecondPrefix string            `json:"second_prefix"`
	Threshold    float64           `json:"threshold"`
	Weights      matching.Weights  `json:"weights"`
	SourceCount  int               `json:"source_count"`
	TargetCount  int               `json:"target_count"`
	MatchCount   int               `json:"match_count"`
	StartedAt    time.Time         `json:"started_at"`
	DurationMs   int64             `json:"duration_ms"`
	Results      []matching.Result `json:"results,omitempty"`
	Report       *string           `json:"report,omitempty"`
}

func runToResponse(run *repository.MatchRun, withResults bool) MatchRunResponse {
	resp := MatchRunResponse{
		ID:           run.ID,
		Source:       run.Source,
		FirstPrefix:  run.First,
		SecondPrefix: run.Second,
		Threshold:    run.Threshold,
		Weights:      run.Weights,
		SourceCount:  run.SourceCount,
		TargetCount:  run.TargetCount,
		MatchCount:   run.MatchCount,
		StartedAt:    run.StartedAt,
		DurationMs:   run.DurationMs,
	}
	if withResults {
		resp.Results = run.Results
		if resp.Results == nil {
			resp.Results = []matching.Result{}
		}
		text := run.Report
		if text == "" {
			text = report.Format(run.Results)
		}
		resp.Report = &text
	}
	return resp
}

// ListRuns returns recorded runs, most recent first
func (h *RunHandler) ListRuns(c *gin.Context) {
	var query ListRunsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		api.SendValidationError(c, "Invalid query parameters", err.Error())
		return
	}
	if err := h.validator.Struct(query); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 20
	}

	runs, total, err := h.runs.ListRuns(c.Request.Context(), query.Limit, (query.Page-1)*query.Limit)
	if err != nil {
		api.SendInternalError(c, "Failed to list match runs")
		return
	}

	responses := make([]MatchRunResponse, len(runs))
	for i := range runs {
		responses[i] = runToResponse(&runs[i], false)
	}

	api.SendSuccess(c, http.StatusOK, responses, api.NewPaginationMeta(query.Page, query.Limit, total))
}

// GetRun returns a single run with its results
func (h *RunHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.SendValidationError(c, "Invalid run ID", err.Error())
		return
	}

	run, err := h.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			api.SendNotFound(c, "Match run")
			return
		}
		api.SendInternalError(c, "Failed to get match run")
		return
	}

	api.SendSuccess(c, http.StatusOK, runToResponse(run, true), nil)
}
