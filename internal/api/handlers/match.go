package handlers

import (
	"context"
	"errors"
	"net/http"

	"docmatch/internal/api"
	"docmatch/internal/logger"
	"docmatch/internal/repository"
	"docmatch/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// MatchRunner runs matches and lists the available sources.
type MatchRunner interface {
	Run(ctx context.Context, req service.MatchRequest) (*repository.MatchRun, error)
	Sources() []string
}

// MatchHandler handles matching requests
type MatchHandler struct {
	matchService MatchRunner
	validator    *validator.Validate
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService MatchRunner) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		validator:    validator.New(),
	}
}

// CreateMatchRequest is the body of POST /matches
type CreateMatchRequest struct {
	Source       string   `json:"source,omitempty" validate:"omitempty,max=64"`
	FirstPrefix  string   `json:"firstPrefix" validate:"required"`
	SecondPrefix string   `json:"secondPrefix" validate:"required"`
	Threshold    *float64 `json:"threshold,omitempty"`
	SkipContent  bool     `json:"skipContent,omitempty"`
}

// MatchQuery holds POST /matches query parameters
type MatchQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=text json"`
}

// CreateMatch runs the matcher over two collections. The report is returned
// as plain text unless ?format=json is given.
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var query MatchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		api.SendValidationError(c, "Invalid query parameters", err.Error())
		return
	}
	if err := h.validator.Struct(query); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		api.SendValidationError(c, "Validation failed", err.Error())
		return
	}

	run, err := h.matchService.Run(c.Request.Context(), service.MatchRequest{
		Source:      req.Source,
		First:       req.FirstPrefix,
		Second:      req.SecondPrefix,
		Threshold:   req.Threshold,
		SkipContent: req.SkipContent,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidThreshold) {
			api.SendValidationError(c, "Validation failed", err.Error())
			return
		}

		logger.Error().
			Err(err).
			Str("request_id", api.RequestID(c)).
			Str("source", req.Source).
			Msg("match run failed")
		_ = c.Error(err)

		if query.Format == "json" {
			api.SendError(c, http.StatusInternalServerError, api.ErrCodeInternal, api.MatchFailedText, "")
			return
		}
		api.SendText(c, http.StatusInternalServerError, api.MatchFailedText)
		return
	}

	if query.Format == "json" {
		api.SendSuccess(c, http.StatusOK, runToResponse(run, true), nil)
		return
	}
	api.SendText(c, http.StatusOK, run.Report)
}

// ListSources returns the names of the configured document sources
func (h *MatchHandler) ListSources(c *gin.Context) {
	api.SendSuccess(c, http.StatusOK, h.matchService.Sources(), nil)
}
