package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/secureproxy/validation-gateway/internal/api/middleware"
	"github.com/secureproxy/validation-gateway/internal/cache"
	"github.com/secureproxy/validation-gateway/internal/models"
	"github.com/secureproxy/validation-gateway/internal/validation"
)

const version = "1.0.0"

// healthProbe is a payload every sane rule table must flag. The health
// endpoint validates the engine with it instead of just reporting "up".
const healthProbe = "'; DROP TABLE users; --"

type ruleProbe interface {
	Scan(text string) []string
}

type cacheAdmin interface {
	Connected() bool
	GetInfo(ctx context.Context) cache.Info
	Clear(ctx context.Context, pattern string) error
}

type Handler struct {
	service *validation.Service
	engine  ruleProbe
	store   cacheAdmin
	logger  *zerolog.Logger
}

func NewHandler(service *validation.Service, engine ruleProbe, store cacheAdmin, logger *zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		engine:  engine,
		store:   store,
		logger:  logger,
	}
}

// POST /api/v1/validate
// Body: ValidateRequest
// Returns: ValidateResponse
func (h *Handler) Validate(req *restful.Request, resp *restful.Response) {
	var request ValidateRequest
	if err := req.ReadEntity(&request); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if request.Text == "" && request.File == "" {
		middleware.HandleError(resp, errors.New("either text or file must be provided"), http.StatusBadRequest)
		return
	}
	if request.Text != "" && request.File != "" {
		middleware.HandleError(resp, errors.New("text and file are mutually exclusive"), http.StatusBadRequest)
		return
	}

	level := h.service.DefaultLevel()
	if request.SecurityLevel != "" {
		parsed, ok := models.ParseSecurityLevel(request.SecurityLevel)
		if !ok {
			middleware.HandleError(resp, errors.New("security_level must be one of: high, medium, low"), http.StatusBadRequest)
			return
		}
		level = parsed
	}

	requestID := uuid.New().String()
	ctx := req.Request.Context()

	h.logger.Info().
		Str("request_id", requestID).
		Str("level", string(level)).
		Msg("Start validation")

	var result models.VerdictResult
	if request.File != "" {
		result = h.service.ValidateFile(ctx, request.File, level)
	} else {
		result = h.service.ValidateText(ctx, request.Text, level)
	}

	h.logger.Info().
		Str("request_id", requestID).
		Str("status", string(result.Status)).
		Str("reason", result.Reason).
		Float64("overall_score", result.OverallScore).
		Bool("cache_hit", result.CacheHit).
		Msg("Validation complete")

	resp.WriteHeaderAndEntity(http.StatusOK, ValidateResponse{
		RequestID:     requestID,
		VerdictResult: result,
	})
}

// GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	checks := map[string]string{
		"rule_engine": "ok",
		"cache":       "connected",
	}
	status := "ok"

	if len(h.engine.Scan(healthProbe)) == 0 {
		checks["rule_engine"] = "failed"
		status = "degraded"
	}
	if !h.store.Connected() {
		// The cache is an accelerator, so a dead cache degrades nothing.
		checks["cache"] = "disconnected"
	}

	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  status,
		Version: version,
		Checks:  checks,
	})
}

// GET /api/v1/stats
func (h *Handler) Stats(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, StatsResponse{
		Counters: h.service.Stats(req.Request.Context()),
	})
}

// GET /api/v1/cache/info
func (h *Handler) CacheInfo(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, h.store.GetInfo(req.Request.Context()))
}

// DELETE /api/v1/cache
// Clears cached verdicts; counters survive unless all=true.
func (h *Handler) ClearCache(req *restful.Request, resp *restful.Response) {
	pattern := "validation:*"
	if req.QueryParameter("all") == "true" {
		pattern = ""
	}

	if err := h.store.Clear(req.Request.Context(), pattern); err != nil {
		h.logger.Error().Err(err).Msg("Failed to clear cache")
		middleware.HandleError(resp, err, http.StatusServiceUnavailable)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, ClearCacheResponse{
		Cleared: true,
		Pattern: pattern,
	})
}
