package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gadai/backend/internal/domain"
	"github.com/gadai/backend/internal/usecase"
	"github.com/gadai/backend/internal/version"
	"github.com/gin-gonic/gin"
)

const serviceName = "gadai-mata"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	mataService *usecase.MataService
}

// NewHandler creates a new HTTP handler. A nil service makes the Mata
// endpoints answer 501.
func NewHandler(mataService *usecase.MataService) *Handler {
	return &Handler{mataService: mataService}
}

// classifiedItemResponse is one entry of a classify response
type classifiedItemResponse struct {
	Item         domain.PawnItem `json:"item"`
	IsMata       bool            `json:"isMata"`
	MataRuleName string          `json:"mataRuleName,omitempty"`
}

type classifyResponse struct {
	Items     []classifiedItemResponse `json:"items"`
	MataCount int                      `json:"mataCount"`
	Total     int                      `json:"total"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": version.Version,
	})
}

// MatchMata handles POST /api/v1/mata/match
func (h *Handler) MatchMata(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	var req domain.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.mataService.Match(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClassifyItems handles POST /api/v1/mata/classify
func (h *Handler) ClassifyItems(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	var req domain.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items must not be empty"})
		return
	}

	batch, err := h.mataService.Classify(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := classifyResponse{
		Items:     make([]classifiedItemResponse, 0, len(batch.Items)),
		MataCount: batch.MataCount,
		Total:     batch.Total,
	}
	for _, ci := range batch.Items {
		resp.Items = append(resp.Items, classifiedItemResponse{
			Item:         ci.Item,
			IsMata:       ci.Result.IsMata,
			MataRuleName: ci.Result.MataRuleName,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// ListRules handles GET /api/v1/mata/rules?ptId=
func (h *Handler) ListRules(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	rules, err := h.mataService.Rules(c.Request.Context(), c.Query("ptId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  rules,
		"count": len(rules),
	})
}

// InvalidateRulesCache handles DELETE /api/v1/mata/rules/cache?ptId=
func (h *Handler) InvalidateRulesCache(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	if err := h.mataService.InvalidateRules(c.Request.Context(), c.Query("ptId")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAudits handles GET /api/v1/mata/audits?ptId=&limit=
func (h *Handler) ListAudits(c *gin.Context) {
	if !h.requireService(c) {
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	audits, err := h.mataService.RecentAudits(c.Request.Context(), c.Query("ptId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": audits})
}

func (h *Handler) requireService(c *gin.Context) bool {
	if h.mataService == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Mata service not configured"})
		return false
	}
	return true
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrAuditDisabled):
		status, message = http.StatusNotImplemented, err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		status, message = http.StatusTooManyRequests, err.Error()
	case errors.Is(err, domain.ErrRuleSourceUnavailable):
		status, message = http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, domain.ErrRuleSourceFailure):
		status, message = http.StatusBadGateway, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "request timed out"
	default:
		_ = c.Error(err)
	}

	c.JSON(status, gin.H{"error": message})
}
