package history

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/shared/server/middleware"
	"resume-insights/internal/shared/server/respond"
	"resume-insights/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the history service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches history routes. The group must already require
// authentication.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.list)
	rg.POST("/history", h.create)
	rg.DELETE("/history", h.deleteAll)
	rg.GET("/history/summary", h.summary)
	rg.GET("/history/skill-trends", h.skillTrends)
	rg.GET("/history/progression", h.progression)
	rg.GET("/history/:id", h.get)
	rg.DELETE("/history/:id", h.delete)
}

type createRequest struct {
	ID          string         `json:"id"`
	ResumeText  string         `json:"resumeText"`
	Analysis    map[string]any `json:"analysis"`
	Suggestions []string       `json:"suggestions"`
}

func (h *Handler) list(c *gin.Context) {
	limit, ok := queryInt(c, "limit", DefaultLimit)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	page, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		h.fail(c, "Failed to fetch history", err)
		return
	}
	respond.OK(c, page)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	entry, err := h.Svc.Record(c.Request.Context(), RecordInput{
		ID:          req.ID,
		UserID:      middleware.UserIDFromContext(c),
		ResumeText:  req.ResumeText,
		Analysis:    req.Analysis,
		Suggestions: req.Suggestions,
	})
	if err != nil {
		h.fail(c, "Failed to create history entry", err)
		return
	}
	respond.JSON(c, http.StatusCreated, entry)
}

func (h *Handler) get(c *gin.Context) {
	entry, err := h.Svc.Get(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, "Failed to fetch history entry", err)
		return
	}
	respond.OK(c, entry)
}

func (h *Handler) summary(c *gin.Context) {
	out, err := h.Svc.Summarize(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, "Failed to fetch history summary", err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) skillTrends(c *gin.Context) {
	out, err := h.Svc.SkillTrends(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, "Failed to fetch skill trends", err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) progression(c *gin.Context) {
	out, err := h.Svc.ExperienceProgression(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, "Failed to fetch experience progression", err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) delete(c *gin.Context) {
	deleted, err := h.Svc.Delete(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, "Failed to delete history entry", err)
		return
	}
	if !deleted {
		respond.Error(c, http.StatusNotFound, "not_found", "History entry not found", nil)
		return
	}
	respond.OK(c, gin.H{"success": true, "message": "History entry deleted"})
}

func (h *Handler) deleteAll(c *gin.Context) {
	n, err := h.Svc.DeleteAll(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, "Failed to delete history", err)
		return
	}
	respond.OK(c, gin.H{"success": true, "deletedCount": n})
}

func (h *Handler) fail(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "History entry not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "History entry already exists", nil)
	default:
		telemetry.Error("history.request_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"route":      c.FullPath(),
			"user_id":    middleware.UserIDFromContext(c),
			"error":      err,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present {
		return def, true
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", key+" must be an integer", []map[string]string{
			{"field": key, "issue": "not_integer"},
		})
		return 0, false
	}
	return v, true
}
