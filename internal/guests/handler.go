package guests

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/identity"
	"resume-insights/internal/shared/server/respond"
	"resume-insights/internal/shared/telemetry"
)

// Handler serves guest quota endpoints.
type Handler struct {
	Ledger *Ledger
}

// NewHandler constructs a guest handler.
func NewHandler(ledger *Ledger) *Handler {
	return &Handler{Ledger: ledger}
}

// RegisterRoutes wires guest routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/guest-status", h.status)
}

func (h *Handler) status(c *gin.Context) {
	id := identity.Resolve(c.Request)
	st, err := h.Ledger.Status(c.Request.Context(), id)
	if err != nil {
		telemetry.Error("guests.status_failed", map[string]any{"error": err, "ip_address": id.NetworkAddress})
		respond.Error(c, http.StatusInternalServerError, "Failed to check guest status", "Unable to verify guest usage. Please try again.", nil)
		return
	}
	respond.OK(c, st)
}
