package analyses

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/admission"
	"resume-insights/internal/shared/server/middleware"
	"resume-insights/internal/shared/server/respond"
	"resume-insights/internal/shared/telemetry"
)

// MaxTextChars bounds every free-text field accepted by the analysis routes.
const MaxTextChars = 50000

const guestAnalysisMessage = "This was your free analysis. Please login to analyze more resumes."

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc  *Service
	Gate *admission.Gate
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, gate *admission.Gate) *Handler {
	return &Handler{Svc: svc, Gate: gate}
}

// RegisterRoutes attaches analysis routes. /analyze admits guests itself;
// the rest go on authed, which must already require authentication.
func (h *Handler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.POST("/analyze", h.analyze)
	authed.POST("/job-match", h.jobMatch)
	authed.POST("/tailor", h.tailor)
	authed.POST("/career-map", h.careerMap)
	authed.POST("/rewrite", h.rewrite)
}

type analyzeRequest struct {
	ResumeText string `json:"resumeText"`
}

type jobRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

type rewriteRequest struct {
	OriginalText   string `json:"originalText"`
	JobDescription string `json:"jobDescription"`
}

type guestAnalysisResponse struct {
	*Success
	IsGuest           bool   `json:"isGuest"`
	GuestID           string `json:"guestId"`
	RemainingAnalyses int    `json:"remainingAnalyses"`
	Message           string `json:"message"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	if !validText(c, "resumeText", "Resume text is required", req.ResumeText) {
		return
	}

	// Admission runs after validation so a bad request never spends guest quota.
	d := h.Gate.Admit(c, admission.PolicyGuestAllowed)
	if d.Kind == admission.Reject {
		admission.WriteRejection(c, d)
		return
	}

	out, err := h.Svc.Analyze(c.Request.Context(), req.ResumeText)
	if err != nil {
		h.fail(c, "Failed to analyze resume. Please try again.", err)
		return
	}
	if out.Kind == KindNotAResume {
		telemetry.Warn("analyses.not_a_resume", map[string]any{
			"request_id":    middleware.RequestIDFromContext(c),
			"detected_type": out.NotAResume.DetectedType,
			"is_guest":      d.Kind == admission.GuestPass,
		})
		respond.JSON(c, http.StatusBadRequest, out.NotAResume)
		return
	}
	if d.Kind == admission.GuestPass {
		respond.OK(c, guestAnalysisResponse{
			Success:           out.Success,
			IsGuest:           true,
			GuestID:           d.Guest.RecordID,
			RemainingAnalyses: d.Guest.Remaining(),
			Message:           guestAnalysisMessage,
		})
		return
	}
	respond.OK(c, out.Success)
}

func (h *Handler) jobMatch(c *gin.Context) {
	var req jobRequest
	if !bindJobRequest(c, &req) {
		return
	}
	out, err := h.Svc.JobMatch(c.Request.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		h.fail(c, "Failed to compare with job description", err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) tailor(c *gin.Context) {
	var req jobRequest
	if !bindJobRequest(c, &req) {
		return
	}
	out, err := h.Svc.Tailor(c.Request.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		h.fail(c, "Failed to tailor resume", err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) careerMap(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	if !validText(c, "resumeText", "Resume text is required", req.ResumeText) {
		return
	}
	out, err := h.Svc.CareerMap(c.Request.Context(), req.ResumeText)
	if err != nil {
		h.fail(c, "Failed to generate career map", err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) rewrite(c *gin.Context) {
	var req rewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	if !validText(c, "originalText", "Original text and job description are required", req.OriginalText) ||
		!validText(c, "jobDescription", "Original text and job description are required", req.JobDescription) {
		return
	}
	out, err := h.Svc.Rewrite(c.Request.Context(), req.OriginalText, req.JobDescription)
	if err != nil {
		h.fail(c, "Failed to rewrite text", err)
		return
	}
	respond.OK(c, out)
}

func bindJobRequest(c *gin.Context, req *jobRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return false
	}
	const msg = "Resume text and job description are required"
	return validText(c, "resumeText", msg, req.ResumeText) &&
		validText(c, "jobDescription", msg, req.JobDescription)
}

func validText(c *gin.Context, field, requiredMsg, value string) bool {
	if strings.TrimSpace(value) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", requiredMsg, []map[string]string{
			{"field": field, "issue": "required"},
		})
		return false
	}
	if utf8.RuneCountInString(value) > MaxTextChars {
		respond.Error(c, http.StatusBadRequest, "validation_error", field+" exceeds 50000 characters", []map[string]string{
			{"field": field, "issue": "too_long"},
		})
		return false
	}
	return true
}

func (h *Handler) fail(c *gin.Context, message string, err error) {
	code := "analysis_failed"
	if errors.Is(err, ErrMalformedProviderResponse) {
		code = "malformed_provider_response"
	}
	telemetry.Error("analyses.request_failed", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"route":      c.FullPath(),
		"user_id":    middleware.UserIDFromContext(c),
		"guest_id":   middleware.GuestIDFromContext(c),
		"client_ip":  c.ClientIP(),
		"error":      err,
	})
	respond.Error(c, http.StatusInternalServerError, code, message, nil)
}
