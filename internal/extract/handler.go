package extract

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-insights/internal/shared/server/middleware"
	"resume-insights/internal/shared/server/respond"
	"resume-insights/internal/shared/telemetry"
)

// Handler turns uploaded documents into resume text. It never calls the
// analysis provider, so it does not touch guest quota.
type Handler struct {
	MaxBytes int64
}

// NewHandler constructs a Handler accepting uploads up to maxBytes.
func NewHandler(maxBytes int64) *Handler {
	return &Handler{MaxBytes: maxBytes}
}

// RegisterRoutes wires the extraction route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/extract", h.extract)
}

func (h *Handler) extract(c *gin.Context) {
	// multipart framing needs some room beyond the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+64<<10)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the upload limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", []map[string]string{
			{"field": "file", "issue": "required"},
		})
		return
	}
	if fileHeader.Size > h.MaxBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the upload limit", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file could not be opened", nil)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.MaxBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file could not be read", nil)
		return
	}

	text, err := FromBytes(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if err != nil {
		telemetry.Warn("extract.failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"file_name":  fileHeader.Filename,
			"size":       fileHeader.Size,
			"error":      err,
		})
		switch {
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "Only PDF and DOCX files are supported", nil)
		default:
			respond.Error(c, http.StatusUnprocessableEntity, "unreadable_document", "Could not extract text from the document", nil)
		}
		return
	}
	respond.OK(c, gin.H{"text": text, "characters": len([]rune(text))})
}
