package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/harshshukla07/SwiftCV/internal/api/middleware"
	"github.com/harshshukla07/SwiftCV/internal/database"
	"github.com/harshshukla07/SwiftCV/internal/llm"
	"github.com/harshshukla07/SwiftCV/internal/storage"
)

// TextGenerator is the slice of the LLM client the AI endpoints need.
type TextGenerator interface {
	Enabled() bool
	EnhanceSummary(ctx context.Context, content string) (string, error)
	EnhanceJobDescription(ctx context.Context, content string) (string, error)
	ExtractResume(ctx context.Context, resumeText string) (*llm.Extraction, error)
}

// AIHandler serves the enhancement endpoints and the AI-assisted resume
// ingestion pipeline.
type AIHandler struct {
	db      *gorm.DB
	ai      TextGenerator
	archive *storage.Archive
}

// NewAIHandler constructs the handler. archive may be nil to disable
// raw-text archival.
func NewAIHandler(db *gorm.DB, ai TextGenerator, archive *storage.Archive) *AIHandler {
	return &AIHandler{
		db:      db,
		ai:      ai,
		archive: archive,
	}
}

type enhanceRequest struct {
	UserContent string `json:"userContent"`
}

// EnhanceProfessionalSummary rewrites a professional summary through the
// external model. The reply is returned verbatim; callers must treat it as
// untrusted free text.
func (h *AIHandler) EnhanceProfessionalSummary(c *gin.Context) {
	h.enhance(c, h.ai.EnhanceSummary)
}

// EnhanceJobDescription rewrites a job description into bullet points.
func (h *AIHandler) EnhanceJobDescription(c *gin.Context) {
	h.enhance(c, h.ai.EnhanceJobDescription)
}

func (h *AIHandler) enhance(c *gin.Context, generate func(context.Context, string) (string, error)) {
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserContent) == "" {
		BadRequest(c, "Content is required")
		return
	}
	if !h.ai.Enabled() {
		Internal(c, "AI service configuration missing")
		return
	}

	enhanced, err := generate(c.Request.Context(), req.UserContent)
	if err != nil {
		h.replyUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enhancedContent": enhanced})
}

type uploadResumeRequest struct {
	Title      string `json:"title"`
	ResumeText string `json:"resumeText"`
}

// UploadResume runs free-form resume text through the structured-extraction
// prompt and persists the result as a new resume. The extracted title wins
// over the caller-supplied one when present.
func (h *AIHandler) UploadResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req uploadResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		BadRequest(c, "Title cannot be empty")
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		BadRequest(c, "Resume text cannot be empty")
		return
	}
	if !h.ai.Enabled() {
		Internal(c, "AI service configuration missing")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.Uint64("user_id", uint64(userID)))

	ext, err := h.ai.ExtractResume(ctx, req.ResumeText)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrParse):
			logger.Error("extraction reply not json", slog.Any("error", err))
			Internal(c, "Failed to parse AI response - response may not be valid JSON")
		case errors.Is(err, llm.ErrSchema):
			logger.Error("extraction reply wrong shape", slog.Any("error", err))
			Internal(c, "Invalid data structure returned from AI")
		default:
			h.replyUpstreamError(c, err)
		}
		return
	}

	title := strings.TrimSpace(ext.Title)
	if title == "" {
		title = strings.TrimSpace(req.Title)
	}

	doc := ext.Document
	doc.Normalize()
	doc.PersonalInfo.Image = ""

	model := database.Resume{
		UserID:      userID,
		Title:       title,
		Template:    defaultTemplate,
		AccentColor: defaultAccentColor,
		Document:    datatypes.NewJSONType(doc),
	}
	if err := h.db.WithContext(ctx).Create(&model).Error; err != nil {
		logger.Error("create extracted resume failed", slog.Any("error", err))
		Internal(c, "failed to create resume")
		return
	}

	// Best effort: keep the original text around for re-processing.
	if h.archive != nil {
		if key, err := h.archive.StoreResumeText(ctx, userID, req.ResumeText); err != nil {
			logger.Error("archive resume text failed", slog.Any("error", err))
		} else {
			logger.Info("resume text archived", slog.String("object_key", key))
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Resume uploaded and processed successfully",
		"resume":  newResumeResponse(model, true),
	})
}

// replyUpstreamError maps the LLM failure classes onto distinct statuses:
// quota 402, authentication 401, anything else 503.
func (h *AIHandler) replyUpstreamError(c *gin.Context, err error) {
	logger := middleware.LoggerFromContext(c)
	logger.Error("ai call failed", slog.Any("error", err))

	switch {
	case errors.Is(err, llm.ErrQuotaExceeded):
		Error(c, http.StatusPaymentRequired, "AI service quota exceeded. Please check your billing settings.")
	case errors.Is(err, llm.ErrAuthFailed):
		Error(c, http.StatusUnauthorized, "AI service authentication failed. Please check your API key.")
	default:
		Error(c, http.StatusServiceUnavailable, "AI service temporarily unavailable. Please try again later.")
	}
}
