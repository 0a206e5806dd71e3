package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	clamd "github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/harshshukla07/SwiftCV/internal/api/middleware"
	"github.com/harshshukla07/SwiftCV/internal/database"
	"github.com/harshshukla07/SwiftCV/internal/resume"
)

const (
	defaultTemplate    = "modern"
	defaultAccentColor = "#9333ea"
)

var errInvalidResumeID = errors.New("invalid resume id")

// ImageUploader forwards a profile image to the asset CDN and returns the
// hosted URL.
type ImageUploader interface {
	Enabled() bool
	Upload(ctx context.Context, file io.Reader, fileName string, removeBackground bool) (string, error)
}

// ResumeHandler serves resume CRUD, duplication and the public read path.
type ResumeHandler struct {
	db        *gorm.DB
	uploader  ImageUploader
	clamdAddr string
}

// NewResumeHandler constructs the handler. clamdAddr may be empty to disable
// the upload virus scan.
func NewResumeHandler(db *gorm.DB, uploader ImageUploader, clamdAddr string) *ResumeHandler {
	return &ResumeHandler{
		db:        db,
		uploader:  uploader,
		clamdAddr: clamdAddr,
	}
}

// resumeResponse flattens the stored columns and the JSONB document into the
// wire shape. Timestamps are omitted on the single-resume owner read.
type resumeResponse struct {
	ID                  uint                `json:"id"`
	UserID              uint                `json:"user_id"`
	Title               string              `json:"title"`
	Public              bool                `json:"public"`
	Template            string              `json:"template"`
	AccentColor         string              `json:"accent_color"`
	ProfessionalSummary string              `json:"professional_summary"`
	Skills              []string            `json:"skills"`
	PersonalInfo        resume.PersonalInfo `json:"personal_info"`
	Experience          []resume.Experience `json:"experience"`
	Education           []resume.Education  `json:"education"`
	Projects            []resume.Project    `json:"projects"`
	CreatedAt           *time.Time          `json:"created_at,omitempty"`
	UpdatedAt           *time.Time          `json:"updated_at,omitempty"`
}

func newResumeResponse(model database.Resume, includeMeta bool) resumeResponse {
	doc := model.Document.Data()
	doc.Normalize()

	resp := resumeResponse{
		ID:                  model.ID,
		UserID:              model.UserID,
		Title:               model.Title,
		Public:              model.Public,
		Template:            model.Template,
		AccentColor:         model.AccentColor,
		ProfessionalSummary: doc.ProfessionalSummary,
		Skills:              doc.Skills,
		PersonalInfo:        doc.PersonalInfo,
		Experience:          doc.Experience,
		Education:           doc.Education,
		Projects:            doc.Projects,
	}
	if includeMeta {
		created := model.CreatedAt
		updated := model.UpdatedAt
		resp.CreatedAt = &created
		resp.UpdatedAt = &updated
	}
	return resp
}

type createResumeRequest struct {
	Title string `json:"title"`
}

// CreateResume inserts a new resume with only the title populated.
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req createResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		BadRequest(c, "Title is required")
		return
	}

	var doc resume.Document
	doc.Normalize()

	model := database.Resume{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Template:    defaultTemplate,
		AccentColor: defaultAccentColor,
		Document:    datatypes.NewJSONType(doc),
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&model).Error; err != nil {
		Internal(c, "failed to create resume")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Resume created successfully",
		"resume":  newResumeResponse(model, true),
	})
}

// GetResume returns one of the caller's resumes. The response strips creation
// and update timestamps.
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	model, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.replyResumeLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resume": newResumeResponse(*model, false)})
}

// GetPublicResume returns a resume by id without an ownership check, but only
// when its public flag is set.
func (h *ResumeHandler) GetPublicResume(c *gin.Context) {
	resumeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid resume id")
		return
	}

	var model database.Resume
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND public = ?", uint(resumeID), true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Resume not found or is not public")
			return
		}
		Internal(c, "failed to query resume")
		return
	}

	c.JSON(http.StatusOK, gin.H{"resume": newResumeResponse(model, true)})
}

// resumeDataRequest is the validated full-document payload of an update.
// Unknown fields are rejected rather than trusted into the replace.
type resumeDataRequest struct {
	Title               string              `json:"title"`
	Public              bool                `json:"public"`
	Template            string              `json:"template"`
	AccentColor         string              `json:"accent_color"`
	ProfessionalSummary string              `json:"professional_summary"`
	Skills              []string            `json:"skills"`
	PersonalInfo        resume.PersonalInfo `json:"personal_info"`
	Experience          []resume.Experience `json:"experience"`
	Education           []resume.Education  `json:"education"`
	Projects            []resume.Project    `json:"projects"`
}

type updateResumeRequest struct {
	ResumeID         uint            `json:"resumeId"`
	ResumeData       json.RawMessage `json:"resumeData"`
	RemoveBackground bool            `json:"removeBackground"`
}

// UpdateResume replaces a resume document wholesale, optionally routing an
// uploaded profile image through the asset CDN first. A missing target is an
// explicit 404, never a silent no-op.
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var (
		resumeID         uint
		rawData          []byte
		removeBackground bool
		image            *multipart.FileHeader
	)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		id, err := strconv.ParseUint(c.PostForm("resumeId"), 10, 64)
		if err != nil {
			BadRequest(c, "invalid resume id")
			return
		}
		resumeID = uint(id)
		rawData = []byte(c.PostForm("resumeData"))
		removeBackground, _ = strconv.ParseBool(c.PostForm("removeBackground"))
		image, _ = c.FormFile("image")
	} else {
		var req updateResumeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
		resumeID = req.ResumeID
		rawData = req.ResumeData
		removeBackground = req.RemoveBackground
	}

	if len(rawData) == 0 {
		BadRequest(c, "resumeData is required")
		return
	}

	var data resumeDataRequest
	decoder := json.NewDecoder(bytes.NewReader(rawData))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&data); err != nil {
		BadRequest(c, "invalid resumeData: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	model, err := h.getResumeForUser(ctx, strconv.FormatUint(uint64(resumeID), 10), userID)
	if err != nil {
		h.replyResumeLookupError(c, err)
		return
	}

	doc := resume.Document{
		ProfessionalSummary: data.ProfessionalSummary,
		Skills:              data.Skills,
		PersonalInfo:        data.PersonalInfo,
		Experience:          data.Experience,
		Education:           data.Education,
		Projects:            data.Projects,
	}
	doc.Normalize()

	if image != nil {
		url, err := h.uploadProfileImage(c, image, removeBackground)
		if err != nil {
			return // response already written
		}
		doc.PersonalInfo.Image = url
	}

	title := strings.TrimSpace(data.Title)
	if title == "" {
		title = model.Title
	}
	template := data.Template
	if template == "" {
		template = model.Template
	}
	accent := data.AccentColor
	if accent == "" {
		accent = model.AccentColor
	}

	model.Title = title
	model.Public = data.Public
	model.Template = template
	model.AccentColor = accent
	model.Document = datatypes.NewJSONType(doc)

	if err := h.db.WithContext(ctx).Save(model).Error; err != nil {
		Internal(c, "failed to update resume")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Resume updated successfully",
		"resume":  newResumeResponse(*model, true),
	})
}

// uploadProfileImage scans the file when a clamd address is configured, then
// forwards it to the CDN. On failure it writes the error response itself.
func (h *ResumeHandler) uploadProfileImage(c *gin.Context, image *multipart.FileHeader, removeBackground bool) (string, error) {
	logger := middleware.LoggerFromContext(c)

	if h.clamdAddr != "" {
		fileReader, err := image.Open()
		if err != nil {
			Internal(c, "failed to open image")
			return "", err
		}

		abortChan := make(chan bool)
		scanChan, err := clamd.NewClamd(h.clamdAddr).ScanStream(fileReader, abortChan)
		fileReader.Close()
		if err != nil {
			logger.Error("scan image", slog.Any("error", err))
			Internal(c, "failed to scan image")
			return "", err
		}
		defer close(abortChan)

		for result := range scanChan {
			if result.Status != clamd.RES_OK {
				err := errors.New("malicious file detected")
				BadRequest(c, err.Error())
				return "", err
			}
		}
	}

	fileReader, err := image.Open()
	if err != nil {
		Internal(c, "failed to open image")
		return "", err
	}
	defer fileReader.Close()

	url, err := h.uploader.Upload(c.Request.Context(), fileReader, "resume.png", removeBackground)
	if err != nil {
		logger.Error("upload image", slog.Any("error", err))
		Error(c, http.StatusServiceUnavailable, "image upload failed")
		return "", err
	}
	return url, nil
}

// DeleteResume removes one of the caller's resumes. Deleting a missing id is
// not an error.
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	resumeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid resume id")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Delete(&database.Resume{}, uint(resumeID)).Error; err != nil {
		Internal(c, "failed to delete resume")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resume deleted successfully"})
}

type duplicateResumeRequest struct {
	ResumeID uint `json:"resumeId"`
}

// DuplicateResume deep-copies a resume under a collision-free title. The new
// title seeds at "<title> (Copy)" and counts up until free.
func (h *ResumeHandler) DuplicateResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req duplicateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	source, err := h.getResumeForUser(ctx, strconv.FormatUint(uint64(req.ResumeID), 10), userID)
	if err != nil {
		h.replyResumeLookupError(c, err)
		return
	}

	newTitle, err := resume.CopyTitle(source.Title, func(title string) (bool, error) {
		var count int64
		err := h.db.WithContext(ctx).Model(&database.Resume{}).
			Where("user_id = ? AND title = ?", userID, title).
			Count(&count).Error
		return count > 0, err
	})
	if err != nil {
		Internal(c, "failed to resolve duplicate title")
		return
	}

	duplicate := database.Resume{
		UserID:      userID,
		Title:       newTitle,
		Public:      source.Public,
		Template:    source.Template,
		AccentColor: source.AccentColor,
		Document:    source.Document,
	}
	if err := h.db.WithContext(ctx).Create(&duplicate).Error; err != nil {
		Internal(c, "failed to duplicate resume")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Resume duplicated successfully",
		"resume":  newResumeResponse(duplicate, true),
	})
}

func (h *ResumeHandler) getResumeForUser(ctx context.Context, idParam string, userID uint) (*database.Resume, error) {
	resumeID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, errInvalidResumeID
	}

	var model database.Resume
	if err := h.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", uint(resumeID), userID).
		First(&model).Error; err != nil {
		return nil, err
	}

	return &model, nil
}

func (h *ResumeHandler) replyResumeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidResumeID):
		BadRequest(c, "invalid resume id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "Resume not found")
	default:
		Internal(c, "failed to query resume")
	}
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
