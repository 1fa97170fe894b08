package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"resumerag/internal/domain"
	"resumerag/internal/logger"
	"resumerag/internal/parser"
	"resumerag/internal/service"
)

const previewChars = 200

// Engine is the part of service.Engine the HTTP layer drives.
type Engine interface {
	Index(doc *domain.ParsedDocument) (service.IndexReport, error)
	IsInitialized() bool
	GetAutofillValue(ctx context.Context, req domain.AutofillRequest) domain.AutofillResult
	AnswerHRQuestion(ctx context.Context, req domain.HRQuestionRequest) domain.HRAnswerResult
	GetMultiEntries(ctx context.Context, section string) ([]domain.Entry, error)
	StructuredData() domain.StructuredData
}

// Handler serves the résumé upload and autofill API.
type Handler struct {
	engine         Engine
	log            *zap.Logger
	maxUploadBytes int64
}

func NewHandler(engine Engine, log *zap.Logger, maxUploadBytes int64) *Handler {
	return &Handler{engine: engine, log: logger.OrNop(log), maxUploadBytes: maxUploadBytes}
}

// UploadResponse is returned after a résumé has been parsed and indexed.
type UploadResponse struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	UploadID      string            `json:"upload_id"`
	SectionsFound []string          `json:"sections_found"`
	Preview       map[string]string `json:"preview"`
	ExtractedInfo map[string]string `json:"extracted_info"`
	Summary       string            `json:"summary"`
}

type multiEntryRequest struct {
	Section string `json:"section"`
}

// Index lists the available endpoints.
// GET /
func (h *Handler) Index(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":  "running",
		"message": "Resume Autofiller API is running",
		"endpoints": utils.H{
			"upload_resume":   "POST /api/upload",
			"autofill":        "POST /api/autofill",
			"answer_hr":       "POST /api/answer-hr",
			"get_resume_data": "GET /api/resume-data",
			"multi_entry":     "POST /api/multi-entry",
			"health":          "GET /api/health",
		},
	})
}

// Health reports liveness and whether a résumé is indexed.
// GET /api/health
func (h *Handler) Health(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "healthy", "rag_initialized": h.engine.IsInitialized()})
}

// Upload parses and indexes a résumé file.
// POST /api/upload
// FormData: file (pdf, docx or txt)
func (h *Handler) Upload(_ context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "No file provided"})
		return
	}
	if fileHeader.Filename == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "No file selected"})
		return
	}
	ext := filepath.Ext(fileHeader.Filename)
	if !parser.IsSupported(ext) {
		c.JSON(consts.StatusBadRequest, utils.H{
			"error": "File type not supported. Use: " + strings.Join(parser.SupportedExtensions, ", "),
		})
		return
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		c.JSON(consts.StatusRequestEntityTooLarge, utils.H{"error": fmt.Sprintf("File exceeds %d bytes", h.maxUploadBytes)})
		return
	}

	uploadID := uuid.NewString()
	log := h.log.With(zap.String("upload_id", uploadID), zap.String("filename", fileHeader.Filename))

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("open upload failed", zap.Error(err))
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("read upload failed", zap.Error(err))
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "Failed to read uploaded file"})
		return
	}

	doc, err := parser.Parse(fileHeader.Filename, data)
	if err != nil {
		log.Error("parse resume failed", zap.Error(err))
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	report, err := h.engine.Index(doc)
	if err != nil {
		if errors.Is(err, service.ErrEmptyDocument) {
			log.Warn("resume rejected", zap.Error(err))
			c.JSON(consts.StatusUnprocessableEntity, utils.H{"error": err.Error()})
			return
		}
		log.Error("index resume failed", zap.Error(err))
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	preview := make(map[string]string, len(doc.Sections))
	for _, s := range doc.Sections {
		preview[s.Name] = truncateRunes(s.Text, previewChars)
	}
	log.Info("resume uploaded", zap.Int("bytes", len(data)), zap.Strings("sections", doc.SectionNames()))

	c.JSON(consts.StatusOK, UploadResponse{
		Success:       true,
		Message:       "Resume uploaded and indexed successfully",
		UploadID:      uploadID,
		SectionsFound: doc.SectionNames(),
		Preview:       preview,
		ExtractedInfo: doc.ExtractedInfo,
		Summary:       report.Summary,
	})
}

// Autofill suggests a value for one form field.
// POST /api/autofill
func (h *Handler) Autofill(ctx context.Context, c *app.RequestContext) {
	var req domain.AutofillRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "No data provided"})
		return
	}
	if strings.TrimSpace(req.FieldLabel) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Field label is required"})
		return
	}
	if !h.engine.IsInitialized() {
		c.JSON(consts.StatusBadRequest, utils.H{
			"error":        "No resume uploaded yet",
			"needs_manual": true,
			"suggestion":   "Please upload your resume first",
		})
		return
	}
	c.JSON(consts.StatusOK, h.engine.GetAutofillValue(ctx, req))
}

// AnswerHR drafts an answer to a screening question.
// POST /api/answer-hr
func (h *Handler) AnswerHR(ctx context.Context, c *app.RequestContext) {
	var req domain.HRQuestionRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "No data provided"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Question is required"})
		return
	}
	if !h.engine.IsInitialized() {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "No resume uploaded yet", "needs_manual": true})
		return
	}
	c.JSON(consts.StatusOK, h.engine.AnswerHRQuestion(ctx, req))
}

// ResumeData returns the structured view of the indexed résumé.
// GET /api/resume-data
func (h *Handler) ResumeData(_ context.Context, c *app.RequestContext) {
	if !h.engine.IsInitialized() {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "No resume uploaded"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "structured_data": h.engine.StructuredData()})
}

// MultiEntry splits education, experience or projects into entries.
// POST /api/multi-entry
func (h *Handler) MultiEntry(ctx context.Context, c *app.RequestContext) {
	var req multiEntryRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "No data provided"})
		return
	}
	section := strings.ToLower(strings.TrimSpace(req.Section))
	if !domain.IsMultiEntrySection(section) {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "Invalid section. Use: education, experience, projects"})
		return
	}
	if !h.engine.IsInitialized() {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "No resume uploaded"})
		return
	}

	entries, err := h.engine.GetMultiEntries(ctx, section)
	if err != nil {
		status := consts.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidSection) {
			status = consts.StatusBadRequest
		}
		c.JSON(status, utils.H{"error": err.Error()})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"success": true, "entries": entries, "count": len(entries)})
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
