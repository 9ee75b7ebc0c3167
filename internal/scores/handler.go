package scores

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/ats"
	"resume-ats/internal/extract"
	"resume-ats/internal/shared/metrics"
	"resume-ats/internal/shared/server/middleware"
	"resume-ats/internal/shared/server/respond"
	"resume-ats/internal/shared/util"
)

const defaultMaxUploadBytes = 5 << 20

// Handler wires HTTP handlers to the score service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. maxUploadBytes caps each uploaded file.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches score routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ats/score", h.score)
	rg.POST("/ats/score/upload", h.upload)
	rg.POST("/ats/score/batch", h.batch)
	rg.GET("/ats/history", h.listHistory)
	rg.GET("/ats/history/:id", h.getHistory)
	rg.GET("/ats/progress", h.progress)
}

type scoreRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
	JobName        string `json:"jobName"`
}

type scoreResponse struct {
	ID      string `json:"id"`
	JobName string `json:"jobName"`
	ats.Report
}

type batchRequest struct {
	ResumeText string     `json:"resumeText"`
	Jobs       []BatchJob `json:"jobs"`
}

type batchItem struct {
	ID      string     `json:"id"`
	JobName string     `json:"jobName"`
	Report  ats.Report `json:"report"`
}

type historyItem struct {
	ID        string `json:"id"`
	JobName   string `json:"jobName"`
	Score     int    `json:"score"`
	CreatedAt string `json:"createdAt"`
}

func (h *Handler) score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	if field := missingField(req.ResumeText, req.JobDescription); field != "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, field+" is required", []map[string]string{
			{"field": field, "issue": "required"},
		})
		return
	}
	h.scoreAndRespond(c, req.JobName, req.ResumeText, req.JobDescription)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*h.MaxUploadBytes+(1<<20))

	resumeHeader, err := c.FormFile("resume")
	if err != nil {
		if isTooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodePayloadTooLarge, "upload too large", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "resume file is required", nil)
		return
	}
	resumeText, ok := h.extractFile(c, resumeHeader, "resume")
	if !ok {
		return
	}

	jobName := strings.TrimSpace(c.PostForm("jobName"))
	jobDescription := c.PostForm("jobDescription")
	if strings.TrimSpace(jobDescription) == "" {
		jdHeader, err := c.FormFile("jobDescriptionFile")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "jobDescription or jobDescriptionFile is required", nil)
			return
		}
		jobDescription, ok = h.extractFile(c, jdHeader, "jobDescriptionFile")
		if !ok {
			return
		}
		if jobName == "" {
			jobName = util.DisplayName(jdHeader.Filename)
		}
	}

	h.scoreAndRespond(c, jobName, resumeText, jobDescription)
}

// extractFile reads an uploaded file and returns its text. On failure it writes
// the error response and returns false.
func (h *Handler) extractFile(c *gin.Context, header *multipart.FileHeader, field string) (string, bool) {
	if header.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodePayloadTooLarge, field+" exceeds the upload limit", gin.H{"maxBytes": h.MaxUploadBytes})
		return "", false
	}
	file, err := header.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read "+field, nil)
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.MaxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read "+field, nil)
		return "", false
	}
	if int64(len(data)) > h.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodePayloadTooLarge, field+" exceeds the upload limit", gin.H{"maxBytes": h.MaxUploadBytes})
		return "", false
	}

	contentType := header.Header.Get("Content-Type")
	kind := extract.Kind(contentType, header.Filename, data)
	text, err := extract.ExtractTextFromBytes(c.Request.Context(), data, contentType, header.Filename)
	switch {
	case err == nil:
		metrics.IncExtract(kind, "ok")
		return text, true
	case errors.Is(err, extract.ErrUnsupportedType):
		metrics.IncExtract(kind, "unsupported")
		respond.Error(c, http.StatusUnsupportedMediaType, respond.CodeUnsupportedMedia, field+" must be a PDF, DOCX or plain text file", gin.H{"contentType": kind})
	case errors.Is(err, extract.ErrEmptyDocument):
		metrics.IncExtract(kind, "empty")
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, field+" contains no readable text", nil)
	default:
		metrics.IncExtract(kind, "error")
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to extract text from "+field, nil)
	}
	return "", false
}

func (h *Handler) scoreAndRespond(c *gin.Context, jobName, resume, jobDescription string) {
	userID := middleware.UserIDFromContext(c)
	rec, err := h.Svc.Score(c.Request.Context(), userID, jobName, resume, jobDescription)
	if err != nil {
		writeError(c, err, "failed to score resume")
		return
	}
	c.Set("scoreId", rec.ID)
	c.Set("score", rec.Score)
	respond.OK(c, scoreResponse{ID: rec.ID, JobName: rec.JobName, Report: rec.Report})
}

func (h *Handler) batch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	results, err := h.Svc.ScoreBatch(c.Request.Context(), middleware.UserIDFromContext(c), req.ResumeText, req.Jobs)
	if err != nil {
		writeError(c, err, "failed to score batch")
		return
	}

	items := make([]batchItem, 0, len(results))
	for _, r := range results {
		items = append(items, batchItem{ID: r.Record.ID, JobName: r.JobName, Report: r.Record.Report})
	}
	respond.OK(c, gin.H{"results": items})
}

func (h *Handler) listHistory(c *gin.Context) {
	limit := 0
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	records, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		writeError(c, err, "failed to list history")
		return
	}

	resp := make([]historyItem, 0, len(records))
	for _, rec := range records {
		resp = append(resp, historyItem{
			ID:        rec.ID,
			JobName:   rec.JobName,
			Score:     rec.Score,
			CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	respond.OK(c, resp)
}

func (h *Handler) getHistory(c *gin.Context) {
	rec, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch score")
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) progress(c *gin.Context) {
	p, err := h.Svc.Progress(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to load progress")
		return
	}
	respond.OK(c, p)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "score not found", nil)
	case errors.Is(err, ErrStorage):
		respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "failed to store score history", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, fallback, nil)
	}
}

func missingField(resume, jobDescription string) string {
	switch {
	case strings.TrimSpace(resume) == "":
		return "resumeText"
	case strings.TrimSpace(jobDescription) == "":
		return "jobDescription"
	}
	return ""
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
