package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/lecturer-claims/internal/application/service"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Report formats accepted by GET /api/hr/report
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	claims         service.ClaimService
	reports        service.ReportService
	health         HealthReporter
	maxUploadBytes int64
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	claims service.ClaimService,
	reports service.ReportService,
	health HealthReporter,
	maxUploadBytes int64,
	logger Logger,
) *Handlers {
	return &Handlers{
		claims:         claims,
		reports:        reports,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ReviewRequest is the body of POST /api/claims/:id/review
type ReviewRequest struct {
	Decision        string `json:"decision"`
	RejectionReason string `json:"rejection_reason"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}

	status := http.StatusOK
	if h.health != nil {
		healthy, details := h.health.HealthReport(c.Request.Context())
		response.Components = details
		if !healthy {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// SubmitClaim handles POST /api/claims
func (h *Handlers) SubmitClaim(c *gin.Context) {
	req, field, err := h.parseSubmitRequest(c)
	if err != nil {
		h.logger.Info("Invalid claim submission", "field", field, "error", err)
		badRequest(c, field, err.Error())
		return
	}

	claim, err := h.claims.Submit(c.Request.Context(), actorID(c), req)
	if err != nil {
		h.writeError(c, err, "claim submission")
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    toClaimResponse(claim),
	})
}

// ListClaims handles GET /api/claims
func (h *Handlers) ListClaims(c *gin.Context) {
	list, err := h.claims.ListForActor(c.Request.Context(), actorID(c))
	if err != nil {
		h.writeError(c, err, "claim listing")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toClaimListResponse(list),
	})
}

// GetClaim handles GET /api/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	detail, err := h.claims.GetDetail(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.writeError(c, err, "claim lookup")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toClaimDetailResponse(detail),
	})
}

// ClaimHistory handles GET /api/claims/:id/history
func (h *Handlers) ClaimHistory(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	history, err := h.claims.History(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.writeError(c, err, "claim history")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toHistoryResponses(history),
	})
}

// DownloadDocument handles GET /api/claims/:id/document
func (h *Handlers) DownloadDocument(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	doc, err := h.claims.DownloadDocument(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.writeError(c, err, "document download")
		return
	}

	fileName := doc.FileName
	if fileName == "" {
		fileName = fmt.Sprintf("claim-%d-document", id)
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

// ReviewClaim handles POST /api/claims/:id/review
func (h *Handlers) ReviewClaim(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Invalid review body", "id", id, "error", err)
		badRequest(c, "", "invalid request body")
		return
	}

	decision := service.Decision(strings.ToLower(strings.TrimSpace(req.Decision)))
	claim, err := h.claims.Review(c.Request.Context(), actorID(c), id, decision, req.RejectionReason)
	if err != nil {
		h.writeError(c, err, "claim review")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toClaimResponse(claim),
	})
}

// MarkPaid handles POST /api/claims/:id/pay
func (h *Handlers) MarkPaid(c *gin.Context) {
	id, ok := claimID(c)
	if !ok {
		return
	}

	claim, err := h.claims.MarkPaid(c.Request.Context(), actorID(c), id)
	if err != nil {
		h.writeError(c, err, "payment")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toClaimResponse(claim),
	})
}

// ApprovedClaims handles GET /api/hr/approved
func (h *Handlers) ApprovedClaims(c *gin.Context) {
	view, err := h.reports.ApprovedView(c.Request.Context(), actorID(c))
	if err != nil {
		h.writeError(c, err, "approved view")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toApprovedResponse(view),
	})
}

// Report handles GET /api/hr/report
func (h *Handlers) Report(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", FormatJSON))

	switch format {
	case FormatJSON:
		monthly, err := h.reports.GenerateReport(c.Request.Context(), actorID(c))
		if err != nil {
			h.writeError(c, err, "report")
			return
		}
		c.JSON(http.StatusOK, Response{
			Success: true,
			Data:    toReportResponse(monthly),
		})

	case FormatXLSX:
		var buf bytes.Buffer
		result, err := h.reports.ExportReport(c.Request.Context(), actorID(c), &buf)
		if err != nil {
			h.writeError(c, err, "report export")
			return
		}
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.FileName}))
		c.Data(http.StatusOK, result.ContentType, buf.Bytes())

	default:
		badRequest(c, "format", fmt.Sprintf("unsupported report format %q", format))
	}
}

// Lecturers handles GET /api/hr/lecturers
func (h *Handlers) Lecturers(c *gin.Context) {
	summaries, err := h.reports.ManageLecturers(c.Request.Context(), actorID(c))
	if err != nil {
		h.writeError(c, err, "lecturer summary")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toLecturerResponses(summaries),
	})
}

// parseSubmitRequest reads the multipart submission form.
// The returned field names the input that failed.
func (h *Handlers) parseSubmitRequest(c *gin.Context) (service.SubmitRequest, string, error) {
	var req service.SubmitRequest

	hours, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("hours_worked")))
	if err != nil {
		return req, "hours_worked", errors.New("hours_worked must be a number")
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("hourly_rate")))
	if err != nil {
		return req, "hourly_rate", errors.New("hourly_rate must be a number")
	}
	req.HoursWorked = hours
	req.HourlyRate = rate
	req.Notes = c.PostForm("notes")

	// A missing or unparseable month stays zero and defaults to the current month
	if parsed, err := time.Parse(monthLayout, strings.TrimSpace(c.PostForm("claim_month"))); err == nil {
		req.ClaimMonth = parsed
	}

	fileHeader, err := c.FormFile("supporting_document")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return req, "", nil
	}
	if err != nil {
		return req, "supporting_document", fmt.Errorf("invalid supporting_document: %v", err)
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return req, "supporting_document", fmt.Errorf("supporting_document exceeds %d bytes", h.maxUploadBytes)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return req, "supporting_document", fmt.Errorf("unreadable supporting_document: %v", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return req, "supporting_document", fmt.Errorf("unreadable supporting_document: %v", err)
	}

	req.Document = &service.Upload{
		FileName: fileHeader.Filename,
		Content:  content,
	}
	return req, "", nil
}

// claimID parses the :id path parameter, writing a 400 when it is invalid
func claimID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id", "invalid claim ID")
		return 0, false
	}
	return id, true
}
