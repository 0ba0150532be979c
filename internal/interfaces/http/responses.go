package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/lecturer-claims/internal/application/service"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/domain/report"
)

const (
	monthLayout = "2006-01"
	moneyPlaces = 2
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Field   string      `json:"field,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// ClaimResponse represents a claim in API responses
type ClaimResponse struct {
	ID              int64   `json:"id"`
	LecturerID      string  `json:"lecturer_id"`
	HoursWorked     string  `json:"hours_worked"`
	HourlyRate      string  `json:"hourly_rate"`
	TotalAmount     string  `json:"total_amount"`
	ClaimMonth      string  `json:"claim_month"`
	Period          string  `json:"period"`
	Notes           string  `json:"notes,omitempty"`
	HasDocument     bool    `json:"has_document"`
	DocumentName    string  `json:"document_name,omitempty"`
	Status          string  `json:"status"`
	SubmittedAt     string  `json:"submitted_at"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	ReviewedBy      string  `json:"reviewed_by,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	Version         int64   `json:"version"`
}

// ClaimDetailResponse is returned by GET /api/claims/:id
type ClaimDetailResponse struct {
	ClaimResponse
	AllowedActions []string `json:"allowed_actions"`
}

// ClaimListResponse is returned by GET /api/claims
type ClaimListResponse struct {
	View   string          `json:"view"`
	Claims []ClaimResponse `json:"claims"`
}

// HistoryResponse represents one lifecycle transition
type HistoryResponse struct {
	ActorID        string `json:"actor_id"`
	PreviousStatus string `json:"previous_status,omitempty"`
	NewStatus      string `json:"new_status"`
	Action         string `json:"action"`
	Note           string `json:"note,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// ApprovedResponse is returned by GET /api/hr/approved
type ApprovedResponse struct {
	Claims             []ClaimResponse `json:"claims"`
	Count              int             `json:"count"`
	TotalAmount        string          `json:"total_amount"`
	EarliestClaimMonth string          `json:"earliest_claim_month"`
	LecturerCount      int             `json:"lecturer_count"`
}

// ReportRowResponse is one month of the payment report
type ReportRowResponse struct {
	Period        string `json:"period"`
	TotalClaims   int    `json:"total_claims"`
	TotalAmount   string `json:"total_amount"`
	ApprovedCount int    `json:"approved_count"`
	PaidCount     int    `json:"paid_count"`
}

// ReportResponse is returned by GET /api/hr/report
type ReportResponse struct {
	Rows          []ReportRowResponse `json:"rows"`
	TotalClaims   int                 `json:"total_claims"`
	TotalAmount   string              `json:"total_amount"`
	TotalApproved int                 `json:"total_approved"`
	TotalPaid     int                 `json:"total_paid"`
	GeneratedAt   string              `json:"generated_at"`
}

// LecturerResponse is one row of GET /api/hr/lecturers
type LecturerResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	TotalClaims   int    `json:"total_claims"`
	TotalAmount   string `json:"total_amount"`
	PendingCount  int    `json:"pending_count"`
	ApprovedCount int    `json:"approved_count"`
}

// writeError maps service errors onto HTTP status codes
func (h *Handlers) writeError(c *gin.Context, err error, action string) {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: ve.Error(), Field: ve.Field})
		return
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "access denied"})
		return
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
		return
	case errors.Is(err, entity.ErrInvalidState), errors.Is(err, entity.ErrConcurrentUpdate):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}

	h.logger.Error("Request failed", "action", action, "error", err)
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: action + " failed"})
}

func badRequest(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: message, Field: field})
}

func toClaimResponse(claim *entity.Claim) ClaimResponse {
	resp := ClaimResponse{
		ID:              claim.ID,
		LecturerID:      claim.LecturerID,
		HoursWorked:     claim.HoursWorked.String(),
		HourlyRate:      claim.HourlyRate.StringFixed(moneyPlaces),
		TotalAmount:     claim.TotalAmount().StringFixed(moneyPlaces),
		ClaimMonth:      claim.ClaimMonth.Format(monthLayout),
		Period:          report.PeriodLabel(claim.ClaimMonth),
		Notes:           claim.Notes,
		HasDocument:     claim.HasDocument(),
		DocumentName:    claim.OriginalFileName,
		Status:          claim.Status,
		SubmittedAt:     claim.SubmittedAt.Format(time.RFC3339),
		ReviewedBy:      claim.ReviewedBy,
		RejectionReason: claim.RejectionReason,
		Version:         claim.Version,
	}

	if claim.ReviewedAt != nil {
		reviewedAt := claim.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &reviewedAt
	}

	return resp
}

func toClaimDetailResponse(detail *service.ClaimDetail) ClaimDetailResponse {
	actions := make([]string, 0, len(detail.AllowedActions))
	for _, action := range detail.AllowedActions {
		actions = append(actions, string(action))
	}
	return ClaimDetailResponse{
		ClaimResponse:  toClaimResponse(detail.Claim),
		AllowedActions: actions,
	}
}

func toClaimResponses(claims []*entity.Claim) []ClaimResponse {
	resp := make([]ClaimResponse, 0, len(claims))
	for _, claim := range claims {
		resp = append(resp, toClaimResponse(claim))
	}
	return resp
}

func toClaimListResponse(list *service.ClaimList) ClaimListResponse {
	return ClaimListResponse{
		View:   string(list.View),
		Claims: toClaimResponses(list.Claims),
	}
}

func toHistoryResponses(history []*entity.ClaimHistory) []HistoryResponse {
	resp := make([]HistoryResponse, 0, len(history))
	for _, h := range history {
		resp = append(resp, HistoryResponse{
			ActorID:        h.ActorID,
			PreviousStatus: h.PreviousStatus,
			NewStatus:      h.NewStatus,
			Action:         h.Action,
			Note:           h.Note,
			Timestamp:      h.Timestamp.Format(time.RFC3339),
		})
	}
	return resp
}

func toApprovedResponse(view *entity.ApprovedView) ApprovedResponse {
	return ApprovedResponse{
		Claims:             toClaimResponses(view.Claims),
		Count:              view.Summary.Count,
		TotalAmount:        view.Summary.TotalAmount.StringFixed(moneyPlaces),
		EarliestClaimMonth: view.Summary.EarliestClaimMonth.Format(time.RFC3339),
		LecturerCount:      view.Summary.LecturerCount,
	}
}

func toReportResponse(r *entity.MonthlyReport) ReportResponse {
	rows := make([]ReportRowResponse, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, ReportRowResponse{
			Period:        row.Period,
			TotalClaims:   row.TotalClaims,
			TotalAmount:   row.TotalAmount.StringFixed(moneyPlaces),
			ApprovedCount: row.ApprovedCount,
			PaidCount:     row.PaidCount,
		})
	}

	return ReportResponse{
		Rows:          rows,
		TotalClaims:   r.TotalClaims,
		TotalAmount:   r.TotalAmount.StringFixed(moneyPlaces),
		TotalApproved: r.TotalApproved,
		TotalPaid:     r.TotalPaid,
		GeneratedAt:   r.GeneratedAt.Format(time.RFC3339),
	}
}

func toLecturerResponses(summaries []*entity.LecturerSummary) []LecturerResponse {
	resp := make([]LecturerResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, LecturerResponse{
			ID:            s.Lecturer.ID,
			DisplayName:   s.Lecturer.DisplayName,
			TotalClaims:   s.TotalClaims,
			TotalAmount:   s.TotalAmount.StringFixed(moneyPlaces),
			PendingCount:  s.PendingCount,
			ApprovedCount: s.ApprovedCount,
		})
	}
	return resp
}
