package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyReportRow aggregates approved and paid claims for one claim month
type MonthlyReportRow struct {
	Year          int             `json:"year"`
	Month         time.Month      `json:"month"`
	Period        string          `json:"period"`
	TotalClaims   int             `json:"total_claims"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ApprovedCount int             `json:"approved_count"`
	PaidCount     int             `json:"paid_count"`
}

// MonthlyReport is the payment report with overall totals
type MonthlyReport struct {
	Rows          []MonthlyReportRow `json:"rows"`
	TotalClaims   int                `json:"total_claims"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	TotalApproved int                `json:"total_approved"`
	TotalPaid     int                `json:"total_paid"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// ApprovedSummary holds the statistics shown alongside approved claims
type ApprovedSummary struct {
	Count              int             `json:"count"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	EarliestClaimMonth time.Time       `json:"earliest_claim_month"`
	LecturerCount      int             `json:"lecturer_count"`
}

// ApprovedView lists approved claims awaiting payment
type ApprovedView struct {
	Claims  []*Claim        `json:"claims"`
	Summary ApprovedSummary `json:"summary"`
}

// LecturerSummary holds per-lecturer claim statistics
type LecturerSummary struct {
	Lecturer      Actor           `json:"lecturer"`
	TotalClaims   int             `json:"total_claims"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PendingCount  int             `json:"pending_count"`
	ApprovedCount int             `json:"approved_count"`
}
