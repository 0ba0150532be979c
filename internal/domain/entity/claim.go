package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claim status constants
const (
	ClaimStatusPending  = "PENDING"
	ClaimStatusApproved = "APPROVED"
	ClaimStatusRejected = "REJECTED"
	ClaimStatusPaid     = "PAID"
)

// Claim bounds
var (
	MinHoursWorked = decimal.NewFromInt(1)
	MaxHoursWorked = decimal.NewFromInt(200)
	MinHourlyRate  = decimal.Zero
	MaxHourlyRate  = decimal.NewFromInt(1000)
)

// MaxNotesLength is the maximum number of characters allowed in claim notes
const MaxNotesLength = 500

// Claim represents a lecturer's monthly hours claim
type Claim struct {
	ID          int64           `json:"id"`
	LecturerID  string          `json:"lecturer_id"`
	HoursWorked decimal.Decimal `json:"hours_worked"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	ClaimMonth  time.Time       `json:"claim_month"`
	Notes       string          `json:"notes,omitempty"`

	// Supporting document reference (both empty when no document was uploaded)
	DocumentKey      string `json:"document_key,omitempty"`
	OriginalFileName string `json:"original_file_name,omitempty"`

	Status          string     `json:"status"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	// Version is bumped by the repository on every successful update
	Version int64 `json:"version"`
}

// TotalAmount returns hours worked multiplied by the hourly rate
func (c *Claim) TotalAmount() decimal.Decimal {
	return c.HoursWorked.Mul(c.HourlyRate)
}

// HasDocument returns true if a supporting document is attached
func (c *Claim) HasDocument() bool {
	return c.DocumentKey != ""
}

// IsOwnedBy returns true if the claim belongs to the given actor
func (c *Claim) IsOwnedBy(actorID string) bool {
	return c.LecturerID == actorID
}

// MonthStart normalizes t to midnight UTC on the first day of its calendar month.
// A zero time falls back to the month containing now.
func MonthStart(t, now time.Time) time.Time {
	if t.IsZero() {
		t = now
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ClaimHistory records a single lifecycle transition of a claim
type ClaimHistory struct {
	ID             int64     `json:"id"`
	ClaimID        int64     `json:"claim_id"`
	ActorID        string    `json:"actor_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Action         string    `json:"action"`
	Note           string    `json:"note,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Document is a supporting document loaded for download
type Document struct {
	Content     []byte
	FileName    string
	ContentType string
}
