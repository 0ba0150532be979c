// Package report derives payment summaries from sets of claims.
// Functions here are pure: callers load and order the claims.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PeriodLayout formats a claim month as its report label, e.g. "January 2024"
const PeriodLayout = "January 2006"

// PeriodLabel returns the report label for a claim month
func PeriodLabel(month time.Time) string {
	return month.Format(PeriodLayout)
}

// SummarizeApproved computes the HR payment view statistics.
// EarliestClaimMonth is now when claims is empty.
func SummarizeApproved(claims []*entity.Claim, now time.Time) entity.ApprovedSummary {
	summary := entity.ApprovedSummary{
		TotalAmount:        decimal.Zero,
		EarliestClaimMonth: now,
	}

	lecturers := make(map[string]struct{})
	for i, c := range claims {
		summary.Count++
		summary.TotalAmount = summary.TotalAmount.Add(c.TotalAmount())
		lecturers[c.LecturerID] = struct{}{}

		if i == 0 || c.ClaimMonth.Before(summary.EarliestClaimMonth) {
			summary.EarliestClaimMonth = c.ClaimMonth
		}
	}
	summary.LecturerCount = len(lecturers)

	return summary
}

type periodKey struct {
	year  int
	month time.Month
}

// BuildMonthlyReport groups claims by (year, month) of their claim month.
// Rows keep the order in which each period is first seen, so callers pass claims
// sorted by claim month ascending to get a chronological report.
func BuildMonthlyReport(claims []*entity.Claim, now time.Time) *entity.MonthlyReport {
	report := &entity.MonthlyReport{
		Rows:        []entity.MonthlyReportRow{},
		TotalAmount: decimal.Zero,
		GeneratedAt: now,
	}

	index := make(map[periodKey]int)
	for _, c := range claims {
		key := periodKey{year: c.ClaimMonth.Year(), month: c.ClaimMonth.Month()}

		pos, seen := index[key]
		if !seen {
			pos = len(report.Rows)
			index[key] = pos
			report.Rows = append(report.Rows, entity.MonthlyReportRow{
				Year:        key.year,
				Month:       key.month,
				Period:      PeriodLabel(c.ClaimMonth),
				TotalAmount: decimal.Zero,
			})
		}

		row := &report.Rows[pos]
		row.TotalClaims++
		row.TotalAmount = row.TotalAmount.Add(c.TotalAmount())
		switch c.Status {
		case entity.ClaimStatusApproved:
			row.ApprovedCount++
		case entity.ClaimStatusPaid:
			row.PaidCount++
		}
	}

	for _, row := range report.Rows {
		report.TotalClaims += row.TotalClaims
		report.TotalAmount = report.TotalAmount.Add(row.TotalAmount)
		report.TotalApproved += row.ApprovedCount
		report.TotalPaid += row.PaidCount
	}

	return report
}

// SummarizeLecturers builds one summary per lecturer across all of their claims,
// regardless of status, ordered by display name
func SummarizeLecturers(lecturers []*entity.Actor, claims []*entity.Claim) []*entity.LecturerSummary {
	byLecturer := make(map[string]*entity.LecturerSummary, len(lecturers))
	summaries := make([]*entity.LecturerSummary, 0, len(lecturers))

	for _, l := range lecturers {
		s := &entity.LecturerSummary{Lecturer: *l, TotalAmount: decimal.Zero}
		byLecturer[l.ID] = s
		summaries = append(summaries, s)
	}

	for _, c := range claims {
		s, ok := byLecturer[c.LecturerID]
		if !ok {
			continue
		}
		s.TotalClaims++
		s.TotalAmount = s.TotalAmount.Add(c.TotalAmount())
		switch c.Status {
		case entity.ClaimStatusPending:
			s.PendingCount++
		case entity.ClaimStatusApproved:
			s.ApprovedCount++
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].Lecturer, summaries[j].Lecturer
		if !strings.EqualFold(a.DisplayName, b.DisplayName) {
			return strings.ToLower(a.DisplayName) < strings.ToLower(b.DisplayName)
		}
		return a.ID < b.ID
	})

	return summaries
}
