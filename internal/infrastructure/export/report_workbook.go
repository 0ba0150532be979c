package export

import (
	"fmt"
	"io"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Sheet names in the exported workbook
const (
	MonthlySheet   = "Monthly"
	LecturersSheet = "Lecturers"
)

// excelize built-in number format "#,##0.00"
const amountNumFmt = 4

var (
	monthlyHeader   = []interface{}{"Period", "Total Claims", "Total Amount", "Approved", "Paid"}
	lecturersHeader = []interface{}{"Lecturer ID", "Name", "Total Claims", "Total Amount", "Pending", "Approved"}
)

// WorkbookExporter writes payment reports as xlsx workbooks
type WorkbookExporter struct {
	institution string
	logger      *zap.Logger
}

// Option configures a WorkbookExporter
type Option func(*WorkbookExporter)

// WithInstitution sets the workbook title and creator properties
func WithInstitution(name string) Option {
	return func(e *WorkbookExporter) {
		e.institution = name
	}
}

// NewWorkbookExporter creates a new WorkbookExporter
func NewWorkbookExporter(logger *zap.Logger, opts ...Option) *WorkbookExporter {
	e := &WorkbookExporter{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ContentType returns the xlsx MIME type
func (e *WorkbookExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileExtension returns ".xlsx"
func (e *WorkbookExporter) FileExtension() string {
	return ".xlsx"
}

// Write renders the monthly report and lecturer summaries to w
func (e *WorkbookExporter) Write(w io.Writer, report *entity.MonthlyReport, lecturers []*entity.LecturerSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), MonthlySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(LecturersSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: amountNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create total style: %w", err)
	}

	if e.institution != "" {
		if err := f.SetDocProps(&excelize.DocProperties{
			Title:   e.institution + " lecturer claims",
			Creator: e.institution,
			Created: report.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}); err != nil {
			return fmt.Errorf("failed to set workbook properties: %w", err)
		}
	}

	if err := e.fillMonthly(f, report, headerStyle, amountStyle, totalStyle); err != nil {
		return err
	}
	if err := e.fillLecturers(f, lecturers, headerStyle, amountStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Report workbook written",
		zap.Int("monthly_rows", len(report.Rows)),
		zap.Int("lecturer_rows", len(lecturers)))
	return nil
}

func (e *WorkbookExporter) fillMonthly(f *excelize.File, report *entity.MonthlyReport, headerStyle, amountStyle, totalStyle int) error {
	if err := e.writeRow(f, MonthlySheet, 1, monthlyHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(MonthlySheet, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	for _, r := range report.Rows {
		values := []interface{}{r.Period, r.TotalClaims, amount(r.TotalAmount), r.ApprovedCount, r.PaidCount}
		if err := e.writeRow(f, MonthlySheet, row, values); err != nil {
			return err
		}
		row++
	}

	totals := []interface{}{"Total", report.TotalClaims, amount(report.TotalAmount), report.TotalApproved, report.TotalPaid}
	if err := e.writeRow(f, MonthlySheet, row, totals); err != nil {
		return err
	}

	if row > 2 {
		if err := f.SetCellStyle(MonthlySheet, "C2", fmt.Sprintf("C%d", row-1), amountStyle); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}
	if err := f.SetCellStyle(MonthlySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), totalStyle); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}

	return f.SetColWidth(MonthlySheet, "A", "A", 18)
}

func (e *WorkbookExporter) fillLecturers(f *excelize.File, lecturers []*entity.LecturerSummary, headerStyle, amountStyle int) error {
	if err := e.writeRow(f, LecturersSheet, 1, lecturersHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(LecturersSheet, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, s := range lecturers {
		values := []interface{}{
			s.Lecturer.ID,
			s.Lecturer.DisplayName,
			s.TotalClaims,
			amount(s.TotalAmount),
			s.PendingCount,
			s.ApprovedCount,
		}
		if err := e.writeRow(f, LecturersSheet, i+2, values); err != nil {
			return err
		}
	}

	if len(lecturers) > 0 {
		if err := f.SetCellStyle(LecturersSheet, "D2", fmt.Sprintf("D%d", len(lecturers)+1), amountStyle); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	return f.SetColWidth(LecturersSheet, "A", "B", 22)
}

// writeRow writes values starting at column A of the given 1-based row
func (e *WorkbookExporter) writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		e.logger.Warn("Failed to write row",
			zap.String("sheet", sheet),
			zap.Int("row", row),
			zap.Error(err))
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// amount converts to float64 for spreadsheet arithmetic; cells are rounded to cents
func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Verify interface compliance
var _ port.ReportExporter = (*WorkbookExporter)(nil)
