package port

import (
	"io"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// ReportExporter renders payment reports into a downloadable file
type ReportExporter interface {
	// ContentType is the MIME type of the written file
	ContentType() string

	// FileExtension includes the leading dot
	FileExtension() string

	Write(w io.Writer, report *entity.MonthlyReport, lecturers []*entity.LecturerSummary) error
}
