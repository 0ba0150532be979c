package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/domain/report"
)

// ExportResult describes a written report file
type ExportResult struct {
	FileName    string
	ContentType string
}

// ReportService serves the HR payment view and reports
type ReportService interface {
	ApprovedView(ctx context.Context, actorID string) (*entity.ApprovedView, error)
	GenerateReport(ctx context.Context, actorID string) (*entity.MonthlyReport, error)
	ManageLecturers(ctx context.Context, actorID string) ([]*entity.LecturerSummary, error)
	ExportReport(ctx context.Context, actorID string, w io.Writer) (*ExportResult, error)
}

type reportServiceImpl struct {
	actors    actorResolver
	directory port.ActorDirectory
	claimRepo port.ClaimRepository
	exporter  port.ReportExporter
	logger    Logger
	now       func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	directory port.ActorDirectory,
	claimRepo port.ClaimRepository,
	exporter port.ReportExporter,
	logger Logger,
	opts ...Option,
) ReportService {
	o := buildOptions(opts)
	return &reportServiceImpl{
		actors:    actorResolver{directory: directory},
		directory: directory,
		claimRepo: claimRepo,
		exporter:  exporter,
		logger:    logger,
		now:       o.now,
	}
}

// ApprovedView lists approved claims by claim month with summary statistics
func (s *reportServiceImpl) ApprovedView(ctx context.Context, actorID string) (*entity.ApprovedView, error) {
	if _, err := s.actors.require(ctx, actorID, entity.RoleHR); err != nil {
		return nil, err
	}

	claims, err := s.claimRepo.Query(ctx, port.ClaimQuery{
		Statuses:  []string{entity.ClaimStatusApproved},
		OrderBy:   port.SortByClaimMonth,
		Direction: port.Ascending,
	})
	if err != nil {
		s.logger.Error("Failed to query approved claims", "error", err)
		return nil, fmt.Errorf("failed to query approved claims: %w", err)
	}
	if claims == nil {
		claims = []*entity.Claim{}
	}

	return &entity.ApprovedView{
		Claims:  claims,
		Summary: report.SummarizeApproved(claims, s.now()),
	}, nil
}

// GenerateReport aggregates approved and paid claims per claim month
func (s *reportServiceImpl) GenerateReport(ctx context.Context, actorID string) (*entity.MonthlyReport, error) {
	if _, err := s.actors.require(ctx, actorID, entity.RoleHR); err != nil {
		return nil, err
	}
	return s.monthlyReport(ctx)
}

// ManageLecturers summarizes every lecturer's claims
func (s *reportServiceImpl) ManageLecturers(ctx context.Context, actorID string) ([]*entity.LecturerSummary, error) {
	if _, err := s.actors.require(ctx, actorID, entity.RoleHR); err != nil {
		return nil, err
	}
	return s.lecturerSummaries(ctx)
}

// ExportReport writes the monthly report and lecturer summaries as a workbook
func (s *reportServiceImpl) ExportReport(ctx context.Context, actorID string, w io.Writer) (*ExportResult, error) {
	actor, err := s.actors.require(ctx, actorID, entity.RoleHR)
	if err != nil {
		return nil, err
	}

	monthly, err := s.monthlyReport(ctx)
	if err != nil {
		return nil, err
	}
	lecturers, err := s.lecturerSummaries(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.exporter.Write(w, monthly, lecturers); err != nil {
		s.logger.Error("Failed to export report", "error", err, "actor_id", actor.ID)
		return nil, fmt.Errorf("failed to export report: %w", err)
	}

	result := &ExportResult{
		FileName:    fmt.Sprintf("claims-report-%s%s", monthly.GeneratedAt.Format("2006-01-02"), s.exporter.FileExtension()),
		ContentType: s.exporter.ContentType(),
	}
	s.logger.Info("Report exported", "actor_id", actor.ID, "file", result.FileName, "rows", len(monthly.Rows))
	return result, nil
}

func (s *reportServiceImpl) monthlyReport(ctx context.Context) (*entity.MonthlyReport, error) {
	claims, err := s.claimRepo.Query(ctx, port.ClaimQuery{
		Statuses:  []string{entity.ClaimStatusApproved, entity.ClaimStatusPaid},
		OrderBy:   port.SortByClaimMonth,
		Direction: port.Ascending,
	})
	if err != nil {
		s.logger.Error("Failed to query report claims", "error", err)
		return nil, fmt.Errorf("failed to query report claims: %w", err)
	}

	return report.BuildMonthlyReport(claims, s.now()), nil
}

func (s *reportServiceImpl) lecturerSummaries(ctx context.Context) ([]*entity.LecturerSummary, error) {
	lecturers, err := s.directory.ListByRole(ctx, entity.RoleLecturer)
	if err != nil {
		s.logger.Error("Failed to list lecturers", "error", err)
		return nil, fmt.Errorf("failed to list lecturers: %w", err)
	}

	claims, err := s.claimRepo.Query(ctx, port.ClaimQuery{
		OrderBy:   port.SortBySubmittedAt,
		Direction: port.Ascending,
	})
	if err != nil {
		s.logger.Error("Failed to query lecturer claims", "error", err)
		return nil, fmt.Errorf("failed to query lecturer claims: %w", err)
	}

	return report.SummarizeLecturers(lecturers, claims), nil
}
