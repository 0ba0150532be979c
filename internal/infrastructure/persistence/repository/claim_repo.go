package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"go.uber.org/zap"
)

// claim_month is stored as a plain date so it never shifts across time zones
const claimMonthLayout = "2006-01-02"

const claimColumns = `
	id, lecturer_id, hours_worked, hourly_rate, claim_month, notes,
	document_key, original_file_name, status, submitted_at,
	reviewed_at, reviewed_by, rejection_reason, version`

var sortColumns = map[port.SortField]string{
	port.SortBySubmittedAt: "submitted_at",
	port.SortByClaimMonth:  "claim_month",
}

// ClaimRepository implements port.ClaimRepository
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new claim and assigns its ID
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	query := `
		INSERT INTO claims (
			lecturer_id, hours_worked, hourly_rate, claim_month, notes,
			document_key, original_file_name, status, submitted_at,
			reviewed_at, reviewed_by, rejection_reason, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		claim.LecturerID,
		claim.HoursWorked,
		claim.HourlyRate,
		claim.ClaimMonth.Format(claimMonthLayout),
		claim.Notes,
		nullString(claim.DocumentKey),
		nullString(claim.OriginalFileName),
		claim.Status,
		claim.SubmittedAt.UTC(),
		nullTime(claim.ReviewedAt),
		nullString(claim.ReviewedBy),
		nullString(claim.RejectionReason),
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.String("lecturer_id", claim.LecturerID), zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	claim.ID = id
	claim.Version = 0
	return nil
}

// GetByID retrieves a claim by ID
func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ?`

	claim, err := scanClaim(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	return claim, nil
}

// Update replaces the mutable fields when the stored version matches claim.Version
func (r *ClaimRepository) Update(ctx context.Context, claim *entity.Claim) error {
	query := `
		UPDATE claims SET
			hours_worked = ?, hourly_rate = ?, claim_month = ?, notes = ?,
			document_key = ?, original_file_name = ?, status = ?,
			reviewed_at = ?, reviewed_by = ?, rejection_reason = ?,
			version = version + 1
		WHERE id = ? AND version = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		claim.HoursWorked,
		claim.HourlyRate,
		claim.ClaimMonth.Format(claimMonthLayout),
		claim.Notes,
		nullString(claim.DocumentKey),
		nullString(claim.OriginalFileName),
		claim.Status,
		nullTime(claim.ReviewedAt),
		nullString(claim.ReviewedBy),
		nullString(claim.RejectionReason),
		claim.ID,
		claim.Version,
	)
	if err != nil {
		r.logger.Error("Failed to update claim", zap.Int64("id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to update claim: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		r.logger.Info("Stale claim update rejected", zap.Int64("id", claim.ID), zap.Int64("version", claim.Version))
		return fmt.Errorf("claim %d at version %d: %w", claim.ID, claim.Version, entity.ErrConcurrentUpdate)
	}

	claim.Version++
	return nil
}

// Query returns claims matching q, ties broken by id ascending
func (r *ClaimRepository) Query(ctx context.Context, q port.ClaimQuery) ([]*entity.Claim, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if q.LecturerID != "" {
		conditions = append(conditions, "lecturer_id = ?")
		args = append(args, q.LecturerID)
	}
	if len(q.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(q.Statuses)), ", ")
		conditions = append(conditions, "status IN ("+placeholders+")")
		for _, s := range q.Statuses {
			args = append(args, s)
		}
	}

	column, ok := sortColumns[q.OrderBy]
	if !ok {
		column = sortColumns[port.SortBySubmittedAt]
	}
	direction := port.Ascending
	if q.Direction == port.Descending {
		direction = port.Descending
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + claimColumns + ` FROM claims`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, id ASC", column, direction)

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, sb.String(), args...)
	if err != nil {
		r.logger.Error("Failed to query claims", zap.Error(err))
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	claims := []*entity.Claim{}
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}

	return claims, rows.Err()
}

// DocumentKeys returns every document key referenced by a claim
func (r *ClaimRepository) DocumentKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT document_key FROM claims WHERE document_key IS NOT NULL`)
	if err != nil {
		r.logger.Error("Failed to query document keys", zap.Error(err))
		return nil, fmt.Errorf("failed to query document keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan document key: %w", err)
		}
		keys[key] = struct{}{}
	}

	return keys, rows.Err()
}

func scanClaim(row rowScanner) (*entity.Claim, error) {
	var (
		claim            entity.Claim
		claimMonth       string
		documentKey      sql.NullString
		originalFileName sql.NullString
		reviewedAt       sql.NullTime
		reviewedBy       sql.NullString
		rejectionReason  sql.NullString
	)

	err := row.Scan(
		&claim.ID,
		&claim.LecturerID,
		&claim.HoursWorked,
		&claim.HourlyRate,
		&claimMonth,
		&claim.Notes,
		&documentKey,
		&originalFileName,
		&claim.Status,
		&claim.SubmittedAt,
		&reviewedAt,
		&reviewedBy,
		&rejectionReason,
		&claim.Version,
	)
	if err != nil {
		return nil, err
	}

	month, err := time.Parse(claimMonthLayout, claimMonth)
	if err != nil {
		return nil, fmt.Errorf("invalid claim_month %q: %w", claimMonth, err)
	}
	claim.ClaimMonth = month

	claim.DocumentKey = documentKey.String
	claim.OriginalFileName = originalFileName.String
	claim.ReviewedBy = reviewedBy.String
	claim.RejectionReason = rejectionReason.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		claim.ReviewedAt = &t
	}

	return &claim, nil
}

// Verify interface compliance
var _ port.ClaimRepository = (*ClaimRepository)(nil)
