package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"go.uber.org/zap"
)

// HistoryRepository implements port.ClaimHistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.ClaimHistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new history record
func (r *HistoryRepository) Create(ctx context.Context, history *entity.ClaimHistory) error {
	query := `
		INSERT INTO claim_history (
			claim_id, actor_id, previous_status, new_status,
			action, note, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		history.ClaimID,
		history.ActorID,
		history.PreviousStatus,
		history.NewStatus,
		history.Action,
		history.Note,
		history.Timestamp.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.Int64("claim_id", history.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	history.ID = id
	return nil
}

// GetByClaimID retrieves all history records for a claim, oldest first
func (r *HistoryRepository) GetByClaimID(ctx context.Context, claimID int64) ([]*entity.ClaimHistory, error) {
	query := `
		SELECT id, claim_id, actor_id, previous_status, new_status,
			action, note, timestamp
		FROM claim_history
		WHERE claim_id = ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to get history by claim ID", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	records := []*entity.ClaimHistory{}
	for rows.Next() {
		var record entity.ClaimHistory
		err := rows.Scan(
			&record.ID,
			&record.ClaimID,
			&record.ActorID,
			&record.PreviousStatus,
			&record.NewStatus,
			&record.Action,
			&record.Note,
			&record.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// Verify interface compliance
var _ port.ClaimHistoryRepository = (*HistoryRepository)(nil)
