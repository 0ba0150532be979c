package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"go.uber.org/zap"
)

// ActorRepository implements port.ActorRepository on the actors table
type ActorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewActorRepository creates a new actor repository
func NewActorRepository(db *sql.DB, logger *zap.Logger) port.ActorRepository {
	return &ActorRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an actor by ID
func (r *ActorRepository) GetByID(ctx context.Context, id string) (*entity.Actor, error) {
	query := `SELECT id, display_name, role FROM actors WHERE id = ?`

	var actor entity.Actor
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&actor.ID,
		&actor.DisplayName,
		&actor.Role,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get actor by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	return &actor, nil
}

// ListByRole returns actors holding role ordered by display name
func (r *ActorRepository) ListByRole(ctx context.Context, role entity.Role) ([]*entity.Actor, error) {
	query := `
		SELECT id, display_name, role
		FROM actors
		WHERE role = ?
		ORDER BY display_name COLLATE NOCASE ASC, id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, role.String())
	if err != nil {
		r.logger.Error("Failed to list actors by role", zap.String("role", role.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list actors: %w", err)
	}
	defer rows.Close()

	actors := []*entity.Actor{}
	for rows.Next() {
		var actor entity.Actor
		if err := rows.Scan(&actor.ID, &actor.DisplayName, &actor.Role); err != nil {
			return nil, fmt.Errorf("failed to scan actor: %w", err)
		}
		actors = append(actors, &actor)
	}

	return actors, rows.Err()
}

// Upsert registers an actor or updates its display name and role
func (r *ActorRepository) Upsert(ctx context.Context, actor *entity.Actor) error {
	if actor.ID == "" {
		return entity.NewValidationError("id", "must not be empty")
	}
	if !actor.Role.IsValid() {
		return entity.NewValidationError("role", "unknown role %q", actor.Role)
	}

	query := `
		INSERT INTO actors (id, display_name, role)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			role = excluded.role,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := getExecutor(ctx, r.db).ExecContext(ctx, query, actor.ID, actor.DisplayName, actor.Role.String()); err != nil {
		r.logger.Error("Failed to upsert actor", zap.String("id", actor.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert actor: %w", err)
	}

	r.logger.Info("Actor registered", zap.String("id", actor.ID), zap.String("role", actor.Role.String()))
	return nil
}

// Verify interface compliance
var _ port.ActorRepository = (*ActorRepository)(nil)
