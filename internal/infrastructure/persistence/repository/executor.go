package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/sqlite"
)

// getExecutor returns the open transaction from ctx, or db
func getExecutor(ctx context.Context, db *sql.DB) sqlite.QueryExecutor {
	return sqlite.Executor(ctx, db)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
