package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/garyjia/lecturer-claims/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{
		Path:            filepath.Join(t.TempDir(), "nested", "claims.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestRunEmbeddedMigrations(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	migrator := NewMigrator(db, zap.NewNop())

	version, err := migrator.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	applied, err := migrator.RunMigrations(ctx, migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	for _, table := range []string{"schema_migrations", "actors", "claims", "claim_history"} {
		assert.True(t, tableExists(t, db, table), table)
	}

	// Running again is a no-op
	applied, err = migrator.RunMigrations(ctx, migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	version, err = migrator.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.NoError(t, db.Health(ctx))
}

func TestRunMigrationsInVersionOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"002_add_column.sql":  {Data: []byte("ALTER TABLE widgets ADD COLUMN size INTEGER;")},
		"001_create.sql":      {Data: []byte("CREATE TABLE widgets (id INTEGER PRIMARY KEY);")},
		"README.md":           {Data: []byte("ignored")},
		"nested/003_more.sql": {Data: []byte("CREATE TABLE gadgets (id INTEGER PRIMARY KEY);")},
	}

	migrator := NewMigrator(db, zap.NewNop())
	applied, err := migrator.RunMigrations(ctx, fsys)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)

	assert.True(t, tableExists(t, db, "widgets"))
	assert.True(t, tableExists(t, db, "gadgets"))

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM schema_migrations WHERE version = 2").Scan(&name))
	assert.Equal(t, "add_column", name)

	version, err := migrator.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestParseMigrations(t *testing.T) {
	scripts, err := ParseMigrations(fstest.MapFS{
		"010_later.sql":  {Data: []byte("SELECT 2;")},
		"002_early.sql":  {Data: []byte("SELECT 1;")},
		"003.sql":        {Data: []byte("SELECT 3;")},
		"notes/todo.txt": {Data: []byte("ignored")},
	})
	require.NoError(t, err)

	require.Len(t, scripts, 3)
	assert.Equal(t, Migration{Version: 2, Name: "early", SQL: "SELECT 1;"}, scripts[0])
	assert.Equal(t, Migration{Version: 3, Name: "", SQL: "SELECT 3;"}, scripts[1])
	assert.Equal(t, 10, scripts[2].Version)
}

func TestRunMigrationsRejectsBadFiles(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"unnumbered":   {"create.sql": {Data: []byte("SELECT 1;")}},
		"zero version": {"000_init.sql": {Data: []byte("SELECT 1;")}},
		"duplicate": {
			"001_a.sql": {Data: []byte("SELECT 1;")},
			"001_b.sql": {Data: []byte("SELECT 1;")},
		},
		"broken sql": {"001_broken.sql": {Data: []byte("CREATE TABLE (;")}},
	}

	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			db := openTestDB(t)
			_, err := NewMigrator(db, zap.NewNop()).RunMigrations(context.Background(), fsys)
			assert.Error(t, err)
		})
	}
}

func TestFailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE widgets (id INTEGER PRIMARY KEY);")},
		"002_broken.sql": {Data: []byte("INSERT INTO missing_table VALUES (1);")},
	}

	migrator := NewMigrator(db, zap.NewNop())
	applied, err := migrator.RunMigrations(ctx, fsys)
	require.Error(t, err)
	assert.Equal(t, 1, applied)

	version, err := migrator.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestWithTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, err := db.Exec("CREATE TABLE widgets (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	err = db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO widgets (id) VALUES (1)"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM widgets").Scan(&count))
	assert.Equal(t, 0, count)
}
