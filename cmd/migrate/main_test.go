package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/assetdash/internal/logger"
)

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		version  int
		name     string
		down     bool
		ok       bool
	}{
		{"001_create_asset_tables.up.sql", 1, "create_asset_tables", false, true},
		{"012_add_index.down.sql", 12, "add_index", true, true},
		{"README.md", 0, "", false, false},
		{"init.up.sql", 0, "", false, false},
		{"abc_init.up.sql", 0, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			f, ok := parseMigrationName(tt.filename)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.version, f.version)
				assert.Equal(t, tt.name, f.name)
				assert.Equal(t, tt.down, f.down)
			}
		})
	}
}

func writeMigrations(t *testing.T) []migrationFile {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"001_create_assets.up.sql":   "CREATE TABLE assets (id TEXT);",
		"001_create_assets.down.sql": "DROP TABLE assets;",
		"002_add_events.up.sql":      "CREATE TABLE asset_events (id TEXT);",
		"002_add_events.down.sql":    "DROP TABLE asset_events;",
		"notes.txt":                  "ignored",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	files, err := loadMigrationFiles(dir)
	require.NoError(t, err)
	return files
}

func TestMigrator_UpSkipsApplied(t *testing.T) {
	files := writeMigrations(t)
	require.Len(t, files, 4)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(2).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE asset_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(2, "add_events", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	m := &migrator{db: db, logger: logger.Discard()}
	require.NoError(t, m.up(context.Background(), files))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_DownRevertsNewestFirst(t *testing.T) {
	files := writeMigrations(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").WithArgs(2).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE asset_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM schema_migrations").WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	m := &migrator{db: db, logger: logger.Discard()}
	require.NoError(t, m.down(context.Background(), files))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollsBackFailedScript(t *testing.T) {
	files := writeMigrations(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE assets").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	m := &migrator{db: db, logger: logger.Discard()}
	err = m.up(context.Background(), files)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
