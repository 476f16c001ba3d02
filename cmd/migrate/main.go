package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/fixora/assetdash/internal/config"
	"github.com/fixora/assetdash/internal/logger"
)

type migrationFile struct {
	version int
	name    string
	path    string
	down    bool
}

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "assetdash-migrate",
	})
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	files, err := loadMigrationFiles(cfg.Database.MigrationsPath)
	if err != nil {
		log.Fatalf("failed to load migrations: %v", err)
	}

	m := &migrator{db: db, logger: appLogger}
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		log.Fatalf("failed to ensure schema_migrations: %v", err)
	}

	switch strings.ToLower(*mode) {
	case "up":
		err = m.up(ctx, files)
	case "down":
		err = m.down(ctx, files)
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
	if err != nil {
		appLogger.Error(ctx, "Migration failed", err, map[string]interface{}{"mode": *mode})
		os.Exit(1)
	}
	appLogger.Info(ctx, "Migration completed", map[string]interface{}{"mode": *mode})
}

// loadMigrationFiles reads NNN_name.up.sql and NNN_name.down.sql files sorted by version
func loadMigrationFiles(dir string) ([]migrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f, ok := parseMigrationName(e.Name())
		if !ok {
			continue
		}
		f.path = filepath.Join(dir, e.Name())
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

func parseMigrationName(filename string) (migrationFile, bool) {
	lower := strings.ToLower(filename)
	var f migrationFile
	switch {
	case strings.HasSuffix(lower, ".down.sql"):
		f.down = true
		filename = filename[:len(filename)-len(".down.sql")]
	case strings.HasSuffix(lower, ".up.sql"):
		filename = filename[:len(filename)-len(".up.sql")]
	default:
		return f, false
	}

	parts := strings.SplitN(filename, "_", 2)
	if len(parts) != 2 {
		return f, false
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil || version < 1 {
		return f, false
	}
	f.version = version
	f.name = parts[1]
	return f, true
}

type migrator struct {
	db     *sql.DB
	logger logger.Logger
}

func (m *migrator) ensureSchemaMigrations(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (m *migrator) applied(ctx context.Context, version int) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
	return exists, err
}

// up applies every pending up migration in ascending order, one transaction each
func (m *migrator) up(ctx context.Context, files []migrationFile) error {
	for _, f := range files {
		if f.down {
			continue
		}
		done, err := m.applied(ctx, f.version)
		if err != nil {
			return err
		}
		if done {
			continue
		}

		m.logger.Info(ctx, "Applying migration", map[string]interface{}{"version": f.version, "name": f.name})
		err = m.inTx(ctx, f.path, "INSERT INTO schema_migrations (version, name, applied_at) VALUES ($1, $2, $3)",
			f.version, f.name, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed applying %s: %w", f.path, err)
		}
	}
	return nil
}

// down reverts applied migrations in descending order
func (m *migrator) down(ctx context.Context, files []migrationFile) error {
	for i := len(files) - 1; i >= 0; i-- {
		f := files[i]
		if !f.down {
			continue
		}
		done, err := m.applied(ctx, f.version)
		if err != nil {
			return err
		}
		if !done {
			continue
		}

		m.logger.Info(ctx, "Reverting migration", map[string]interface{}{"version": f.version, "name": f.name})
		if err := m.inTx(ctx, f.path, "DELETE FROM schema_migrations WHERE version = $1", f.version); err != nil {
			return fmt.Errorf("failed reverting %s: %w", f.path, err)
		}
	}
	return nil
}

func (m *migrator) inTx(ctx context.Context, path, bookkeeping string, args ...interface{}) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, args...); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
