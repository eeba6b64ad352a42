package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one schema step. Each version has a script per dialect:
// migrations/<version>_<name>.<sqlite|postgres>.sql
type Migration struct {
	Version int64
	Name    string
}

// Keep this in order of execution, oldest to newest.
//
// Schema version tracking:
// 1 - team and member tables, member.team_id index
// 2 - member.username index (username searches)
var migrations = []Migration{
	{Version: 1, Name: "create_tables"},
	{Version: 2, Name: "member_username_index"},
}

// CurrentSchemaVersion is the version a fully migrated database reports.
func CurrentSchemaVersion() int64 {
	return migrations[len(migrations)-1].Version
}

func migrationsTable(driver string) string {
	if driver == DriverPostgres {
		return `CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			version INTEGER NOT NULL UNIQUE
		)`
	}
	return `CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			version INTEGER NOT NULL UNIQUE
		)`
}

// Migrate applies pending migrations in one transaction and returns how
// many ran. Safe to call repeatedly.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	applied := 0
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, migrationsTable(s.driver)); err != nil {
			return fmt.Errorf("create migrations table: %w", err)
		}

		version, err := schemaVersion(ctx, tx)
		if err != nil {
			return err
		}

		for _, m := range migrations {
			if m.Version <= version {
				continue
			}

			s.logger.Info("running migration", "version", m.Version, "name", m.Name)
			if err := execMigration(ctx, tx, s.driver, m); err != nil {
				return fmt.Errorf("migration %d %s: %w", m.Version, m.Name, err)
			}

			if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO migrations (name, version) VALUES (?, ?)"), m.Name, m.Version); err != nil {
				return fmt.Errorf("record migration %d: %w", m.Version, err)
			}
			applied++
		}
		return nil
	})
	return applied, err
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	return schemaVersion(ctx, s.db)
}

func schemaVersion(ctx context.Context, q sqlx.QueryerContext) (int64, error) {
	var version int64
	err := sqlx.GetContext(ctx, q, &version, "SELECT version FROM migrations ORDER BY version DESC LIMIT 1")
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return version, nil
}

func execMigration(ctx context.Context, tx *sqlx.Tx, driver string, m Migration) error {
	flavor := "sqlite"
	if driver == DriverPostgres {
		flavor = "postgres"
	}

	script, err := migrationFS.ReadFile("migrations/" + migrationFileName(m, flavor))
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		return err
	}
	return nil
}

func migrationFileName(m Migration, flavor string) string {
	return fmt.Sprintf("%04d_%s.%s.sql", m.Version, m.Name, flavor)
}

func (s *Store) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			s.logger.Error("rollback failed", "err", rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
