package store

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/qdsl/internal/querysql"
)

// Supported database/sql driver names.
const (
	DriverSQLite3  = "sqlite3"  // github.com/mattn/go-sqlite3 (cgo)
	DriverSQLite   = "sqlite"   // modernc.org/sqlite (pure Go)
	DriverPostgres = "postgres" // github.com/lib/pq
)

// DefaultStatementCacheSize is the number of prepared statements kept per
// store when no size is configured.
const DefaultStatementCacheSize = 64

// Store owns the database handle and the shared, stateless pieces every
// Session uses: the SQL compiler and the prepared statement cache.
type Store struct {
	db       *sqlx.DB
	driver   string
	compiler *querysql.SQLCompiler
	logger   *slog.Logger
	stmts    *lru.Cache[string, *cachedStmt]
	ids      SessionIDGenerator

	cacheSize   int
	autoMigrate bool
}

// Option configures Open.
type Option func(*Store)

// WithLogger sets the logger for store lifecycle and statement tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithStatementCacheSize sets how many prepared statements are cached.
// Zero or a negative size disables the cache.
func WithStatementCacheSize(n int) Option {
	return func(s *Store) {
		s.cacheSize = n
	}
}

// WithAutoMigrate controls whether Open runs pending migrations. It is on
// by default; callers that turn it off must call Migrate themselves.
func WithAutoMigrate(on bool) Option {
	return func(s *Store) {
		s.autoMigrate = on
	}
}

// Open connects to the database, applies driver pragmas and runs pending
// migrations.
//
// SQLite databases (either driver) are configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//   - A single open connection (one writer, no SQLITE_BUSY)
//
// This function is idempotent - safe to call multiple times on one database.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	s := &Store{
		driver:      driver,
		compiler:    querysql.NewSQLCompiler(querysql.WithDialect(dialect)),
		logger:      slog.Default(),
		ids:         UUIDv7Generator{},
		cacheSize:   DefaultStatementCacheSize,
		autoMigrate: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db

	if dialect == querysql.SQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	if s.cacheSize > 0 {
		s.stmts, err = lru.NewWithEvict(s.cacheSize, func(_ string, c *cachedStmt) {
			c.evict()
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create statement cache: %w", err)
		}
	}

	if s.autoMigrate {
		if _, err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	s.logger.Info("store opened", "driver", driver, "statement_cache", s.cacheSize)
	return s, nil
}

func dialectFor(driver string) (querysql.Dialect, error) {
	switch driver {
	case DriverSQLite3, DriverSQLite:
		return querysql.SQLite, nil
	case DriverPostgres:
		return querysql.Postgres, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Close releases cached statements and closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if s.stmts != nil {
		s.stmts.Purge()
	}
	return s.db.Close()
}

// Driver returns the database/sql driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Compiler returns the SQL compiler for this store's dialect.
func (s *Store) Compiler() *querysql.SQLCompiler {
	return s.compiler
}

// InTx runs fn with a Session bound to one transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(*Session) error) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		return fn(s.newSession(tx, true))
	})
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
