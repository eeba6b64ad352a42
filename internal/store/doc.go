// Package store executes compiled queries against a SQL database.
//
// A Store owns the *sqlx.DB, the dialect's SQL compiler and an LRU cache of
// prepared statements. Queries run through a Session, a request-scoped
// context carrying its own id and logger:
//
//	sess := st.Session()
//	rows, err := store.Fetch[member.MemberTeamDto](ctx, sess, q)
//
// # Drivers
//
//   - sqlite3: github.com/mattn/go-sqlite3 (default)
//   - sqlite: modernc.org/sqlite, pure Go
//   - postgres: github.com/lib/pq
//
// SQLite databases run with WAL, synchronous=NORMAL, busy_timeout=5000,
// foreign_keys=ON and a single open connection.
//
// # Schema
//
// Open applies the embedded migrations (migrations/NNNN_name.dialect.sql)
// that the migrations table has not recorded yet. Opening the same database
// repeatedly is safe. WithAutoMigrate(false) leaves that to an explicit
// Migrate call.
//
// # Results
//
// Fetch returns an empty slice, never nil. FetchOne reports ErrNotFound and
// ErrNonUniqueResult. Driver errors are wrapped with %w.
package store
