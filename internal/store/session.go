package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roach88/qdsl/internal/ir"
	"github.com/roach88/qdsl/internal/queryir"
)

// querier is the part of *sqlx.DB and *sqlx.Tx a Session runs statements on.
type querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// Session is a request-scoped query context.
//
// Each Session carries its own id and logger, so concurrent requests never
// share builder or executor state. Sessions are cheap: create one per
// request (Store.Session) or per transaction (Store.InTx). A Session must
// not be used after its transaction ends.
type Session struct {
	id     uuid.UUID
	store  *Store
	q      querier
	inTx   bool
	logger *slog.Logger
}

// Session creates a Session on the store's connection pool.
func (s *Store) Session() *Session {
	return s.newSession(s.db, false)
}

func (s *Store) newSession(q querier, inTx bool) *Session {
	id := s.ids.Generate()
	return &Session{
		id:     id,
		store:  s,
		q:      q,
		inTx:   inTx,
		logger: s.logger.With("query_id", id.String()),
	}
}

// ID returns the session id that tags every log line of this session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Statement is a compiled query ready to run or display.
type Statement struct {
	SQL    string // Dialect placeholders ($n for Postgres, ? otherwise)
	Params []any  // In placeholder order
	Hash   string // ir.StatementHash of the portable (?) form
}

// Compile compiles q for this session's store without running it.
func (s *Session) Compile(q queryir.Query) (Statement, error) {
	sqlText, params, err := s.store.compiler.Compile(q)
	if err != nil {
		return Statement{}, err
	}
	return s.statement(sqlText, params)
}

func (s *Session) compileCount(q queryir.Query) (Statement, error) {
	sqlText, params, err := s.store.compiler.CompileCount(q)
	if err != nil {
		return Statement{}, err
	}
	return s.statement(sqlText, params)
}

func (s *Session) statement(sqlText string, params []any) (Statement, error) {
	hash, err := ir.StatementHash(sqlText, params)
	if err != nil {
		return Statement{}, fmt.Errorf("hash statement: %w", err)
	}
	return Statement{
		SQL:    s.store.db.Rebind(sqlText),
		Params: params,
		Hash:   hash,
	}, nil
}

func noRelease() {}

// prepared returns a cached prepared statement for sqlText, or nil when the
// session runs in a transaction or caching is disabled. The caller must call
// release once the statement has been run; rows already opened on it stay
// valid after release.
func (s *Session) prepared(ctx context.Context, sqlText string) (stmt *sqlx.Stmt, release func(), err error) {
	cache := s.store.stmts
	if s.inTx || cache == nil {
		return nil, noRelease, nil
	}
	if c, ok := cache.Get(sqlText); ok && c.acquire() {
		return c.stmt, c.release, nil
	}

	prepared, err := s.store.db.PreparexContext(ctx, sqlText)
	if err != nil {
		return nil, noRelease, fmt.Errorf("prepare: %w", err)
	}
	c := newCachedStmt(prepared)
	prev, found, _ := cache.PeekOrAdd(sqlText, c)
	if !found {
		return c.stmt, c.release, nil
	}
	if prev.acquire() {
		// Another session prepared it first.
		prepared.Close()
		return prev.stmt, prev.release, nil
	}
	// The cached entry is already evicted; run ours uncached.
	c.evict()
	return c.stmt, c.release, nil
}

func (s *Session) selectInto(ctx context.Context, dest any, st Statement) error {
	stmt, release, err := s.prepared(ctx, st.SQL)
	if err != nil {
		return err
	}
	defer release()
	if stmt != nil {
		return stmt.SelectContext(ctx, dest, st.Params...)
	}
	return sqlx.SelectContext(ctx, s.q, dest, st.SQL, st.Params...)
}

func (s *Session) queryRows(ctx context.Context, st Statement) (*sqlx.Rows, error) {
	stmt, release, err := s.prepared(ctx, st.SQL)
	if err != nil {
		return nil, err
	}
	defer release()
	if stmt != nil {
		return stmt.QueryxContext(ctx, st.Params...)
	}
	return s.q.QueryxContext(ctx, st.SQL, st.Params...)
}

func (s *Session) exec(ctx context.Context, st Statement) (sql.Result, error) {
	stmt, release, err := s.prepared(ctx, st.SQL)
	if err != nil {
		return nil, err
	}
	defer release()
	if stmt != nil {
		return stmt.ExecContext(ctx, st.Params...)
	}
	return s.q.ExecContext(ctx, st.SQL, st.Params...)
}

func (s *Session) trace(ctx context.Context, op string, st Statement, start time.Time, attrs ...any) {
	if !s.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs = append([]any{"stmt", st.Hash, "elapsed", time.Since(start)}, attrs...)
	s.logger.DebugContext(ctx, op, attrs...)
}
