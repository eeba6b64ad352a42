package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/qdsl/internal/queryir"
)

// Results is one page of rows plus the total row count of the unpaged query.
type Results[T any] struct {
	Items  []T
	Total  int64
	Offset int64
	Limit  int64
}

// Fetch runs q and scans every row into T.
//
// T is a struct with `db` tags matching the projected column names (or
// aliases), or a scalar when q projects one column. Returns an empty slice,
// never nil, when nothing matches.
func Fetch[T any](ctx context.Context, s *Session, q queryir.Select) ([]T, error) {
	st, err := s.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	start := time.Now()
	items := []T{}
	if err := s.selectInto(ctx, &items, st); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	s.trace(ctx, "fetch", st, start, "rows", len(items))
	return items, nil
}

// FetchOne returns the single row q matches.
// Returns ErrNotFound for no rows and ErrNonUniqueResult for more than one.
func FetchOne[T any](ctx context.Context, s *Session, q queryir.Select) (T, error) {
	var zero T
	if q.Limit == 0 || q.Limit > 2 {
		q.Limit = 2
	}
	items, err := Fetch[T](ctx, s, q)
	if err != nil {
		return zero, err
	}
	switch len(items) {
	case 0:
		return zero, ErrNotFound
	case 1:
		return items[0], nil
	default:
		return zero, ErrNonUniqueResult
	}
}

// FetchFirst returns the first row in q's order, or ErrNotFound.
func FetchFirst[T any](ctx context.Context, s *Session, q queryir.Select) (T, error) {
	var zero T
	q.Limit = 1
	items, err := Fetch[T](ctx, s, q)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, ErrNotFound
	}
	return items[0], nil
}

// FetchResults runs the paged content query and a count query for the total.
func FetchResults[T any](ctx context.Context, s *Session, q queryir.Select) (Results[T], error) {
	items, err := Fetch[T](ctx, s, q)
	if err != nil {
		return Results[T]{}, err
	}
	total, err := s.FetchCount(ctx, q)
	if err != nil {
		return Results[T]{}, err
	}
	return Results[T]{
		Items:  items,
		Total:  total,
		Offset: q.Offset,
		Limit:  q.Limit,
	}, nil
}

// FetchCount returns how many rows q matches, ignoring its paging.
func (s *Session) FetchCount(ctx context.Context, q queryir.Select) (int64, error) {
	st, err := s.compileCount(q)
	if err != nil {
		return 0, fmt.Errorf("fetch count: %w", err)
	}

	start := time.Now()
	var counts []int64
	if err := s.selectInto(ctx, &counts, st); err != nil {
		return 0, fmt.Errorf("fetch count: %w", err)
	}
	if len(counts) != 1 {
		return 0, fmt.Errorf("fetch count: expected one row, got %d", len(counts))
	}
	s.trace(ctx, "fetch count", st, start, "count", counts[0])
	return counts[0], nil
}

// FetchTuples runs q and returns each row as a Tuple keyed by column name.
func (s *Session) FetchTuples(ctx context.Context, q queryir.Select) ([]Tuple, error) {
	st, err := s.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("fetch tuples: %w", err)
	}

	start := time.Now()
	rows, err := s.queryRows(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("fetch tuples: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("fetch tuples: columns: %w", err)
	}

	tuples := []Tuple{}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("fetch tuples: scan: %w", err)
		}
		tuples = append(tuples, newTuple(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch tuples: %w", err)
	}
	s.trace(ctx, "fetch tuples", st, start, "rows", len(tuples))
	return tuples, nil
}

// Execute runs an Insert, Update or Delete and returns the rows affected.
func (s *Session) Execute(ctx context.Context, q queryir.Query) (int64, error) {
	if _, ok := q.(queryir.Select); ok {
		return 0, errors.New("execute: select queries must be fetched")
	}
	if _, ok := q.(*queryir.Select); ok {
		return 0, errors.New("execute: select queries must be fetched")
	}

	st, err := s.Compile(q)
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}

	start := time.Now()
	res, err := s.exec(ctx, st)
	if err != nil {
		return 0, fmt.Errorf("execute: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("execute: rows affected: %w", err)
	}
	s.trace(ctx, "execute", st, start, "affected", affected)
	return affected, nil
}

// InsertReturning runs an Insert whose Returning names exactly one integer
// column (the generated key) and returns its value.
func (s *Session) InsertReturning(ctx context.Context, q queryir.Insert) (int64, error) {
	if len(q.Returning) != 1 {
		return 0, fmt.Errorf("insert returning: need exactly one returning column, got %d", len(q.Returning))
	}

	st, err := s.Compile(q)
	if err != nil {
		return 0, fmt.Errorf("insert returning: %w", err)
	}

	start := time.Now()
	var ids []int64
	if err := s.selectInto(ctx, &ids, st); err != nil {
		return 0, fmt.Errorf("insert returning: %w", err)
	}
	if len(ids) != 1 {
		return 0, fmt.Errorf("insert returning: expected one row, got %d", len(ids))
	}
	s.trace(ctx, "insert", st, start, "id", ids[0])
	return ids[0], nil
}
