// Package postgres implements backend.SessionBackend/StatementBackend
// for PostgreSQL using jackc/pgx/v5, grounded in the teacher's
// services/anchor postgres adapter's pgxpool usage and in SOCI's
// postgresql backend's client-side cursor behavior (spec.md §4.6's
// "PostgreSQL-style" row).
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

func init() {
	backend.Register("postgres", Open)
}

// Open dials dsn as a pgx connection-string DSN and returns a
// SessionBackend wrapping a pool of one or more physical connections.
func Open(ctx context.Context, dsn string) (backend.SessionBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Session{pool: pool}, nil
}

// Session wraps a pgxpool.Pool and the in-flight transaction, if any.
type Session struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (s *Session) Begin(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	s.tx = tx
	return nil
}

func (s *Session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit(ctx)
	s.tx = nil
	return err
}

func (s *Session) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback(ctx)
	s.tx = nil
	return err
}

func (s *Session) MakeStatementBackend() backend.StatementBackend {
	return &Statement{session: s}
}

func (s *Session) MakeRowIDBackend() (backend.RowIDBackend, error) {
	// PostgreSQL exposes row identity via the system column "oid" only
	// on tables created WITH OIDS, a feature removed in modern releases;
	// there is no stable driver-level row-id handle to wrap.
	return nil, fmt.Errorf("postgres: row-id is not supported; use the oid or ctid system column directly in SQL")
}

func (s *Session) MakeBlobBackend() (backend.BlobBackend, error) {
	return newLargeObject(s)
}

func (s *Session) Close() error {
	s.pool.Close()
	return nil
}

func (s *Session) DriverName() string { return "postgres" }

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting Statement
// run inside or outside an open transaction transparently.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *Session) querier() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.pool
}

// Statement is the per-query driver state: the prepared SQL text, bound
// parameter values, and -- once executed -- the client-side row cache
// spec.md's representative PostgreSQL behavior describes.
type Statement struct {
	session *Session

	query string
	hint  backend.PrepareHint

	positional []any
	named      map[string]any
	// vectorArgs holds, by $n position, the *[]T vector pointer a bulk
	// Use adapter bound there; its presence routes Execute to the
	// per-row bulk path instead of a single Query call.
	vectorArgs map[int]any

	rows     pgx.Rows
	fields   []pgx.FieldDescription
	buffered [][]any // rows already pulled off rows but not yet consumed
	cursor   int

	intoDests []intoDest

	lastNumRows int
}

type intoDest struct {
	pos  int
	data any
	t    backend.ExchangeType
}

func (st *Statement) Alloc(ctx context.Context) error {
	st.named = make(map[string]any)
	return nil
}

func (st *Statement) Prepare(ctx context.Context, query string, hint backend.PrepareHint) error {
	st.query = query
	st.hint = hint
	return nil
}

func (st *Statement) Execute(ctx context.Context, num int) (backend.ExecResult, error) {
	if len(st.vectorArgs) > 0 {
		return st.executeBulk(ctx, num)
	}
	args := st.buildArgs()
	rows, err := st.session.querier().Query(ctx, st.query, args...)
	if err != nil {
		return backend.NoData, err
	}
	st.rows = rows
	st.fields = rows.FieldDescriptions()
	st.buffered = nil
	st.cursor = 0
	st.lastNumRows = 0

	if len(st.fields) == 0 {
		// Non-SELECT: drain immediately and report the command tag's
		// affected-row count via lastNumRows for symmetry, though the
		// core does not require it for DML.
		rows.Next()
		tag := rows.CommandTag()
		rows.Close()
		st.lastNumRows = int(tag.RowsAffected())
		return backend.NoData, nil
	}

	if num <= 0 {
		return backend.NoData, nil
	}
	return st.pullRows(num)
}

// executeBulk issues one Query per row of a bulk Use batch and sums the
// command tag's affected-row count, the client-side loop spec.md's
// "PostgreSQL-style" bulk bind calls for since a plain Query has no
// native array-bind form. It stops at the first row whose query fails,
// keeping the total for every row that already committed.
func (st *Statement) executeBulk(ctx context.Context, num int) (backend.ExecResult, error) {
	if num <= 0 {
		num = 1
	}
	var total int64
	for i := 0; i < num; i++ {
		args, err := st.rowArgs(i)
		if err != nil {
			st.lastNumRows = int(total)
			return backend.NoData, err
		}
		rows, err := st.session.querier().Query(ctx, st.query, args...)
		if err != nil {
			st.lastNumRows = int(total)
			return backend.NoData, err
		}
		rows.Next()
		tag := rows.CommandTag()
		rows.Close()
		total += tag.RowsAffected()
	}
	st.lastNumRows = int(total)
	return backend.NoData, nil
}

// rowArgs assembles the i-th row's full positional argument list: a
// scalar Use's value repeats for every row, a vector Use's value is
// pulled out of its bound slice at index i.
func (st *Statement) rowArgs(i int) ([]any, error) {
	args := make([]any, len(st.positional))
	copy(args, st.positional)
	for pos, vec := range st.vectorArgs {
		val, err := backend.VectorElementAt(vec, i)
		if err != nil {
			return nil, err
		}
		for len(args) < pos {
			args = append(args, nil)
		}
		args[pos-1] = val
	}
	return args, nil
}

func (st *Statement) Fetch(ctx context.Context, num int) (backend.ExecResult, error) {
	if num <= 0 {
		num = 1
	}
	return st.pullRows(num)
}

// pullRows advances the client-side cursor by up to num rows, pulling
// fresh ones from pgx.Rows as needed. Clamps to whatever remains: a
// partial last batch reports Success with its row count in lastNumRows,
// and NoData is reported only when no row at all is left.
func (st *Statement) pullRows(num int) (backend.ExecResult, error) {
	st.buffered = st.buffered[:0]
	for len(st.buffered) < num {
		if !st.rows.Next() {
			break
		}
		vals, err := st.rows.Values()
		if err != nil {
			return backend.NoData, err
		}
		st.buffered = append(st.buffered, vals)
	}
	st.cursor = 0
	st.lastNumRows = len(st.buffered)
	if st.lastNumRows == 0 {
		return backend.NoData, st.rows.Err()
	}
	return backend.Success, nil
}

func (st *Statement) currentRow() []any {
	if st.cursor >= len(st.buffered) {
		return nil
	}
	return st.buffered[st.cursor]
}

func (st *Statement) NumRowsFetched() int { return st.lastNumRows }

func (st *Statement) RewriteForProcedureCall(query string) string {
	return "select " + query
}

func (st *Statement) PrepareForDescribe(ctx context.Context) (int, error) {
	if st.rows == nil {
		res, err := st.Execute(ctx, 0)
		if err != nil {
			return 0, err
		}
		_ = res
	}
	return len(st.fields), nil
}

func (st *Statement) DescribeColumn(ctx context.Context, index int) (backend.ColumnInfo, error) {
	if index < 0 || index >= len(st.fields) {
		return backend.ColumnInfo{}, fmt.Errorf("postgres: column index %d out of range", index)
	}
	f := st.fields[index]
	return backend.ColumnInfo{
		Name:        f.Name,
		Type:        logicalTypeForOID(f.DataTypeOID),
		HasMetadata: true,
	}, nil
}

func (st *Statement) MakeIntoTypeBackend(t backend.ExchangeType) backend.IntoTypeBackend {
	return &intoBackend{stmt: st, t: t}
}
func (st *Statement) MakeUseTypeBackend(t backend.ExchangeType) backend.UseTypeBackend {
	return &useBackend{stmt: st, t: t}
}
func (st *Statement) MakeVectorIntoTypeBackend(t backend.ExchangeType) backend.VectorIntoBackend {
	return &vectorIntoBackend{stmt: st, t: t}
}
func (st *Statement) MakeVectorUseTypeBackend(t backend.ExchangeType) backend.VectorUseBackend {
	return &vectorUseBackend{useBackend: useBackend{stmt: st, t: t}}
}

func (st *Statement) Close() error {
	if st.rows != nil {
		st.rows.Close()
	}
	return nil
}

// buildArgs returns the positional $n argument list. The statement core
// always resolves a named Use adapter to its placeholder's ordinal
// position before calling this backend (see statement.DefineAndBind),
// since PostgreSQL itself only ever binds by position.
func (st *Statement) buildArgs() []any { return st.positional }

func logicalTypeForOID(oid uint32) backend.LogicalType {
	switch oid {
	case 23, 21, 20: // int4, int2, int8
		return backend.LogicalInteger
	case 700, 701, 1700: // float4, float8, numeric
		return backend.LogicalDouble
	case 1082, 1114, 1184: // date, timestamp, timestamptz
		return backend.LogicalDate
	default:
		return backend.LogicalString
	}
}
