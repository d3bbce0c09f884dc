// Package odbc implements backend.SessionBackend/StatementBackend over
// alexbrainman/odbc via database/sql, grounded in SOCI's odbc backend
// (the generic fallback driver for engines with no dedicated backend)
// and, for the database/sql plumbing, on the mysql/sqlite backends'
// shared shape.
package odbc

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/alexbrainman/odbc"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

func init() {
	backend.Register("odbc", Open)
}

// Open dials dsn as an ODBC connection string (DSN= or DRIVER=...) and
// returns a SessionBackend.
func Open(ctx context.Context, dsn string) (backend.SessionBackend, error) {
	db, err := sql.Open("odbc", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &Session{db: db}, nil
}

// Session wraps a database/sql *sql.DB and the in-flight transaction, if
// any.
type Session struct {
	db *sql.DB
	tx *sql.Tx
}

func (s *Session) Begin(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
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
	err := s.tx.Commit()
	s.tx = nil
	return err
}
func (s *Session) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}

func (s *Session) MakeStatementBackend() backend.StatementBackend {
	return &Statement{session: s}
}
func (s *Session) MakeRowIDBackend() (backend.RowIDBackend, error) {
	return nil, fmt.Errorf("odbc: row-id has no portable representation across drivers behind ODBC")
}
func (s *Session) MakeBlobBackend() (backend.BlobBackend, error) {
	return nil, fmt.Errorf("odbc: incremental blob I/O is not exposed uniformly across ODBC drivers")
}
func (s *Session) Close() error       { return s.db.Close() }
func (s *Session) DriverName() string { return "odbc" }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Session) execer() execer {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Statement is the per-query driver state. ODBC is SOCI's generic
// fallback backend: no native array bind, a single row cache refilled
// one round-trip at a time, mirroring the mysql backend's shape.
type Statement struct {
	session *Session

	query string
	args  []any
	// vectorArgs holds, by bind position, the *[]T vector pointer a bulk
	// Use adapter bound there; its presence routes Execute to the
	// per-row bulk path instead of a single ExecContext call.
	vectorArgs map[int]any

	rows        *sql.Rows
	columns     []string
	columnTypes []*sql.ColumnType
	buffered    [][]any
	cursor      int

	intoDests []intoDest

	lastNumRows int
}

type intoDest struct {
	pos  int
	data any
	t    backend.ExchangeType
}

func (st *Statement) Alloc(ctx context.Context) error { return nil }

func (st *Statement) Prepare(ctx context.Context, query string, hint backend.PrepareHint) error {
	st.query = query
	return nil
}

func looksLikeSelect(query string) bool {
	trimmed := strings.TrimSpace(query)
	return len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "select")
}

func (st *Statement) Execute(ctx context.Context, num int) (backend.ExecResult, error) {
	if !looksLikeSelect(st.query) {
		if len(st.vectorArgs) > 0 {
			return st.executeBulk(ctx, num)
		}
		res, err := st.session.execer().ExecContext(ctx, st.query, st.args...)
		if err != nil {
			return backend.NoData, err
		}
		n, _ := res.RowsAffected()
		st.lastNumRows = int(n)
		return backend.NoData, nil
	}

	rows, err := st.session.execer().QueryContext(ctx, st.query, st.args...)
	if err != nil {
		return backend.NoData, err
	}
	st.rows = rows
	st.columns, err = rows.Columns()
	if err != nil {
		return backend.NoData, err
	}
	st.columnTypes, _ = rows.ColumnTypes()
	st.buffered = nil
	st.cursor = 0
	st.lastNumRows = 0

	if num <= 0 {
		return backend.NoData, nil
	}
	return st.pullRows(num)
}

// executeBulk runs the bound statement once per row of a bulk Use batch,
// the client-side loop ODBC's lack of a uniform array-bind API forces on
// SOCI's generic-fallback backend. It stops at the first row whose
// ExecContext fails, keeping the rows-affected total for every row that
// already committed.
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
		res, err := st.session.execer().ExecContext(ctx, st.query, args...)
		if err != nil {
			st.lastNumRows = int(total)
			return backend.NoData, err
		}
		n, _ := res.RowsAffected()
		total += n
	}
	st.lastNumRows = int(total)
	return backend.NoData, nil
}

func (st *Statement) rowArgs(i int) ([]any, error) {
	args := make([]any, len(st.args))
	copy(args, st.args)
	for pos, vec := range st.vectorArgs {
		val, err := backend.VectorElementAt(vec, i)
		if err != nil {
			return nil, err
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

func (st *Statement) pullRows(num int) (backend.ExecResult, error) {
	st.buffered = st.buffered[:0]
	for len(st.buffered) < num {
		if !st.rows.Next() {
			break
		}
		vals := make([]any, len(st.columns))
		ptrs := make([]any, len(st.columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := st.rows.Scan(ptrs...); err != nil {
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

func (st *Statement) RewriteForProcedureCall(query string) string { return "{call " + query + "}" }

func (st *Statement) PrepareForDescribe(ctx context.Context) (int, error) {
	if st.rows == nil {
		if _, err := st.Execute(ctx, 0); err != nil {
			return 0, err
		}
	}
	return len(st.columns), nil
}

func (st *Statement) DescribeColumn(ctx context.Context, index int) (backend.ColumnInfo, error) {
	if index < 0 || index >= len(st.columns) {
		return backend.ColumnInfo{}, fmt.Errorf("odbc: column index %d out of range", index)
	}
	info := backend.ColumnInfo{Name: st.columns[index], HasMetadata: true}
	if index < len(st.columnTypes) {
		info.Type = logicalTypeForDBType(st.columnTypes[index].DatabaseTypeName())
	} else {
		info.Type = backend.LogicalString
	}
	return info, nil
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

func logicalTypeForDBType(dbType string) backend.LogicalType {
	switch strings.ToUpper(dbType) {
	case "TINYINT", "SMALLINT", "INT", "INTEGER", "BIGINT":
		return backend.LogicalInteger
	case "FLOAT", "DOUBLE", "REAL", "DECIMAL", "NUMERIC":
		return backend.LogicalDouble
	case "DATE", "DATETIME", "TIMESTAMP":
		return backend.LogicalDate
	default:
		return backend.LogicalString
	}
}
