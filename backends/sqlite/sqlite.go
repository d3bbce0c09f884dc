// Package sqlite implements backend.SessionBackend/StatementBackend for
// SQLite using mattn/go-sqlite3 over database/sql, grounded in SOCI's
// sqlite3 backend's two-dimensional string row cache and its
// describe-then-reset behavior (spec.md §4.6's "SQLite-style" row).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

func init() {
	backend.Register("sqlite", Open)
}

// Open dials dsn (a file path, or ":memory:") and returns a
// SessionBackend.
func Open(ctx context.Context, dsn string) (backend.SessionBackend, error) {
	db, err := sql.Open("sqlite3", dsn)
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
	return nil, fmt.Errorf("sqlite: row-id is not supported through database/sql; select the rowid column directly")
}
func (s *Session) MakeBlobBackend() (backend.BlobBackend, error) {
	return nil, fmt.Errorf("sqlite: incremental blob I/O requires the driver's native connection hook, not exposed through database/sql")
}
func (s *Session) Close() error { return s.db.Close() }
func (s *Session) DriverName() string { return "sqlite" }

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

// Statement is the per-query driver state. SQLite has no native array
// bind either: spec.md's representative behavior resets the prepared
// statement and re-binds current-row text for each bulk iteration, and
// caches the whole result as a 2-D string grid. This backend keeps the
// fetched rows as [][]string, converting on demand in PostFetch, to
// mirror that string-cache idiom.
type Statement struct {
	session *Session

	query string
	args  []any
	// vectorArgs holds, by bind position, the *[]T vector pointer a bulk
	// Use adapter bound there; its presence routes Execute to the
	// per-row bulk path instead of a single ExecContext call.
	vectorArgs map[int]any

	rows    *sql.Rows
	columns []string
	decltyp []string
	cache   [][]string
	cursor  int

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
	if types, err := rows.ColumnTypes(); err == nil {
		st.decltyp = make([]string, len(types))
		for i, t := range types {
			st.decltyp[i] = t.DatabaseTypeName()
		}
	}
	st.cache = nil
	st.cursor = 0
	st.lastNumRows = 0

	if num <= 0 {
		return backend.NoData, nil
	}
	return st.pullRows(num)
}

// executeBulk re-binds and runs the statement once per row of a bulk Use
// batch, mirroring SOCI's sqlite3 backend's reset-and-rebind-per-row bulk
// path: this driver has no native array bind. It stops at the first row
// that fails, keeping the rows-affected total for every row already
// committed.
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

// pullRows steps the prepared statement and appends each row's
// text-formatted values to the 2-D string cache, spec.md's
// representative SQLite behavior.
func (st *Statement) pullRows(num int) (backend.ExecResult, error) {
	st.cache = st.cache[:0]
	for len(st.cache) < num {
		if !st.rows.Next() {
			break
		}
		raw := make([]any, len(st.columns))
		ptrs := make([]any, len(st.columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := st.rows.Scan(ptrs...); err != nil {
			return backend.NoData, err
		}
		row := make([]string, len(raw))
		for i, v := range raw {
			if v == nil {
				row[i] = "\x00NULL\x00" // sentinel: never a legal SQLite text value
				continue
			}
			row[i] = backend.AssignScalarToString(v)
		}
		st.cache = append(st.cache, row)
	}
	st.cursor = 0
	st.lastNumRows = len(st.cache)
	if st.lastNumRows == 0 {
		return backend.NoData, st.rows.Err()
	}
	return backend.Success, nil
}

func (st *Statement) currentRow() []string {
	if st.cursor >= len(st.cache) {
		return nil
	}
	return st.cache[st.cursor]
}

func (st *Statement) NumRowsFetched() int { return st.lastNumRows }

func (st *Statement) RewriteForProcedureCall(query string) string { return "select " + query }

// PrepareForDescribe executes with no fetch to obtain column metadata
// when no result set is open yet. Once one is open (also after rows have
// been fetched), it reports that set's column count without re-executing
// the query or moving the cursor.
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
		return backend.ColumnInfo{}, fmt.Errorf("sqlite: column index %d out of range", index)
	}
	info := backend.ColumnInfo{Name: st.columns[index], HasMetadata: true}
	if index < len(st.decltyp) {
		info.Type = logicalTypeForDeclared(st.decltyp[index])
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

func logicalTypeForDeclared(decl string) backend.LogicalType {
	switch strings.ToUpper(decl) {
	case "INTEGER", "INT", "BIGINT":
		return backend.LogicalInteger
	case "REAL", "FLOAT", "DOUBLE":
		return backend.LogicalDouble
	case "DATE", "DATETIME", "TIMESTAMP":
		return backend.LogicalDate
	default:
		return backend.LogicalString
	}
}
