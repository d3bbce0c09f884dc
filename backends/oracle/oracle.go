// Package oracle implements backend.SessionBackend/StatementBackend for
// Oracle using godror/godror over database/sql, grounded in SOCI's
// oracle backend: native bind-by-name support, and REF CURSOR output
// parameters surfaced as nested Statement handles (spec.md §4.3's
// closing paragraph, exchange.Cursor).
package oracle

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	_ "github.com/godror/godror"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

func init() {
	backend.Register("oracle", Open)
}

// Open dials dsn as a godror connect descriptor (either an EZConnect
// string or a logfmt-style godror connection string) and returns a
// SessionBackend.
func Open(ctx context.Context, dsn string) (backend.SessionBackend, error) {
	db, err := sql.Open("godror", dsn)
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
	return &rowID{}, nil
}

func (s *Session) MakeBlobBackend() (backend.BlobBackend, error) {
	return nil, fmt.Errorf("oracle: LOB locators require a live lob handle bound from a fetched row; construct one through a statement, not the session")
}

func (s *Session) Close() error       { return s.db.Close() }
func (s *Session) DriverName() string { return "oracle" }

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

// Statement is the per-query driver state. Unlike the client-side-cursor
// backends, Oracle binds by name natively (the statement core never
// resolves a named Use adapter to a position for this driver -- see
// statement.DefineAndBind's Native-style branch), and a TypeStatement
// Into adapter receives a live REF CURSOR as a nested *sql.Rows wrapped
// in its own Statement, not a value in the row cache.
type Statement struct {
	session *Session

	query string

	positional []any
	named      map[string]any
	outCursors map[int]*driver.Rows

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

func (st *Statement) Alloc(ctx context.Context) error {
	st.named = make(map[string]any)
	st.outCursors = make(map[int]*driver.Rows)
	return nil
}

func (st *Statement) Prepare(ctx context.Context, query string, hint backend.PrepareHint) error {
	st.query = query
	return nil
}

func looksLikeSelect(query string) bool {
	trimmed := strings.TrimSpace(query)
	return len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "select")
}

// buildArgs assembles the driver.NamedValue-capable argument list:
// named binds go through sql.Named, REF CURSOR out binds go through
// sql.Out wrapping a driver.Rows the caller will later wrap in its own
// *sql.Rows.
func (st *Statement) buildArgs() []any {
	args := make([]any, 0, len(st.named)+len(st.positional)+len(st.outCursors))
	for name, val := range st.named {
		args = append(args, sql.Named(name, val))
	}
	for _, v := range st.positional {
		args = append(args, v)
	}
	for pos, cur := range st.outCursors {
		args = append(args, sql.Named(fmt.Sprintf("_cursor%d", pos), sql.Out{Dest: cur}))
	}
	return args
}

func (st *Statement) Execute(ctx context.Context, num int) (backend.ExecResult, error) {
	if len(st.outCursors) > 0 || !looksLikeSelect(st.query) {
		res, err := st.session.execer().ExecContext(ctx, st.query, st.buildArgs()...)
		if err != nil {
			return backend.NoData, err
		}
		if len(st.outCursors) == 0 {
			n, _ := res.RowsAffected()
			st.lastNumRows = int(n)
			return backend.NoData, nil
		}
		// A procedure call with REF CURSOR outputs reports data so the
		// core's describeDynamic/PostFetch machinery runs for the cursor
		// adapters, even though this statement itself has no row cache.
		return backend.Success, nil
	}

	rows, err := st.session.execer().QueryContext(ctx, st.query, st.buildArgs()...)
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

func (st *Statement) Fetch(ctx context.Context, num int) (backend.ExecResult, error) {
	if num <= 0 {
		num = 1
	}
	return st.pullRows(num)
}

func (st *Statement) pullRows(num int) (backend.ExecResult, error) {
	if st.rows == nil {
		return backend.NoData, nil
	}
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

// RewriteForProcedureCall wraps query in an anonymous PL/SQL block, the
// native Oracle idiom for invoking a stored procedure.
func (st *Statement) RewriteForProcedureCall(query string) string {
	return "begin " + query + "; end;"
}

func (st *Statement) PrepareForDescribe(ctx context.Context) (int, error) {
	if st.rows == nil {
		if _, err := st.Execute(ctx, 0); err != nil {
			return 0, err
		}
	}
	if st.rows == nil {
		return 0, nil
	}
	return len(st.columns), nil
}

func (st *Statement) DescribeColumn(ctx context.Context, index int) (backend.ColumnInfo, error) {
	if index < 0 || index >= len(st.columns) {
		return backend.ColumnInfo{}, fmt.Errorf("oracle: column index %d out of range", index)
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
	if t == backend.TypeStatement {
		return &cursorIntoBackend{stmt: st}
	}
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

// adoptRows lets a nested Cursor statement start serving fetches from a
// REF CURSOR this statement's outer Execute produced, without going
// through Prepare/Execute again.
func (st *Statement) adoptRows(rows *sql.Rows) error {
	st.rows = rows
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	st.columns = cols
	st.columnTypes, _ = rows.ColumnTypes()
	st.buffered = nil
	st.cursor = 0
	return nil
}

func logicalTypeForDBType(dbType string) backend.LogicalType {
	switch strings.ToUpper(dbType) {
	case "NUMBER", "INTEGER", "BINARY_INTEGER", "PLS_INTEGER":
		return backend.LogicalInteger
	case "BINARY_DOUBLE", "BINARY_FLOAT", "FLOAT":
		return backend.LogicalDouble
	case "DATE", "TIMESTAMP":
		return backend.LogicalDate
	default:
		return backend.LogicalString
	}
}

// rowID is the opaque Oracle ROWID handle, grounded in SOCI's
// oracle/row-id.cpp.
type rowID struct{ val string }

func (r *rowID) Value() any { return r.val }
