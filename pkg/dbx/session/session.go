// Package session implements the Session type (spec.md §4.4): the
// per-connection handle that owns a backend.SessionBackend, the
// parameter-rewrite style it implies, the log-query hook, and the
// factory methods for Statement/RowID/Blob.
package session

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/dxerr"
	"github.com/caspiandb/dbx/pkg/dbx/dxlog"
	"github.com/caspiandb/dbx/pkg/dbx/exchange"
	"github.com/caspiandb/dbx/pkg/dbx/paramrewrite"
	"github.com/caspiandb/dbx/pkg/dbx/statement"
)

// Session wraps one backend.SessionBackend connection and supplies the
// query-rewrite style and logger every Statement it creates needs.
type Session struct {
	be     backend.SessionBackend
	driver string
	style  paramrewrite.Style
	log    *dxlog.Logger
}

// styleForDriver maps a registered driver name to its native positional
// placeholder syntax, per spec.md §4.2's per-backend rewrite table.
func styleForDriver(driver string) paramrewrite.Style {
	switch driver {
	case "postgres":
		return paramrewrite.Dollar
	case "mysql", "odbc":
		return paramrewrite.Question
	case "oracle":
		return paramrewrite.Native
	case "sqlite":
		return paramrewrite.Question
	default:
		return paramrewrite.Question
	}
}

// Open resolves driver in the global backend registry and connects using
// dsn, per spec.md §6.
func Open(ctx context.Context, driver, dsn string) (*Session, error) {
	be, err := backend.Open(ctx, driver, dsn)
	if err != nil {
		return nil, dxerr.NewConnectionError(driver, dsn, err)
	}
	return &Session{be: be, driver: driver, style: styleForDriver(driver), log: dxlog.New(driver)}, nil
}

// Wrap builds a Session directly from an already-open backend.SessionBackend,
// the path this package's tests use with hand-rolled fake backends.
func Wrap(be backend.SessionBackend, driver string) *Session {
	return &Session{be: be, driver: driver, style: styleForDriver(driver), log: dxlog.New(driver)}
}

// SetQueryLogging toggles the log-query hook this Session's Statements
// invoke at prepare time.
func (s *Session) SetQueryLogging(enabled bool) { s.log.SetQueryLogging(enabled) }

// Logger returns the Session's logger, for a caller that wants to attach
// it elsewhere (e.g. a Once/Prepare builder created outside Session).
func (s *Session) Logger() *dxlog.Logger { return s.log }

// Driver returns the registered driver name this Session was opened
// against.
func (s *Session) Driver() string { return s.driver }

// Begin starts a transaction.
func (s *Session) Begin(ctx context.Context) error { return s.be.Begin(ctx) }

// Commit commits the current transaction.
func (s *Session) Commit(ctx context.Context) error { return s.be.Commit(ctx) }

// Rollback rolls back the current transaction.
func (s *Session) Rollback(ctx context.Context) error { return s.be.Rollback(ctx) }

// Close releases the underlying connection.
func (s *Session) Close() error { return s.be.Close() }

// NewStatement allocates a fresh Statement bound to a new per-statement
// driver handle.
func (s *Session) NewStatement() *statement.Statement {
	return statement.New(s.be.MakeStatementBackend(), s.style, s.log)
}

// MakeRowID obtains a backend row-identifier handle, for use with
// exchange.NewRowIDInto/NewRowIDUse.
func (s *Session) MakeRowID() (backend.RowIDBackend, error) { return s.be.MakeRowIDBackend() }

// MakeBlob obtains a backend large-object handle, for use with
// exchange.NewBlob.
func (s *Session) MakeBlob() (backend.BlobBackend, error) { return s.be.MakeBlobBackend() }

// Once prepares, binds, executes, exchanges data, and cleans up query in
// one call, per spec.md §4.4's Once builder collapsed into Go's
// no-destructor idiom: err is returned directly instead of being
// rethrown from a destructor.
func (s *Session) Once(ctx context.Context, query string, uses []exchange.Use, intos []exchange.Into) error {
	b := NewOnce(s, query)
	for _, u := range uses {
		b.Use(u)
	}
	for _, in := range intos {
		b.Into(in)
	}
	return b.Run(ctx)
}

// Prepare builds a reusable Statement from query, transferring ownership
// of uses/intos into it via DefineAndBind, per spec.md §4.4's Prepare
// builder.
func (s *Session) Prepare(ctx context.Context, query string, uses []exchange.Use, intos []exchange.Into) (*statement.Statement, error) {
	b := NewPrepareBuilder(s, query)
	for _, u := range uses {
		b.Use(u)
	}
	for _, in := range intos {
		b.Into(in)
	}
	return b.Build(ctx)
}
