// Package backend defines the abstract contract every driver package must
// satisfy (spec.md §4.6). The core statement/session/exchange layers only
// ever call through these interfaces; they never inspect driver state.
package backend

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// LogicalType is one of the closed set of user-observable column types.
type LogicalType int

const (
	LogicalString LogicalType = iota
	LogicalDate
	LogicalDouble
	LogicalInteger
	LogicalUnsignedLong
)

func (t LogicalType) String() string {
	switch t {
	case LogicalString:
		return "String"
	case LogicalDate:
		return "Date"
	case LogicalDouble:
		return "Double"
	case LogicalInteger:
		return "Integer"
	case LogicalUnsignedLong:
		return "UnsignedLong"
	default:
		return "Unknown"
	}
}

// ExchangeType is the closed set of adapter data kinds from spec.md §3.
type ExchangeType int

const (
	TypeChar ExchangeType = iota
	TypeCString
	TypeStdString
	TypeShort
	TypeInteger
	TypeUnsignedLong
	TypeLongLong
	TypeDouble
	TypeStdTm
	TypeStatement
	TypeRowID
	TypeBlob
)

// PrepareHint distinguishes a one-shot query (built by the Once builder)
// from a prepared-for-reuse one, for drivers that care (spec.md §4.4).
type PrepareHint int

const (
	HintPrepared PrepareHint = iota
	HintOneTime
)

// ExecResult is the result of a StatementBackend Execute/Fetch round-trip.
type ExecResult int

const (
	// Success means rows were retrieved, or a non-SELECT completed
	// normally.
	Success ExecResult = iota
	// NoData means end of rowset, or non-SELECT completion with nothing
	// further to report.
	NoData
)

// ColumnInfo is what DescribeColumn reports about one result-set column.
type ColumnInfo struct {
	Name        string
	Type        LogicalType
	Size        int
	Precision   int
	Scale       int
	Nullable    bool
	HasMetadata bool
}

// SessionBackend is the per-connection driver contract.
type SessionBackend interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	MakeStatementBackend() StatementBackend
	MakeRowIDBackend() (RowIDBackend, error)
	MakeBlobBackend() (BlobBackend, error)

	Close() error

	// DriverName identifies the backend for error messages and the
	// registry ("postgres", "mysql", "sqlite", "oracle", "odbc").
	DriverName() string
}

// StatementBackend is the per-statement driver contract.
type StatementBackend interface {
	Alloc(ctx context.Context) error

	// Prepare rewrites are the core's job; the backend receives the
	// already-rewritten, driver-native query text.
	Prepare(ctx context.Context, query string, hint PrepareHint) error

	Execute(ctx context.Context, num int) (ExecResult, error)
	Fetch(ctx context.Context, num int) (ExecResult, error)
	NumRowsFetched() int

	RewriteForProcedureCall(query string) string

	PrepareForDescribe(ctx context.Context) (numColumns int, err error)
	DescribeColumn(ctx context.Context, index int) (ColumnInfo, error)

	MakeIntoTypeBackend(t ExchangeType) IntoTypeBackend
	MakeUseTypeBackend(t ExchangeType) UseTypeBackend
	MakeVectorIntoTypeBackend(t ExchangeType) VectorIntoBackend
	MakeVectorUseTypeBackend(t ExchangeType) VectorUseBackend

	Close() error
}

// IntoTypeBackend is the scalar-output driver contract (spec.md §4.3).
type IntoTypeBackend interface {
	DefineByPos(ctx context.Context, position *int, data any, t ExchangeType) error
	PreFetch(ctx context.Context) error
	PostFetch(ctx context.Context, gotData, calledFromFetch bool, ind *indicator.Indicator) error
	CleanUp(ctx context.Context) error
}

// UseTypeBackend is the scalar-input driver contract.
type UseTypeBackend interface {
	BindByPos(ctx context.Context, position *int, data any, t ExchangeType) error
	BindByName(ctx context.Context, name string, data any, t ExchangeType) error
	PreUse(ctx context.Context, ind *indicator.Indicator) error
	PostUse(ctx context.Context, gotData bool, ind *indicator.Indicator) error
	CleanUp(ctx context.Context) error
}

// VectorIntoBackend is the bulk-output driver contract. Its PostFetch
// takes the whole per-row indicator slice rather than IntoTypeBackend's
// single slot, since a bulk fetch resolves null/truncated state for
// every row of the batch in one pass instead of one call per row.
type VectorIntoBackend interface {
	DefineByPos(ctx context.Context, position *int, data any, t ExchangeType) error
	PreFetch(ctx context.Context) error
	PostFetch(ctx context.Context, gotData, calledFromFetch bool, inds []indicator.Indicator) error
	CleanUp(ctx context.Context) error
	Resize(sz int)
	Size() int
}

// VectorUseBackend is the bulk-input driver contract.
type VectorUseBackend interface {
	UseTypeBackend
	Size() int
}

// RowIDBackend is the opaque driver row-identifier contract.
type RowIDBackend interface {
	Value() any
}

// BlobBackend is the large-object driver contract.
type BlobBackend interface {
	Length(ctx context.Context) (int64, error)
	Read(ctx context.Context, offset int64, buf []byte) (int, error)
	Write(ctx context.Context, offset int64, data []byte) (int, error)
	Append(ctx context.Context, data []byte) (int, error)
	Trim(ctx context.Context, newLength int64) error
}

// Factory constructs a SessionBackend from a driver-specific connection
// string, the shape every driver package under backends/ implements and
// registers via backend.Register.
type Factory func(ctx context.Context, dsn string) (SessionBackend, error)
