// Package dxerr defines the closed set of error kinds the exchange engine
// can raise, each a struct satisfying error/Unwrap/Is against a sentinel,
// in the shape of redb-open's pkg/anchor/adapter error types.
package dxerr

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is against these, not string comparison.
var (
	ErrConnectionFailed     = errors.New("connection failed")
	ErrPreparationFailed    = errors.New("statement preparation failed")
	ErrExecutionFailed      = errors.New("statement execution failed")
	ErrBinding              = errors.New("bind error")
	ErrSizeMismatch         = errors.New("adapter size mismatch")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrIndicatorMissing     = errors.New("value fetched with no indicator defined")
	ErrGrowth               = errors.New("into vector grown after bind")
	ErrConversion           = errors.New("value conversion failed")
	ErrOperationNotSupported = errors.New("operation not supported by this backend")
	ErrDescribeAfterFetch   = errors.New("describe requested after a partial fetch")
	ErrInvalidStatementState = errors.New("statement is not in a valid state for this operation")
)

// ConnectionError wraps a failure to establish or re-establish a Session.
type ConnectionError struct {
	Driver string
	DSN    string // caller is responsible for not embedding secrets here
	Cause  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("[%s] connection failed: %v", e.Driver, e.Cause)
}
func (e *ConnectionError) Unwrap() error { return e.Cause }
func (e *ConnectionError) Is(target error) bool {
	return errors.Is(target, ErrConnectionFailed) || errors.Is(e.Cause, target)
}

// NewConnectionError constructs a ConnectionError.
func NewConnectionError(driver, dsn string, cause error) *ConnectionError {
	return &ConnectionError{Driver: driver, DSN: dsn, Cause: cause}
}

// PreparationError wraps a query the driver rejected at prepare time.
type PreparationError struct {
	Driver string
	Query  string
	Cause  error
}

func (e *PreparationError) Error() string {
	return fmt.Sprintf("[%s] prepare failed: %v (query: %s)", e.Driver, e.Cause, e.Query)
}
func (e *PreparationError) Unwrap() error { return e.Cause }
func (e *PreparationError) Is(target error) bool {
	return errors.Is(target, ErrPreparationFailed) || errors.Is(e.Cause, target)
}

// NewPreparationError constructs a PreparationError.
func NewPreparationError(driver, query string, cause error) *PreparationError {
	return &PreparationError{Driver: driver, Query: query, Cause: cause}
}

// ExecutionError wraps a runtime failure during execute/fetch, preserving
// whatever native error code and category the driver supplied.
type ExecutionError struct {
	Driver     string
	NativeCode int
	Category   string
	Cause      error
}

func (e *ExecutionError) Error() string {
	if e.NativeCode != 0 {
		return fmt.Sprintf("[%s] execution failed (native code %d, %s): %v", e.Driver, e.NativeCode, e.Category, e.Cause)
	}
	return fmt.Sprintf("[%s] execution failed: %v", e.Driver, e.Cause)
}
func (e *ExecutionError) Unwrap() error { return e.Cause }
func (e *ExecutionError) Is(target error) bool {
	return errors.Is(target, ErrExecutionFailed) || errors.Is(e.Cause, target)
}

// NewExecutionError constructs an ExecutionError.
func NewExecutionError(driver string, nativeCode int, category string, cause error) *ExecutionError {
	return &ExecutionError{Driver: driver, NativeCode: nativeCode, Category: category, Cause: cause}
}

// BindingError reports a named bind that does not occur in the rewritten
// query, a discipline mix (name vs. position), or an adapter-count
// mismatch against the query's placeholder chunks.
type BindingError struct {
	Reason string
	Name   string
}

func (e *BindingError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("bind error: %s (name: %q)", e.Reason, e.Name)
	}
	return fmt.Sprintf("bind error: %s", e.Reason)
}
func (e *BindingError) Is(target error) bool { return errors.Is(target, ErrBinding) }

// NewBindingError constructs a BindingError.
func NewBindingError(reason, name string) *BindingError {
	return &BindingError{Reason: reason, Name: name}
}

// SizeMismatchError reports that two adapters of the same kind (Into or
// Use) disagree on logical vector size, or that a vector size is zero.
type SizeMismatchError struct {
	Kind      string // "Into" or "Use"
	Position  int
	Expected  int
	Actual    int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%s adapter at position %d has size %d, expected %d",
		e.Kind, e.Position, e.Actual, e.Expected)
}
func (e *SizeMismatchError) Is(target error) bool { return errors.Is(target, ErrSizeMismatch) }

// NewSizeMismatchError constructs a SizeMismatchError.
func NewSizeMismatchError(kind string, position, expected, actual int) *SizeMismatchError {
	return &SizeMismatchError{Kind: kind, Position: position, Expected: expected, Actual: actual}
}

// BulkMixError is the precise "bulk insert/update and bulk select not
// allowed in same query" failure from spec.md §4.2 step 2.
type BulkMixError struct {
	IntosSize int
	UsesSize  int
}

func (e *BulkMixError) Error() string {
	return fmt.Sprintf(
		"bulk insert/update and bulk select not allowed in same query (intosSize=%d, usesSize=%d)",
		e.IntosSize, e.UsesSize)
}
func (e *BulkMixError) Is(target error) bool { return errors.Is(target, ErrSizeMismatch) }

// NewBulkMixError constructs a BulkMixError.
func NewBulkMixError(intosSize, usesSize int) *BulkMixError {
	return &BulkMixError{IntosSize: intosSize, UsesSize: usesSize}
}

// InvalidStatementStateError reports an operation attempted while the
// statement was in a state that does not permit it (spec.md §4.1).
type InvalidStatementStateError struct {
	State     string
	Operation string
}

func (e *InvalidStatementStateError) Error() string {
	return fmt.Sprintf("statement in state %s cannot run %s", e.State, e.Operation)
}
func (e *InvalidStatementStateError) Is(target error) bool {
	return errors.Is(target, ErrInvalidStatementState)
}

// NewInvalidStatementStateError constructs an InvalidStatementStateError.
func NewInvalidStatementStateError(state, operation string) *InvalidStatementStateError {
	return &InvalidStatementStateError{State: state, Operation: operation}
}

// DescribeAfterFetchError reports that column metadata was requested
// after a fetch had already partially consumed the rowset.
type DescribeAfterFetchError struct {
	Reason string
}

func (e *DescribeAfterFetchError) Error() string {
	return fmt.Sprintf("describe after fetch: %s", e.Reason)
}
func (e *DescribeAfterFetchError) Is(target error) bool {
	return errors.Is(target, ErrDescribeAfterFetch)
}

// NewDescribeAfterFetch constructs a DescribeAfterFetchError.
func NewDescribeAfterFetch(reason string) *DescribeAfterFetchError {
	return &DescribeAfterFetchError{Reason: reason}
}

// TypeMismatchError reports that a requested destination type cannot
// represent the column's logical type.
type TypeMismatchError struct {
	LogicalType string
	RequestedGo string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot represent logical type %s as Go type %s", e.LogicalType, e.RequestedGo)
}
func (e *TypeMismatchError) Is(target error) bool { return errors.Is(target, ErrTypeMismatch) }

// NewTypeMismatchError constructs a TypeMismatchError.
func NewTypeMismatchError(logicalType, requestedGo string) *TypeMismatchError {
	return &TypeMismatchError{LogicalType: logicalType, RequestedGo: requestedGo}
}

// IndicatorMissingError is raised when a NULL or absent value is fetched
// into a destination with no caller-supplied indicator.
type IndicatorMissingError struct {
	Column string
	Reason string // "null value fetched" or "no data fetched"
}

func (e *IndicatorMissingError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s and no indicator defined (column %q)", e.Reason, e.Column)
	}
	return fmt.Sprintf("%s and no indicator defined", e.Reason)
}
func (e *IndicatorMissingError) Is(target error) bool { return errors.Is(target, ErrIndicatorMissing) }

// NewIndicatorMissingError constructs an IndicatorMissingError.
func NewIndicatorMissingError(column, reason string) *IndicatorMissingError {
	return &IndicatorMissingError{Column: column, Reason: reason}
}

// GrowthError is raised when an Into vector was resized upward between
// bind and the next Fetch.
type GrowthError struct {
	InitialSize int
	Requested   int
}

func (e *GrowthError) Error() string {
	return fmt.Sprintf("into vector grown from %d to %d between bind and fetch; rebind required",
		e.InitialSize, e.Requested)
}
func (e *GrowthError) Is(target error) bool { return errors.Is(target, ErrGrowth) }

// NewGrowthError constructs a GrowthError.
func NewGrowthError(initial, requested int) *GrowthError {
	return &GrowthError{InitialSize: initial, Requested: requested}
}

// ConversionError wraps a failed textual-to-typed conversion (date parse,
// numeric parse).
type ConversionError struct {
	Value  string
	Target string
	Cause  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %v", e.Value, e.Target, e.Cause)
}
func (e *ConversionError) Unwrap() error { return e.Cause }
func (e *ConversionError) Is(target error) bool {
	return errors.Is(target, ErrConversion) || errors.Is(e.Cause, target)
}

// NewConversionError constructs a ConversionError.
func NewConversionError(value, target string, cause error) *ConversionError {
	return &ConversionError{Value: value, Target: target, Cause: cause}
}

// UnsupportedOperationError is returned when a backend does not implement
// an optional role (RowID, Blob, Cursor) or optional operation.
type UnsupportedOperationError struct {
	Driver    string
	Operation string
	Reason    string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s does not support %s: %s", e.Driver, e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s does not support %s", e.Driver, e.Operation)
}
func (e *UnsupportedOperationError) Is(target error) bool {
	return errors.Is(target, ErrOperationNotSupported)
}

// NewUnsupportedOperationError constructs an UnsupportedOperationError.
func NewUnsupportedOperationError(driver, operation, reason string) *UnsupportedOperationError {
	return &UnsupportedOperationError{Driver: driver, Operation: operation, Reason: reason}
}

// IsSizeMismatch reports whether err is any size-mismatch variant.
func IsSizeMismatch(err error) bool { return errors.Is(err, ErrSizeMismatch) }

// IsIndicatorMissing reports whether err is an IndicatorMissingError.
func IsIndicatorMissing(err error) bool { return errors.Is(err, ErrIndicatorMissing) }

// IsUnsupported reports whether err indicates an unsupported operation.
func IsUnsupported(err error) bool { return errors.Is(err, ErrOperationNotSupported) }
