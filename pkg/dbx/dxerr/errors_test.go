package dxerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionErrorIs(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewConnectionError("postgres", "host=x", cause)
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "postgres")
}

func TestPreparationErrorIs(t *testing.T) {
	cause := errors.New("syntax error")
	err := NewPreparationError("mysql", "select bogus", cause)
	assert.ErrorIs(t, err, ErrPreparationFailed)
	assert.Contains(t, err.Error(), "select bogus")
}

func TestExecutionErrorFormatsNativeCode(t *testing.T) {
	err := NewExecutionError("oracle", 904, "invalid identifier", errors.New("ORA-00904"))
	assert.ErrorIs(t, err, ErrExecutionFailed)
	assert.Contains(t, err.Error(), "904")
	assert.Contains(t, err.Error(), "invalid identifier")
}

func TestBulkMixError(t *testing.T) {
	err := NewBulkMixError(2, 3)
	assert.ErrorIs(t, err, ErrSizeMismatch)
	assert.Contains(t, err.Error(), "intosSize=2")
	assert.Contains(t, err.Error(), "usesSize=3")
}

func TestInvalidStatementStateError(t *testing.T) {
	err := NewInvalidStatementStateError("EXECUTED", "DefineAndBind")
	assert.ErrorIs(t, err, ErrInvalidStatementState)
	assert.Contains(t, err.Error(), "EXECUTED")
	assert.Contains(t, err.Error(), "DefineAndBind")
}

func TestDescribeAfterFetchError(t *testing.T) {
	err := NewDescribeAfterFetch("columns already consumed")
	assert.ErrorIs(t, err, ErrDescribeAfterFetch)
}

func TestIndicatorMissingErrorMessageWithAndWithoutColumn(t *testing.T) {
	withCol := NewIndicatorMissingError("age", "null value fetched")
	assert.Contains(t, withCol.Error(), "age")

	withoutCol := NewIndicatorMissingError("", "no data fetched")
	assert.NotContains(t, withoutCol.Error(), "()")
	assert.ErrorIs(t, withoutCol, ErrIndicatorMissing)
}

func TestIsSizeMismatchAndIsIndicatorMissing(t *testing.T) {
	assert.True(t, IsSizeMismatch(NewSizeMismatchError("Into", 0, 3, 1)))
	assert.True(t, IsIndicatorMissing(NewIndicatorMissingError("col", "null value fetched")))
	assert.False(t, IsUnsupported(NewIndicatorMissingError("col", "null value fetched")))
}

func TestUnsupportedOperationError(t *testing.T) {
	err := NewUnsupportedOperationError("mysql", "row-id", "use LAST_INSERT_ID() instead")
	assert.True(t, IsUnsupported(err))
	assert.Contains(t, err.Error(), "row-id")
}
