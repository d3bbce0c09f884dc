package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

func TestLogicalTypeForOID(t *testing.T) {
	assert.Equal(t, backend.LogicalInteger, logicalTypeForOID(23))
	assert.Equal(t, backend.LogicalInteger, logicalTypeForOID(20))
	assert.Equal(t, backend.LogicalDouble, logicalTypeForOID(701))
	assert.Equal(t, backend.LogicalDate, logicalTypeForOID(1184))
	assert.Equal(t, backend.LogicalString, logicalTypeForOID(2950)) // uuid, unmapped
}

func TestRewriteForProcedureCall(t *testing.T) {
	st := &Statement{}
	assert.Equal(t, "select my_proc($1)", st.RewriteForProcedureCall("my_proc($1)"))
}

func TestBuildArgsReturnsPositionalSlice(t *testing.T) {
	st := &Statement{positional: []any{int64(1), "x"}}
	assert.Equal(t, []any{int64(1), "x"}, st.buildArgs())
}

func TestCurrentRowBoundsChecking(t *testing.T) {
	st := &Statement{buffered: [][]any{{int64(1)}, {int64(2)}}, cursor: 0}
	assert.Equal(t, []any{int64(1)}, st.currentRow())

	st.cursor = 2
	assert.Nil(t, st.currentRow())
}

func TestNumRowsFetched(t *testing.T) {
	st := &Statement{lastNumRows: 4}
	assert.Equal(t, 4, st.NumRowsFetched())
}
