package oracle

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

func TestBuildArgsAssemblesNamedPositionalAndCursorOutBinds(t *testing.T) {
	st := &Statement{
		named:      map[string]any{"id": int64(7)},
		positional: []any{"x"},
		outCursors: map[int]*driver.Rows{1: nil},
	}
	args := st.buildArgs()
	assert.Len(t, args, 3)

	var sawNamed, sawPositional, sawOut bool
	for _, a := range args {
		switch v := a.(type) {
		case sql.NamedArg:
			if v.Name == "id" {
				sawNamed = true
			}
			if v.Name == "_cursor1" {
				if _, ok := v.Value.(sql.Out); ok {
					sawOut = true
				}
			}
		case string:
			if v == "x" {
				sawPositional = true
			}
		}
	}
	assert.True(t, sawNamed)
	assert.True(t, sawPositional)
	assert.True(t, sawOut)
}

func TestRewriteForProcedureCallWrapsAnonymousBlock(t *testing.T) {
	st := &Statement{}
	assert.Equal(t, "begin sp_total(:id); end;", st.RewriteForProcedureCall("sp_total(:id)"))
}

func TestLogicalTypeForDBType(t *testing.T) {
	assert.Equal(t, backend.LogicalInteger, logicalTypeForDBType("NUMBER"))
	assert.Equal(t, backend.LogicalDouble, logicalTypeForDBType("BINARY_DOUBLE"))
	assert.Equal(t, backend.LogicalDate, logicalTypeForDBType("TIMESTAMP"))
	assert.Equal(t, backend.LogicalString, logicalTypeForDBType("VARCHAR2"))
}

func TestCurrentRowBoundsChecking(t *testing.T) {
	st := &Statement{buffered: [][]any{{int64(1)}, {int64(2)}}, cursor: 0}
	assert.Equal(t, []any{int64(1)}, st.currentRow())

	st.cursor = 2
	assert.Nil(t, st.currentRow())
}

func TestMakeIntoTypeBackendDispatchesCursorVsScalar(t *testing.T) {
	st := &Statement{}
	scalar := st.MakeIntoTypeBackend(backend.TypeLongLong)
	_, isScalar := scalar.(*intoBackend)
	assert.True(t, isScalar)

	cursor := st.MakeIntoTypeBackend(backend.TypeStatement)
	_, isCursor := cursor.(*cursorIntoBackend)
	assert.True(t, isCursor)
}

func TestSelectQueryFetchesRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "ada")
	mock.ExpectQuery(`select id, name from users where id = :id`).WillReturnRows(rows)

	s := &Session{db: db}
	st := &Statement{session: s}
	assert.NoError(t, st.Alloc(context.Background()))
	assert.NoError(t, st.Prepare(context.Background(), "select id, name from users where id = :id", backend.HintOneTime))
	st.named["id"] = int64(7)

	res, err := st.Execute(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, backend.Success, res)
	assert.Equal(t, int64(1), st.currentRow()[0])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNonSelectExecReportsRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`update users set name = :name`).WillReturnResult(sqlmock.NewResult(0, 5))

	s := &Session{db: db}
	st := &Statement{session: s}
	assert.NoError(t, st.Alloc(context.Background()))
	assert.NoError(t, st.Prepare(context.Background(), "update users set name = :name", backend.HintOneTime))
	st.named["name"] = "grace"

	res, err := st.Execute(context.Background(), 0)
	assert.NoError(t, err)
	assert.Equal(t, backend.NoData, res)
	assert.Equal(t, 5, st.NumRowsFetched())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMakeRowIDReturnsHandleAndBlobIsUnsupportedAtSessionLevel(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	s := &Session{db: db}

	rid, err := s.MakeRowIDBackend()
	assert.NoError(t, err)
	assert.NotNil(t, rid)

	_, err = s.MakeBlobBackend()
	assert.Error(t, err)
}
