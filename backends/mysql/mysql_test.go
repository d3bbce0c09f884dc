package mysql

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

func TestSelectQueryFetchesRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "ada")
	mock.ExpectQuery(`select id, name from users where id = \?`).WithArgs(int64(7)).WillReturnRows(rows)

	s := &Session{db: db}
	st := &Statement{session: s}
	assert.NoError(t, st.Prepare(context.Background(), "select id, name from users where id = ?", backend.HintOneTime))
	st.args = []any{int64(7)}

	res, err := st.Execute(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, backend.Success, res)
	assert.Equal(t, 1, st.NumRowsFetched())

	row := st.currentRow()
	assert.Equal(t, int64(1), row[0])
	assert.Equal(t, "ada", row[1])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNonSelectExecReportsRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`update users set name = \?`).WithArgs("grace").WillReturnResult(sqlmock.NewResult(0, 3))

	s := &Session{db: db}
	st := &Statement{session: s}
	assert.NoError(t, st.Prepare(context.Background(), "update users set name = ?", backend.HintOneTime))
	st.args = []any{"grace"}

	res, err := st.Execute(context.Background(), 0)
	assert.NoError(t, err)
	assert.Equal(t, backend.NoData, res)
	assert.Equal(t, 3, st.NumRowsFetched())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchExhaustsRowset(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2))
	mock.ExpectQuery(`select id from t`).WillReturnRows(rows)

	s := &Session{db: db}
	st := &Statement{session: s}
	assert.NoError(t, st.Prepare(context.Background(), "select id from t", backend.HintOneTime))

	res, err := st.Execute(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, backend.Success, res)
	assert.Equal(t, int64(1), st.currentRow()[0])

	res, err = st.Fetch(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, backend.Success, res)
	assert.Equal(t, int64(2), st.currentRow()[0])

	res, err = st.Fetch(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, backend.NoData, res)
}

func TestExecuteBulkInsertStopsAtFirstRowFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`insert into amounts`).WithArgs(int64(100)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`insert into amounts`).WithArgs(int64(1000000)).
		WillReturnError(fmt.Errorf("Error 1264: Out of range value for column 'amount'"))

	s := &Session{db: db}
	st := &Statement{session: s}
	assert.NoError(t, st.Prepare(context.Background(), "insert into amounts values (?)", backend.HintOneTime))

	values := []int64{100, 1000000}
	be := st.MakeVectorUseTypeBackend(backend.TypeLongLong)
	pos := 0
	assert.NoError(t, be.BindByPos(context.Background(), &pos, &values, backend.TypeLongLong))

	res, err := st.Execute(context.Background(), 2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "1264")
	assert.Equal(t, backend.NoData, res)
	assert.Equal(t, 1, st.NumRowsFetched())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBeginCommitRollbackUseTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`delete from t`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := &Session{db: db}
	ctx := context.Background()
	assert.NoError(t, s.Begin(ctx))

	st := &Statement{session: s}
	assert.NoError(t, st.Prepare(ctx, "delete from t", backend.HintOneTime))
	_, err = st.Execute(ctx, 0)
	assert.NoError(t, err)

	assert.NoError(t, s.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogicalTypeForDBType(t *testing.T) {
	assert.Equal(t, backend.LogicalInteger, logicalTypeForDBType("BIGINT"))
	assert.Equal(t, backend.LogicalDouble, logicalTypeForDBType("DECIMAL"))
	assert.Equal(t, backend.LogicalDate, logicalTypeForDBType("DATETIME"))
	assert.Equal(t, backend.LogicalString, logicalTypeForDBType("VARCHAR"))
}

func TestRewriteForProcedureCall(t *testing.T) {
	st := &Statement{}
	assert.Equal(t, "select sp_total(?)", st.RewriteForProcedureCall("sp_total(?)"))
}

func TestMakeRowIDAndBlobUnsupported(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	s := &Session{db: db}

	_, err = s.MakeRowIDBackend()
	assert.Error(t, err)
	_, err = s.MakeBlobBackend()
	assert.Error(t, err)
}
