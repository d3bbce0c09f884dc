package session

import (
	"context"
	"errors"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// fakeSessionBackend is a minimal backend.SessionBackend whose statements
// never actually reach a driver: every statement produced by
// MakeStatementBackend reports a single-row, single-column result set
// unless told otherwise.
type fakeSessionBackend struct {
	closed      bool
	beginCalls  int
	commitCalls int

	nextStatement *fakeStatementBackend
}

func (f *fakeSessionBackend) Begin(ctx context.Context) error    { f.beginCalls++; return nil }
func (f *fakeSessionBackend) Commit(ctx context.Context) error   { f.commitCalls++; return nil }
func (f *fakeSessionBackend) Rollback(ctx context.Context) error { return nil }
func (f *fakeSessionBackend) MakeStatementBackend() backend.StatementBackend {
	if f.nextStatement != nil {
		s := f.nextStatement
		f.nextStatement = nil
		return s
	}
	return &fakeStatementBackend{rows: 1}
}
func (f *fakeSessionBackend) MakeRowIDBackend() (backend.RowIDBackend, error) {
	return nil, errors.New("row-id not supported by fake backend")
}
func (f *fakeSessionBackend) MakeBlobBackend() (backend.BlobBackend, error) {
	return nil, errors.New("blob not supported by fake backend")
}
func (f *fakeSessionBackend) Close() error       { f.closed = true; return nil }
func (f *fakeSessionBackend) DriverName() string { return "fake" }

// fakeStatementBackend reports rows results with no columns metadata
// needed, since every test here binds an explicit scalar Into/Use.
type fakeStatementBackend struct {
	rows         int
	executed     int
	fetchErr     error
	prepareErr   error
	executed2    bool
}

func (f *fakeStatementBackend) Alloc(ctx context.Context) error { return nil }
func (f *fakeStatementBackend) Prepare(ctx context.Context, query string, hint backend.PrepareHint) error {
	return f.prepareErr
}
func (f *fakeStatementBackend) Execute(ctx context.Context, num int) (backend.ExecResult, error) {
	f.executed++
	if f.rows > 0 {
		return backend.Success, nil
	}
	return backend.NoData, nil
}
func (f *fakeStatementBackend) Fetch(ctx context.Context, num int) (backend.ExecResult, error) {
	return backend.NoData, f.fetchErr
}
func (f *fakeStatementBackend) NumRowsFetched() int { return f.rows }
func (f *fakeStatementBackend) RewriteForProcedureCall(query string) string {
	return query
}
func (f *fakeStatementBackend) PrepareForDescribe(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeStatementBackend) DescribeColumn(ctx context.Context, index int) (backend.ColumnInfo, error) {
	return backend.ColumnInfo{}, nil
}
func (f *fakeStatementBackend) MakeIntoTypeBackend(t backend.ExchangeType) backend.IntoTypeBackend {
	return &fakeIntoBackend{}
}
func (f *fakeStatementBackend) MakeUseTypeBackend(t backend.ExchangeType) backend.UseTypeBackend {
	return &fakeUseBackend{}
}
func (f *fakeStatementBackend) MakeVectorIntoTypeBackend(t backend.ExchangeType) backend.VectorIntoBackend {
	return &fakeVectorIntoBackend{}
}
func (f *fakeStatementBackend) MakeVectorUseTypeBackend(t backend.ExchangeType) backend.VectorUseBackend {
	return &fakeVectorUseBackend{}
}
func (f *fakeStatementBackend) Close() error { return nil }

type fakeIntoBackend struct{}

func (f *fakeIntoBackend) DefineByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	return nil
}
func (f *fakeIntoBackend) PreFetch(ctx context.Context) error { return nil }
func (f *fakeIntoBackend) PostFetch(ctx context.Context, gotData, calledFromFetch bool, ind *indicator.Indicator) error {
	if ind != nil && gotData {
		*ind = indicator.OK
	}
	return nil
}
func (f *fakeIntoBackend) CleanUp(ctx context.Context) error { return nil }

type fakeUseBackend struct{}

func (f *fakeUseBackend) BindByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	return nil
}
func (f *fakeUseBackend) BindByName(ctx context.Context, name string, data any, t backend.ExchangeType) error {
	return nil
}
func (f *fakeUseBackend) PreUse(ctx context.Context, ind *indicator.Indicator) error  { return nil }
func (f *fakeUseBackend) PostUse(ctx context.Context, gotData bool, ind *indicator.Indicator) error {
	return nil
}
func (f *fakeUseBackend) CleanUp(ctx context.Context) error { return nil }

type fakeVectorIntoBackend struct{}

func (f *fakeVectorIntoBackend) DefineByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	return nil
}
func (f *fakeVectorIntoBackend) PreFetch(ctx context.Context) error { return nil }
func (f *fakeVectorIntoBackend) PostFetch(ctx context.Context, gotData, calledFromFetch bool, inds []indicator.Indicator) error {
	if gotData {
		for i := range inds {
			inds[i] = indicator.OK
		}
	}
	return nil
}
func (f *fakeVectorIntoBackend) CleanUp(ctx context.Context) error { return nil }
func (f *fakeVectorIntoBackend) Resize(sz int)                     {}
func (f *fakeVectorIntoBackend) Size() int                         { return 0 }

type fakeVectorUseBackend struct{ fakeUseBackend }

func (f *fakeVectorUseBackend) Size() int { return 0 }
