package exchange

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// fakeStatementBackend is a minimal backend.StatementBackend test double
// that hands out fakeIntoBackend/fakeUseBackend instances and records
// every MakeIntoTypeBackend/MakeUseTypeBackend call's ExchangeType.
type fakeStatementBackend struct {
	intoTypes []backend.ExchangeType
	useTypes  []backend.ExchangeType

	lastInto       *fakeIntoBackend
	lastUse        *fakeUseBackend
	lastVectorInto *fakeVectorIntoBackend
	lastVectorUse  *fakeVectorUseBackend
}

func (f *fakeStatementBackend) Alloc(ctx context.Context) error { return nil }
func (f *fakeStatementBackend) Prepare(ctx context.Context, query string, hint backend.PrepareHint) error {
	return nil
}
func (f *fakeStatementBackend) Execute(ctx context.Context, num int) (backend.ExecResult, error) {
	return backend.Success, nil
}
func (f *fakeStatementBackend) Fetch(ctx context.Context, num int) (backend.ExecResult, error) {
	return backend.NoData, nil
}
func (f *fakeStatementBackend) NumRowsFetched() int                            { return 0 }
func (f *fakeStatementBackend) RewriteForProcedureCall(query string) string    { return query }
func (f *fakeStatementBackend) PrepareForDescribe(ctx context.Context) (int, error) {
	return 0, nil
}
func (f *fakeStatementBackend) DescribeColumn(ctx context.Context, index int) (backend.ColumnInfo, error) {
	return backend.ColumnInfo{}, nil
}
func (f *fakeStatementBackend) MakeIntoTypeBackend(t backend.ExchangeType) backend.IntoTypeBackend {
	f.intoTypes = append(f.intoTypes, t)
	f.lastInto = &fakeIntoBackend{}
	return f.lastInto
}
func (f *fakeStatementBackend) MakeUseTypeBackend(t backend.ExchangeType) backend.UseTypeBackend {
	f.useTypes = append(f.useTypes, t)
	f.lastUse = &fakeUseBackend{}
	return f.lastUse
}
func (f *fakeStatementBackend) MakeVectorIntoTypeBackend(t backend.ExchangeType) backend.VectorIntoBackend {
	f.intoTypes = append(f.intoTypes, t)
	f.lastVectorInto = &fakeVectorIntoBackend{}
	return f.lastVectorInto
}
func (f *fakeStatementBackend) MakeVectorUseTypeBackend(t backend.ExchangeType) backend.VectorUseBackend {
	f.useTypes = append(f.useTypes, t)
	f.lastVectorUse = &fakeVectorUseBackend{}
	return f.lastVectorUse
}
func (f *fakeStatementBackend) Close() error { return nil }

// fakeIntoBackend records DefineByPos/PostFetch calls and can be told to
// simulate a NULL or a fixed indicator on the next PostFetch.
type fakeIntoBackend struct {
	definedData     any
	definedType     backend.ExchangeType
	definedPosition int
	preFetchCalled  bool
	postFetchCalled bool
	cleanedUp       bool

	simulateNull      bool
	simulateTruncated bool
}

func (f *fakeIntoBackend) DefineByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	f.definedPosition = *position
	f.definedData = data
	f.definedType = t
	return nil
}
func (f *fakeIntoBackend) PreFetch(ctx context.Context) error { f.preFetchCalled = true; return nil }
func (f *fakeIntoBackend) PostFetch(ctx context.Context, gotData, calledFromFetch bool, ind *indicator.Indicator) error {
	f.postFetchCalled = true
	if !gotData {
		return nil
	}
	if f.simulateNull {
		if ind != nil {
			*ind = indicator.Null
		}
		return nil
	}
	if f.simulateTruncated {
		if ind != nil {
			*ind = indicator.Truncated
		}
		return nil
	}
	if ind != nil {
		*ind = indicator.OK
	}
	return nil
}
func (f *fakeIntoBackend) CleanUp(ctx context.Context) error { f.cleanedUp = true; return nil }

// fakeUseBackend records BindByPos/BindByName calls.
type fakeUseBackend struct {
	boundPosition int
	boundName     string
	boundData     any
	boundType     backend.ExchangeType
	preUseCalled  bool
	postUseCalled bool
	cleanedUp     bool
}

func (f *fakeUseBackend) BindByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	f.boundPosition = *position
	f.boundData = data
	f.boundType = t
	return nil
}
func (f *fakeUseBackend) BindByName(ctx context.Context, name string, data any, t backend.ExchangeType) error {
	f.boundName = name
	f.boundData = data
	f.boundType = t
	return nil
}
func (f *fakeUseBackend) PreUse(ctx context.Context, ind *indicator.Indicator) error {
	f.preUseCalled = true
	return nil
}
func (f *fakeUseBackend) PostUse(ctx context.Context, gotData bool, ind *indicator.Indicator) error {
	f.postUseCalled = true
	return nil
}
func (f *fakeUseBackend) CleanUp(ctx context.Context) error { f.cleanedUp = true; return nil }

// fakeVectorIntoBackend records DefineByPos/PostFetch calls across a whole
// per-row indicator slice and tracks Resize calls.
type fakeVectorIntoBackend struct {
	definedData     any
	definedType     backend.ExchangeType
	definedPosition int
	preFetchCalled  bool
	postFetchCalled bool
	lastInds        []indicator.Indicator
	cleanedUp       bool

	resizedTo int
	resized   bool
}

func (f *fakeVectorIntoBackend) DefineByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	f.definedPosition = *position
	f.definedData = data
	f.definedType = t
	return nil
}
func (f *fakeVectorIntoBackend) PreFetch(ctx context.Context) error {
	f.preFetchCalled = true
	return nil
}
func (f *fakeVectorIntoBackend) PostFetch(ctx context.Context, gotData, calledFromFetch bool, inds []indicator.Indicator) error {
	f.postFetchCalled = true
	f.lastInds = inds
	for i := range inds {
		inds[i] = indicator.OK
	}
	return nil
}
func (f *fakeVectorIntoBackend) CleanUp(ctx context.Context) error { f.cleanedUp = true; return nil }
func (f *fakeVectorIntoBackend) Resize(sz int)                     { f.resizedTo = sz; f.resized = true }
func (f *fakeVectorIntoBackend) Size() int                         { return f.resizedTo }

// fakeVectorUseBackend embeds fakeUseBackend for the scalar methods.
type fakeVectorUseBackend struct {
	fakeUseBackend
}

func (f *fakeVectorUseBackend) Size() int { return 0 }
