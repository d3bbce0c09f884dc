package statement

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// fakeColumn describes one dynamically-described column's metadata and
// the values it yields across successive fetch rounds.
type fakeColumn struct {
	info   backend.ColumnInfo
	values []any // one entry per Execute/Fetch round
}

// fakeSB is a minimal backend.StatementBackend that drives describeDynamic
// and the Execute/Fetch round trip against a canned set of rows, without
// any real driver involved.
type fakeSB struct {
	prepareCalls int
	prepareErr   error
	allocErr     error

	columns []fakeColumn
	round   int // which values[] index the next Execute/Fetch reads

	closed bool

	// scalarDefine/scalarBind record every DefineByPos/BindByPos call for
	// statements that register explicit adapters instead of using
	// dynamic description.
	scalarIntoDests []any
	scalarUseData   []any
}

func (f *fakeSB) Alloc(ctx context.Context) error { return f.allocErr }
func (f *fakeSB) Prepare(ctx context.Context, query string, hint backend.PrepareHint) error {
	f.prepareCalls++
	return f.prepareErr
}
func (f *fakeSB) Execute(ctx context.Context, num int) (backend.ExecResult, error) {
	if len(f.columns) == 0 || f.round >= len(f.columns[0].values) {
		return backend.NoData, nil
	}
	return backend.Success, nil
}
func (f *fakeSB) Fetch(ctx context.Context, num int) (backend.ExecResult, error) {
	f.round++
	if len(f.columns) == 0 || f.round >= len(f.columns[0].values) {
		return backend.NoData, nil
	}
	return backend.Success, nil
}
func (f *fakeSB) NumRowsFetched() int { return 1 }
func (f *fakeSB) RewriteForProcedureCall(query string) string {
	return "{call " + query + "}"
}
func (f *fakeSB) PrepareForDescribe(ctx context.Context) (int, error) {
	return len(f.columns), nil
}
func (f *fakeSB) DescribeColumn(ctx context.Context, index int) (backend.ColumnInfo, error) {
	return f.columns[index].info, nil
}
func (f *fakeSB) MakeIntoTypeBackend(t backend.ExchangeType) backend.IntoTypeBackend {
	return &fakeIntoBE{owner: f, exchangeType: t}
}
func (f *fakeSB) MakeUseTypeBackend(t backend.ExchangeType) backend.UseTypeBackend {
	return &fakeUseBE{owner: f}
}
func (f *fakeSB) MakeVectorIntoTypeBackend(t backend.ExchangeType) backend.VectorIntoBackend {
	return &fakeVectorIntoBE{}
}
func (f *fakeSB) MakeVectorUseTypeBackend(t backend.ExchangeType) backend.VectorUseBackend {
	return &fakeVectorUseBE{}
}
func (f *fakeSB) Close() error { f.closed = true; return nil }

// fakeIntoBE writes the owning fakeSB's canned per-round column value
// into whatever destination pointer DefineByPos received.
type fakeIntoBE struct {
	owner        *fakeSB
	exchangeType backend.ExchangeType
	position     int
	dest         any
	colIndex     int
}

func (b *fakeIntoBE) DefineByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	b.position = *position
	b.dest = data
	b.colIndex = *position - 1
	b.owner.scalarIntoDests = append(b.owner.scalarIntoDests, data)
	return nil
}
func (b *fakeIntoBE) PreFetch(ctx context.Context) error { return nil }
func (b *fakeIntoBE) PostFetch(ctx context.Context, gotData, calledFromFetch bool, ind *indicator.Indicator) error {
	if !gotData {
		return nil
	}
	if b.colIndex >= len(b.owner.columns) {
		return nil
	}
	val := b.owner.columns[b.colIndex].values[b.owner.round]
	if val == nil {
		if ind != nil {
			*ind = indicator.Null
		}
		return nil
	}
	switch d := b.dest.(type) {
	case *string:
		*d = val.(string)
	case *int64:
		*d = val.(int64)
	case *float64:
		*d = val.(float64)
	case *uint64:
		*d = val.(uint64)
	}
	if ind != nil {
		*ind = indicator.OK
	}
	return nil
}
func (b *fakeIntoBE) CleanUp(ctx context.Context) error { return nil }

type fakeUseBE struct {
	owner *fakeSB
	name  string
}

func (b *fakeUseBE) BindByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	b.owner.scalarUseData = append(b.owner.scalarUseData, data)
	return nil
}
func (b *fakeUseBE) BindByName(ctx context.Context, name string, data any, t backend.ExchangeType) error {
	b.name = name
	b.owner.scalarUseData = append(b.owner.scalarUseData, data)
	return nil
}
func (b *fakeUseBE) PreUse(ctx context.Context, ind *indicator.Indicator) error { return nil }
func (b *fakeUseBE) PostUse(ctx context.Context, gotData bool, ind *indicator.Indicator) error {
	return nil
}
func (b *fakeUseBE) CleanUp(ctx context.Context) error { return nil }

type fakeVectorIntoBE struct{}

func (b *fakeVectorIntoBE) DefineByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	return nil
}
func (b *fakeVectorIntoBE) PreFetch(ctx context.Context) error { return nil }
func (b *fakeVectorIntoBE) PostFetch(ctx context.Context, gotData, calledFromFetch bool, inds []indicator.Indicator) error {
	if gotData {
		for i := range inds {
			inds[i] = indicator.OK
		}
	}
	return nil
}
func (b *fakeVectorIntoBE) CleanUp(ctx context.Context) error { return nil }
func (b *fakeVectorIntoBE) Resize(sz int)                     {}
func (b *fakeVectorIntoBE) Size() int                         { return 0 }

type fakeVectorUseBE struct{ fakeUseBE }

func (b *fakeVectorUseBE) Size() int { return 0 }
