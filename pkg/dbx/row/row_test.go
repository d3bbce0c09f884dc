package row

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

func TestAddColumnKeepsParallelSlicesInSync(t *testing.T) {
	r := New()
	r.AddColumn(ColumnProperty{Name: "id", Type: backend.LogicalInteger})
	r.AddColumn(ColumnProperty{Name: "name", Type: backend.LogicalString})

	assert.Equal(t, 2, r.Size())
	assert.Len(t, r.Holders, 2)
	assert.Len(t, r.Indicators, 2)
	assert.Equal(t, indicator.NoData, r.Indicator(0))

	idx, ok := r.IndexOf("name")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = r.IndexOf("missing")
	assert.False(t, ok)
}

func TestAddColumnDuplicateNameShadowsEarlier(t *testing.T) {
	r := New()
	r.AddColumn(ColumnProperty{Name: "x", Type: backend.LogicalInteger})
	r.AddColumn(ColumnProperty{Name: "x", Type: backend.LogicalString})

	idx, ok := r.IndexOf("x")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestIndicatorByNameMissingColumn(t *testing.T) {
	r := New()
	ind, ok := r.IndicatorByName("nope")
	assert.False(t, ok)
	assert.Equal(t, indicator.NoData, ind)
}

func TestResetClearsHoldersAndIndicators(t *testing.T) {
	r := New()
	r.AddColumn(ColumnProperty{Name: "id", Type: backend.LogicalInteger})
	r.Holders[0].Int = 42
	r.Indicators[0] = indicator.OK

	r.Reset()
	assert.Equal(t, int64(0), r.Holders[0].Int)
	assert.Equal(t, indicator.NoData, r.Indicators[0])
}

type fakeIntoBackend struct {
	dest any
}

func (f *fakeIntoBackend) DefineByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	f.dest = data
	return nil
}
func (f *fakeIntoBackend) PreFetch(ctx context.Context) error { return nil }
func (f *fakeIntoBackend) PostFetch(ctx context.Context, gotData, calledFromFetch bool, ind *indicator.Indicator) error {
	if ind != nil {
		*ind = indicator.OK
	}
	return nil
}
func (f *fakeIntoBackend) CleanUp(ctx context.Context) error { return nil }

type fakeStatementBackendStub struct {
	backend.StatementBackend
	lastType backend.ExchangeType
	lastInto *fakeIntoBackend
}

func (f *fakeStatementBackendStub) MakeIntoTypeBackend(t backend.ExchangeType) backend.IntoTypeBackend {
	f.lastType = t
	f.lastInto = &fakeIntoBackend{}
	return f.lastInto
}

func TestColumnIntoDefineWritesToHolder(t *testing.T) {
	r := New()
	r.AddColumn(ColumnProperty{Name: "score", Type: backend.LogicalDouble})

	ci := NewColumnInto(r, 0)
	sb := &fakeStatementBackendStub{}
	pos := 0

	ctx := context.Background()
	assert.NoError(t, ci.Define(ctx, sb, &pos))
	assert.Equal(t, 1, pos)
	assert.Equal(t, backend.TypeDouble, sb.lastType)
	assert.Same(t, &r.Holders[0].Num, sb.lastInto.dest)

	assert.NoError(t, ci.PreFetch(ctx))
	assert.NoError(t, ci.PostFetch(ctx, true, false))
	assert.Equal(t, indicator.OK, r.Indicators[0])

	assert.NoError(t, ci.CleanUp(ctx))
	assert.Equal(t, 1, ci.Size())
}

func TestStockExchangeTypeMapping(t *testing.T) {
	cases := []struct {
		lt   backend.LogicalType
		want backend.ExchangeType
	}{
		{backend.LogicalString, backend.TypeStdString},
		{backend.LogicalDate, backend.TypeStdTm},
		{backend.LogicalDouble, backend.TypeDouble},
		{backend.LogicalInteger, backend.TypeLongLong},
		{backend.LogicalUnsignedLong, backend.TypeUnsignedLong},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, stockExchangeType(c.lt))
	}
}
