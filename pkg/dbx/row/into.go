package row

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

// ColumnInto is the Into adapter the statement core injects for each
// column discovered during dynamic description (spec.md §4.2 step 4): it
// binds the stock scalar type matching the column's logical type and, on
// PostFetch, writes into the Row's parallel Holder/Indicator slot instead
// of a user variable.
type ColumnInto struct {
	row   *Row
	index int

	be backend.IntoTypeBackend
}

// NewColumnInto creates the injected adapter for row's column at index.
func NewColumnInto(r *Row, index int) *ColumnInto {
	return &ColumnInto{row: r, index: index}
}

func stockExchangeType(lt backend.LogicalType) backend.ExchangeType {
	switch lt {
	case backend.LogicalString:
		return backend.TypeStdString
	case backend.LogicalDate:
		return backend.TypeStdTm
	case backend.LogicalDouble:
		return backend.TypeDouble
	case backend.LogicalInteger:
		return backend.TypeLongLong
	case backend.LogicalUnsignedLong:
		return backend.TypeUnsignedLong
	default:
		return backend.TypeStdString
	}
}

func (c *ColumnInto) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	lt := c.row.Properties[c.index].Type
	et := stockExchangeType(lt)
	c.be = sb.MakeIntoTypeBackend(et)

	h := &c.row.Holders[c.index]
	var dest any
	switch lt {
	case backend.LogicalString:
		dest = &h.Str
	case backend.LogicalDate:
		dest = &h.Time
	case backend.LogicalDouble:
		dest = &h.Num
	case backend.LogicalInteger:
		dest = &h.Int
	case backend.LogicalUnsignedLong:
		dest = &h.UInt
	default:
		dest = &h.Str
	}
	return c.be.DefineByPos(ctx, position, dest, et)
}

func (c *ColumnInto) PreFetch(ctx context.Context) error { return c.be.PreFetch(ctx) }

func (c *ColumnInto) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	ind := &c.row.Indicators[c.index]
	return c.be.PostFetch(ctx, gotData, calledFromFetch, ind)
}

func (c *ColumnInto) CleanUp(ctx context.Context) error { return c.be.CleanUp(ctx) }
func (c *ColumnInto) Size() int                         { return 1 }
func (c *ColumnInto) Resize(int)                        {}
