// Package typeconv implements the TypeConversion<T> user-extension
// protocol (spec.md §4.5): letting an arbitrary user type participate as
// an Into or Use adapter by converting to/from one of three shapes --a
// stock base type, a name-indexed Values set, or position-indexed access
// over that same Values set.
package typeconv

import (
	"context"
	"fmt"
	"time"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/exchange"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
	"github.com/caspiandb/dbx/pkg/dbx/values"
)

// ByBase is the by-stock-type shape: T converts to and from a base
// scalar type (int64, string, time.Time, float64, uint64, ...). The core
// materializes an Into<base>/Use<base> under the hood and calls these at
// the boundary.
type ByBase[T any, B any] interface {
	ToBase(t T) B
	FromBase(b B) T
}

// BaseInto adapts a user type T through its ByBase conversion and a
// scalar Into adapter for the base type B.
type BaseInto[T any, B exchange.Numeric] struct {
	Dest *T
	Ind  *indicator.Indicator
	Conv ByBase[T, B]

	scratch B
	inner   *exchange.ScalarInto[B]
}

// NewBaseInto wires dest through conv's FromBase on every fetched row.
func NewBaseInto[T any, B exchange.Numeric](dest *T, conv ByBase[T, B]) *BaseInto[T, B] {
	return &BaseInto[T, B]{Dest: dest, Conv: conv}
}

func (b *BaseInto[T, B]) WithIndicator(ind *indicator.Indicator) *BaseInto[T, B] {
	b.Ind = ind
	return b
}

func (b *BaseInto[T, B]) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	b.inner = exchange.NewScalarInto[B](&b.scratch).WithIndicator(b.Ind)
	return b.inner.Define(ctx, sb, position)
}
func (b *BaseInto[T, B]) PreFetch(ctx context.Context) error { return b.inner.PreFetch(ctx) }
func (b *BaseInto[T, B]) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	if err := b.inner.PostFetch(ctx, gotData, calledFromFetch); err != nil {
		return err
	}
	if gotData && (b.Ind == nil || *b.Ind != indicator.Null) {
		*b.Dest = b.Conv.FromBase(b.scratch)
	}
	return nil
}
func (b *BaseInto[T, B]) CleanUp(ctx context.Context) error { return b.inner.CleanUp(ctx) }
func (b *BaseInto[T, B]) Size() int                         { return 1 }
func (b *BaseInto[T, B]) Resize(int)                        {}

// BaseUse adapts a user type T as a bind source through its ByBase
// conversion and a scalar Use adapter for the base type B.
type BaseUse[T any, B exchange.Numeric] struct {
	Src  *T
	Ind  *indicator.Indicator
	Conv ByBase[T, B]
	name string

	scratch B
	inner   *exchange.ScalarUse[B]
}

func NewBaseUse[T any, B exchange.Numeric](src *T, conv ByBase[T, B]) *BaseUse[T, B] {
	return &BaseUse[T, B]{Src: src, Conv: conv}
}
func NewNamedBaseUse[T any, B exchange.Numeric](name string, src *T, conv ByBase[T, B]) *BaseUse[T, B] {
	return &BaseUse[T, B]{Src: src, Conv: conv, name: name}
}
func (b *BaseUse[T, B]) WithIndicator(ind *indicator.Indicator) *BaseUse[T, B] {
	b.Ind = ind
	return b
}
func (b *BaseUse[T, B]) Name() string { return b.name }

func (b *BaseUse[T, B]) prepareScratch() {
	if b.Src != nil {
		b.scratch = b.Conv.ToBase(*b.Src)
	}
}

func (b *BaseUse[T, B]) Bind(ctx context.Context, sb backend.StatementBackend, position *int) error {
	b.prepareScratch()
	b.inner = exchange.NewScalarUse[B](&b.scratch).WithIndicator(b.Ind)
	return b.inner.Bind(ctx, sb, position)
}
func (b *BaseUse[T, B]) BindByName(ctx context.Context, sb backend.StatementBackend, name string) error {
	b.prepareScratch()
	b.inner = exchange.NewScalarUse[B](&b.scratch).WithIndicator(b.Ind)
	return b.inner.BindByName(ctx, sb, name)
}
func (b *BaseUse[T, B]) PreUse(ctx context.Context) error {
	b.prepareScratch()
	return b.inner.PreUse(ctx)
}
func (b *BaseUse[T, B]) PostUse(ctx context.Context, gotData bool) error {
	return b.inner.PostUse(ctx, gotData)
}
func (b *BaseUse[T, B]) CleanUp(ctx context.Context) error { return b.inner.CleanUp(ctx) }
func (b *BaseUse[T, B]) Size() int                         { return 1 }

// ByValues is the name-based shape: base_type is Values. FromValues maps
// a fetched, name-indexed Values into T; ToValues explodes T's fields
// into a Values set whose entries become bind-by-name Use adapters.
type ByValues[T any] interface {
	FromValues(v *values.Values) (T, error)
	ToValues(t T) *values.Values
}

// ExplodeUses converts a ByValues ToValues() result into a list of
// Use adapters bound by name, per spec.md §4.5: "the user's to(T) returns
// a Values whose entries are exploded into a list of Use<base> adapters
// bound by name." Each entry's stored Kind picks the matching stock Use
// adapter; a NULL entry still binds through that same stock adapter,
// carrying a NULL indicator instead of a value.
func ExplodeUses(v *values.Values) ([]exchange.Use, error) {
	uses := make([]exchange.Use, 0, v.Len())
	for _, name := range v.Names() {
		kind, _ := v.Kind(name)
		ind := indicator.OK
		if v.IsNull(name) {
			ind = indicator.Null
		}

		switch kind {
		case backend.LogicalString:
			s, _ := v.GetString(name, "")
			val := s
			uses = append(uses, exchange.NewNamedStringUse(name, &val).WithIndicator(&ind))
		case backend.LogicalInteger:
			n, _ := v.GetInt(name, 0)
			val := n
			uses = append(uses, exchange.NewNamedScalarUse[int64](name, &val).WithIndicator(&ind))
		case backend.LogicalUnsignedLong:
			n, _ := v.GetUint(name, 0)
			val := n
			uses = append(uses, exchange.NewNamedScalarUse[uint64](name, &val).WithIndicator(&ind))
		case backend.LogicalDouble:
			f, _ := v.GetFloat(name, 0)
			val := f
			uses = append(uses, exchange.NewNamedScalarUse[float64](name, &val).WithIndicator(&ind))
		case backend.LogicalDate:
			t, _ := v.GetTime(name, time.Time{})
			val := t
			uses = append(uses, exchange.NewNamedTimeUse(name, &val).WithIndicator(&ind))
		default:
			return nil, fmt.Errorf("typeconv: column %q has no exportable base representation", name)
		}
	}
	return uses, nil
}

// ByPosition is the stream-like shape: identical semantics to ByValues
// but the conversion walks the Values set by integer index (or via
// chained extraction) rather than by name.
type ByPosition[T any] interface {
	FromPositional(v *values.Values) (T, error)
	ToPositional(t T) *values.Values
}
