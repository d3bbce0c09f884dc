package exchange

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// Numeric is the closed set of Go types the generic scalar adapters bind
// against, covering spec.md's Short/Integer/UnsignedLong/LongLong/Double
// logical types.
type Numeric interface {
	~int16 | ~int32 | ~int64 | ~uint64 | ~float64
}

func exchangeTypeFor[T Numeric]() backend.ExchangeType {
	var zero T
	switch any(zero).(type) {
	case int16:
		return backend.TypeShort
	case int32:
		return backend.TypeInteger
	case int64:
		return backend.TypeLongLong
	case uint64:
		return backend.TypeUnsignedLong
	case float64:
		return backend.TypeDouble
	default:
		return backend.TypeInteger
	}
}

// ScalarInto binds one output column to one numeric user variable. It is
// deliberately thin: the backend owns null/truncation detection and the
// byte-level conversion (spec.md's IntoTypeBackend.PostFetch contract);
// this adapter only threads the user's pointer and indicator through.
type ScalarInto[T Numeric] struct {
	Dest *T
	Ind  *indicator.Indicator

	be     backend.IntoTypeBackend
	column string
}

// NewScalarInto creates a ScalarInto with no indicator: a fetched NULL
// raises dxerr.IndicatorMissingError.
func NewScalarInto[T Numeric](dest *T) *ScalarInto[T] {
	return &ScalarInto[T]{Dest: dest}
}

// WithIndicator attaches an indicator pointer, making NULL/TRUNCATED/
// NO_DATA observable without an error.
func (s *ScalarInto[T]) WithIndicator(ind *indicator.Indicator) *ScalarInto[T] {
	s.Ind = ind
	return s
}

func (s *ScalarInto[T]) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	et := exchangeTypeFor[T]()
	s.be = sb.MakeIntoTypeBackend(et)
	return s.be.DefineByPos(ctx, position, s.Dest, et)
}

func (s *ScalarInto[T]) PreFetch(ctx context.Context) error { return s.be.PreFetch(ctx) }

func (s *ScalarInto[T]) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	return s.be.PostFetch(ctx, gotData, calledFromFetch, s.Ind)
}

func (s *ScalarInto[T]) CleanUp(ctx context.Context) error { return s.be.CleanUp(ctx) }
func (s *ScalarInto[T]) Size() int                         { return 1 }
func (s *ScalarInto[T]) Resize(int)                        {}

// ScalarUse binds one input parameter to one numeric user variable, by
// position or by name.
type ScalarUse[T Numeric] struct {
	Src  *T
	Ind  *indicator.Indicator
	name string

	be backend.UseTypeBackend
}

// NewScalarUse creates a positional ScalarUse.
func NewScalarUse[T Numeric](src *T) *ScalarUse[T] { return &ScalarUse[T]{Src: src} }

// NewNamedScalarUse creates a bind-by-name ScalarUse.
func NewNamedScalarUse[T Numeric](name string, src *T) *ScalarUse[T] {
	return &ScalarUse[T]{Src: src, name: name}
}

func (s *ScalarUse[T]) WithIndicator(ind *indicator.Indicator) *ScalarUse[T] {
	s.Ind = ind
	return s
}

func (s *ScalarUse[T]) Name() string { return s.name }

func (s *ScalarUse[T]) Bind(ctx context.Context, sb backend.StatementBackend, position *int) error {
	et := exchangeTypeFor[T]()
	s.be = sb.MakeUseTypeBackend(et)
	return s.be.BindByPos(ctx, position, s.Src, et)
}

func (s *ScalarUse[T]) BindByName(ctx context.Context, sb backend.StatementBackend, name string) error {
	et := exchangeTypeFor[T]()
	s.be = sb.MakeUseTypeBackend(et)
	return s.be.BindByName(ctx, name, s.Src, et)
}

func (s *ScalarUse[T]) PreUse(ctx context.Context) error { return s.be.PreUse(ctx, s.Ind) }

func (s *ScalarUse[T]) PostUse(ctx context.Context, gotData bool) error {
	return s.be.PostUse(ctx, gotData, s.Ind)
}

func (s *ScalarUse[T]) CleanUp(ctx context.Context) error { return s.be.CleanUp(ctx) }
func (s *ScalarUse[T]) Size() int                         { return 1 }
