package exchange

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/dxerr"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// VectorInto binds a result column to a vector of numeric user values,
// resized in place to the actual row count delivered by each execute or
// fetch (spec.md's "resize-on-fetch" rule).
type VectorInto[T Numeric] struct {
	Dest *[]T
	Ind  *[]indicator.Indicator

	be backend.VectorIntoBackend
}

// NewVectorInto wraps a caller-owned slice; its initial length is the
// requested batch size.
func NewVectorInto[T Numeric](dest *[]T) *VectorInto[T] { return &VectorInto[T]{Dest: dest} }

func (v *VectorInto[T]) WithIndicator(ind *[]indicator.Indicator) *VectorInto[T] {
	v.Ind = ind
	return v
}

func (v *VectorInto[T]) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	et := exchangeTypeFor[T]()
	v.be = sb.MakeVectorIntoTypeBackend(et)
	if err := v.be.DefineByPos(ctx, position, v.Dest, et); err != nil {
		return err
	}
	v.be.Resize(len(*v.Dest))
	return nil
}
func (v *VectorInto[T]) PreFetch(ctx context.Context) error { return v.be.PreFetch(ctx) }
func (v *VectorInto[T]) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	var inds []indicator.Indicator
	if v.Ind != nil {
		inds = *v.Ind
	}
	return v.be.PostFetch(ctx, gotData, calledFromFetch, inds)
}
func (v *VectorInto[T]) CleanUp(ctx context.Context) error { return v.be.CleanUp(ctx) }
func (v *VectorInto[T]) Size() int {
	if v.Dest == nil {
		return 0
	}
	return len(*v.Dest)
}
func (v *VectorInto[T]) Resize(sz int) {
	if sz < 0 {
		sz = 0
	}
	if v.Dest != nil {
		if sz <= len(*v.Dest) {
			*v.Dest = (*v.Dest)[:sz]
		} else {
			grown := make([]T, sz)
			copy(grown, *v.Dest)
			*v.Dest = grown
		}
	}
	if v.Ind != nil {
		if sz <= len(*v.Ind) {
			*v.Ind = (*v.Ind)[:sz]
		} else {
			grown := make([]indicator.Indicator, sz)
			copy(grown, *v.Ind)
			*v.Ind = grown
		}
	}
	if v.be != nil {
		v.be.Resize(sz)
	}
}

// VectorUse binds a vector of numeric user values as bulk bind
// parameters, by position or by name.
type VectorUse[T Numeric] struct {
	Src  *[]T
	Ind  *[]indicator.Indicator
	name string

	be backend.VectorUseBackend
}

func NewVectorUse[T Numeric](src *[]T) *VectorUse[T] { return &VectorUse[T]{Src: src} }
func NewNamedVectorUse[T Numeric](name string, src *[]T) *VectorUse[T] {
	return &VectorUse[T]{Src: src, name: name}
}
func (v *VectorUse[T]) WithIndicator(ind *[]indicator.Indicator) *VectorUse[T] {
	v.Ind = ind
	return v
}
func (v *VectorUse[T]) Name() string { return v.name }

func (v *VectorUse[T]) Bind(ctx context.Context, sb backend.StatementBackend, position *int) error {
	et := exchangeTypeFor[T]()
	v.be = sb.MakeVectorUseTypeBackend(et)
	return v.be.BindByPos(ctx, position, v.Src, et)
}
func (v *VectorUse[T]) BindByName(ctx context.Context, sb backend.StatementBackend, name string) error {
	et := exchangeTypeFor[T]()
	v.be = sb.MakeVectorUseTypeBackend(et)
	return v.be.BindByName(ctx, name, v.Src, et)
}
func (v *VectorUse[T]) PreUse(ctx context.Context) error {
	var single *indicator.Indicator
	if v.Ind != nil && len(*v.Ind) > 0 {
		single = &(*v.Ind)[0]
	}
	return v.be.PreUse(ctx, single)
}
func (v *VectorUse[T]) PostUse(ctx context.Context, gotData bool) error {
	var single *indicator.Indicator
	if v.Ind != nil && len(*v.Ind) > 0 {
		single = &(*v.Ind)[0]
	}
	return v.be.PostUse(ctx, gotData, single)
}
func (v *VectorUse[T]) CleanUp(ctx context.Context) error { return v.be.CleanUp(ctx) }
func (v *VectorUse[T]) Size() int {
	if v.Src == nil {
		return 0
	}
	return len(*v.Src)
}

// VectorStringInto binds a result column to a vector of strings.
type VectorStringInto struct {
	Dest *[]string
	Ind  *[]indicator.Indicator

	be backend.VectorIntoBackend
}

func NewVectorStringInto(dest *[]string) *VectorStringInto {
	return &VectorStringInto{Dest: dest}
}
func (v *VectorStringInto) WithIndicator(ind *[]indicator.Indicator) *VectorStringInto {
	v.Ind = ind
	return v
}
func (v *VectorStringInto) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	v.be = sb.MakeVectorIntoTypeBackend(backend.TypeStdString)
	if err := v.be.DefineByPos(ctx, position, v.Dest, backend.TypeStdString); err != nil {
		return err
	}
	v.be.Resize(len(*v.Dest))
	return nil
}
func (v *VectorStringInto) PreFetch(ctx context.Context) error { return v.be.PreFetch(ctx) }
func (v *VectorStringInto) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	var inds []indicator.Indicator
	if v.Ind != nil {
		inds = *v.Ind
	}
	return v.be.PostFetch(ctx, gotData, calledFromFetch, inds)
}
func (v *VectorStringInto) CleanUp(ctx context.Context) error { return v.be.CleanUp(ctx) }
func (v *VectorStringInto) Size() int {
	if v.Dest == nil {
		return 0
	}
	return len(*v.Dest)
}
func (v *VectorStringInto) Resize(sz int) {
	if sz < 0 {
		sz = 0
	}
	if v.Dest != nil {
		if sz <= len(*v.Dest) {
			*v.Dest = (*v.Dest)[:sz]
		} else {
			grown := make([]string, sz)
			copy(grown, *v.Dest)
			*v.Dest = grown
		}
	}
	if v.Ind != nil {
		if sz <= len(*v.Ind) {
			*v.Ind = (*v.Ind)[:sz]
		} else {
			grown := make([]indicator.Indicator, sz)
			copy(grown, *v.Ind)
			*v.Ind = grown
		}
	}
	if v.be != nil {
		v.be.Resize(sz)
	}
}

// ValidateVectorSizes enforces spec.md §8's universal invariant: all
// adapters of the same kind must report equal, nonzero logical sizes.
func ValidateVectorSizes(kind string, sizes []int) error {
	if len(sizes) == 0 {
		return nil
	}
	first := sizes[0]
	if first == 0 {
		return dxerr.NewSizeMismatchError(kind, 0, first, 0)
	}
	for i, s := range sizes {
		if s != first {
			return dxerr.NewSizeMismatchError(kind, i, first, s)
		}
	}
	return nil
}
