package mysql

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

type intoBackend struct {
	stmt *Statement
	t    backend.ExchangeType
	pos  int
}

func (b *intoBackend) DefineByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	b.pos = *position
	b.stmt.intoDests = append(b.stmt.intoDests, intoDest{pos: b.pos, data: data, t: t})
	return nil
}

func (b *intoBackend) PreFetch(ctx context.Context) error { return nil }

func (b *intoBackend) PostFetch(ctx context.Context, gotData, calledFromFetch bool, ind *indicator.Indicator) error {
	dest := b.destFor()
	if dest == nil {
		return backend.ResolveScalar(gotData, calledFromFetch, false, false, func() error { return nil }, ind, "")
	}
	row := b.stmt.currentRow()
	var raw any
	if row != nil && b.pos-1 < len(row) {
		raw = row[b.pos-1]
	}
	return backend.ResolveScalar(gotData, calledFromFetch, backend.IsNullRaw(raw), false, func() error {
		return backend.AssignScalar(dest.data, raw, dest.t)
	}, ind, "")
}

func (b *intoBackend) destFor() *intoDest {
	for i := range b.stmt.intoDests {
		if b.stmt.intoDests[i].pos == b.pos {
			return &b.stmt.intoDests[i]
		}
	}
	return nil
}

func (b *intoBackend) CleanUp(ctx context.Context) error { return nil }

// useBackend stores a `?`-positional bind value. MySQL has no native
// bind-by-name, so BindByName here exists only to satisfy the
// UseTypeBackend contract for a caller that invokes it directly; the
// statement core always resolves named Use adapters to a position first
// (paramrewrite has already turned every :name into `?`).
type useBackend struct {
	stmt *Statement
	t    backend.ExchangeType
	pos  int
}

func (b *useBackend) BindByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	b.pos = *position
	val := dereference(data)
	for len(b.stmt.args) < b.pos {
		b.stmt.args = append(b.stmt.args, nil)
	}
	b.stmt.args[b.pos-1] = val
	return nil
}

func (b *useBackend) BindByName(ctx context.Context, name string, data any, t backend.ExchangeType) error {
	return b.BindByPos(ctx, &b.pos, data, t)
}

func (b *useBackend) PreUse(ctx context.Context, ind *indicator.Indicator) error {
	if ind != nil {
		*ind = indicator.OK
	}
	return nil
}
func (b *useBackend) PostUse(ctx context.Context, gotData bool, ind *indicator.Indicator) error { return nil }
func (b *useBackend) CleanUp(ctx context.Context) error                                         { return nil }

func dereference(data any) any {
	switch v := data.(type) {
	case *string:
		return *v
	case *int16:
		return *v
	case *int32:
		return *v
	case *int64:
		return *v
	case *uint64:
		return *v
	case *float64:
		return *v
	case *byte:
		return *v
	default:
		return data
	}
}

type vectorIntoBackend struct {
	stmt *Statement
	t    backend.ExchangeType
	pos  int
	size int
}

func (b *vectorIntoBackend) DefineByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	b.pos = *position
	b.stmt.intoDests = append(b.stmt.intoDests, intoDest{pos: b.pos, data: data, t: t})
	return nil
}

func (b *vectorIntoBackend) PreFetch(ctx context.Context) error { return nil }

func (b *vectorIntoBackend) destFor() *intoDest {
	for i := range b.stmt.intoDests {
		if b.stmt.intoDests[i].pos == b.pos {
			return &b.stmt.intoDests[i]
		}
	}
	return nil
}

// PostFetch writes one row of the already-buffered result cache per
// element of the caller's destination vector, resolving each row's
// null/truncated state through backend.ResolveVectorSlot.
func (b *vectorIntoBackend) PostFetch(ctx context.Context, gotData, calledFromFetch bool, inds []indicator.Indicator) error {
	if !gotData {
		return nil
	}
	dest := b.destFor()
	if dest == nil {
		return nil
	}
	for i := 0; i < b.size && i < len(b.stmt.buffered); i++ {
		row := b.stmt.buffered[i]
		var raw any
		if b.pos-1 < len(row) {
			raw = row[b.pos-1]
		}
		var ind *indicator.Indicator
		if i < len(inds) {
			ind = &inds[i]
		}
		if err := backend.ResolveVectorSlot(backend.IsNullRaw(raw), false, func() error {
			return backend.AssignVectorSlot(dest.data, i, raw, dest.t)
		}, ind, ""); err != nil {
			return err
		}
	}
	return nil
}

func (b *vectorIntoBackend) CleanUp(ctx context.Context) error { return nil }
func (b *vectorIntoBackend) Resize(sz int)                     { b.size = sz }
func (b *vectorIntoBackend) Size() int                          { return b.size }

// vectorUseBackend binds a whole *[]T vector pointer per position/name
// instead of dereferencing it into a single value, so Statement.Execute's
// bulk path can pull each row's element out at execute time.
type vectorUseBackend struct {
	useBackend
	size int
}

func (b *vectorUseBackend) BindByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	b.pos = *position
	if b.stmt.vectorArgs == nil {
		b.stmt.vectorArgs = make(map[int]any)
	}
	for len(b.stmt.args) < b.pos {
		b.stmt.args = append(b.stmt.args, nil)
	}
	b.stmt.vectorArgs[b.pos] = data
	return nil
}

func (b *vectorUseBackend) BindByName(ctx context.Context, name string, data any, t backend.ExchangeType) error {
	return b.BindByPos(ctx, &b.pos, data, t)
}

func (b *vectorUseBackend) Size() int { return b.size }
