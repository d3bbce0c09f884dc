package postgres

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// intoBackend is the scalar output-adapter driver state: which $n
// position to read and the exchange type to coerce the cached raw value
// into.
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

// useBackend is the scalar input-adapter driver state: a $n position (or
// a name, for the rare case a caller routes through BindByName directly)
// holding the value to pass as a pgx query argument.
type useBackend struct {
	stmt *Statement
	t    backend.ExchangeType
	pos  int
	name string
}

func (b *useBackend) BindByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	b.pos = *position
	val := dereference(data)
	for len(b.stmt.positional) < b.pos {
		b.stmt.positional = append(b.stmt.positional, nil)
	}
	b.stmt.positional[b.pos-1] = val
	return nil
}

func (b *useBackend) BindByName(ctx context.Context, name string, data any, t backend.ExchangeType) error {
	b.name = name
	b.stmt.named[name] = dereference(data)
	return nil
}

func (b *useBackend) PreUse(ctx context.Context, ind *indicator.Indicator) error {
	if ind != nil {
		*ind = indicator.OK
	}
	return nil
}
func (b *useBackend) PostUse(ctx context.Context, gotData bool, ind *indicator.Indicator) error { return nil }
func (b *useBackend) CleanUp(ctx context.Context) error                                         { return nil }

// dereference unwraps the pointer exchange adapters pass through
// DefineByPos/BindByPos into the plain value pgx wants as a query
// argument.
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

// vectorIntoBackend is the bulk output-adapter driver state: the
// postgres backend materializes bulk Into results the same way it does
// scalar ones (row-major client-side cache), so PostFetch just replays
// the scalar decision tree once per already-buffered row.
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

// vectorUseBackend is the bulk input counterpart: pgx has no native
// array-bind call for a plain Query, so BindByPos/BindByName register the
// whole *[]T vector pointer and Statement.Execute's bulk path pulls each
// row's element out at execute time, issuing one query per row.
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
	b.stmt.vectorArgs[b.pos] = data
	return nil
}

func (b *vectorUseBackend) BindByName(ctx context.Context, name string, data any, t backend.ExchangeType) error {
	return b.BindByPos(ctx, &b.pos, data, t)
}

func (b *vectorUseBackend) Size() int { return b.size }
