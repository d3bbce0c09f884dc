package oracle

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"

	"github.com/godror/godror"

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

// useBackend binds a named or positional value. Oracle is the one
// backend among these five that binds by name natively: the statement
// core's Native ParamStyle branch calls BindByName directly instead of
// resolving the adapter's name to a position first.
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
		// A bulk Use adapter hands BindByPos/BindByName a *[]T vector
		// pointer; godror's native array-bind wants the slice itself, not
		// a pointer to it, so unwrap one level of pointer-to-slice here.
		rv := reflect.ValueOf(data)
		if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Slice {
			return rv.Elem().Interface()
		}
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

// PostFetch writes one row of buffered results per element of the
// caller's destination vector, resolving each row's null/truncated state
// through backend.ResolveVectorSlot the way the scalar path resolves a
// single slot through backend.ResolveScalar.
func (b *vectorIntoBackend) PostFetch(ctx context.Context, gotData, calledFromFetch bool, inds []indicator.Indicator) error {
	if !gotData {
		return nil
	}
	dest := b.destFor()
	if dest == nil {
		return nil
	}
	for i := 0; i < b.size; i++ {
		row := b.stmt.buffered[i]
		var raw any
		if b.pos-1 < len(row) {
			raw = row[b.pos-1]
		}
		var ind *indicator.Indicator
		if i < len(inds) {
			ind = &inds[i]
		}
		err := backend.ResolveVectorSlot(backend.IsNullRaw(raw), false, func() error {
			return backend.AssignVectorSlot(dest.data, i, raw, dest.t)
		}, ind, "")
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *vectorIntoBackend) CleanUp(ctx context.Context) error { return nil }

func (b *vectorIntoBackend) Resize(sz int) { b.size = sz }
func (b *vectorIntoBackend) Size() int     { return b.size }

// vectorUseBackend is godror's native array-bind path: unlike the other
// four backends (which issue one round trip per bulk row), Oracle binds
// the whole Go slice in a single call, so Bind here defers to the
// driver's own batch support instead of looping client-side.
type vectorUseBackend struct {
	useBackend
	size int
}

func (b *vectorUseBackend) Size() int { return b.size }

// cursorIntoBackend is the TypeStatement adapter backing exchange.Cursor:
// it registers a REF CURSOR OUT bind and, once the owning statement has
// executed, wraps the driver's returned cursor rows into a fresh
// *sql.Rows the nested Statement's SetBackend call can adopt.
type cursorIntoBackend struct {
	stmt *Statement
	pos  int
	cur  driver.Rows
	dest *backend.StatementBackend
}

func (b *cursorIntoBackend) DefineByPos(ctx context.Context, position *int, data any, t backend.ExchangeType) error {
	*position++
	b.pos = *position
	dest, ok := data.(*backend.StatementBackend)
	if !ok {
		return fmt.Errorf("oracle: TypeStatement define expects *backend.StatementBackend, got %T", data)
	}
	b.dest = dest
	b.stmt.outCursors[b.pos] = &b.cur
	return nil
}

func (b *cursorIntoBackend) PreFetch(ctx context.Context) error { return nil }

// PostFetch wraps the REF CURSOR driver.Rows godror populated during
// Execute's sql.Out bind into a *sql.Rows usable by a fresh Statement,
// which the caller (exchange.Cursor) then hands to the inner statement
// via SetBackend/Rebind.
func (b *cursorIntoBackend) PostFetch(ctx context.Context, gotData, calledFromFetch bool, ind *indicator.Indicator) error {
	if !gotData || b.cur == nil {
		return nil
	}
	conn, err := b.stmt.session.db.Conn(ctx)
	if err != nil {
		return err
	}
	var rows *sql.Rows
	err = conn.Raw(func(driverConn any) error {
		var wrapErr error
		rows, wrapErr = godror.WrapRows(ctx, driverConn, b.cur)
		return wrapErr
	})
	if err != nil {
		return err
	}
	inner := &Statement{session: b.stmt.session}
	if err := inner.adoptRows(rows); err != nil {
		return err
	}
	*b.dest = inner
	return nil
}

func (b *cursorIntoBackend) CleanUp(ctx context.Context) error { return nil }
