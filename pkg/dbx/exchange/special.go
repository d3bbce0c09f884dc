package exchange

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// RowID is an opaque driver row identifier usable as an Into or Use
// value, grounded in SOCI's oracle/row-id.cpp and postgresql/row-id.cpp.
type RowID struct {
	Backend backend.RowIDBackend
	Ind     *indicator.Indicator

	ibe backend.IntoTypeBackend
	ube backend.UseTypeBackend
	name string
}

// NewRowIDInto creates a RowID adapter used as a fetch destination. Call
// Value() after PostFetch to read the fetched identifier.
func NewRowIDInto() *RowID { return &RowID{} }

// NewRowIDUse creates a RowID adapter used as a bind source; rb must
// already hold the identifier to bind (obtained from a prior fetch or
// from Session.MakeRowID).
func NewRowIDUse(rb backend.RowIDBackend) *RowID { return &RowID{Backend: rb} }

func (r *RowID) Value() any {
	if r.Backend == nil {
		return nil
	}
	return r.Backend.Value()
}

func (r *RowID) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	r.ibe = sb.MakeIntoTypeBackend(backend.TypeRowID)
	return r.ibe.DefineByPos(ctx, position, &r.Backend, backend.TypeRowID)
}
func (r *RowID) PreFetch(ctx context.Context) error { return r.ibe.PreFetch(ctx) }
func (r *RowID) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	return r.ibe.PostFetch(ctx, gotData, calledFromFetch, r.Ind)
}
func (r *RowID) CleanUp(ctx context.Context) error {
	if r.ibe != nil {
		return r.ibe.CleanUp(ctx)
	}
	if r.ube != nil {
		return r.ube.CleanUp(ctx)
	}
	return nil
}
func (r *RowID) Size() int  { return 1 }
func (r *RowID) Resize(int) {}
func (r *RowID) Name() string { return r.name }

func (r *RowID) Bind(ctx context.Context, sb backend.StatementBackend, position *int) error {
	r.ube = sb.MakeUseTypeBackend(backend.TypeRowID)
	return r.ube.BindByPos(ctx, position, r.Backend, backend.TypeRowID)
}
func (r *RowID) BindByName(ctx context.Context, sb backend.StatementBackend, name string) error {
	r.ube = sb.MakeUseTypeBackend(backend.TypeRowID)
	r.name = name
	return r.ube.BindByName(ctx, name, r.Backend, backend.TypeRowID)
}
func (r *RowID) PreUse(ctx context.Context) error { return r.ube.PreUse(ctx, r.Ind) }
func (r *RowID) PostUse(ctx context.Context, gotData bool) error {
	return r.ube.PostUse(ctx, gotData, r.Ind)
}

// Blob is the handle adapter for a large binary object: length, read at
// offset, write at offset, append, trim -- grounded in SOCI's
// sqlite3/blob.cpp and odbc/blob.cpp.
type Blob struct {
	Backend backend.BlobBackend
}

// NewBlob wraps a backend.BlobBackend obtained from a Session.
func NewBlob(bb backend.BlobBackend) *Blob { return &Blob{Backend: bb} }

func (b *Blob) Length(ctx context.Context) (int64, error) { return b.Backend.Length(ctx) }
func (b *Blob) Read(ctx context.Context, offset int64, buf []byte) (int, error) {
	return b.Backend.Read(ctx, offset, buf)
}
func (b *Blob) Write(ctx context.Context, offset int64, data []byte) (int, error) {
	return b.Backend.Write(ctx, offset, data)
}
func (b *Blob) Append(ctx context.Context, data []byte) (int, error) {
	return b.Backend.Append(ctx, data)
}
func (b *Blob) Trim(ctx context.Context, newLength int64) error {
	return b.Backend.Trim(ctx, newLength)
}

// Cursor is the nested-statement Into/Use adapter for the Oracle
// "output cursor" idiom generalized to any backend that can return a
// statement-shaped column (a REF CURSOR), per spec.md §4.3's closing
// paragraph.
type Cursor struct {
	Inner StatementLike
	be    backend.IntoTypeBackend

	// handle receives the REF CURSOR's own StatementBackend from the
	// driver during PostFetch; DefineByPos is given its address so the
	// backend can populate it without Cursor depending on a driver type.
	handle backend.StatementBackend
}

// StatementLike is the minimal surface Cursor needs from a Statement,
// kept this narrow so the exchange package never imports the statement
// package (which imports exchange).
type StatementLike interface {
	Unbind(ctx context.Context) error
	Rebind(ctx context.Context) error

	// SetBackend swaps the inner statement's per-statement driver handle
	// for the REF CURSOR handle the outer fetch just produced.
	SetBackend(sb backend.StatementBackend)
}

// NewCursor wraps a not-yet-executed inner Statement that will receive a
// REF CURSOR result from the outer statement's fetch.
func NewCursor(inner StatementLike) *Cursor { return &Cursor{Inner: inner} }

func (c *Cursor) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	c.be = sb.MakeIntoTypeBackend(backend.TypeStatement)
	return c.be.DefineByPos(ctx, position, &c.handle, backend.TypeStatement)
}

// PreFetch tears down the inner statement's adapters without releasing
// its backend handle, mirroring SOCI's UseType<Statement>::preUse /
// IntoType<Statement>::preFetch.
func (c *Cursor) PreFetch(ctx context.Context) error {
	if err := c.Inner.Unbind(ctx); err != nil {
		return err
	}
	return c.be.PreFetch(ctx)
}

// PostFetch re-invokes defineAndBind on the inner statement once the
// driver has populated it with a live cursor handle.
func (c *Cursor) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	if err := c.be.PostFetch(ctx, gotData, calledFromFetch, nil); err != nil {
		return err
	}
	if !gotData {
		return nil
	}
	c.Inner.SetBackend(c.handle)
	return c.Inner.Rebind(ctx)
}

func (c *Cursor) CleanUp(ctx context.Context) error { return c.be.CleanUp(ctx) }
func (c *Cursor) Size() int                         { return 1 }
func (c *Cursor) Resize(int)                        {}
