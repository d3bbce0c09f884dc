package exchange

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// StringInto binds one output column to a Go string, with no fixed
// capacity -- the backend grows the scratch buffer to fit, so truncation
// never occurs on this path (it only applies to CStringInto's fixed
// buffer, per spec.md's truncation scenario).
type StringInto struct {
	Dest *string
	Ind  *indicator.Indicator

	be backend.IntoTypeBackend
}

func NewStringInto(dest *string) *StringInto { return &StringInto{Dest: dest} }

func (s *StringInto) WithIndicator(ind *indicator.Indicator) *StringInto {
	s.Ind = ind
	return s
}

func (s *StringInto) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	s.be = sb.MakeIntoTypeBackend(backend.TypeStdString)
	return s.be.DefineByPos(ctx, position, s.Dest, backend.TypeStdString)
}
func (s *StringInto) PreFetch(ctx context.Context) error { return s.be.PreFetch(ctx) }
func (s *StringInto) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	return s.be.PostFetch(ctx, gotData, calledFromFetch, s.Ind)
}
func (s *StringInto) CleanUp(ctx context.Context) error { return s.be.CleanUp(ctx) }
func (s *StringInto) Size() int                         { return 1 }
func (s *StringInto) Resize(int)                        {}

// StringUse binds one input parameter to a Go string.
type StringUse struct {
	Src  *string
	Ind  *indicator.Indicator
	name string

	be backend.UseTypeBackend
}

func NewStringUse(src *string) *StringUse { return &StringUse{Src: src} }
func NewNamedStringUse(name string, src *string) *StringUse {
	return &StringUse{Src: src, name: name}
}
func (s *StringUse) WithIndicator(ind *indicator.Indicator) *StringUse {
	s.Ind = ind
	return s
}
func (s *StringUse) Name() string { return s.name }
func (s *StringUse) Bind(ctx context.Context, sb backend.StatementBackend, position *int) error {
	s.be = sb.MakeUseTypeBackend(backend.TypeStdString)
	return s.be.BindByPos(ctx, position, s.Src, backend.TypeStdString)
}
func (s *StringUse) BindByName(ctx context.Context, sb backend.StatementBackend, name string) error {
	s.be = sb.MakeUseTypeBackend(backend.TypeStdString)
	return s.be.BindByName(ctx, name, s.Src, backend.TypeStdString)
}
func (s *StringUse) PreUse(ctx context.Context) error { return s.be.PreUse(ctx, s.Ind) }
func (s *StringUse) PostUse(ctx context.Context, gotData bool) error {
	return s.be.PostUse(ctx, gotData, s.Ind)
}
func (s *StringUse) CleanUp(ctx context.Context) error { return s.be.CleanUp(ctx) }
func (s *StringUse) Size() int                         { return 1 }

// CStringInto binds one output column to a fixed-capacity byte buffer,
// the path that can observe TRUNCATED: if the fetched value is longer
// than len(Buf)-1, the indicator (when present) is set to Truncated and
// Buf holds the first len(Buf)-1 bytes followed by a NUL terminator.
type CStringInto struct {
	Buf []byte
	Ind *indicator.Indicator

	be backend.IntoTypeBackend
}

// NewCStringInto wraps a caller-owned, fixed-size buffer. The buffer's
// capacity (not its current length) is the destination size communicated
// to the backend.
func NewCStringInto(buf []byte) *CStringInto { return &CStringInto{Buf: buf} }

func (s *CStringInto) WithIndicator(ind *indicator.Indicator) *CStringInto {
	s.Ind = ind
	return s
}

func (s *CStringInto) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	s.be = sb.MakeIntoTypeBackend(backend.TypeCString)
	return s.be.DefineByPos(ctx, position, s.Buf, backend.TypeCString)
}
func (s *CStringInto) PreFetch(ctx context.Context) error { return s.be.PreFetch(ctx) }
func (s *CStringInto) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	return s.be.PostFetch(ctx, gotData, calledFromFetch, s.Ind)
}
func (s *CStringInto) CleanUp(ctx context.Context) error { return s.be.CleanUp(ctx) }
func (s *CStringInto) Size() int                         { return 1 }
func (s *CStringInto) Resize(int)                        {}

// CharInto binds one output column to a single byte.
type CharInto struct {
	Dest *byte
	Ind  *indicator.Indicator

	be backend.IntoTypeBackend
}

func NewCharInto(dest *byte) *CharInto { return &CharInto{Dest: dest} }
func (s *CharInto) WithIndicator(ind *indicator.Indicator) *CharInto {
	s.Ind = ind
	return s
}
func (s *CharInto) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	s.be = sb.MakeIntoTypeBackend(backend.TypeChar)
	return s.be.DefineByPos(ctx, position, s.Dest, backend.TypeChar)
}
func (s *CharInto) PreFetch(ctx context.Context) error { return s.be.PreFetch(ctx) }
func (s *CharInto) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	return s.be.PostFetch(ctx, gotData, calledFromFetch, s.Ind)
}
func (s *CharInto) CleanUp(ctx context.Context) error { return s.be.CleanUp(ctx) }
func (s *CharInto) Size() int                         { return 1 }
func (s *CharInto) Resize(int)                        {}
