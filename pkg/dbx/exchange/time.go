package exchange

import (
	"context"
	"time"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
)

// TimeInto binds one output column to a time.Time, the Go equivalent of
// SOCI's std::tm broken-down-time exchange type (spec.md's Date logical
// type).
type TimeInto struct {
	Dest *time.Time
	Ind  *indicator.Indicator

	be backend.IntoTypeBackend
}

func NewTimeInto(dest *time.Time) *TimeInto { return &TimeInto{Dest: dest} }
func (s *TimeInto) WithIndicator(ind *indicator.Indicator) *TimeInto {
	s.Ind = ind
	return s
}
func (s *TimeInto) Define(ctx context.Context, sb backend.StatementBackend, position *int) error {
	s.be = sb.MakeIntoTypeBackend(backend.TypeStdTm)
	return s.be.DefineByPos(ctx, position, s.Dest, backend.TypeStdTm)
}
func (s *TimeInto) PreFetch(ctx context.Context) error { return s.be.PreFetch(ctx) }
func (s *TimeInto) PostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	return s.be.PostFetch(ctx, gotData, calledFromFetch, s.Ind)
}
func (s *TimeInto) CleanUp(ctx context.Context) error { return s.be.CleanUp(ctx) }
func (s *TimeInto) Size() int                         { return 1 }
func (s *TimeInto) Resize(int)                        {}

// TimeUse binds one input parameter to a time.Time. The backends hand
// the *time.Time to the driver as is; PreUse does not format it to text.
type TimeUse struct {
	Src  *time.Time
	Ind  *indicator.Indicator
	name string

	be backend.UseTypeBackend
}

func NewTimeUse(src *time.Time) *TimeUse { return &TimeUse{Src: src} }
func NewNamedTimeUse(name string, src *time.Time) *TimeUse {
	return &TimeUse{Src: src, name: name}
}
func (s *TimeUse) WithIndicator(ind *indicator.Indicator) *TimeUse {
	s.Ind = ind
	return s
}
func (s *TimeUse) Name() string { return s.name }
func (s *TimeUse) Bind(ctx context.Context, sb backend.StatementBackend, position *int) error {
	s.be = sb.MakeUseTypeBackend(backend.TypeStdTm)
	return s.be.BindByPos(ctx, position, s.Src, backend.TypeStdTm)
}
func (s *TimeUse) BindByName(ctx context.Context, sb backend.StatementBackend, name string) error {
	s.be = sb.MakeUseTypeBackend(backend.TypeStdTm)
	return s.be.BindByName(ctx, name, s.Src, backend.TypeStdTm)
}
func (s *TimeUse) PreUse(ctx context.Context) error { return s.be.PreUse(ctx, s.Ind) }
func (s *TimeUse) PostUse(ctx context.Context, gotData bool) error {
	return s.be.PostUse(ctx, gotData, s.Ind)
}
func (s *TimeUse) CleanUp(ctx context.Context) error { return s.be.CleanUp(ctx) }
func (s *TimeUse) Size() int                         { return 1 }
