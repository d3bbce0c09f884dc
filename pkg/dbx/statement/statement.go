// Package statement implements the core state machine (spec.md §4.1-§4.2):
// prepare, exchange registration, defineAndBind, execute, and fetch, plus
// the dynamic row description orchestration that row.Row/exchange.Into
// adapters are injected from.
package statement

import (
	"context"
	"fmt"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/dxerr"
	"github.com/caspiandb/dbx/pkg/dbx/dxlog"
	"github.com/caspiandb/dbx/pkg/dbx/exchange"
	"github.com/caspiandb/dbx/pkg/dbx/indicator"
	"github.com/caspiandb/dbx/pkg/dbx/paramrewrite"
	"github.com/caspiandb/dbx/pkg/dbx/row"
)

// State is one node of the statement lifecycle from spec.md §4.1:
// UNPREPARED -> PREPARED -> BOUND -> EXECUTED <-> FETCHING -> EXHAUSTED ->
// CLEANED.
type State int

const (
	Unprepared State = iota
	Prepared
	Bound
	Executed
	Fetching
	Exhausted
	Cleaned
)

func (s State) String() string {
	switch s {
	case Unprepared:
		return "UNPREPARED"
	case Prepared:
		return "PREPARED"
	case Bound:
		return "BOUND"
	case Executed:
		return "EXECUTED"
	case Fetching:
		return "FETCHING"
	case Exhausted:
		return "EXHAUSTED"
	case Cleaned:
		return "CLEANED"
	default:
		return "UNKNOWN"
	}
}

// ParamStyle tells Prepare how to rewrite `:name` placeholders for the
// owning session's driver.
type ParamStyle = paramrewrite.Style

// Statement is one prepared query plus its bound exchange adapters. It is
// not safe for concurrent use by multiple goroutines, matching the
// underlying driver statement handles it wraps.
type Statement struct {
	sb    backend.StatementBackend
	style ParamStyle
	log   *dxlog.Logger

	state State

	query     string
	rewritten string
	names     []string

	intos []exchange.Into
	uses  []exchange.Use

	// row is non-nil only for statements built via dynamic description
	// (no Into adapters supplied up front): the core assembles one during
	// the first execute/fetch, per spec.md §4.2 step 4.
	row *row.Row

	rowsFetched int
	gotDataLast bool

	// initialBatchSize freezes batchSize() as of the last DefineAndBind:
	// the fetch-batch size a bulk Into vector was bound with may never
	// grow past it (spec.md §3/§4.2's growth invariant), even though the
	// caller is free to shrink the vector between fetches.
	initialBatchSize int

	// savedIntos/savedUses hold the adapters Unbind cleared, so Rebind can
	// re-register the same ones once a REF CURSOR inner statement has
	// received its live driver handle (spec.md §4.3, exchange.Cursor).
	savedIntos []exchange.Into
	savedUses  []exchange.Use
}

// SetBackend replaces the statement's per-statement driver handle,
// used by a Cursor's outer IntoTypeBackend to hand an inner Statement
// the REF CURSOR handle the driver returned in place of its original,
// still-unprepared one.
func (s *Statement) SetBackend(sb backend.StatementBackend) { s.sb = sb }

// New creates a Statement bound to a per-statement driver handle and
// the session's parameter-rewrite style.
func New(sb backend.StatementBackend, style ParamStyle, log *dxlog.Logger) *Statement {
	return &Statement{sb: sb, style: style, log: log, state: Unprepared}
}

// Prepare rewrites query's named placeholders to the driver's native form
// and prepares it, per spec.md §4.2 step 1. hint distinguishes a one-shot
// Once-builder query from a reusable Prepare-builder one.
func (s *Statement) Prepare(ctx context.Context, query string, hint backend.PrepareHint) error {
	if s.state != Unprepared {
		return dxerr.NewInvalidStatementStateError(s.state.String(), "Prepare")
	}
	if err := s.sb.Alloc(ctx); err != nil {
		return err
	}
	rewritten, names := paramrewrite.Rewrite(query, s.style)
	s.query, s.rewritten, s.names = query, rewritten, names
	if s.log != nil {
		s.log.LogQuery(rewritten)
	}
	if err := s.sb.Prepare(ctx, rewritten, hint); err != nil {
		return dxerr.NewPreparationError("", query, err)
	}
	s.state = Prepared
	return nil
}

// AddInto registers an output adapter, to be defined against the next
// free output position when DefineAndBind runs.
func (s *Statement) AddInto(into exchange.Into) { s.intos = append(s.intos, into) }

// AddUse registers an input adapter. If name is non-empty via the
// adapter's Name(), it is bound by name; otherwise by position, in
// registration order.
func (s *Statement) AddUse(use exchange.Use) { s.uses = append(s.uses, use) }

// DefineAndBind performs spec.md §4.2 step 2: define every registered
// Into at increasing output positions, then bind every registered Use
// either by name (when the adapters carry names and the statement used
// named placeholders) or by position. Mixing named and positional Use
// adapters within one statement is rejected with a BindingError.
func (s *Statement) DefineAndBind(ctx context.Context) error {
	if s.state != Prepared {
		return dxerr.NewInvalidStatementStateError(s.state.String(), "DefineAndBind")
	}

	if err := s.validateVectorUses(); err != nil {
		return err
	}
	if err := s.validateVectorIntos(); err != nil {
		return err
	}
	if len(s.intos) > 0 && len(s.uses) > 0 {
		for _, in := range s.intos {
			if in.Size() > 1 {
				for _, u := range s.uses {
					if u.Size() > 1 {
						return dxerr.NewBulkMixError(len(s.intos), len(s.uses))
					}
				}
				break
			}
		}
	}

	pos := 0
	for _, in := range s.intos {
		if err := in.Define(ctx, s.sb, &pos); err != nil {
			return err
		}
	}

	named, positional := false, false
	for _, u := range s.uses {
		if u.Name() != "" {
			named = true
		} else {
			positional = true
		}
	}
	if named && positional {
		return dxerr.NewBindingError("named and positional use adapters cannot be mixed in one statement", "")
	}
	if named && len(s.names) > 0 {
		// The query itself used :name placeholders. Oracle binds
		// natively by name, so hand the name straight to the backend.
		// Every other style has already been rewritten to positional
		// placeholders by paramrewrite, so the core itself resolves the
		// adapter's name to the placeholder's ordinal position -- the
		// position of that name's first occurrence, per the repeated-
		// name convention in spec.md §6 ("each occurrence becomes a
		// distinct positional parameter referring to the same named Use
		// adapter"). A name used more than once binds only its first
		// occurrence; see DESIGN.md's Open Question on this.
		for _, u := range s.uses {
			name := u.Name()
			if s.style == paramrewrite.Native {
				if err := u.BindByName(ctx, s.sb, name); err != nil {
					return err
				}
				continue
			}
			p := firstOccurrence(s.names, name)
			if err := u.Bind(ctx, s.sb, &p); err != nil {
				return err
			}
		}
	} else {
		pos = 0
		for _, u := range s.uses {
			if err := u.Bind(ctx, s.sb, &pos); err != nil {
				return err
			}
		}
	}

	s.initialBatchSize = s.batchSize()
	s.state = Bound
	return nil
}

// firstOccurrence returns the 1-based position of name's first
// occurrence in names, or len(names)+1 (append) when absent.
func firstOccurrence(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i + 1
		}
	}
	return len(names) + 1
}

func (s *Statement) validateVectorUses() error {
	var sizes []int
	for _, u := range s.uses {
		if u.Size() > 1 {
			sizes = append(sizes, u.Size())
		}
	}
	return exchange.ValidateVectorSizes("Use", sizes)
}

func (s *Statement) validateVectorIntos() error {
	var sizes []int
	for _, in := range s.intos {
		if in.Size() > 1 {
			sizes = append(sizes, in.Size())
		}
	}
	return exchange.ValidateVectorSizes("Into", sizes)
}

// batchSize returns the vector size every bulk adapter agrees on, or 1 for
// an all-scalar statement.
func (s *Statement) batchSize() int {
	max := 1
	for _, in := range s.intos {
		if in.Size() > max {
			max = in.Size()
		}
	}
	for _, u := range s.uses {
		if u.Size() > max {
			max = u.Size()
		}
	}
	return max
}

// Execute runs the bound statement, per spec.md §4.2 step 3. When the
// statement has no registered Into adapters and the driver reports a
// result set, it falls into dynamic description (step 4) and builds a
// Row on the fly.
func (s *Statement) Execute(ctx context.Context, withDataExchange bool) error {
	if s.state != Bound && s.state != Prepared {
		return dxerr.NewInvalidStatementStateError(s.state.String(), "Execute")
	}

	for _, u := range s.uses {
		if err := u.PreUse(ctx); err != nil {
			return err
		}
	}
	for _, in := range s.intos {
		if err := in.PreFetch(ctx); err != nil {
			return err
		}
	}

	num := 0
	if withDataExchange {
		num = s.batchSize()
	}
	res, err := s.sb.Execute(ctx, num)
	if err != nil {
		return dxerr.NewExecutionError("", 0, "", err)
	}

	for _, u := range s.uses {
		if err := u.PostUse(ctx, res == backend.Success); err != nil {
			return err
		}
	}

	s.gotDataLast = res == backend.Success
	s.rowsFetched = s.sb.NumRowsFetched()
	s.state = Executed

	if len(s.intos) == 0 && s.gotDataLast {
		if err := s.describeDynamic(ctx); err != nil {
			return err
		}
	}

	if withDataExchange && s.gotDataLast {
		return s.runPostFetch(ctx, true, false)
	}
	return nil
}

// describeDynamic implements spec.md §4.2 step 4: when no Into adapters
// were supplied up front, prepare the statement for metadata retrieval,
// build a Row from the reported columns, and inject one row.ColumnInto
// per column as though the caller had registered it directly.
func (s *Statement) describeDynamic(ctx context.Context) error {
	if s.row != nil {
		s.row.Reset()
		return nil
	}

	n, err := s.sb.PrepareForDescribe(ctx)
	if err != nil {
		return err
	}
	r := row.New()
	for i := 0; i < n; i++ {
		info, err := s.sb.DescribeColumn(ctx, i)
		if err != nil {
			return dxerr.NewDescribeAfterFetch(err.Error())
		}
		r.AddColumn(row.ColumnProperty{
			Name:      info.Name,
			Type:      info.Type,
			Size:      info.Size,
			Precision: info.Precision,
			Scale:     info.Scale,
			Nullable:  info.Nullable,
		})
	}
	s.row = r

	pos := 0
	for i := 0; i < r.Size(); i++ {
		in := row.NewColumnInto(r, i)
		if err := in.Define(ctx, s.sb, &pos); err != nil {
			return err
		}
		s.intos = append(s.intos, in)
	}
	return nil
}

// Row returns the dynamically assembled row, or nil for a statement bound
// with explicit Into adapters.
func (s *Statement) Row() *row.Row { return s.row }

// Fetch retrieves up to num additional rows (spec.md §4.2 step 5),
// returning false once the rowset is exhausted.
func (s *Statement) Fetch(ctx context.Context, num int) (bool, error) {
	if s.state != Executed && s.state != Fetching {
		return false, dxerr.NewInvalidStatementStateError(s.state.String(), "Fetch")
	}
	if current := s.batchSize(); current > s.initialBatchSize {
		return false, dxerr.NewGrowthError(s.initialBatchSize, current)
	}
	s.state = Fetching

	if s.row != nil {
		s.row.Reset()
	}

	for _, in := range s.intos {
		if err := in.PreFetch(ctx); err != nil {
			return false, err
		}
	}

	if num <= 0 {
		num = s.batchSize()
	}
	res, err := s.sb.Fetch(ctx, num)
	if err != nil {
		return false, dxerr.NewExecutionError("", 0, "", err)
	}
	s.gotDataLast = res == backend.Success
	s.rowsFetched = s.sb.NumRowsFetched()

	if !s.gotDataLast {
		s.state = Exhausted
	}

	if err := s.runPostFetch(ctx, s.gotDataLast, true); err != nil {
		return false, err
	}
	return s.gotDataLast, nil
}

func (s *Statement) runPostFetch(ctx context.Context, gotData, calledFromFetch bool) error {
	for _, in := range s.intos {
		sz := in.Size()
		if sz > 1 {
			in.Resize(s.rowsFetched)
		}
		if err := in.PostFetch(ctx, gotData, calledFromFetch); err != nil {
			return err
		}
	}
	return nil
}

// NumRowsFetched reports how many rows the last Execute/Fetch delivered.
func (s *Statement) NumRowsFetched() int { return s.rowsFetched }

// GotData reports whether the last Execute/Fetch produced a row.
func (s *Statement) GotData() bool { return s.gotDataLast }

// Unbind tears down every adapter's scratch state without releasing the
// statement handle, the nested-statement idiom spec.md §4.3 describes for
// a Cursor whose inner Statement is about to be repopulated.
func (s *Statement) Unbind(ctx context.Context) error {
	for _, in := range s.intos {
		if err := in.CleanUp(ctx); err != nil {
			return err
		}
	}
	for _, u := range s.uses {
		if err := u.CleanUp(ctx); err != nil {
			return err
		}
	}
	s.savedIntos = s.intos
	s.savedUses = s.uses
	s.intos = nil
	s.uses = nil
	s.row = nil
	s.state = Prepared
	return nil
}

// Rebind restores the adapters Unbind saved and re-runs DefineAndBind,
// used once a REF CURSOR-style inner statement has been populated with a
// live handle by the driver.
func (s *Statement) Rebind(ctx context.Context) error {
	s.intos = s.savedIntos
	s.uses = s.savedUses
	s.savedIntos = nil
	s.savedUses = nil
	return s.DefineAndBind(ctx)
}

// CleanUp releases every adapter's scratch state and the statement handle
// itself, the terminal CLEANED transition.
func (s *Statement) CleanUp(ctx context.Context) error {
	for _, in := range s.intos {
		_ = in.CleanUp(ctx)
	}
	for _, u := range s.uses {
		_ = u.CleanUp(ctx)
	}
	err := s.sb.Close()
	s.state = Cleaned
	return err
}

// Indicator returns the indicator most recently reported for the column
// at position i (0-based) of a dynamically described row. Statements
// with explicit Into adapters keep no indicators here and get an error;
// their indicators are read through ScalarInto.WithIndicator /
// ScalarUse.WithIndicator.
func (s *Statement) Indicator(i int) (indicator.Indicator, error) {
	if i < 0 || i >= len(s.intos) {
		return indicator.NoData, fmt.Errorf("statement: into index %d out of range", i)
	}
	if s.row != nil {
		return s.row.Indicator(i), nil
	}
	return indicator.NoData, fmt.Errorf("statement: no row-level indicator tracking for explicit Into adapters")
}
