package session

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
	"github.com/caspiandb/dbx/pkg/dbx/exchange"
	"github.com/caspiandb/dbx/pkg/dbx/statement"
)

// Once is the one-shot expression builder from spec.md §4.4. The
// original is a ref-counted object whose destructor fires the final
// action once every copy has gone out of scope; Go has no destructors,
// so the chain instead collects Use/Into adapters and an explicit Run
// call plays the role of "reference count reaches zero": (a) allocate a
// statement, (b) prepare with the one-time hint, (c) defineAndBind, (d)
// execute with data exchange, (e) clean up -- cleaning up even when Run
// returns an error.
type Once struct {
	session *Session
	query   string
	uses    []exchange.Use
	intos   []exchange.Into
}

// NewOnce starts a Once builder for query against session.
func NewOnce(session *Session, query string) *Once {
	return &Once{session: session, query: query}
}

// Use appends a bind adapter, mirroring the original's comma-operator
// protocol.
func (o *Once) Use(u exchange.Use) *Once { o.uses = append(o.uses, u); return o }

// Into appends an output adapter.
func (o *Once) Into(in exchange.Into) *Once { o.intos = append(o.intos, in); return o }

// Run is the final action: prepare, bind, execute with exchange, clean
// up. The statement is always cleaned up, including when an earlier step
// fails.
func (o *Once) Run(ctx context.Context) error {
	stmt := o.session.NewStatement()
	defer func() { _ = stmt.CleanUp(ctx) }()

	if err := stmt.Prepare(ctx, o.query, backend.HintOneTime); err != nil {
		return err
	}
	for _, u := range o.uses {
		stmt.AddUse(u)
	}
	for _, in := range o.intos {
		stmt.AddInto(in)
	}
	if err := stmt.DefineAndBind(ctx); err != nil {
		return err
	}
	return stmt.Execute(ctx, true)
}

// PrepareBuilder is the reusable-statement counterpart from spec.md
// §4.4: its final action transfers the accumulated adapter lists into a
// Statement it hands back to the caller, instead of running them itself.
type PrepareBuilder struct {
	session *Session
	query   string
	uses    []exchange.Use
	intos   []exchange.Into
}

// NewPrepareBuilder starts a PrepareBuilder for query against session.
func NewPrepareBuilder(session *Session, query string) *PrepareBuilder {
	return &PrepareBuilder{session: session, query: query}
}

func (p *PrepareBuilder) Use(u exchange.Use) *PrepareBuilder { p.uses = append(p.uses, u); return p }
func (p *PrepareBuilder) Into(in exchange.Into) *PrepareBuilder {
	p.intos = append(p.intos, in)
	return p
}

// Build prepares the statement with the reusable hint and defines/binds
// the accumulated adapters, returning the live Statement for repeated
// Execute/Fetch calls. On failure the partially built statement is
// cleaned up and nil is returned.
func (p *PrepareBuilder) Build(ctx context.Context) (*statement.Statement, error) {
	stmt := p.session.NewStatement()
	if err := stmt.Prepare(ctx, p.query, backend.HintPrepared); err != nil {
		_ = stmt.CleanUp(ctx)
		return nil, err
	}
	for _, u := range p.uses {
		stmt.AddUse(u)
	}
	for _, in := range p.intos {
		stmt.AddInto(in)
	}
	if err := stmt.DefineAndBind(ctx); err != nil {
		_ = stmt.CleanUp(ctx)
		return nil, err
	}
	return stmt, nil
}
