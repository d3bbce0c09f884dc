// Package exchange implements the typed Into (output) and Use (input)
// adapters from spec.md §3/§4.3: the objects that own conversion scratch
// state and delegate raw binding/fetching to a backend.StatementBackend.
package exchange

import (
	"context"

	"github.com/caspiandb/dbx/pkg/dbx/backend"
)

// Into is the output-adapter contract every Into-shaped value (scalar,
// vector, cursor, rowid, blob) satisfies.
type Into interface {
	// Define registers this adapter at the next free output position,
	// advancing position by one.
	Define(ctx context.Context, sb backend.StatementBackend, position *int) error
	PreFetch(ctx context.Context) error
	PostFetch(ctx context.Context, gotData, calledFromFetch bool) error
	CleanUp(ctx context.Context) error
	// Size reports this adapter's logical vector size (1 for scalars).
	Size() int
	// Resize adjusts a vector adapter's size in place; scalars ignore it.
	Resize(sz int)
}

// Use is the input-adapter contract every Use-shaped value satisfies.
type Use interface {
	// Bind registers this adapter at the next free positional placeholder
	// (name == ""), or at a named placeholder.
	Bind(ctx context.Context, sb backend.StatementBackend, position *int) error
	BindByName(ctx context.Context, sb backend.StatementBackend, name string) error
	PreUse(ctx context.Context) error
	PostUse(ctx context.Context, gotData bool) error
	CleanUp(ctx context.Context) error
	Size() int
	// Name is non-empty when this adapter must be bound by name; a
	// Statement may not mix named and positional Use adapters.
	Name() string
}
