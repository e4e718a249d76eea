// Defines the row store and view metadata store contracts.

// Package rowstore stores tables of schemaless rows and the view documents
// saved against them. A table's rows live as one JSON array-of-objects
// blob; backends expose whole-set reads, batch upserts, and (for the
// SQLite backend) declarative filter/sort/window queries evaluated inside
// the store.
package rowstore

import (
	"context"
	"errors"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/maruel/ksid"
)

var (
	// ErrTableNotFound is returned when a table id matches nothing.
	ErrTableNotFound = errors.New("table not found")
	// ErrViewNotFound is returned when a view id matches nothing.
	ErrViewNotFound = errors.New("view not found")
	// ErrUnavailable wraps transient backend failures. Callers retry on
	// their next cycle rather than surfacing a hard failure.
	ErrUnavailable = errors.New("row store unavailable")
)

// Table is the stored metadata for one table of rows.
type Table struct {
	ID   ksid.ID `json:"id" jsonschema:"description=Unique table identifier"`
	Name string  `json:"name" jsonschema:"description=Table display name"`
}

// Clone returns a copy of the table metadata.
func (t Table) Clone() Table { return t }

// Store hands out a table's rows and accepts batched writes. Row order is
// insertion order and is the canonical order used as the final sort
// tie-break.
type Store interface {
	CreateTable(ctx context.Context, name string, rows []grid.Row) (Table, error)
	GetTable(ctx context.Context, tableID ksid.ID) (Table, error)
	ListTables(ctx context.Context) ([]Table, error)
	DeleteTable(ctx context.Context, tableID ksid.ID) error

	// GetAllRows returns every row of the table in canonical order. The
	// returned rows are copies; mutating them does not affect the store.
	GetAllRows(ctx context.Context, tableID ksid.ID) ([]grid.Row, error)

	// ReplaceRows replaces the table's entire row set.
	ReplaceRows(ctx context.Context, tableID ksid.ID, rows []grid.Row) error

	// UpsertRows replaces each row whose identifier is already present and
	// appends the rest, preserving canonical order for replaced rows.
	UpsertRows(ctx context.Context, tableID ksid.ID, rows []grid.Row) error

	// PatchRows replaces rows in place by identifier. A row whose
	// identifier no longer exists is a conflicting write: it is logged and
	// dropped without aborting the rest of the batch.
	PatchRows(ctx context.Context, tableID ksid.ID, rows []grid.Row) error
}

// ViewQuery is a declarative filter/sort/projection/window request that a
// capable store can evaluate without materializing the full row set.
type ViewQuery struct {
	Spec   grid.ViewSpec
	Offset int
	Limit  int
}

// BulkQuerier is implemented by stores that can run a ViewQuery inside
// the store. The SQLite backend compiles it into a single SQL statement
// over the table blob.
type BulkQuerier interface {
	QueryView(ctx context.Context, tableID ksid.ID, q ViewQuery) ([]grid.Row, error)
}

// ViewStore persists view documents. Saves are whole-document replaces.
type ViewStore interface {
	CreateView(ctx context.Context, view *grid.View) error
	GetView(ctx context.Context, viewID ksid.ID) (*grid.View, error)
	ListViews(ctx context.Context, tableID ksid.ID) ([]*grid.View, error)
	SaveView(ctx context.Context, view *grid.View) error
	DeleteView(ctx context.Context, viewID ksid.ID) error
}
