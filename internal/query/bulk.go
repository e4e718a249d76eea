// Bulk executor: pushes the query into the store.

package query

import (
	"context"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/rowstore"
)

// Bulk compiles filters, sorting, projection, and the window into one
// declarative query evaluated inside the store, so large tables are never
// fully materialized in this process. Clauses are validated before
// compilation; a malformed definition surfaces as
// grid.InvalidViewDefinitionError naming the clause, never as a
// store-level query error.
type Bulk struct {
	Store rowstore.BulkQuerier
}

// NewBulk returns a bulk executor over the store.
func NewBulk(store rowstore.BulkQuerier) *Bulk {
	return &Bulk{Store: store}
}

var _ Executor = (*Bulk)(nil)

// Query implements Executor.
func (e *Bulk) Query(ctx context.Context, req Request) ([]grid.Row, error) {
	// Validate up front: the store compiles the same clauses, but failing
	// here keeps its error surface out of the contract.
	if err := grid.ValidateSpec(req.Spec); err != nil {
		return nil, err
	}
	if err := ValidateWindow(req.Offset, req.Limit); err != nil {
		return nil, err
	}
	return e.Store.QueryView(ctx, req.TableID, rowstore.ViewQuery{
		Spec:   req.Spec,
		Offset: req.Offset,
		Limit:  req.Limit,
	})
}
