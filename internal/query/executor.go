// Defines the view query executor contract.

// Package query computes pages of filtered, sorted, projected rows for a
// view definition. Two executors implement the same contract: Reference
// applies the grid semantics in memory, Bulk pushes a compiled declarative
// query into the store. They are behaviorally identical for every valid
// request; the conformance tests in this package hold them to that.
package query

import (
	"context"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/maruel/ksid"
)

// Request asks for one page window of a view over a table.
type Request struct {
	TableID ksid.ID
	Spec    grid.ViewSpec
	Offset  int
	Limit   int
}

// Executor returns the page [Offset, Offset+Limit) of the filtered,
// sorted, projected row sequence.
//
// Contract: empty filters pass every row; empty sorting keeps the store's
// canonical order; an offset past the end is an empty page, not an error;
// a non-positive limit or a structurally invalid clause is a
// grid.InvalidViewDefinitionError. Fields never present in any row are
// legal and evaluate over the absent value.
type Executor interface {
	Query(ctx context.Context, req Request) ([]grid.Row, error)
}
