// In-memory reference executor.

package query

import (
	"context"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/maruel/ksid"
)

// RowSource is the slice of the row store the reference executor needs.
type RowSource interface {
	GetAllRows(ctx context.Context, tableID ksid.ID) ([]grid.Row, error)
}

// Reference loads the full row set and applies the grid semantics
// directly: filter, stable sort, project, slice. It is the executable
// specification the bulk executor is checked against, and the executor of
// choice for small tables.
type Reference struct {
	Source RowSource
}

// NewReference returns a reference executor over src.
func NewReference(src RowSource) *Reference {
	return &Reference{Source: src}
}

var _ Executor = (*Reference)(nil)

// Query implements Executor.
func (e *Reference) Query(ctx context.Context, req Request) ([]grid.Row, error) {
	pred, err := grid.CompilePredicate(req.Spec.Filters)
	if err != nil {
		return nil, err
	}
	cmp, err := grid.CompileComparator(req.Spec.Sorting)
	if err != nil {
		return nil, err
	}
	if err := ValidateWindow(req.Offset, req.Limit); err != nil {
		return nil, err
	}

	rows, err := e.Source.GetAllRows(ctx, req.TableID)
	if err != nil {
		return nil, err
	}

	kept := make([]grid.Row, 0, len(rows))
	for _, r := range rows {
		if pred(r) {
			kept = append(kept, r)
		}
	}
	grid.SortRows(kept, cmp)

	start := req.Offset
	if start > len(kept) {
		start = len(kept)
	}
	end := start + req.Limit
	if end > len(kept) {
		end = len(kept)
	}
	return grid.ProjectAll(kept[start:end], req.Spec.HiddenFields), nil
}

// ValidateWindow rejects invalid page windows: negative offsets and
// non-positive limits.
func ValidateWindow(offset, limit int) error {
	if offset < 0 {
		return grid.InvalidWindow("offset is negative")
	}
	if limit <= 0 {
		return grid.InvalidWindow("limit must be positive")
	}
	return nil
}
