// Structured errors for malformed view definitions.

package grid

import "fmt"

// Clause kinds reported by InvalidViewDefinitionError.
const (
	ClauseFilter = "filter"
	ClauseSort   = "sort"
	ClauseWindow = "window"
)

// InvalidViewDefinitionError reports a structurally invalid filter or sort
// clause, or an invalid page window. It identifies which clause is bad so
// callers never see a store-level query error.
type InvalidViewDefinitionError struct {
	Clause string // ClauseFilter, ClauseSort, or ClauseWindow
	Index  int    // clause position, -1 for window errors
	Reason string
}

func (e *InvalidViewDefinitionError) Error() string {
	if e.Clause == ClauseWindow {
		return fmt.Sprintf("invalid view definition: %s", e.Reason)
	}
	return fmt.Sprintf("invalid view definition: %s clause %d: %s", e.Clause, e.Index, e.Reason)
}

func invalidFilter(i int, reason string) *InvalidViewDefinitionError {
	return &InvalidViewDefinitionError{Clause: ClauseFilter, Index: i, Reason: reason}
}

func invalidSort(i int, reason string) *InvalidViewDefinitionError {
	return &InvalidViewDefinitionError{Clause: ClauseSort, Index: i, Reason: reason}
}

// InvalidWindow reports an invalid (offset, limit) page window.
func InvalidWindow(reason string) *InvalidViewDefinitionError {
	return &InvalidViewDefinitionError{Clause: ClauseWindow, Index: -1, Reason: reason}
}
