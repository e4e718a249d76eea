// Strict validation of view definitions.

package grid

import (
	"errors"
	"fmt"
)

var (
	errNameRequired  = errors.New("view name is required")
	errTableRequired = errors.New("view table id is required")
)

// ValidateFilters rejects structurally invalid filter conditions: empty
// field names and unknown operators. The original system compiled unknown
// operators to an always-true clause; rejecting them here keeps a typo
// from silently widening a view.
func ValidateFilters(filters []FilterCondition) error {
	for i := range filters {
		if filters[i].Field == "" {
			return invalidFilter(i, "field name is empty")
		}
		if !KnownOperator(filters[i].Operator) {
			return invalidFilter(i, fmt.Sprintf("unknown operator %q", filters[i].Operator))
		}
	}
	return nil
}

// ValidateSorting rejects structurally invalid sort criteria.
func ValidateSorting(sorting []SortCriterion) error {
	for i := range sorting {
		if sorting[i].Field == "" {
			return invalidSort(i, "field name is empty")
		}
		if d := sorting[i].Direction; d != Asc && d != Desc {
			return invalidSort(i, fmt.Sprintf("invalid direction %q", d))
		}
	}
	return nil
}

// ValidateSpec validates the data-shaping triple of a view.
func ValidateSpec(s ViewSpec) error {
	if err := ValidateFilters(s.Filters); err != nil {
		return err
	}
	return ValidateSorting(s.Sorting)
}

// Validate checks that a view document is complete and well-formed. Used
// by every save path; a view that fails here is never persisted.
func (v *View) Validate() error {
	if v.Name == "" {
		return errNameRequired
	}
	if v.TableID.IsZero() {
		return errTableRequired
	}
	return ValidateSpec(v.ViewSpec)
}
