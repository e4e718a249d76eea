// Compiles filter conditions into a row predicate.

package grid

import "strings"

// Predicate tests whether a row passes a view's filter set.
type Predicate func(Row) bool

// CompilePredicate turns a list of filter conditions into a single
// predicate. A row passes iff it passes every condition; an empty list
// always passes. Structurally invalid conditions (empty field, unknown
// operator) are rejected here rather than failing open, so both executors
// refuse the same definitions. Fields absent on a specific row still
// evaluate fail-open per operator over the "" canonical value.
func CompilePredicate(filters []FilterCondition) (Predicate, error) {
	if err := ValidateFilters(filters); err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return func(Row) bool { return true }, nil
	}
	conds := make([]FilterCondition, len(filters))
	copy(conds, filters)
	return func(r Row) bool {
		for i := range conds {
			if !matchCondition(r, &conds[i]) {
				return false
			}
		}
		return true
	}, nil
}

// matchCondition evaluates a single validated condition against a row.
func matchCondition(r Row, c *FilterCondition) bool {
	fv := FieldString(r, c.Field)
	switch c.Operator {
	case OpContains:
		return strings.Contains(asciiFold(fv), asciiFold(c.Value))
	case OpNotContains:
		return !strings.Contains(asciiFold(fv), asciiFold(c.Value))
	case OpIs:
		return fv == c.Value
	case OpIsNot:
		return fv != c.Value
	case OpStartsWith:
		return strings.HasPrefix(asciiFold(fv), asciiFold(c.Value))
	case OpEndsWith:
		return strings.HasSuffix(asciiFold(fv), asciiFold(c.Value))
	case OpIsEmpty:
		return fv == ""
	case OpIsNotEmpty:
		return fv != ""
	}
	// Unreachable after validation.
	return true
}

// asciiFold lowercases ASCII letters only, matching SQLite's NOCASE and
// LIKE folding so the reference and bulk executors agree on non-ASCII
// input.
func asciiFold(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
