// Compiles sort criteria into a total order over rows.

package grid

import (
	"cmp"
	"slices"
)

// Comparator orders two rows under a view's sort criteria. It returns a
// negative value if a sorts before b, positive if after, and 0 when the
// criteria cannot distinguish them (callers must sort stably so original
// row order breaks the tie).
type Comparator func(a, b Row) int

// CompileComparator turns an ordered list of sort criteria into a single
// comparator. Criteria are evaluated left to right; the first unequal
// comparison wins, flipped for descending criteria.
//
// Each criterion imposes a total order compatible with the bulk executor's
// ORDER BY: empty values (missing field, null) sort first ascending, then
// numbers in numeric order, then strings compared case-insensitively
// (ASCII). Rows equal under a criterion fall through to the next one.
func CompileComparator(sorting []SortCriterion) (Comparator, error) {
	if err := ValidateSorting(sorting); err != nil {
		return nil, err
	}
	if len(sorting) == 0 {
		return func(a, b Row) int { return 0 }, nil
	}
	crit := make([]SortCriterion, len(sorting))
	copy(crit, sorting)
	return func(a, b Row) int {
		for i := range crit {
			c := compareField(a, b, crit[i].Field)
			if c != 0 {
				if crit[i].Direction == Desc {
					return -c
				}
				return c
			}
		}
		return 0
	}, nil
}

// Value classes, ordered like SQLite orders JSON-extracted values:
// null/missing < numbers < text.
const (
	classEmpty = iota
	classNumber
	classString
)

func valueClass(v any, ok bool) int {
	if !ok || v == nil {
		return classEmpty
	}
	switch v.(type) {
	case float64, int, int64, bool:
		return classNumber
	case string:
		return classString
	}
	return classString
}

func numericValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	}
	return 0
}

// compareField compares one field of two rows under the shared total order.
func compareField(a, b Row, field string) int {
	av, aok := a[field]
	bv, bok := b[field]
	ac, bc := valueClass(av, aok), valueClass(bv, bok)
	if ac != bc {
		return cmp.Compare(ac, bc)
	}
	switch ac {
	case classEmpty:
		return 0
	case classNumber:
		return cmp.Compare(numericValue(av), numericValue(bv))
	default:
		as, _ := av.(string)
		bs, _ := bv.(string)
		return cmp.Compare(asciiFold(as), asciiFold(bs))
	}
}

// SortRows sorts rows in place, stably, under the given comparator.
// Stability preserves the store's row order for ties, which is what makes
// page windows compositional.
func SortRows(rows []Row, c Comparator) {
	slices.SortStableFunc(rows, c)
}
