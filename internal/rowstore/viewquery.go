// Compiles a ViewQuery into a single SQLite statement.

package rowstore

import (
	"fmt"
	"strings"

	"github.com/gridbase/gridbase/internal/grid"
)

// fieldText extracts a row field as its canonical string: missing fields
// and JSON nulls become "". The store writes number tokens in the form
// grid.NumberString produces, which SQLite's own REAL formatting maps
// back to itself, so this mirrors grid.FieldString byte for byte even
// for exponent-range floats.
const fieldText = "coalesce(CAST(json_extract(elem.value, ?) AS TEXT), '')"

// buildRowQuery compiles filters, sorting, projection, and the page window
// into one statement over the table blob:
//
//	SELECT json_remove(elem.value, ...) FROM tables t, json_each(t.tabledata) AS elem
//	WHERE t.id = ? AND ... ORDER BY ... , elem.key LIMIT ? OFFSET ?
//
// Every field name travels as a bound JSON path and every comparison value
// as a bound parameter; no user input is spliced into the SQL text. The
// trailing elem.key term pins ties to canonical row order, which keeps
// page windows compositional.
func buildRowQuery(tableID string, q ViewQuery) (string, []any, error) {
	if err := grid.ValidateSpec(q.Spec); err != nil {
		return "", nil, err
	}
	if err := validateWindow(q.Offset, q.Limit); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	hidden := hiddenFieldPaths(q.Spec.HiddenFields)
	if len(hidden) == 0 {
		sb.WriteString("elem.value")
	} else {
		sb.WriteString("json_remove(elem.value")
		for _, p := range hidden {
			sb.WriteString(", ?")
			args = append(args, p)
		}
		sb.WriteString(")")
	}

	sb.WriteString(" FROM tables t, json_each(t.tabledata) AS elem WHERE t.id = ?")
	args = append(args, tableID)

	for i := range q.Spec.Filters {
		frag, fargs := conditionSQL(&q.Spec.Filters[i])
		sb.WriteString(" AND ")
		sb.WriteString(frag)
		args = append(args, fargs...)
	}

	sb.WriteString(" ORDER BY ")
	for _, s := range q.Spec.Sorting {
		sb.WriteString("json_extract(elem.value, ?) COLLATE NOCASE")
		args = append(args, jsonPath(s.Field))
		if s.Direction == grid.Desc {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
		sb.WriteString(", ")
	}
	sb.WriteString("elem.key LIMIT ? OFFSET ?")
	args = append(args, q.Limit, q.Offset)

	return sb.String(), args, nil
}

// validateWindow rejects invalid page windows. Offsets past the end are
// fine (they yield an empty page); a non-positive limit is not.
func validateWindow(offset, limit int) error {
	if offset < 0 {
		return grid.InvalidWindow(fmt.Sprintf("offset %d is negative", offset))
	}
	if limit <= 0 {
		return grid.InvalidWindow(fmt.Sprintf("limit %d must be positive", limit))
	}
	return nil
}

// conditionSQL renders one validated filter condition as a SQL fragment
// plus its bound arguments.
func conditionSQL(c *grid.FilterCondition) (string, []any) {
	path := jsonPath(c.Field)
	switch c.Operator {
	case grid.OpContains:
		return fieldText + ` LIKE '%' || ? || '%' ESCAPE '\'`, []any{path, escapeLike(c.Value)}
	case grid.OpNotContains:
		return "NOT (" + fieldText + ` LIKE '%' || ? || '%' ESCAPE '\')`, []any{path, escapeLike(c.Value)}
	case grid.OpIs:
		return fieldText + " = ?", []any{path, c.Value}
	case grid.OpIsNot:
		return fieldText + " <> ?", []any{path, c.Value}
	case grid.OpStartsWith:
		return fieldText + ` LIKE ? || '%' ESCAPE '\'`, []any{path, escapeLike(c.Value)}
	case grid.OpEndsWith:
		return fieldText + ` LIKE '%' || ? ESCAPE '\'`, []any{path, escapeLike(c.Value)}
	case grid.OpIsEmpty:
		return fieldText + " = ''", []any{path}
	case grid.OpIsNotEmpty:
		return fieldText + " <> ''", []any{path}
	}
	// Unreachable: operators are validated before compilation.
	return "1=1", nil
}

// jsonPath renders a field name as a SQLite JSON path literal for binding.
func jsonPath(field string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `$."` + r.Replace(field) + `"`
}

// escapeLike escapes LIKE wildcards in a user-supplied value so it matches
// literally. The fragments above declare ESCAPE '\'.
func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}

// hiddenFieldPaths renders hidden fields as JSON paths for json_remove,
// skipping the row identifier, which is never hidden.
func hiddenFieldPaths(hiddenFields []string) []string {
	if len(hiddenFields) == 0 {
		return nil
	}
	paths := make([]string, 0, len(hiddenFields))
	for _, f := range hiddenFields {
		if f == grid.IDField {
			continue
		}
		paths = append(paths, jsonPath(f))
	}
	return paths
}
