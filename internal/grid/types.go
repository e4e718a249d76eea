// Defines the row and view types shared by the query engine.

// Package grid defines schemaless rows, saved view documents, and the
// predicate/sort/projection semantics that every executor must implement.
package grid

import (
	"slices"
	"strconv"

	"github.com/maruel/ksid"
)

// IDField is the row identifier field. It is never hidden by projection.
const IDField = "id"

// Row is a schemaless record: field name to scalar value. After JSON
// decoding, values are string, float64, bool, or nil.
type Row map[string]any

// ID returns the row identifier rendered as a string, or "" if absent.
func (r Row) ID() string {
	return FieldString(r, IDField)
}

// Clone returns a shallow copy of the row. Values are scalars, so a
// shallow copy is a full copy.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// FieldString renders a row field as its canonical string. Missing fields
// and nulls render as "". This is the single definition both executors
// compare against: it matches what SQLite produces for
// CAST(json_extract(...) AS TEXT) over blobs this module wrote.
func FieldString(r Row, field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return ValueString(v)
}

// ValueString renders a scalar value as its canonical string.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return NumberString(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}

// Operator is a filter comparison operator. The values are the exact
// strings persisted in view documents.
type Operator string

const (
	// OpContains matches rows whose field contains the value, ignoring case.
	OpContains Operator = "contains"
	// OpNotContains is the negation of OpContains.
	OpNotContains Operator = "does not contain"
	// OpIs matches rows whose field equals the value exactly.
	OpIs Operator = "is"
	// OpIsNot is the negation of OpIs.
	OpIsNot Operator = "is not"
	// OpStartsWith matches rows whose field starts with the value, ignoring case.
	OpStartsWith Operator = "starts with"
	// OpEndsWith matches rows whose field ends with the value, ignoring case.
	OpEndsWith Operator = "ends with"
	// OpIsEmpty matches rows whose field is missing, null, or "".
	OpIsEmpty Operator = "is empty"
	// OpIsNotEmpty is the negation of OpIsEmpty.
	OpIsNotEmpty Operator = "is not empty"
)

// KnownOperator reports whether op is one of the supported operators.
func KnownOperator(op Operator) bool {
	switch op {
	case OpContains, OpNotContains, OpIs, OpIsNot, OpStartsWith, OpEndsWith, OpIsEmpty, OpIsNotEmpty:
		return true
	}
	return false
}

// FilterCondition is a single (field, operator, value) test. A view's
// filter set is the conjunction of its conditions.
type FilterCondition struct {
	Field    string   `json:"field" jsonschema:"description=Field name to filter on"`
	Operator Operator `json:"operator" jsonschema:"description=Comparison operator"`
	Value    string   `json:"value" jsonschema:"description=Value to compare against"`
}

// Direction is a sort direction.
type Direction string

const (
	// Asc sorts ascending (empty first, numbers before strings, A-Z).
	Asc Direction = "asc"
	// Desc sorts descending.
	Desc Direction = "desc"
)

// SortCriterion is a single (field, direction) sort key. A view's sorting
// is an ordered list, evaluated left to right.
type SortCriterion struct {
	Field     string    `json:"field" jsonschema:"description=Field name to sort by"`
	Direction Direction `json:"direction" jsonschema:"description=Sort direction (asc or desc)"`
}

// CloneFilters returns a copy of the filter list.
func CloneFilters(filters []FilterCondition) []FilterCondition {
	if filters == nil {
		return nil
	}
	return slices.Clone(filters)
}

// CloneSorting returns a copy of the sort criteria list.
func CloneSorting(sorting []SortCriterion) []SortCriterion {
	if sorting == nil {
		return nil
	}
	return slices.Clone(sorting)
}

// ViewSpec is the data-shaping part of a view: everything the query
// executor needs, without identity or naming.
type ViewSpec struct {
	Filters      []FilterCondition `json:"filters"`
	Sorting      []SortCriterion   `json:"sorting"`
	HiddenFields []string          `json:"hiddenFields"`
}

// Clone returns a deep copy of the spec.
func (s ViewSpec) Clone() ViewSpec {
	c := ViewSpec{}
	if s.Filters != nil {
		c.Filters = make([]FilterCondition, len(s.Filters))
		copy(c.Filters, s.Filters)
	}
	if s.Sorting != nil {
		c.Sorting = make([]SortCriterion, len(s.Sorting))
		copy(c.Sorting, s.Sorting)
	}
	if s.HiddenFields != nil {
		c.HiddenFields = make([]string, len(s.HiddenFields))
		copy(c.HiddenFields, s.HiddenFields)
	}
	return c
}

// Equal reports whether two specs shape data identically. A nil list and
// an empty list are equivalent.
func (s ViewSpec) Equal(o ViewSpec) bool {
	return slices.Equal(s.Filters, o.Filters) &&
		slices.Equal(s.Sorting, o.Sorting) &&
		slices.Equal(s.HiddenFields, o.HiddenFields)
}

// View is a persisted view document: a named combination of filters, sort
// order, and hidden fields applied to one table.
type View struct {
	ID      ksid.ID `json:"id" jsonschema:"description=Unique view identifier"`
	Name    string  `json:"name" jsonschema:"description=View display name"`
	TableID ksid.ID `json:"tableId" jsonschema:"description=Table this view applies to"`
	ViewSpec
}

// Clone returns a deep copy of the view.
func (v *View) Clone() *View {
	if v == nil {
		return nil
	}
	c := *v
	c.ViewSpec = v.ViewSpec.Clone()
	return &c
}
