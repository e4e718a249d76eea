// Removes hidden fields from rows.

package grid

// Project returns a copy of the row without the hidden fields. The row
// identifier survives even when listed in hiddenFields. The input row is
// never mutated.
func Project(r Row, hiddenFields []string) Row {
	if len(hiddenFields) == 0 {
		return r.Clone()
	}
	hidden := make(map[string]struct{}, len(hiddenFields))
	for _, f := range hiddenFields {
		if f == IDField {
			continue
		}
		hidden[f] = struct{}{}
	}
	out := make(Row, len(r))
	for k, v := range r {
		if _, ok := hidden[k]; ok {
			continue
		}
		out[k] = v
	}
	return out
}

// ProjectAll projects every row in the slice.
func ProjectAll(rows []Row, hiddenFields []string) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Project(r, hiddenFields)
	}
	return out
}
