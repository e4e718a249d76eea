package dto

// Filter is one (field, operator, value) condition in a view definition.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Sort is one (field, direction) key in a view definition.
type Sort struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// ViewDefinition is the data-shaping triple of a view as it travels over
// the wire. Absent lists mean "no filtering", "no sorting", "hide nothing".
type ViewDefinition struct {
	Filters      []Filter `json:"filters"`
	Sorting      []Sort   `json:"sorting"`
	HiddenFields []string `json:"hiddenFields"`
}

// Row is a schemaless record as it appears in request and response bodies.
type Row map[string]any
