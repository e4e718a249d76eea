package dto

import "encoding/json"

// HealthResponse reports server liveness and version.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// TableResponse is the API shape of table metadata.
type TableResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ViewResponse is the API shape of a stored view document.
type ViewResponse struct {
	ID      string `json:"id"`
	TableID string `json:"tableId"`
	Name    string `json:"name"`
	ViewDefinition
}

// CreateTableResponse returns the new table and its default view.
type CreateTableResponse struct {
	Table       TableResponse `json:"table"`
	DefaultView ViewResponse  `json:"defaultView"`
}

// ListTablesResponse lists all tables.
type ListTablesResponse struct {
	Tables []TableResponse `json:"tables"`
}

// DeleteTableResponse confirms a table deletion.
type DeleteTableResponse struct {
	ID string `json:"id"`
}

// UpsertRowsResponse reports how many rows were written.
type UpsertRowsResponse struct {
	Count int `json:"count"`
}

// PageResponse is one page of a shaped row sequence. Exhausted is true
// when the page came back shorter than the requested limit.
type PageResponse struct {
	Rows      []Row `json:"rows"`
	Offset    int   `json:"offset"`
	Limit     int   `json:"limit"`
	Exhausted bool  `json:"exhausted"`
}

// CreateViewResponse confirms a view creation.
type CreateViewResponse struct {
	View ViewResponse `json:"view"`
}

// ListViewsResponse lists the views of a table.
type ListViewsResponse struct {
	Views []ViewResponse `json:"views"`
}

// DeleteViewResponse confirms a view deletion.
type DeleteViewResponse struct {
	ID string `json:"id"`
}

// ViewSchemaResponse carries the JSON Schema of view documents.
type ViewSchemaResponse struct {
	Schema json.RawMessage `json:"schema"`
}
