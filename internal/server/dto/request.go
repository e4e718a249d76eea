package dto

// --- Health ---

// HealthRequest is a request for the health endpoint.
type HealthRequest struct{}

// Validate is a no-op for HealthRequest.
func (r *HealthRequest) Validate() error {
	return nil
}

// --- Tables ---

// CreateTableRequest is a request to create a table with optional seed rows.
type CreateTableRequest struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// Validate validates the create table request fields.
func (r *CreateTableRequest) Validate() error {
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// GetTableRequest is a request to get table metadata.
type GetTableRequest struct {
	TableID string `path:"tableID"`
}

// Validate validates the get table request fields.
func (r *GetTableRequest) Validate() error {
	if r.TableID == "" {
		return MissingField("tableID")
	}
	return nil
}

// ListTablesRequest is a request to list all tables.
type ListTablesRequest struct{}

// Validate is a no-op for ListTablesRequest.
func (r *ListTablesRequest) Validate() error {
	return nil
}

// DeleteTableRequest is a request to delete a table and its views.
type DeleteTableRequest struct {
	TableID string `path:"tableID"`
}

// Validate validates the delete table request fields.
func (r *DeleteTableRequest) Validate() error {
	if r.TableID == "" {
		return MissingField("tableID")
	}
	return nil
}

// UpsertRowsRequest is a request to write a batch of rows. Rows whose
// identifier already exists are replaced in place; the rest are appended.
// Rows arriving without an identifier are assigned one.
type UpsertRowsRequest struct {
	TableID string `path:"tableID"`
	Rows    []Row  `json:"rows"`
}

// Validate validates the upsert rows request fields.
func (r *UpsertRowsRequest) Validate() error {
	if r.TableID == "" {
		return MissingField("tableID")
	}
	if len(r.Rows) == 0 {
		return MissingField("rows")
	}
	return nil
}

// --- Queries ---

// QueryTableRequest runs an explicit view definition against a table and
// returns one page of the shaped row sequence.
type QueryTableRequest struct {
	TableID string         `path:"tableID"`
	View    ViewDefinition `json:"view"`
	Offset  int            `json:"offset"`
	Limit   int            `json:"limit"`
}

// Validate validates the query request fields. Clause-level validation of
// the view definition happens in the executor.
func (r *QueryTableRequest) Validate() error {
	if r.TableID == "" {
		return MissingField("tableID")
	}
	return nil
}

// ViewPageRequest fetches one page of a stored view's row sequence.
type ViewPageRequest struct {
	ViewID string `path:"viewID"`
	Offset int    `query:"offset"`
	Limit  int    `query:"limit"`
}

// Validate validates the view page request fields.
func (r *ViewPageRequest) Validate() error {
	if r.ViewID == "" {
		return MissingField("viewID")
	}
	return nil
}

// --- Views ---

// CreateViewRequest is a request to create a view on a table.
type CreateViewRequest struct {
	TableID string `path:"tableID"`
	Name    string `json:"name"`
	ViewDefinition
}

// Validate validates the create view request fields.
func (r *CreateViewRequest) Validate() error {
	if r.TableID == "" {
		return MissingField("tableID")
	}
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// UpdateViewRequest replaces a view's definition wholesale. The filters,
// sorting, and hidden field lists are always taken as the full new state.
type UpdateViewRequest struct {
	ViewID string `path:"viewID"`
	Name   string `json:"name"`
	ViewDefinition
}

// Validate validates the update view request fields.
func (r *UpdateViewRequest) Validate() error {
	if r.ViewID == "" {
		return MissingField("viewID")
	}
	if r.Name == "" {
		return MissingField("name")
	}
	return nil
}

// GetViewRequest is a request to get a stored view document.
type GetViewRequest struct {
	ViewID string `path:"viewID"`
}

// Validate validates the get view request fields.
func (r *GetViewRequest) Validate() error {
	if r.ViewID == "" {
		return MissingField("viewID")
	}
	return nil
}

// ListViewsRequest is a request to list the views of a table.
type ListViewsRequest struct {
	TableID string `path:"tableID"`
}

// Validate validates the list views request fields.
func (r *ListViewsRequest) Validate() error {
	if r.TableID == "" {
		return MissingField("tableID")
	}
	return nil
}

// DeleteViewRequest is a request to delete a view.
type DeleteViewRequest struct {
	ViewID string `path:"viewID"`
}

// Validate validates the delete view request fields.
func (r *DeleteViewRequest) Validate() error {
	if r.ViewID == "" {
		return MissingField("viewID")
	}
	return nil
}

// --- Schema ---

// ViewSchemaRequest is a request for the JSON Schema of view documents.
type ViewSchemaRequest struct{}

// Validate is a no-op for ViewSchemaRequest.
func (r *ViewSchemaRequest) Validate() error {
	return nil
}
