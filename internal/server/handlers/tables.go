// Handles table and row batch operations.

package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/server/dto"
	"github.com/maruel/ksid"
)

// defaultViewName is the name given to the view created with each table.
const defaultViewName = "Grid view"

// TableHandler handles table requests.
type TableHandler struct {
	Svc *Services
	Cfg *Config
}

// CreateTable creates a table with its seed rows and a default view.
func (h *TableHandler) CreateTable(ctx context.Context, req *dto.CreateTableRequest) (*dto.CreateTableResponse, error) {
	rows := rowsFromDTO(req.Rows)
	assignRowIDs(rows)
	table, err := h.Svc.Store.CreateTable(ctx, req.Name, rows)
	if err != nil {
		return nil, apiError(err, "Failed to create table")
	}

	view := &grid.View{
		Name:    defaultViewName,
		TableID: table.ID,
	}
	if err := h.Svc.Views.CreateView(ctx, view); err != nil {
		return nil, apiError(err, "Failed to create default view")
	}

	return &dto.CreateTableResponse{
		Table:       tableResponse(table),
		DefaultView: viewResponse(view),
	}, nil
}

// GetTable returns table metadata.
func (h *TableHandler) GetTable(ctx context.Context, req *dto.GetTableRequest) (*dto.TableResponse, error) {
	id, err := ksid.Parse(req.TableID)
	if err != nil {
		return nil, dto.BadRequest("invalid table id")
	}
	table, err := h.Svc.Store.GetTable(ctx, id)
	if err != nil {
		return nil, apiError(err, "Failed to get table")
	}
	resp := tableResponse(table)
	return &resp, nil
}

// ListTables returns all tables.
func (h *TableHandler) ListTables(ctx context.Context, req *dto.ListTablesRequest) (*dto.ListTablesResponse, error) {
	tables, err := h.Svc.Store.ListTables(ctx)
	if err != nil {
		return nil, apiError(err, "Failed to list tables")
	}
	resp := &dto.ListTablesResponse{Tables: []dto.TableResponse{}}
	for _, t := range tables {
		resp.Tables = append(resp.Tables, tableResponse(t))
	}
	return resp, nil
}

// DeleteTable deletes a table, its rows, and its views.
func (h *TableHandler) DeleteTable(ctx context.Context, req *dto.DeleteTableRequest) (*dto.DeleteTableResponse, error) {
	id, err := ksid.Parse(req.TableID)
	if err != nil {
		return nil, dto.BadRequest("invalid table id")
	}
	if err := h.Svc.Store.DeleteTable(ctx, id); err != nil {
		return nil, apiError(err, "Failed to delete table")
	}
	return &dto.DeleteTableResponse{ID: req.TableID}, nil
}

// UpsertRows writes a batch of rows: replace by identifier, append the rest.
func (h *TableHandler) UpsertRows(ctx context.Context, req *dto.UpsertRowsRequest) (*dto.UpsertRowsResponse, error) {
	id, err := ksid.Parse(req.TableID)
	if err != nil {
		return nil, dto.BadRequest("invalid table id")
	}
	rows := rowsFromDTO(req.Rows)
	assignRowIDs(rows)
	if err := h.Svc.Store.UpsertRows(ctx, id, rows); err != nil {
		return nil, apiError(err, "Failed to upsert rows")
	}
	return &dto.UpsertRowsResponse{Count: len(rows)}, nil
}

// assignRowIDs gives an identifier to every row arriving without one.
func assignRowIDs(rows []grid.Row) {
	for _, r := range rows {
		if r.ID() == "" {
			r[grid.IDField] = uuid.NewString()
		}
	}
}
