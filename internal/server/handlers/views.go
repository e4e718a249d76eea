// Handles view document operations.

package handlers

import (
	"context"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/server/dto"
	"github.com/maruel/ksid"
)

// ViewHandler handles view requests.
type ViewHandler struct {
	Svc *Services
	Cfg *Config
}

// CreateView creates a view on a table. The definition is validated
// clause by clause before anything is written.
func (h *ViewHandler) CreateView(ctx context.Context, req *dto.CreateViewRequest) (*dto.CreateViewResponse, error) {
	tableID, err := ksid.Parse(req.TableID)
	if err != nil {
		return nil, dto.BadRequest("invalid table id")
	}
	if _, err := h.Svc.Store.GetTable(ctx, tableID); err != nil {
		return nil, apiError(err, "Failed to get table")
	}

	view := &grid.View{
		Name:     req.Name,
		TableID:  tableID,
		ViewSpec: specFromDefinition(req.ViewDefinition),
	}
	if err := grid.ValidateSpec(view.ViewSpec); err != nil {
		return nil, apiError(err, "Invalid view definition")
	}
	if err := h.Svc.Views.CreateView(ctx, view); err != nil {
		return nil, apiError(err, "Failed to create view")
	}
	return &dto.CreateViewResponse{View: viewResponse(view)}, nil
}

// UpdateView replaces a view's name and definition as a whole document.
func (h *ViewHandler) UpdateView(ctx context.Context, req *dto.UpdateViewRequest) (*dto.ViewResponse, error) {
	viewID, err := ksid.Parse(req.ViewID)
	if err != nil {
		return nil, dto.BadRequest("invalid view id")
	}
	view, err := h.Svc.Views.GetView(ctx, viewID)
	if err != nil {
		return nil, apiError(err, "Failed to get view")
	}

	view.Name = req.Name
	view.ViewSpec = specFromDefinition(req.ViewDefinition)
	if err := grid.ValidateSpec(view.ViewSpec); err != nil {
		return nil, apiError(err, "Invalid view definition")
	}
	if err := h.Svc.Views.SaveView(ctx, view); err != nil {
		return nil, apiError(err, "Failed to save view")
	}
	resp := viewResponse(view)
	return &resp, nil
}

// GetView returns a stored view document.
func (h *ViewHandler) GetView(ctx context.Context, req *dto.GetViewRequest) (*dto.ViewResponse, error) {
	viewID, err := ksid.Parse(req.ViewID)
	if err != nil {
		return nil, dto.BadRequest("invalid view id")
	}
	view, err := h.Svc.Views.GetView(ctx, viewID)
	if err != nil {
		return nil, apiError(err, "Failed to get view")
	}
	resp := viewResponse(view)
	return &resp, nil
}

// ListViews returns the views of a table.
func (h *ViewHandler) ListViews(ctx context.Context, req *dto.ListViewsRequest) (*dto.ListViewsResponse, error) {
	tableID, err := ksid.Parse(req.TableID)
	if err != nil {
		return nil, dto.BadRequest("invalid table id")
	}
	if _, err := h.Svc.Store.GetTable(ctx, tableID); err != nil {
		return nil, apiError(err, "Failed to get table")
	}
	views, err := h.Svc.Views.ListViews(ctx, tableID)
	if err != nil {
		return nil, apiError(err, "Failed to list views")
	}
	resp := &dto.ListViewsResponse{Views: []dto.ViewResponse{}}
	for _, v := range views {
		resp.Views = append(resp.Views, viewResponse(v))
	}
	return resp, nil
}

// DeleteView deletes a view.
func (h *ViewHandler) DeleteView(ctx context.Context, req *dto.DeleteViewRequest) (*dto.DeleteViewResponse, error) {
	viewID, err := ksid.Parse(req.ViewID)
	if err != nil {
		return nil, dto.BadRequest("invalid view id")
	}
	if err := h.Svc.Views.DeleteView(ctx, viewID); err != nil {
		return nil, apiError(err, "Failed to delete view")
	}
	return &dto.DeleteViewResponse{ID: req.ViewID}, nil
}
