// Handles paginated queries over tables and stored views.

package handlers

import (
	"context"

	"github.com/gridbase/gridbase/internal/query"
	"github.com/gridbase/gridbase/internal/server/dto"
	"github.com/maruel/ksid"
)

// QueryHandler handles paginated query requests.
type QueryHandler struct {
	Svc *Services
	Cfg *Config
}

// QueryTable runs an explicit view definition against a table and returns
// one page of the shaped row sequence.
func (h *QueryHandler) QueryTable(ctx context.Context, req *dto.QueryTableRequest) (*dto.PageResponse, error) {
	tableID, err := ksid.Parse(req.TableID)
	if err != nil {
		return nil, dto.BadRequest("invalid table id")
	}
	return h.page(ctx, query.Request{
		TableID: tableID,
		Spec:    specFromDefinition(req.View),
		Offset:  req.Offset,
		Limit:   req.Limit,
	})
}

// ViewPage fetches one page of a stored view's row sequence.
func (h *QueryHandler) ViewPage(ctx context.Context, req *dto.ViewPageRequest) (*dto.PageResponse, error) {
	viewID, err := ksid.Parse(req.ViewID)
	if err != nil {
		return nil, dto.BadRequest("invalid view id")
	}
	view, err := h.Svc.Views.GetView(ctx, viewID)
	if err != nil {
		return nil, apiError(err, "Failed to get view")
	}
	return h.page(ctx, query.Request{
		TableID: view.TableID,
		Spec:    view.ViewSpec,
		Offset:  req.Offset,
		Limit:   req.Limit,
	})
}

// page applies the default limit and runs the request on the executor.
func (h *QueryHandler) page(ctx context.Context, req query.Request) (*dto.PageResponse, error) {
	if req.Limit == 0 {
		req.Limit = h.Cfg.pageSize()
	}
	rows, err := h.Svc.Executor.Query(ctx, req)
	if err != nil {
		return nil, apiError(err, "Query failed")
	}
	return &dto.PageResponse{
		Rows:      rowsToDTO(rows),
		Offset:    req.Offset,
		Limit:     req.Limit,
		Exhausted: len(rows) < req.Limit,
	}, nil
}
