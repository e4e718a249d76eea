package server

import (
	"net/http"

	"github.com/gridbase/gridbase/internal/server/handlers"
	"github.com/gridbase/gridbase/internal/server/ipgeo"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(svc *handlers.Services, cfg *handlers.Config, opts *Options, geo *ipgeo.Checker) http.Handler {
	mux := http.NewServeMux()

	th := &handlers.TableHandler{Svc: svc, Cfg: cfg}
	vh := &handlers.ViewHandler{Svc: svc, Cfg: cfg}
	qh := &handlers.QueryHandler{Svc: svc, Cfg: cfg}
	sh := &handlers.SchemaHandler{}
	hh := &handlers.HealthHandler{Cfg: cfg}

	// Health check
	mux.Handle("GET /api/health", Wrap(hh.Health, opts))

	// Tables and row batches
	mux.Handle("POST /api/tables", Wrap(th.CreateTable, opts))
	mux.Handle("GET /api/tables", Wrap(th.ListTables, opts))
	mux.Handle("GET /api/tables/{tableID}", Wrap(th.GetTable, opts))
	mux.Handle("DELETE /api/tables/{tableID}", Wrap(th.DeleteTable, opts))
	mux.Handle("PUT /api/tables/{tableID}/rows", Wrap(th.UpsertRows, opts))

	// Queries
	mux.Handle("POST /api/tables/{tableID}/query", Wrap(qh.QueryTable, opts))
	mux.Handle("GET /api/views/{viewID}/page", Wrap(qh.ViewPage, opts))

	// Views
	mux.Handle("POST /api/tables/{tableID}/views", Wrap(vh.CreateView, opts))
	mux.Handle("GET /api/tables/{tableID}/views", Wrap(vh.ListViews, opts))
	mux.Handle("GET /api/views/{viewID}", Wrap(vh.GetView, opts))
	mux.Handle("PUT /api/views/{viewID}", Wrap(vh.UpdateView, opts))
	mux.Handle("DELETE /api/views/{viewID}", Wrap(vh.DeleteView, opts))

	// Schema
	mux.Handle("GET /api/schema/view", Wrap(sh.ViewSchema, opts))

	return Recover(LogRequests(geo)(mux))
}
