// Package handlers implements the HTTP API endpoints over the row store
// and query executor.
package handlers

import (
	"github.com/gridbase/gridbase/internal/query"
	"github.com/gridbase/gridbase/internal/rowstore"
)

// Services bundles the backends the handlers operate on.
type Services struct {
	Store    rowstore.Store
	Views    rowstore.ViewStore
	Executor query.Executor
}

// Config holds handler-level settings.
type Config struct {
	// Version is reported by the health endpoint.
	Version string
	// PageSize is the default window size when a request omits a limit.
	PageSize int
	// MaxRequestBodyBytes caps request body size. Zero means no cap.
	MaxRequestBodyBytes int64
}

// DefaultPageSize is used when Config.PageSize is zero.
const DefaultPageSize = 50

// pageSize returns the effective default page size.
func (c *Config) pageSize() int {
	if c == nil || c.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.PageSize
}
