// Serves the JSON Schema of view documents.

package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/server/dto"
	"github.com/invopop/jsonschema"
)

// SchemaHandler serves the machine-readable schema of persisted view
// documents, derived from the grid.View struct tags.
type SchemaHandler struct {
	once   sync.Once
	schema json.RawMessage
	err    error
}

// ViewSchema returns the JSON Schema for view documents. The schema is
// reflected once and cached.
func (h *SchemaHandler) ViewSchema(ctx context.Context, req *dto.ViewSchemaRequest) (*dto.ViewSchemaResponse, error) {
	h.once.Do(func() {
		r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
		s := r.Reflect(&grid.View{})
		h.schema, h.err = json.Marshal(s)
	})
	if h.err != nil {
		return nil, dto.InternalWithError("Failed to build view schema", h.err)
	}
	return &dto.ViewSchemaResponse{Schema: h.schema}, nil
}
