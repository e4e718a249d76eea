// Maps storage and query errors to API errors.

package handlers

import (
	"errors"

	"github.com/gridbase/gridbase/internal/grid"
	"github.com/gridbase/gridbase/internal/rowstore"
	"github.com/gridbase/gridbase/internal/server/dto"
)

// apiError translates errors from the storage and query layers into the
// structured API error taxonomy. Unknown errors become 500s with the given
// message.
func apiError(err error, message string) error {
	var invalid *grid.InvalidViewDefinitionError
	switch {
	case errors.As(err, &invalid):
		return dto.InvalidViewDefinition(invalid.Error()).
			WithDetail("clause", invalid.Clause).
			WithDetail("index", invalid.Index)
	case errors.Is(err, rowstore.ErrTableNotFound):
		return dto.TableNotFound()
	case errors.Is(err, rowstore.ErrViewNotFound):
		return dto.ViewNotFound()
	case errors.Is(err, rowstore.ErrUnavailable):
		return dto.StorageError(err)
	default:
		return dto.InternalWithError(message, err)
	}
}
