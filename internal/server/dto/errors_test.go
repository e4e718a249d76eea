package dto

import (
	"errors"
	"net/http"
	"testing"
)

func TestAPIError(t *testing.T) {
	t.Run("constructors", func(t *testing.T) {
		tests := []struct {
			name       string
			err        *APIError
			wantStatus int
			wantCode   ErrorCode
		}{
			{"table not found", TableNotFound(), http.StatusNotFound, ErrorCodeTableNotFound},
			{"view not found", ViewNotFound(), http.StatusNotFound, ErrorCodeViewNotFound},
			{"bad request", BadRequest("nope"), http.StatusBadRequest, ErrorCodeValidationFailed},
			{"missing field", MissingField("name"), http.StatusBadRequest, ErrorCodeMissingField},
			{"invalid view", InvalidViewDefinition("bad clause"), http.StatusUnprocessableEntity, ErrorCodeValidationFailed},
			{"storage", StorageError(errors.New("io")), http.StatusServiceUnavailable, ErrorCodeStorageError},
			{"rate limited", RateLimitExceeded(3), http.StatusTooManyRequests, ErrorCodeRateLimited},
			{"payload", PayloadTooLarge(1024), http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.err.StatusCode(); got != tt.wantStatus {
					t.Errorf("StatusCode() = %d, want %d", got, tt.wantStatus)
				}
				if got := tt.err.Code(); got != tt.wantCode {
					t.Errorf("Code() = %q, want %q", got, tt.wantCode)
				}
			})
		}
	})

	t.Run("wrap and unwrap", func(t *testing.T) {
		inner := errors.New("disk full")
		err := InternalWithError("saving view", inner)
		if !errors.Is(err, inner) {
			t.Error("wrapped error not reachable via errors.Is")
		}
		if got := err.Error(); got != "saving view: disk full" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("details", func(t *testing.T) {
		err := BadRequest("bad").WithDetail("field", "status")
		if got := err.Details()["field"]; got != "status" {
			t.Errorf("Details()[field] = %v, want status", got)
		}
	})

	t.Run("as ErrorWithStatus", func(t *testing.T) {
		var ews ErrorWithStatus
		var err error = TableNotFound()
		if !errors.As(err, &ews) {
			t.Fatal("APIError does not satisfy ErrorWithStatus via errors.As")
		}
		if ews.StatusCode() != http.StatusNotFound {
			t.Errorf("StatusCode() = %d", ews.StatusCode())
		}
	})
}
