package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gridbase/gridbase/internal/server/ipgeo"
	"github.com/gridbase/gridbase/internal/server/reqctx"
)

// statusRecorder captures the response status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Unwrap returns the underlying ResponseWriter.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LogRequests logs one line per request. When geo is non-nil the client's
// country code is resolved, logged, and stored in the request context.
func LogRequests(geo *ipgeo.Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ip := reqctx.GetClientIP(r)
			attrs := []any{"method", r.Method, "path", r.URL.Path, "ip", ip}
			if geo != nil {
				cc := geo.CountryCode(ip)
				attrs = append(attrs, "country", cc)
				r = r.WithContext(reqctx.WithCountryCode(r.Context(), cc))
			}
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			attrs = append(attrs, "status", rec.status, "dur", time.Since(start).Round(time.Microsecond))
			slog.InfoContext(r.Context(), "HTTP", attrs...)
		})
	}
}

// Recover turns a handler panic into a 500 instead of killing the server.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				slog.ErrorContext(r.Context(), "Handler panic", "panic", v, "path", r.URL.Path)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
