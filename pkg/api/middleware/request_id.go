package middleware

import (
	"net/http"
	"sync/atomic"

	"github.com/dskvich/instructional-pages/pkg/logger"
)

var requestCounter atomic.Int64

// RequestID attaches a monotonic request id to the context so the log
// handler can correlate lines belonging to one request.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.ContextWithRequestID(r.Context(), requestCounter.Add(1))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
