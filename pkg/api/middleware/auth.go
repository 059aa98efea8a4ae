package middleware

import (
	"net/http"
	"strings"

	"github.com/dskvich/instructional-pages/pkg/api/response"
)

type TokenVerifier interface {
	IsAuthorized(token string) bool
}

// Auth rejects requests without a live session token. When the gate is
// disabled, the verifier authorizes everything.
func Auth(verifier TokenVerifier, next http.Handler) http.Handler {
	writer := response.JSONResponseWriter{}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !verifier.IsAuthorized(token) {
			writer.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
