package middleware

import (
	"fmt"
	"net/http"

	"github.com/paperchat-ai/paperchat/internal/api"
)

// MaxBodyBytes caps request body size. Requests declaring a larger
// Content-Length are rejected up front with a JSON error; chunked bodies
// are cut off at the limit while the handler reads them.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}

		capped := http.MaxBytesHandler(next, limit)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", limit))
				return
			}
			capped.ServeHTTP(w, r)
		})
	}
}
