package auth

import (
	"net/http"
	"strings"
)

const HeaderUserID = "X-User-Id"

// UserID copies the X-User-Id header into the request context. Requests
// without the header pass through anonymously; the cart rejects them.
func UserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if uid == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
	})
}
