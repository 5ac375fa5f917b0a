package middleware

import "net/http"

// AppVersion identifies the running build in every response.
const AppVersion = "coastal-oak-mvp-1.2.0"

// Version stamps the X-Deck-Version header on all responses.
func Version(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Deck-Version", AppVersion)
		next.ServeHTTP(w, r)
	})
}
