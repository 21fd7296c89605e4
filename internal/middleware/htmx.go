package middleware

import (
	"net/http"
)

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetHistory tells htmx how to record url in the browser history. A replaced
// entry overwrites the current one instead of pushing a new one.
func SetHistory(w http.ResponseWriter, url string, replace bool) {
	if replace {
		w.Header().Set("HX-Replace-Url", url)
		return
	}
	w.Header().Set("HX-Push-Url", url)
}
