package middleware

import (
	"net/http"

	"mosbot.dev/web/internal/i18n"
)

// Locale matches Accept-Language against the bundle's supported languages
// and stores the result in the request context. Clients asking for an
// unsupported language get the fallback; the response always carries the
// bundle's display locale.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := bundle.Resolve(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", bundle.Locale())
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
		})
	}
}
