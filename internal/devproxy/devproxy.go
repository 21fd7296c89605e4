// Package devproxy forwards backend endpoints to the backend service during
// local development. The prefix table is the set of backend endpoints the
// front end expects to exist.
package devproxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DefaultTarget is the backend address used by local development.
const DefaultTarget = "http://localhost:3001"

// Prefixes is the fixed table of proxied path prefixes.
var Prefixes = []string{
	"/content/",
	"/auth_setup",
	"/.auth/me",
	"/ask",
	"/chat",
	"/speech",
	"/config",
	"/upload",
	"/delete_uploaded",
	"/list_uploaded",
	"/chat_history",
}

// Matches reports whether path belongs to the backend.
func Matches(path string) bool {
	for _, p := range Prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// New returns a reverse proxy for target. Upstream failures answer 502 with a
// JSON error body and are logged.
func New(target string, logger *zap.Logger) (http.Handler, error) {
	if target == "" {
		target = DefaultTarget
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse proxy target %q: %w", target, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy target %q must be absolute", target)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("dev proxy upstream error",
				zap.String("path", r.URL.Path),
				zap.String("target", u.String()),
				zap.Error(err),
			)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "backend unavailable"})
		},
	}
	return rp, nil
}

// Handler sends matching requests to proxy and everything else to next.
func Handler(proxy http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Matches(r.URL.Path) {
				proxy.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
