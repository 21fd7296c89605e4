package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mosbot.dev/web/internal/devproxy"
	mw "mosbot.dev/web/internal/middleware"
)

type routerOptions struct {
	Assets http.Handler
	Proxy  http.Handler // nil disables the backend proxy
}

func newRouter(a *app, opts routerOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(middleware.RealIP)
	r.Use(middleware.GetHead)
	r.Use(mw.HTMX)
	r.Use(mw.Logger(a.logger))
	r.Use(middleware.Recoverer)
	// Proxied responses stream; they bypass compression and the timeout.
	if opts.Proxy != nil {
		r.Use(devproxy.Handler(opts.Proxy))
	}
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(mw.Locale(a.tr))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets", opts.Assets))
	}

	r.Get("/", a.HomeHandler)
	r.Get("/outlet", a.OutletHandler)
	r.NotFound(a.NotFoundHandler)
	r.MethodNotAllowed(a.NotFoundHandler)
	return r
}
