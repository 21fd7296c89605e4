package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mosbot.dev/web/internal/bundle"
	"mosbot.dev/web/internal/devproxy"
	"mosbot.dev/web/internal/document"
	"mosbot.dev/web/internal/i18n"
	"mosbot.dev/web/internal/layout"
	mw "mosbot.dev/web/internal/middleware"
)

type testOptions struct {
	variant  layout.Variant
	useLogin bool
	proxy    http.Handler
	assets   string
}

func newTestApp(t *testing.T, opts testOptions) *app {
	t.Helper()

	tr, err := i18n.Load(i18n.Config{Locale: "he-IL"})
	require.NoError(t, err)
	if opts.variant == "" {
		opts.variant = layout.VariantCentered
	}
	a, err := newApp(appConfig{
		Bundle:   tr,
		Doc:      document.Attributes{Dir: tr.Dir(), Lang: tr.Lang()},
		Variant:  opts.variant,
		UseLogin: opts.useLogin,
	})
	require.NoError(t, err)
	return a
}

func newTestRouter(t *testing.T, opts testOptions) http.Handler {
	t.Helper()

	ro := routerOptions{Proxy: opts.proxy}
	if opts.assets != "" {
		ro.Assets = mw.AssetsWithCache(opts.assets)
	}
	return newRouter(newTestApp(t, opts), ro)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func TestHealthzOK(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t, testOptions{}), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestHomeRendersShell(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t, testOptions{}), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Equal(t, "he-IL", rec.Header().Get("Content-Language"))

	doc := parse(t, rec)
	html := doc.Find("html")
	require.Equal(t, "he", html.AttrOr("lang", ""))
	require.Equal(t, "rtl", html.AttrOr("dir", ""))

	require.Equal(t, 1, doc.Find(`header[role="banner"]`).Length())
	require.Equal(t, 0, doc.Find("#login-button").Length())
	require.Equal(t, 1, doc.Find("img.header-logo-corner").Length())

	outlet := doc.Find("main#outlet")
	require.Equal(t, "/", outlet.AttrOr("data-path", ""))
	require.Equal(t, "false", outlet.AttrOr("data-redirected", ""))
	require.Equal(t, 1, outlet.Find("section.page").Length(), "exactly one page")
	require.Equal(t, 1, outlet.Find("section#chat-page .logo-glow").Length())

	var table struct {
		Entries   []map[string]any `json:"entries"`
		Redirects []map[string]any `json:"redirects"`
		Fallback  string           `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc.Find("script#route-table").Text()), &table))
	require.Equal(t, "/", table.Fallback)
	require.Len(t, table.Redirects, 1)

	require.Equal(t, "/assets/css/app.css", doc.Find(`link[rel="stylesheet"]`).AttrOr("href", ""))
}

func TestHeadOnRootIsNotRedirected(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestRouter(t, testOptions{}).ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFollowsCapabilityFlag(t *testing.T) {
	t.Parallel()

	for _, v := range []layout.Variant{layout.VariantCentered, layout.VariantNavigation} {
		on := parse(t, get(t, newTestRouter(t, testOptions{variant: v, useLogin: true}), "/"))
		require.Equal(t, 1, on.Find("#login-button").Length(), v)

		off := parse(t, get(t, newTestRouter(t, testOptions{variant: v}), "/"))
		require.Equal(t, 0, off.Find("#login-button").Length(), v)
	}
}

func TestCenteredHeaderPlacesLoginAndLogoByDirection(t *testing.T) {
	t.Parallel()

	doc := parse(t, get(t, newTestRouter(t, testOptions{useLogin: true}), "/"))
	require.Equal(t, 1, doc.Find(".header-right #login-button").Length(), "start zone is on the right in rtl")
	require.Equal(t, 1, doc.Find(".header-left img.header-logo-corner").Length())
	require.Equal(t, 1, doc.Find(".header-center h1.header-title-big").Length())
}

func TestOutletLegacyQARedirectsWithReplace(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t, testOptions{}), "/outlet?path=/qa")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/#/", rec.Header().Get("HX-Replace-Url"))
	require.Empty(t, rec.Header().Get("HX-Push-Url"))
	require.Equal(t, "/", rec.Header().Get("X-Resolved-Path"))

	doc := parse(t, rec)
	outlet := doc.Find("main#outlet")
	require.Equal(t, "/", outlet.AttrOr("data-path", ""))
	require.Equal(t, "true", outlet.AttrOr("data-redirected", ""))
	require.Equal(t, 1, outlet.Find("section#chat-page").Length())
	require.Equal(t, 0, doc.Find("header").Length(), "fragment only")
}

func TestOutletUnknownPathFallsBackToRoot(t *testing.T) {
	t.Parallel()

	for _, v := range []layout.Variant{layout.VariantCentered, layout.VariantNavigation} {
		rec := get(t, newTestRouter(t, testOptions{variant: v}), "/outlet?path=/does/not/exist")
		require.Equal(t, "/#/", rec.Header().Get("HX-Replace-Url"), v)
		require.Equal(t, 1, parse(t, rec).Find("section#chat-page").Length(), v)
	}
}

func TestOutletNavigationVariantServesAsk(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t, testOptions{variant: layout.VariantNavigation}), "/outlet?path=/qa")
	require.Empty(t, rec.Header().Get("HX-Replace-Url"))
	require.Equal(t, "/qa", rec.Header().Get("X-Resolved-Path"))

	doc := parse(t, rec)
	require.Equal(t, 1, doc.Find("section#ask-page").Length())
	ask := doc.Find("section#ask-page .logo-container")
	require.False(t, ask.HasClass("animated"))
	require.Equal(t, 1, ask.Find(".logo-glow").Length())
}

func TestNavigationHeaderMarksIndexActive(t *testing.T) {
	t.Parallel()

	doc := parse(t, get(t, newTestRouter(t, testOptions{variant: layout.VariantNavigation}), "/"))
	links := doc.Find("a.header-nav-link")
	require.Equal(t, 2, links.Length())
	active := doc.Find("a.header-nav-link-active")
	require.Equal(t, 1, active.Length())
	require.Equal(t, "#/", active.AttrOr("href", ""))
	require.Equal(t, "page", active.AttrOr("aria-current", ""))
}

func TestUnknownDocumentPathRedirectsToRoot(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, testOptions{})
	for _, p := range []string{"/qa", "/some/where", "/index.html"} {
		rec := get(t, h, p)
		require.Equal(t, http.StatusFound, rec.Code, p)
		require.Equal(t, "/", rec.Header().Get("Location"), p)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProxyForwardsBackendPrefixesOnly(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		hits []string
	)
	seen := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), hits...)
	}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.URL.Path)
		mu.Unlock()
		assert.NotEmpty(t, r.Header.Get("X-Forwarded-Host"))
		_, _ = w.Write([]byte(`{"login_enabled":false}`))
	}))
	t.Cleanup(backend.Close)

	a := newTestApp(t, testOptions{})
	proxy, err := devproxy.New(backend.URL, nil)
	require.NoError(t, err)
	h := newRouter(a, routerOptions{Proxy: proxy})

	for _, p := range []string{"/auth_setup", "/chat", "/content/doc.pdf", "/list_uploaded"} {
		rec := get(t, h, p)
		require.Equal(t, http.StatusOK, rec.Code, p)
	}
	require.Equal(t, []string{"/auth_setup", "/chat", "/content/doc.pdf", "/list_uploaded"}, seen())

	rec := get(t, h, "/outlet?path=/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, seen(), 4, "shell routes are not proxied")
}

func TestAssetsServedWithETag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "app.css"), []byte("body{}"), 0o644))

	rec := get(t, newTestRouter(t, testOptions{assets: dir}), "/assets/css/app.css")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("ETag"))
}

func TestBuildWritesIndexWithHashedAssets(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "assets", "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "assets", "css", "app.css"), []byte("body{}"), 0o644))
	out := filepath.Join(t.TempDir(), "static")

	a := newTestApp(t, testOptions{})
	m, err := bundle.Build(context.Background(), bundle.Options{Source: src, OutDir: out, EmptyOutDir: true}, a.renderIndex)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(out, bundle.IndexName))
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	require.NoError(t, err)
	require.Equal(t, "/"+m.Files["assets/css/app.css"], doc.Find(`link[rel="stylesheet"]`).AttrOr("href", ""))
	require.Equal(t, "rtl", doc.Find("html").AttrOr("dir", ""))
}

func TestOutletReadsPathFromLocationFragment(t *testing.T) {
	t.Parallel()

	nav := newTestRouter(t, testOptions{variant: layout.VariantNavigation})
	rec := get(t, nav, "/outlet?location="+url.QueryEscape("http://localhost:8080/#/QA?thread=7"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/qa", rec.Header().Get("X-Resolved-Path"))
	require.Equal(t, 1, parse(t, rec).Find("section#ask-page").Length())

	legacy := newTestRouter(t, testOptions{})
	rec = get(t, legacy, "/outlet?location="+url.QueryEscape("http://localhost:8080/#/qa"))
	require.Equal(t, "/#/", rec.Header().Get("HX-Replace-Url"))

	rec = get(t, legacy, "/outlet?location="+url.QueryEscape("http://localhost:8080/"))
	require.Empty(t, rec.Header().Get("HX-Replace-Url"), "no fragment addresses the root")
	require.Equal(t, "/", rec.Header().Get("X-Resolved-Path"))
}

func TestOutletRejectsMalformedLocation(t *testing.T) {
	t.Parallel()

	rec := get(t, newTestRouter(t, testOptions{}), "/outlet?location="+url.QueryEscape("/#%zz"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
