package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	g "maragu.dev/gomponents"

	"mosbot.dev/web/internal/bundle"
	"mosbot.dev/web/internal/document"
	"mosbot.dev/web/internal/i18n"
	"mosbot.dev/web/internal/layout"
	"mosbot.dev/web/internal/logging"
	mw "mosbot.dev/web/internal/middleware"
	"mosbot.dev/web/internal/pages"
	"mosbot.dev/web/internal/route"
	"mosbot.dev/web/internal/view"
)

const (
	stylesheetAsset = "assets/css/app.css"
	scriptAsset     = "assets/js/app.js"
)

type appConfig struct {
	Logger   *zap.Logger
	Bundle   *i18n.Bundle
	Doc      document.Attributes
	Variant  layout.Variant
	UseLogin bool
}

// app holds the state fixed at startup. Nothing here changes afterwards.
type app struct {
	logger   *zap.Logger
	tr       *i18n.Bundle
	doc      document.Attributes
	variant  layout.Variant
	table    route.Table
	useLogin bool
	pages    pages.Registry
}

func newApp(c appConfig) (*app, error) {
	if c.Bundle == nil {
		return nil, errors.New("app: i18n bundle is required")
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	table := c.Variant.Table()
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("route table: %w", err)
	}
	reg := pages.NewRegistry(pages.NewMarkdown())
	if err := reg.Covers(table); err != nil {
		return nil, fmt.Errorf("page registry: %w", err)
	}
	hd := layout.Build(layout.Options{UseLogin: c.UseLogin, Variant: c.Variant})
	for _, key := range hd.LabelKeys() {
		if !c.Bundle.Has(key) {
			c.Logger.Warn("missing translation", zap.String("key", key))
		}
	}
	return &app{
		logger:   c.Logger,
		tr:       c.Bundle,
		doc:      c.Doc,
		variant:  hd.Variant,
		table:    table,
		useLogin: c.UseLogin,
		pages:    reg,
	}, nil
}

// shell assembles the document for res. m supplies emitted asset names; the
// zero Manifest serves the unhashed sources.
func (a *app) shell(res route.Resolution, m bundle.Manifest) (view.Shell, error) {
	content, err := a.pages.Render(res.Entry.Page, a.tr)
	if err != nil {
		return view.Shell{}, err
	}
	return view.Shell{
		Doc:        a.doc,
		Header:     layout.Build(layout.Options{UseLogin: a.useLogin, Variant: a.variant, CurrentPath: res.Path}),
		Resolution: res,
		Table:      a.table,
		Content:    content,
		Stylesheet: m.Asset(stylesheetAsset),
		Script:     m.Asset(scriptAsset),
	}, nil
}

func (a *app) renderIndex(m bundle.Manifest) ([]byte, error) {
	s, err := a.shell(a.table.Resolve("/"), m)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := view.Document(s, a.tr).Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// write renders node fully before sending so a render failure can still
// answer 500.
func (a *app) write(w http.ResponseWriter, r *http.Request, node g.Node) {
	var buf bytes.Buffer
	if err := node.Render(&buf); err != nil {
		logging.FromContext(r.Context()).Error("render failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "render error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// HomeHandler renders the full shell. The navigation path lives in the URL
// fragment, which never reaches the server, so the shell opens on the index
// page and the browser fetches the outlet for any other fragment.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	s, err := a.shell(a.table.Resolve("/"), bundle.Manifest{})
	if err != nil {
		logging.FromContext(r.Context()).Error("shell", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "render error")
		return
	}
	a.write(w, r, view.Document(s, a.tr))
}

// OutletHandler renders only the outlet for the address in ?location= (its
// fragment carries the path) or a bare ?path=. A redirected resolution tells
// the client which address its history entry should hold instead.
func (a *app) OutletHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if raw := r.URL.Query().Get("location"); raw != "" {
		loc, err := route.ParseLocation(raw)
		if err != nil {
			mw.WriteError(w, r, http.StatusBadRequest, "invalid location")
			return
		}
		path = loc.Path
	}
	history, res := route.NewNavigator(a.table, path)
	content, err := a.pages.Render(res.Entry.Page, a.tr)
	if err != nil {
		logging.FromContext(r.Context()).Error("outlet", zap.String("path", res.Path), zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "render error")
		return
	}
	if res.Redirected {
		mw.SetHistory(w, "/"+route.Href(history.Current()), res.Replace)
	}
	w.Header().Set("X-Resolved-Path", res.Path)
	a.write(w, r, view.Outlet(res, content))
}

// NotFoundHandler sends any other document path to the shell root.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		mw.WriteError(w, r, http.StatusNotFound, "not found")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
