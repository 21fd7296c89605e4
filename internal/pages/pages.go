// Package pages renders the page collaborators placed in the shell outlet.
// Their data flows (chat streaming, uploads, history) run in the browser
// against the backend; the server renders the mount point and intro copy.
package pages

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"mosbot.dev/web/internal/brand"
	"mosbot.dev/web/internal/route"
)

// Translator is the lookup pages need.
type Translator interface {
	T(key string) string
}

// Renderer renders one page.
type Renderer func(tr Translator) g.Node

// Registry maps route pages to renderers.
type Registry map[route.Page]Renderer

// Markdown converts catalogue copy written in markdown into sanitized HTML.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewMarkdown() *Markdown {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span")
	policy.RequireNoFollowOnLinks(true)
	return &Markdown{md: goldmark.New(), policy: policy}
}

// HTML renders src. Rendering errors fall back to escaped text.
func (m *Markdown) HTML(src string) g.Node {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return g.Text(src)
	}
	return g.Raw(strings.TrimSpace(m.policy.Sanitize(buf.String())))
}

// NewRegistry returns renderers for every page used by the shipped tables.
func NewRegistry(md *Markdown) Registry {
	return Registry{
		route.PageChat: func(tr Translator) g.Node {
			return page("chat", tr, md, brand.Logo(brand.WithSize(brand.SizeLarge), brand.WithAlt(tr.T("logoAlt"))))
		},
		route.PageAsk: func(tr Translator) g.Node {
			return page("ask", tr, md, brand.Logo(brand.WithSize(brand.SizeMedium), brand.WithAnimation(false), brand.WithAlt(tr.T("logoAlt"))))
		},
	}
}

func page(name string, tr Translator, md *Markdown, logo g.Node) g.Node {
	return h.Section(h.ID(name+"-page"), h.Class("page page-"+name), h.Data("page", name),
		h.Div(h.Class("page-empty-state"),
			logo,
			h.H2(h.Class("page-title"), g.Text(tr.T(name+".title"))),
			h.Div(h.Class("page-intro"), md.HTML(tr.T(name+".intro"))),
		),
		h.Div(h.ID(name+"-root"), h.Class("page-mount"), h.Data("page-root", name)),
		h.Form(h.Class("page-input"), h.Data("page-form", name),
			h.Textarea(h.Name("question"), h.Rows("2"), h.Placeholder(tr.T(name+".inputPlaceholder"))),
		),
	)
}

// Render renders p, or reports that the registry lacks it.
func (r Registry) Render(p route.Page, tr Translator) (g.Node, error) {
	fn, ok := r[p]
	if !ok {
		return nil, fmt.Errorf("no renderer for page %q", p)
	}
	return fn(tr), nil
}

// Covers reports the first page in t that has no renderer.
func (r Registry) Covers(t route.Table) error {
	for _, p := range t.Pages() {
		if _, ok := r[p]; !ok {
			return fmt.Errorf("no renderer for page %q", p)
		}
	}
	return nil
}

// LabelKeys lists the catalogue keys page p references.
func LabelKeys(p route.Page) []string {
	name := string(p)
	return []string{"logoAlt", name + ".title", name + ".intro", name + ".inputPlaceholder"}
}
