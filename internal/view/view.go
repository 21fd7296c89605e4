package view

import (
	"encoding/json"
	"strconv"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"mosbot.dev/web/internal/brand"
	"mosbot.dev/web/internal/document"
	"mosbot.dev/web/internal/layout"
	"mosbot.dev/web/internal/nav"
	"mosbot.dev/web/internal/route"
)

// Translator is the lookup the shell needs.
type Translator interface {
	T(key string) string
}

// Shell is everything needed to render the full document.
type Shell struct {
	Doc        document.Attributes
	Header     layout.Header
	Resolution route.Resolution
	Table      route.Table
	Content    g.Node
	Stylesheet string
	Script     string
}

// Document renders the full page: <html> with the document attributes, the
// header and the outlet holding the resolved page.
func Document(s Shell, tr Translator) g.Node {
	return h.Doctype(
		h.HTML(h.Lang(s.Doc.Lang), g.Attr("dir", s.Doc.Dir),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				h.TitleEl(g.Text(tr.T("appTitle"))),
				h.Link(h.Rel("icon"), h.Type("image/svg+xml"), h.Href(brand.HeaderLogoSrc)),
				g.If(s.Stylesheet != "", h.Link(h.Rel("stylesheet"), h.Href(s.Stylesheet))),
			),
			h.Body(
				h.Div(h.ID("root"), h.Class("layout"),
					Header(s.Header, tr, s.Doc.Dir),
					Outlet(s.Resolution, s.Content),
				),
				RouteTable(s.Table),
				g.If(s.Script != "", h.Script(h.Src(s.Script), h.Defer())),
			),
		),
	)
}

// Header renders the header descriptor. Zones are emitted start, center,
// end and carry their physical side for the text direction.
func Header(hd layout.Header, tr Translator, dir string) g.Node {
	zones := make([]g.Node, 0, 3)
	for _, z := range []layout.Zone{layout.ZoneStart, layout.ZoneCenter, layout.ZoneEnd} {
		side := layout.Physical(z, dir)
		slots := make([]g.Node, 0, len(hd.Zones[z]))
		for _, s := range hd.Zones[z] {
			slots = append(slots, slot(s, tr))
		}
		if z == layout.ZoneEnd {
			slots = append(slots, LanguagePicker())
		}
		zones = append(zones, h.Div(
			h.Class("header-zone header-"+side),
			h.Data("zone", string(z)),
			g.Group(slots),
		))
	}
	return h.Header(h.Class("header header-"+string(hd.Variant)), g.Attr("role", "banner"),
		h.Div(h.Class("header-container"), g.Group(zones)),
	)
}

func slot(s layout.Slot, tr Translator) g.Node {
	switch s.Kind {
	case layout.SlotLogo:
		return brand.HeaderMark(tr.T(s.LabelKey))
	case layout.SlotTitle:
		return h.H1(h.Class("header-title-big"), g.Text(tr.T(s.LabelKey)))
	case layout.SlotLogin:
		return LoginButton(tr)
	case layout.SlotNav:
		return Nav(s.Nav, tr)
	}
	return nil
}

// Nav renders header links; the active link carries aria-current.
func Nav(items []nav.RenderedItem, tr Translator) g.Node {
	return h.Nav(h.Class("header-nav"),
		h.Ul(h.Class("header-nav-list"),
			g.Map(items, func(it nav.RenderedItem) g.Node {
				class := "header-nav-link"
				if it.Active {
					class += " header-nav-link-active"
				}
				return h.Li(
					h.A(h.Href(it.Href), h.Data("path", it.Path), h.Class(class),
						g.If(it.Active, g.Attr("aria-current", "page")),
						g.Text(tr.T(it.LabelKey)),
					),
				)
			}),
		),
	)
}

// LoginButton is the mount point of the login affordance; its behavior is
// owned by the browser auth client.
func LoginButton(tr Translator) g.Node {
	return h.Button(h.ID("login-button"), h.Type("button"), h.Class("login-button"), g.Text(tr.T("login")))
}

// LanguagePicker renders nothing: the deployment is Hebrew only.
func LanguagePicker() g.Node {
	return g.Group(nil)
}

// Outlet wraps the page content with the resolution it was rendered for.
func Outlet(res route.Resolution, content g.Node) g.Node {
	return h.Main(h.ID("outlet"), h.Class("outlet"),
		h.Data("path", res.Path),
		h.Data("redirected", strconv.FormatBool(res.Redirected)),
		content,
	)
}

type routeTableJSON struct {
	Entries   []routeEntryJSON    `json:"entries"`
	Redirects []routeRedirectJSON `json:"redirects,omitempty"`
	Fallback  string              `json:"fallback"`
}

type routeEntryJSON struct {
	Path  string `json:"path"`
	Page  string `json:"page"`
	Index bool   `json:"index,omitempty"`
}

type routeRedirectJSON struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Replace bool   `json:"replace"`
}

// RouteTable embeds the table as JSON for the browser's hash router.
func RouteTable(t route.Table) g.Node {
	out := routeTableJSON{Fallback: route.Normalize(t.Fallback)}
	for _, e := range t.Entries {
		p := route.Normalize(e.Path)
		if e.Index {
			p = "/"
		}
		out.Entries = append(out.Entries, routeEntryJSON{Path: p, Page: string(e.Page), Index: e.Index})
	}
	for _, r := range t.Redirects {
		out.Redirects = append(out.Redirects, routeRedirectJSON{From: route.Normalize(r.From), To: route.Normalize(r.To), Replace: r.Replace})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	return h.Script(h.ID("route-table"), h.Type("application/json"), g.Raw(string(b)))
}
