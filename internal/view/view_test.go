package view

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"

	"mosbot.dev/web/internal/document"
	"mosbot.dev/web/internal/i18n"
	"mosbot.dev/web/internal/layout"
	"mosbot.dev/web/internal/route"
)

func bundle(t *testing.T) *i18n.Bundle {
	t.Helper()

	b, err := i18n.Load(i18n.Config{Default: "he", Locale: "he-IL"})
	require.NoError(t, err)
	return b
}

func parse(t *testing.T, n g.Node) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, n.Render(&buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func shell(variant layout.Variant, useLogin bool, requested string) Shell {
	table := variant.Table()
	res := table.Resolve(requested)
	return Shell{
		Doc:        document.Attributes{Dir: "rtl", Lang: "he"},
		Header:     layout.Build(layout.Options{UseLogin: useLogin, Variant: variant, CurrentPath: res.Path}),
		Resolution: res,
		Table:      table,
		Content:    g.Text("page"),
		Stylesheet: "/assets/css/app.css",
	}
}

func TestDocumentCarriesDirectionAndLanguage(t *testing.T) {
	t.Parallel()

	doc := parse(t, Document(shell(layout.VariantCentered, false, "/"), bundle(t)))
	htmlEl := doc.Find("html")
	require.Equal(t, "rtl", htmlEl.AttrOr("dir", ""))
	require.Equal(t, "he", htmlEl.AttrOr("lang", ""))
	require.Equal(t, "מוסבוט", doc.Find("title").Text())
	require.Equal(t, 1, doc.Find(`link[rel="stylesheet"][href="/assets/css/app.css"]`).Length())
	require.Equal(t, 0, doc.Find("body > script[src]").Length())
}

func TestLoginAffordanceFollowsCapability(t *testing.T) {
	t.Parallel()

	tr := bundle(t)
	for _, v := range []layout.Variant{layout.VariantCentered, layout.VariantNavigation} {
		doc := parse(t, Document(shell(v, false, "/"), tr))
		require.Equal(t, 0, doc.Find("#login-button").Length(), "variant %s", v)

		doc = parse(t, Document(shell(v, true, "/"), tr))
		require.Equal(t, 1, doc.Find("#login-button").Length(), "variant %s", v)
	}
}

func TestCenteredHeaderPlacesZonesForRTL(t *testing.T) {
	t.Parallel()

	doc := parse(t, Document(shell(layout.VariantCentered, true, "/"), bundle(t)))
	header := doc.Find(`header[role="banner"]`)
	require.Equal(t, 1, header.Length())
	require.Equal(t, 1, header.Find(".header-right #login-button").Length())
	require.Equal(t, "מוסבוט", header.Find(".header-center h1.header-title-big").Text())
	require.Equal(t, 1, header.Find(".header-left img.header-logo-corner").Length())
	require.Equal(t, 0, header.Find("nav").Length())
}

func TestNavigationHeaderHighlightsActiveLink(t *testing.T) {
	t.Parallel()

	doc := parse(t, Document(shell(layout.VariantNavigation, false, "/qa"), bundle(t)))
	active := doc.Find("a.header-nav-link-active")
	require.Equal(t, 1, active.Length())
	require.Equal(t, "#/qa", active.AttrOr("href", ""))
	require.Equal(t, "page", active.AttrOr("aria-current", ""))

	chat := doc.Find(`a.header-nav-link[href="#/"]`)
	require.Equal(t, 1, chat.Length())
	require.False(t, chat.HasClass("header-nav-link-active"))
	require.Equal(t, "צ'אט", chat.Text())
}

func TestOutletReportsResolution(t *testing.T) {
	t.Parallel()

	doc := parse(t, Document(shell(layout.VariantCentered, false, "/qa"), bundle(t)))
	outlet := doc.Find("main#outlet")
	require.Equal(t, "/", outlet.AttrOr("data-path", ""))
	require.Equal(t, "true", outlet.AttrOr("data-redirected", ""))
	require.Equal(t, "page", outlet.Text())
}

func TestRouteTableJSON(t *testing.T) {
	t.Parallel()

	doc := parse(t, RouteTable(route.LegacyTable()))
	raw := doc.Find("script#route-table").Text()

	var out routeTableJSON
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	require.Equal(t, "/", out.Fallback)
	require.Equal(t, []routeEntryJSON{{Path: "/", Page: "chat", Index: true}}, out.Entries)
	require.Equal(t, []routeRedirectJSON{{From: "/qa", To: "/", Replace: true}}, out.Redirects)
}

func TestLanguagePickerRendersNothing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, LanguagePicker().Render(&buf))
	require.Empty(t, buf.String())
}

func TestHeaderEndZoneMountsEmptyLanguagePicker(t *testing.T) {
	t.Parallel()

	for _, v := range []layout.Variant{layout.VariantCentered, layout.VariantNavigation} {
		hd := layout.Build(layout.Options{UseLogin: true, Variant: v})
		doc := parse(t, Document(shell(v, true, "/"), bundle(t)))
		end := doc.Find(`header .header-zone[data-zone="end"]`)
		require.Equal(t, 1, end.Length(), v)
		require.Equal(t, len(hd.Zones[layout.ZoneEnd]), end.Children().Length(), "picker adds no element (%s)", v)
	}
}
