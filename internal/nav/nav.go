package nav

import (
	"mosbot.dev/web/internal/route"
)

// Item represents a header navigation link.
type Item struct {
	Path     string // e.g. "/qa"
	LabelKey string // i18n key, e.g. "nav.ask"
}

// RenderedItem is a view model for the header.
type RenderedItem struct {
	Path     string
	Href     string
	LabelKey string
	Active   bool
}

// Main is the navigation shown by the navigation layout variant.
var Main = []Item{
	{Path: "/", LabelKey: "nav.chat"},
	{Path: "/qa", LabelKey: "nav.ask"},
}

// Build renders navigation items with active state given the resolved path.
func Build(resolvedPath string) []RenderedItem {
	current := route.Normalize(resolvedPath)
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Path:     route.Normalize(it.Path),
			Href:     route.Href(it.Path),
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, current),
		})
	}
	return items
}

// only an exact match highlights; "/qa/x" never activates "/qa"
func isActive(itemPath, currentPath string) bool {
	return route.Normalize(itemPath) == currentPath
}
