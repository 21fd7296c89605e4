package route

import (
	"errors"
	"fmt"
	"strings"
)

// Page identifies a page component rendered into the shell outlet.
type Page string

const (
	PageChat Page = "chat"
	PageAsk  Page = "ask"
)

// Entry associates a path with the page rendered for it.
// An index entry has no path of its own and matches the root exactly.
type Entry struct {
	Path  string
	Page  Page
	Index bool
}

// Redirect sends requests for From to To. Replace overwrites the current
// history entry instead of pushing a new one.
type Redirect struct {
	From    string
	To      string
	Replace bool
}

// Table is a static route table. Fallback is the target of the wildcard
// entry; unmatched paths are redirected there with replace semantics.
type Table struct {
	Entries   []Entry
	Redirects []Redirect
	Fallback  string
}

// Resolution is the outcome of resolving a requested path.
type Resolution struct {
	Requested  string
	Path       string
	Entry      Entry
	Redirected bool
	Replace    bool
}

var (
	ErrEmptyPath          = errors.New("route: empty path")
	ErrDuplicateRoute     = errors.New("route: duplicate route")
	ErrRedirectCycle      = errors.New("route: redirect target is itself redirected")
	ErrUnresolvedRedirect = errors.New("route: redirect target has no entry")
	ErrNoIndex            = errors.New("route: no index entry")
)

// Normalize returns the canonical form of p: lower case, leading slash, no
// duplicate slashes, no trailing slash except for the root. Paths match
// without regard to case.
func Normalize(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if i := strings.IndexAny(p, "?#"); i != -1 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}

func (e Entry) pattern() string {
	if e.Index {
		return "/"
	}
	return Normalize(e.Path)
}

func (t Table) match(p string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.pattern() == p {
			return e, true
		}
	}
	return Entry{}, false
}

func (t Table) redirect(p string) (Redirect, bool) {
	for _, r := range t.Redirects {
		if Normalize(r.From) == p {
			return r, true
		}
	}
	return Redirect{}, false
}

// Resolve maps a requested path to exactly one entry. Registered paths match
// directly; redirect rules and the wildcard fallback are applied otherwise.
func (t Table) Resolve(requested string) Resolution {
	p := Normalize(requested)
	if e, ok := t.match(p); ok {
		return Resolution{Requested: requested, Path: p, Entry: e}
	}
	if r, ok := t.redirect(p); ok {
		target := Normalize(r.To)
		e, _ := t.match(target)
		return Resolution{Requested: requested, Path: target, Entry: e, Redirected: true, Replace: r.Replace}
	}
	target := Normalize(t.Fallback)
	e, _ := t.match(target)
	return Resolution{Requested: requested, Path: target, Entry: e, Redirected: true, Replace: true}
}

// Validate reports configuration defects: two entries for one path, a
// redirect shadowing an entry, redirect chains, and unresolvable targets.
func (t Table) Validate() error {
	seen := map[string]Page{}
	index := false
	for _, e := range t.Entries {
		if !e.Index && strings.TrimSpace(e.Path) == "" {
			return fmt.Errorf("entry for page %q: %w", e.Page, ErrEmptyPath)
		}
		p := e.pattern()
		if prev, ok := seen[p]; ok {
			return fmt.Errorf("%s (pages %q and %q): %w", p, prev, e.Page, ErrDuplicateRoute)
		}
		seen[p] = e.Page
		if p == "/" {
			index = true
		}
	}
	if !index {
		return ErrNoIndex
	}
	from := map[string]struct{}{}
	for _, r := range t.Redirects {
		if strings.TrimSpace(r.From) == "" {
			return fmt.Errorf("redirect to %q: %w", r.To, ErrEmptyPath)
		}
		p := Normalize(r.From)
		if _, ok := seen[p]; ok {
			return fmt.Errorf("redirect %s shadows an entry: %w", p, ErrDuplicateRoute)
		}
		if _, ok := from[p]; ok {
			return fmt.Errorf("redirect %s: %w", p, ErrDuplicateRoute)
		}
		from[p] = struct{}{}
	}
	for _, r := range t.Redirects {
		target := Normalize(r.To)
		if _, ok := from[target]; ok {
			return fmt.Errorf("%s -> %s: %w", Normalize(r.From), target, ErrRedirectCycle)
		}
		if _, ok := seen[target]; !ok {
			return fmt.Errorf("%s -> %s: %w", Normalize(r.From), target, ErrUnresolvedRedirect)
		}
	}
	if _, ok := seen[Normalize(t.Fallback)]; !ok {
		return fmt.Errorf("fallback %s: %w", Normalize(t.Fallback), ErrUnresolvedRedirect)
	}
	return nil
}

// Pages lists the distinct pages referenced by the table in entry order.
func (t Table) Pages() []Page {
	out := make([]Page, 0, len(t.Entries))
	seen := map[Page]struct{}{}
	for _, e := range t.Entries {
		if _, ok := seen[e.Page]; ok {
			continue
		}
		seen[e.Page] = struct{}{}
		out = append(out, e.Page)
	}
	return out
}

// Paths lists every registered entry path.
func (t Table) Paths() []string {
	out := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		out = append(out, e.pattern())
	}
	return out
}

// LegacyTable is the default table: the chat page at the root, the retired
// "qa" view redirected to the root, and a catch-all to the root.
func LegacyTable() Table {
	return Table{
		Entries: []Entry{
			{Index: true, Page: PageChat},
		},
		Redirects: []Redirect{
			{From: "qa", To: "/", Replace: true},
		},
		Fallback: "/",
	}
}

// NavigationTable backs the navigation layout, where "qa" is a live view.
func NavigationTable() Table {
	return Table{
		Entries: []Entry{
			{Index: true, Page: PageChat},
			{Path: "qa", Page: PageAsk},
		},
		Fallback: "/",
	}
}
