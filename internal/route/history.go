package route

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is an address whose navigation path lives in the URL fragment.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation derives the navigation path from raw's fragment. A missing
// fragment addresses the root.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", raw, err)
	}
	frag := u.Fragment
	loc := Location{Path: "/", Query: url.Values{}}
	if frag == "" {
		return loc, nil
	}
	if i := strings.IndexByte(frag, '?'); i != -1 {
		q, err := url.ParseQuery(frag[i+1:])
		if err != nil {
			return Location{}, fmt.Errorf("parse location query %q: %w", raw, err)
		}
		loc.Query = q
		frag = frag[:i]
	}
	loc.Path = Normalize(frag)
	return loc, nil
}

// Href returns the hash-addressed link for p.
func Href(p string) string {
	return "#" + Normalize(p)
}

// Navigator applies navigation to a history stack. It is not safe for
// concurrent use; navigation runs to completion on one event loop.
type Navigator struct {
	table   Table
	entries []string
	pos     int
}

// NewNavigator opens the initial address. A redirect on the initial address
// replaces the entry, so the history holds a single entry either way.
func NewNavigator(t Table, initial string) (*Navigator, Resolution) {
	n := &Navigator{table: t}
	res := t.Resolve(initial)
	n.entries = []string{Normalize(initial)}
	n.apply(res)
	return n, res
}

// Navigate activates a link to p: the requested address is pushed, then any
// redirect is applied. Navigating to the current address is a no-op.
func (n *Navigator) Navigate(p string) Resolution {
	res := n.table.Resolve(p)
	if Normalize(p) == n.Current() && !res.Redirected {
		return res
	}
	n.push(Normalize(p))
	n.apply(res)
	return res
}

func (n *Navigator) apply(res Resolution) {
	if !res.Redirected {
		return
	}
	if res.Replace {
		n.entries[n.pos] = res.Path
		return
	}
	n.push(res.Path)
}

func (n *Navigator) push(p string) {
	n.entries = append(n.entries[:n.pos+1], p)
	n.pos = len(n.entries) - 1
}

// Current is the address at the cursor.
func (n *Navigator) Current() string {
	return n.entries[n.pos]
}

// Back moves the cursor one entry back. It reports false at the start.
func (n *Navigator) Back() (string, bool) {
	if n.pos == 0 {
		return n.Current(), false
	}
	n.pos--
	return n.Current(), true
}

// Forward moves the cursor one entry forward. It reports false at the end.
func (n *Navigator) Forward() (string, bool) {
	if n.pos == len(n.entries)-1 {
		return n.Current(), false
	}
	n.pos++
	return n.Current(), true
}

// Len is the number of history entries.
func (n *Navigator) Len() int { return len(n.entries) }

// Entries returns a copy of the history stack.
func (n *Navigator) Entries() []string {
	out := make([]string, len(n.entries))
	copy(out, n.entries)
	return out
}
