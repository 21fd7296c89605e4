// Package document holds the attributes set on the root <html> element at
// startup: text direction and document language.
package document

import (
	"strings"
	"sync"
)

// Attributes are the document-level settings.
type Attributes struct {
	Dir  string
	Lang string
}

// Unset is what Current reports before any Apply.
var Unset = Attributes{Dir: "ltr", Lang: "en"}

// Root stores the applied attributes. Apply may be called any number of
// times; the last write wins. The zero value is ready to use.
type Root struct {
	mu      sync.RWMutex
	attrs   Attributes
	applied bool
}

// Apply records attrs. Empty fields keep their previous value.
func (r *Root) Apply(attrs Attributes) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.applied {
		r.attrs = Unset
		r.applied = true
	}
	if d := strings.ToLower(strings.TrimSpace(attrs.Dir)); d != "" {
		r.attrs.Dir = d
	}
	if l := strings.TrimSpace(attrs.Lang); l != "" {
		r.attrs.Lang = l
	}
}

// Current returns the applied attributes, or Unset.
func (r *Root) Current() Attributes {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.applied {
		return Unset
	}
	return r.attrs
}

// Applied reports whether Apply has run.
func (r *Root) Applied() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.applied
}

var global Root

// Setup applies attrs to the process-wide document root.
func Setup(attrs Attributes) { global.Apply(attrs) }

// Get returns the process-wide document attributes.
func Get() Attributes { return global.Current() }
