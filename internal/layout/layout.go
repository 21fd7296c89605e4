// Package layout describes the header shell as data. Build is a pure
// function of the login capability flag, the variant and the resolved path;
// rendering lives in the view package.
package layout

import (
	"fmt"
	"strings"

	"mosbot.dev/web/internal/nav"
	"mosbot.dev/web/internal/route"
)

// Variant selects the header composition.
type Variant string

const (
	// VariantCentered shows the corner logo, a big centered title and the
	// login affordance. No navigation links.
	VariantCentered Variant = "centered"
	// VariantNavigation shows links for the chat and ask views with the
	// branding on the end side.
	VariantNavigation Variant = "navigation"
)

// ParseVariant accepts a variant name; empty selects VariantCentered.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", VariantCentered:
		return VariantCentered, nil
	case VariantNavigation:
		return VariantNavigation, nil
	}
	return "", fmt.Errorf("unknown layout variant %q", s)
}

// Table returns the route table the variant navigates with.
func (v Variant) Table() route.Table {
	if v == VariantNavigation {
		return route.NavigationTable()
	}
	return route.LegacyTable()
}

// Zone is a logical header region. Its physical side depends on text direction.
type Zone string

const (
	ZoneStart  Zone = "start"
	ZoneCenter Zone = "center"
	ZoneEnd    Zone = "end"
)

// Physical maps a zone to "left", "center" or "right" for the text direction.
func Physical(z Zone, dir string) string {
	rtl := strings.EqualFold(dir, "rtl")
	switch z {
	case ZoneStart:
		if rtl {
			return "right"
		}
		return "left"
	case ZoneEnd:
		if rtl {
			return "left"
		}
		return "right"
	}
	return "center"
}

// SlotKind names what a header slot renders.
type SlotKind string

const (
	SlotLogo  SlotKind = "logo"
	SlotTitle SlotKind = "title"
	SlotLogin SlotKind = "login"
	SlotNav   SlotKind = "nav"
)

// Slot is one element placed in a zone.
type Slot struct {
	Kind     SlotKind
	LabelKey string
	Nav      []nav.RenderedItem
}

// Header is the render descriptor for the shell header.
type Header struct {
	Variant Variant
	Zones   map[Zone][]Slot
}

// Options are the inputs of Build.
type Options struct {
	UseLogin    bool
	Variant     Variant
	CurrentPath string
}

// Build composes the header for the given options.
func Build(opts Options) Header {
	h := Header{
		Variant: opts.Variant,
		Zones: map[Zone][]Slot{
			ZoneStart:  {},
			ZoneCenter: {},
			ZoneEnd:    {},
		},
	}
	switch opts.Variant {
	case VariantNavigation:
		h.Zones[ZoneStart] = append(h.Zones[ZoneStart], Slot{
			Kind: SlotNav,
			Nav:  nav.Build(opts.CurrentPath),
		})
		h.Zones[ZoneCenter] = append(h.Zones[ZoneCenter], Slot{Kind: SlotTitle, LabelKey: "headerTitle"})
		if opts.UseLogin {
			h.Zones[ZoneEnd] = append(h.Zones[ZoneEnd], Slot{Kind: SlotLogin})
		}
		h.Zones[ZoneEnd] = append(h.Zones[ZoneEnd], Slot{Kind: SlotLogo, LabelKey: "headerTitle"})
	default:
		h.Variant = VariantCentered
		if opts.UseLogin {
			h.Zones[ZoneStart] = append(h.Zones[ZoneStart], Slot{Kind: SlotLogin})
		}
		h.Zones[ZoneCenter] = append(h.Zones[ZoneCenter], Slot{Kind: SlotTitle, LabelKey: "headerTitle"})
		h.Zones[ZoneEnd] = append(h.Zones[ZoneEnd], Slot{Kind: SlotLogo, LabelKey: "headerTitle"})
	}
	return h
}

// Has reports whether any zone holds a slot of kind k.
func (h Header) Has(k SlotKind) bool {
	return h.Count(k) > 0
}

// Count returns the number of slots of kind k across zones.
func (h Header) Count(k SlotKind) int {
	n := 0
	for _, slots := range h.Zones {
		for _, s := range slots {
			if s.Kind == k {
				n++
			}
		}
	}
	return n
}

// LabelKeys lists every translation key the header references.
func (h Header) LabelKeys() []string {
	var keys []string
	for _, z := range []Zone{ZoneStart, ZoneCenter, ZoneEnd} {
		for _, s := range h.Zones[z] {
			if s.LabelKey != "" {
				keys = append(keys, s.LabelKey)
			}
			for _, it := range s.Nav {
				keys = append(keys, it.LabelKey)
			}
		}
	}
	return keys
}
