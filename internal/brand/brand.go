package brand

import (
	"strings"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Size is the closed set of logo sizes.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

const (
	LogoSrc       = "/assets/images/logo.svg"
	HeaderLogoSrc = "/assets/images/mosbot-logo.svg"
)

var sizeClass = map[Size]string{
	SizeSmall:  "logo-small",
	SizeMedium: "logo-medium",
	SizeLarge:  "logo-large",
}

// Props is the resolved configuration of a logo.
type Props struct {
	Size     Size
	Animated bool
	Class    string
	Src      string
	Alt      string
}

// Option adjusts Props.
type Option func(*Props)

func WithSize(s Size) Option { return func(p *Props) { p.Size = s } }

func WithAnimation(on bool) Option { return func(p *Props) { p.Animated = on } }

func WithClass(c string) Option { return func(p *Props) { p.Class = strings.TrimSpace(c) } }

func WithAlt(alt string) Option { return func(p *Props) { p.Alt = alt } }

func WithSrc(src string) Option { return func(p *Props) { p.Src = src } }

// Resolve applies opts over the defaults: medium, animated, no extra class.
func Resolve(opts ...Option) Props {
	p := Props{Size: SizeMedium, Animated: true, Src: LogoSrc, Alt: "Company Logo"}
	for _, o := range opts {
		o(&p)
	}
	if _, ok := sizeClass[p.Size]; !ok {
		p.Size = SizeMedium
	}
	return p
}

// ContainerClass returns the class list of the logo container.
func (p Props) ContainerClass() string {
	classes := []string{"logo-container", sizeClass[p.Size]}
	if p.Animated {
		classes = append(classes, "animated")
	}
	if p.Class != "" {
		classes = append(classes, p.Class)
	}
	return strings.Join(classes, " ")
}

// Logo renders the mark. The glow element is always rendered; the animation
// flag only toggles the container's "animated" class.
func Logo(opts ...Option) g.Node {
	p := Resolve(opts...)
	return h.Div(h.Class(p.ContainerClass()),
		h.Img(h.Src(p.Src), h.Alt(p.Alt), h.Class("logo")),
		h.Div(h.Class("logo-glow")),
	)
}

// HeaderMark is the corner logo of the shell header.
func HeaderMark(alt string) g.Node {
	return h.Img(h.Src(HeaderLogoSrc), h.Alt(alt), h.Class("header-logo-corner"))
}
