package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// LocaleFS holds the built-in catalogues, one <lang>.json per language.
//
//go:embed locales/*.json
var LocaleFS embed.FS

// ErrAlreadyInitialized is returned by Init after the provider is set up.
var ErrAlreadyInitialized = errors.New("i18n: provider already initialized")

var rtlBases = map[string]struct{}{"he": {}, "ar": {}, "fa": {}, "ur": {}, "yi": {}}

// Config describes the resource set.
type Config struct {
	Resources fs.FS  // catalogues under locales/<lang>.json
	Default   string // fallback language, e.g. "he"
	Current   string // active language; empty means Default
	Supported []string
	Locale    string // display locale of Current, e.g. "he-IL"
	Direction string // "rtl" or "ltr"; empty derives from Current
}

// Bundle is a loaded resource set with its active language.
type Bundle struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer
	current   string
	fallback  string
	locale    string
	dir       string
	supported []language.Tag
	matcher   language.Matcher
	keys      []string
}

// Load reads catalogues for every supported language. The default language's
// catalogue is required; others may be missing.
func Load(cfg Config) (*Bundle, error) {
	if cfg.Resources == nil {
		cfg.Resources = LocaleFS
	}
	if cfg.Default == "" {
		cfg.Default = "he"
	}
	if cfg.Current == "" {
		cfg.Current = cfg.Default
	}
	if len(cfg.Supported) == 0 {
		cfg.Supported = []string{cfg.Default}
	}
	defTag, err := language.Parse(cfg.Default)
	if err != nil {
		return nil, fmt.Errorf("parse default language %s: %w", cfg.Default, err)
	}

	b := &Bundle{
		bundle:   goi18n.NewBundle(defTag),
		current:  strings.ToLower(cfg.Current),
		fallback: strings.ToLower(cfg.Default),
		locale:   cfg.Locale,
		dir:      strings.ToLower(cfg.Direction),
	}
	keys := map[string]struct{}{}
	loadedDefault := false
	for _, l := range cfg.Supported {
		l = strings.ToLower(strings.TrimSpace(l))
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("parse supported language %s: %w", l, err)
		}
		b.supported = append(b.supported, tag)
		mf, err := b.bundle.LoadMessageFileFS(cfg.Resources, path.Join("locales", l+".json"))
		if err != nil {
			// allow missing file for non-default locales
			if l == b.fallback {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		if l == b.fallback {
			loadedDefault = true
			for _, m := range mf.Messages {
				keys[m.ID] = struct{}{}
			}
		}
	}
	if !loadedDefault {
		return nil, fmt.Errorf("fallback locale %s not in supported set", b.fallback)
	}
	for k := range keys {
		b.keys = append(b.keys, k)
	}
	sort.Strings(b.keys)
	b.matcher = language.NewMatcher(b.supported)
	b.localizer = goi18n.NewLocalizer(b.bundle, b.current, b.fallback)
	if b.locale == "" {
		b.locale = b.current
	}
	if b.dir == "" {
		b.dir = directionOf(b.current)
	}
	return b, nil
}

func directionOf(lang string) string {
	base := lang
	if i := strings.IndexAny(base, "-_"); i != -1 {
		base = base[:i]
	}
	if _, ok := rtlBases[strings.ToLower(base)]; ok {
		return "rtl"
	}
	return "ltr"
}

// T returns the translation for key in the active language, falling back to
// the default language and finally the key.
func (b *Bundle) T(key string) string {
	if b == nil || b.localizer == nil {
		return key
	}
	s, err := b.localizer.Localize(&goi18n.LocalizeConfig{MessageID: key})
	if err != nil || s == "" {
		return key
	}
	return s
}

// Has reports whether key resolves to a catalogue entry.
func (b *Bundle) Has(key string) bool {
	if b == nil || b.localizer == nil {
		return false
	}
	s, err := b.localizer.Localize(&goi18n.LocalizeConfig{MessageID: key})
	return err == nil && s != ""
}

// Lang returns the active language code.
func (b *Bundle) Lang() string { return b.current }

// Locale returns the display locale of the active language.
func (b *Bundle) Locale() string { return b.locale }

// Dir returns the text direction of the active language.
func (b *Bundle) Dir() string { return b.dir }

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// Keys lists message ids of the default catalogue.
func (b *Bundle) Keys() []string {
	out := make([]string, len(b.keys))
	copy(out, b.keys)
	return out
}

func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for _, t := range b.supported {
		out = append(out, t.String())
	}
	sort.Strings(out)
	return out
}

// Resolve chooses the best supported language for an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.fallback
	}
	base, _ := b.supported[idx].Base()
	return base.String()
}

var (
	mu     sync.RWMutex
	active *Bundle
)

// Init loads cfg and installs it as the process-wide provider. It succeeds
// once; later calls return ErrAlreadyInitialized and leave the provider as is.
func Init(cfg Config) (*Bundle, error) {
	mu.Lock()
	defer mu.Unlock()
	if active != nil {
		return active, ErrAlreadyInitialized
	}
	b, err := Load(cfg)
	if err != nil {
		return nil, err
	}
	active = b
	return b, nil
}

// Default returns the process-wide provider, nil before Init.
func Default() *Bundle {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// T translates key with the process-wide provider.
func T(key string) string {
	return Default().T(key)
}
