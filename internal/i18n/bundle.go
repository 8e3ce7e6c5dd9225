// Package i18n loads the site's translation catalogs and resolves which locale a
// request should be served in.
package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"sync"
	"sync/atomic"
)

// ErrUnknownLocale is returned when a locale code is not configured.
var ErrUnknownLocale = errors.New("unknown locale")

//go:embed locales/*.json
var embeddedLocales embed.FS

// Embedded returns the translation files compiled into the binary, rooted so that
// "en.json" resolves directly.
func Embedded() fs.FS {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		// fs.Sub only fails on an invalid path literal
		panic(err)
	}
	return sub
}

// Locale is one supported locale and the file holding its messages.
type Locale struct {
	Code     string
	Language string
	File     string
}

// Bundle holds the flattened messages of every configured locale.
type Bundle struct {
	src           fs.FS
	locales       []Locale
	defaultLocale string

	mu       sync.RWMutex
	messages map[string]map[string]string
	version  atomic.Uint64

	// reloadMu orders a reload's read and store against other reloads.
	reloadMu sync.Mutex

	subsMu sync.Mutex
	subs   []func()
}

// NewBundle loads every locale file from src. defaultLocale must be one of locales.
func NewBundle(src fs.FS, locales []Locale, defaultLocale string) (*Bundle, error) {
	if len(locales) == 0 {
		return nil, errors.New("no locales configured")
	}

	b := &Bundle{
		src:           src,
		locales:       append([]Locale(nil), locales...),
		defaultLocale: defaultLocale,
	}
	if !b.known(defaultLocale) {
		return nil, fmt.Errorf("default locale %q: %w", defaultLocale, ErrUnknownLocale)
	}

	messages, err := b.load()
	if err != nil {
		return nil, err
	}
	b.messages = messages
	b.version.Store(1)
	return b, nil
}

// T returns the message for key in locale, falling back to the default locale and
// finally to the key itself so missing translations stay visible.
func (b *Bundle) T(locale, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.messages[locale][key]; ok {
		return msg
	}
	if msg, ok := b.messages[b.defaultLocale][key]; ok {
		return msg
	}
	return key
}

// Has reports whether key has a message registered for locale itself, without fallback.
func (b *Bundle) Has(locale, key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.messages[locale][key]
	return ok
}

// Keys returns the sorted message keys registered for locale.
func (b *Bundle) Keys(locale string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.messages[locale]))
	for k := range b.messages[locale] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Locales returns the configured locales in declaration order.
func (b *Bundle) Locales() []Locale {
	return append([]Locale(nil), b.locales...)
}

// DefaultLocale returns the fallback locale code.
func (b *Bundle) DefaultLocale() string {
	return b.defaultLocale
}

// Version increases every time the catalogs are successfully reloaded.
func (b *Bundle) Version() uint64 {
	return b.version.Load()
}

// Subscribe registers fn to run after every successful reload.
func (b *Bundle) Subscribe(fn func()) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	b.subs = append(b.subs, fn)
}

// Reload re-reads all locale files. On failure the previous messages stay in place.
func (b *Bundle) Reload() error {
	b.reloadMu.Lock()
	messages, err := b.load()
	if err != nil {
		b.reloadMu.Unlock()
		return err
	}

	b.mu.Lock()
	b.messages = messages
	b.mu.Unlock()
	v := b.version.Add(1)
	b.reloadMu.Unlock()
	log.Printf("[i18n] catalogs reloaded (version %d)", v)

	b.subsMu.Lock()
	subs := append([]func(){}, b.subs...)
	b.subsMu.Unlock()
	for _, fn := range subs {
		fn()
	}
	return nil
}

func (b *Bundle) known(code string) bool {
	for _, l := range b.locales {
		if l.Code == code {
			return true
		}
	}
	return false
}

func (b *Bundle) load() (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, len(b.locales))
	for _, l := range b.locales {
		data, err := fs.ReadFile(b.src, l.File)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", l.Code, err)
		}
		msgs, err := parseMessages(data)
		if err != nil {
			return nil, fmt.Errorf("parse locale %s (%s): %w", l.Code, l.File, err)
		}
		out[l.Code] = msgs
	}
	return out, nil
}

// parseMessages flattens nested JSON objects into dotted keys:
// {"showcase": {"tech_blog": "Tech Blog"}} becomes "showcase.tech_blog".
func parseMessages(data []byte) (map[string]string, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if err := flatten("", tree, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("key %q: expected string or object, got %T", key, v)
		}
	}
	return nil
}
