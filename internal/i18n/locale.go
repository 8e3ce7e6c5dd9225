package i18n

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter used to pick a locale explicitly.
	LangParam = "lang"
	// CookieName remembers the visitor's locale choice.
	CookieName = "i18n_redirected"
)

// LanguageForCode turns a locale code such as "zhTW" into a BCP 47 tag string
// ("zh-TW"). Codes that are already tags pass through.
func LanguageForCode(code string) string {
	if strings.ContainsAny(code, "-_") {
		return strings.ReplaceAll(code, "_", "-")
	}
	for i, r := range code {
		if i > 0 && unicode.IsUpper(r) {
			return code[:i] + "-" + code[i:]
		}
	}
	return code
}

// Resolver picks the locale for a request. The locale never appears in the URL path.
type Resolver struct {
	locales       []Locale
	defaultLocale string
	// codes is aligned with the matcher's supported tags.
	codes   []string
	matcher language.Matcher
}

// NewResolver builds a resolver over locales. defaultLocale wins ties and is used when
// nothing in the request matches.
func NewResolver(locales []Locale, defaultLocale string) (*Resolver, error) {
	r := &Resolver{locales: locales, defaultLocale: defaultLocale}

	var tags []language.Tag
	add := func(l Locale) error {
		lang := l.Language
		if lang == "" {
			lang = LanguageForCode(l.Code)
		}
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("locale %s: parse language %q: %w", l.Code, lang, err)
		}
		tags = append(tags, tag)
		r.codes = append(r.codes, l.Code)
		return nil
	}

	found := false
	for _, l := range locales {
		if l.Code == defaultLocale {
			if err := add(l); err != nil {
				return nil, err
			}
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("default locale %q: %w", defaultLocale, ErrUnknownLocale)
	}
	for _, l := range locales {
		if l.Code != defaultLocale {
			if err := add(l); err != nil {
				return nil, err
			}
		}
	}

	r.matcher = language.NewMatcher(tags)
	return r, nil
}

// Default returns the fallback locale code.
func (r *Resolver) Default() string {
	return r.defaultLocale
}

// Parse maps a user-supplied value (a locale code or a language tag, any case) to a
// configured locale code.
func (r *Resolver) Parse(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, l := range r.locales {
		if strings.EqualFold(l.Code, value) {
			return l.Code, true
		}
	}
	want := LanguageForCode(value)
	for _, l := range r.locales {
		lang := l.Language
		if lang == "" {
			lang = LanguageForCode(l.Code)
		}
		if strings.EqualFold(lang, want) {
			return l.Code, true
		}
	}
	return "", false
}

// Language returns the BCP 47 tag for a configured code, for Content-Language headers.
func (r *Resolver) Language(code string) string {
	for _, l := range r.locales {
		if l.Code == code && l.Language != "" {
			return l.Language
		}
	}
	return LanguageForCode(code)
}

// Match picks the best configured locale for an Accept-Language header value.
func (r *Resolver) Match(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return r.defaultLocale
	}
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No {
		return r.defaultLocale
	}
	return r.codes[idx]
}

// Resolve determines the locale for req: ?lang, then the cookie, then Accept-Language,
// then the default. The bool reports whether the choice came from ?lang and should be
// stored in the cookie.
func (r *Resolver) Resolve(req *http.Request) (string, bool) {
	if req == nil {
		return r.defaultLocale, false
	}
	if code, ok := r.Parse(req.URL.Query().Get(LangParam)); ok {
		return code, true
	}
	if cookie, err := req.Cookie(CookieName); err == nil {
		if code, ok := r.Parse(cookie.Value); ok {
			return code, false
		}
	}
	if accept := strings.TrimSpace(req.Header.Get("Accept-Language")); accept != "" {
		return r.Match(accept), false
	}
	return r.defaultLocale, false
}

// SetCookie stores the locale choice for a year.
func SetCookie(w http.ResponseWriter, code string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    code,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
