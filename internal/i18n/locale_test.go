package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageForCode(t *testing.T) {
	cases := map[string]string{
		"en":    "en",
		"zhTW":  "zh-TW",
		"ptBR":  "pt-BR",
		"zh-TW": "zh-TW",
		"pt_BR": "pt-BR",
	}
	for code, want := range cases {
		assert.Equal(t, want, LanguageForCode(code), code)
	}
}

func TestResolverParse(t *testing.T) {
	r, err := NewResolver(testLocales, "en")
	require.NoError(t, err)

	for in, want := range map[string]string{
		"en":    "en",
		"zhTW":  "zhTW",
		"zhtw":  "zhTW",
		"zh-TW": "zhTW",
		"zh-tw": "zhTW",
	} {
		got, ok := r.Parse(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "  ", "fr", "zh"} {
		_, ok := r.Parse(in)
		assert.False(t, ok, in)
	}
}

func TestResolverMatch(t *testing.T) {
	r, err := NewResolver(testLocales, "en")
	require.NoError(t, err)

	assert.Equal(t, "zhTW", r.Match("zh-TW,zh;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", r.Match("en-GB,en;q=0.9"))
	assert.Equal(t, "en", r.Match("fr-FR"))
	assert.Equal(t, "en", r.Match(";;;invalid"))
}

func TestResolverResolve(t *testing.T) {
	r, err := NewResolver(testLocales, "en")
	require.NoError(t, err)

	newReq := func(target string) *http.Request {
		return httptest.NewRequest(http.MethodGet, target, nil)
	}

	t.Run("query param wins and is persisted", func(t *testing.T) {
		req := newReq("/?lang=zhTW")
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "en"})
		req.Header.Set("Accept-Language", "en")
		code, persist := r.Resolve(req)
		assert.Equal(t, "zhTW", code)
		assert.True(t, persist)
	})

	t.Run("cookie beats accept-language", func(t *testing.T) {
		req := newReq("/")
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "zhTW"})
		req.Header.Set("Accept-Language", "en")
		code, persist := r.Resolve(req)
		assert.Equal(t, "zhTW", code)
		assert.False(t, persist)
	})

	t.Run("invalid query falls through", func(t *testing.T) {
		req := newReq("/?lang=klingon")
		req.Header.Set("Accept-Language", "zh-TW")
		code, persist := r.Resolve(req)
		assert.Equal(t, "zhTW", code)
		assert.False(t, persist)
	})

	t.Run("default", func(t *testing.T) {
		code, _ := r.Resolve(newReq("/"))
		assert.Equal(t, "en", code)
		code, _ = r.Resolve(nil)
		assert.Equal(t, "en", code)
	})
}

func TestResolverDefaultMustExist(t *testing.T) {
	_, err := NewResolver(testLocales, "de")
	assert.ErrorIs(t, err, ErrUnknownLocale)
}

func TestSetCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetCookie(rr, "zhTW")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "zhTW", cookies[0].Value)
	assert.Equal(t, "/", cookies[0].Path)
}
