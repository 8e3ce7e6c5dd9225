package showcase

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studywithwoody/showcase/internal/i18n"
)

var locales = []i18n.Locale{
	{Code: "en", Language: "en", File: "en.json"},
	{Code: "zhTW", Language: "zh-TW", File: "zhTW.json"},
}

func embeddedBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	b, err := i18n.NewBundle(i18n.Embedded(), locales, "en")
	require.NoError(t, err)
	return b
}

// mapTranslator echoes the key when no message is registered.
type mapTranslator map[string]map[string]string

func (m mapTranslator) T(locale, key string) string {
	if msg, ok := m[locale][key]; ok {
		return msg
	}
	return key
}

func TestProjectsOrder(t *testing.T) {
	want := []string{"tech-blog", "tutor-ai", "cosmology", "architecture", "investment", "physim-hub", "tutoring"}
	b := embeddedBundle(t)

	for _, l := range locales {
		projects := Projects(b, l.Code)
		require.Len(t, projects, 7, l.Code)

		slugs := make([]string, len(projects))
		seen := map[string]bool{}
		for i, p := range projects {
			slugs[i] = p.Slug
			assert.False(t, seen[p.Slug], "duplicate slug %s", p.Slug)
			seen[p.Slug] = true
		}
		assert.Equal(t, want, slugs, l.Code)
	}
	assert.Equal(t, want, Slugs())
}

func TestProjectsFirstRecordEnglish(t *testing.T) {
	b := embeddedBundle(t)

	got := Projects(b, "en")[0]
	assert.Equal(t, Project{
		Slug:        "tech-blog",
		Title:       "Tech Blog",
		Description: b.T("en", "showcase.tech_blog_desc"),
		URL:         "https://techblog.studywithwoody.site",
		Icon:        "i-heroicons-book-open",
	}, got)
}

func TestProjectsInvestmentIsStable(t *testing.T) {
	b := embeddedBundle(t)
	for _, l := range locales {
		p := Projects(b, l.Code)[4]
		assert.Equal(t, "investment", p.Slug)
		assert.Equal(t, "https://investment.studywithwoody.site", p.URL)
	}
}

func TestProjectsIdempotent(t *testing.T) {
	b := embeddedBundle(t)

	first := Projects(b, "zhTW")
	second := Projects(b, "zhTW")
	assert.Equal(t, first, second)

	// each call hands out its own slice
	first[0].Title = "mutated"
	assert.NotEqual(t, "mutated", Projects(b, "zhTW")[0].Title)
}

func TestProjectsLocaleSensitivity(t *testing.T) {
	tr := mapTranslator{
		"en": {
			"showcase.tech_blog":      "Tech Blog",
			"showcase.tech_blog_desc": "Posts",
			"showcase.cosmology":      "Cosmology",
		},
		"zhTW": {
			"showcase.tech_blog":      "技術部落格",
			"showcase.tech_blog_desc": "文章",
			"showcase.cosmology":      "Cosmology",
		},
	}

	en := Projects(tr, "en")
	zh := Projects(tr, "zhTW")
	require.Len(t, zh, len(en))

	for i := range en {
		assert.Equal(t, en[i].Slug, zh[i].Slug)
		assert.Equal(t, en[i].URL, zh[i].URL)
		assert.Equal(t, en[i].Icon, zh[i].Icon)
	}

	// distinct translations differ
	assert.NotEqual(t, en[0].Title, zh[0].Title)
	assert.NotEqual(t, en[0].Description, zh[0].Description)
	// identical translations do not
	assert.Equal(t, en[2].Title, zh[2].Title)
	// unregistered keys surface as the key in both locales
	assert.Equal(t, "showcase.Physim", en[5].Title)
	assert.Equal(t, en[5].Title, zh[5].Title)
}

func TestProjectsEmbeddedLocalesDiffer(t *testing.T) {
	b := embeddedBundle(t)
	en := Projects(b, "en")
	zh := Projects(b, "zhTW")
	for i := range en {
		assert.NotEqual(t, en[i].Title, zh[i].Title, en[i].Slug)
	}
}

func TestTranslationKeysRegistered(t *testing.T) {
	b := embeddedBundle(t)
	keys := TranslationKeys()
	require.Len(t, keys, 14)
	assert.Contains(t, keys, "showcase.Physim")
	assert.Contains(t, keys, "showcase.Physim_desc")

	for _, l := range locales {
		for _, key := range keys {
			assert.True(t, b.Has(l.Code, key), "%s missing %s", l.Code, key)
		}
	}
}

func TestLookup(t *testing.T) {
	b := embeddedBundle(t)

	p, ok := Lookup(b, "en", "physim-hub")
	require.True(t, ok)
	assert.Equal(t, "https://physimhub.studywithwoody.site", p.URL)
	assert.Equal(t, "i-heroicons:academic-cap", p.Icon)

	_, ok = Lookup(b, "en", "missing")
	assert.False(t, ok)
}

func TestProviderSubscribe(t *testing.T) {
	src := fstest.MapFS{
		"en.json":   {Data: []byte(`{"showcase": {"tech_blog": "Tech Blog"}}`)},
		"zhTW.json": {Data: []byte(`{"showcase": {"tech_blog": "技術部落格"}}`)},
	}
	b, err := i18n.NewBundle(src, locales, "en")
	require.NoError(t, err)

	p := NewProvider(b)
	assert.Equal(t, "Tech Blog", p.Projects("en")[0].Title)

	var got []Project
	p.Subscribe("en", func(projects []Project) { got = projects })

	src["en.json"] = &fstest.MapFile{Data: []byte(`{"showcase": {"tech_blog": "Engineering Notes"}}`)}
	require.NoError(t, b.Reload())

	require.Len(t, got, 7)
	assert.Equal(t, "Engineering Notes", got[0].Title)
	assert.Equal(t, "Engineering Notes", p.Projects("en")[0].Title)

	found, ok := p.Lookup("zhTW", "tech-blog")
	require.True(t, ok)
	assert.Equal(t, "技術部落格", found.Title)
}
