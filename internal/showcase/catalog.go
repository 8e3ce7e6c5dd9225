// Package showcase builds the ordered list of project cards shown on the site.
package showcase

// Project is a single showcase card.
type Project struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Icon        string `json:"icon"`
}

// Translator resolves a translation key for a locale.
type Translator interface {
	T(locale, key string) string
}

type entry struct {
	slug string
	// key is the title key; the description key appends "_desc".
	key  string
	url  string
	icon string
}

// Keys must match the translation files byte for byte, including "showcase.Physim".
var catalog = [...]entry{
	{slug: "tech-blog", key: "showcase.tech_blog", url: "https://techblog.studywithwoody.site", icon: "i-heroicons-book-open"},
	{slug: "tutor-ai", key: "showcase.teaching", url: "https://tutorai.studywithwoody.site", icon: "i-heroicons-academic-cap"},
	{slug: "cosmology", key: "showcase.cosmology", url: "https://cosmology.studywithwoody.site", icon: "i-heroicons:sparkles-solid"},
	{slug: "architecture", key: "showcase.architecture", url: "https://architecture.studywithwoody.site", icon: "i-heroicons:building-office"},
	{slug: "investment", key: "showcase.investment", url: "https://investment.studywithwoody.site", icon: "i-heroicons:presentation-chart-line"},
	{slug: "physim-hub", key: "showcase.Physim", url: "https://physimhub.studywithwoody.site", icon: "i-heroicons:academic-cap"},
	{slug: "tutoring", key: "showcase.tutoring", url: "https://tutoring.ad.studywithwoody.site", icon: "i-heroicons:academic-cap"},
}

// Projects returns a fresh slice of every project in display order, with title and
// description translated for locale. Callers may modify the result.
func Projects(t Translator, locale string) []Project {
	out := make([]Project, len(catalog))
	for i, e := range catalog {
		out[i] = Project{
			Slug:        e.slug,
			Title:       t.T(locale, e.key),
			Description: t.T(locale, e.key+"_desc"),
			URL:         e.url,
			Icon:        e.icon,
		}
	}
	return out
}

// Lookup returns the project with the given slug.
func Lookup(t Translator, locale, slug string) (Project, bool) {
	for _, p := range Projects(t, locale) {
		if p.Slug == slug {
			return p, true
		}
	}
	return Project{}, false
}

// Slugs lists project slugs in display order.
func Slugs() []string {
	out := make([]string, len(catalog))
	for i, e := range catalog {
		out[i] = e.slug
	}
	return out
}

// TranslationKeys lists every key the catalog asks the translator for.
func TranslationKeys() []string {
	out := make([]string, 0, 2*len(catalog))
	for _, e := range catalog {
		out = append(out, e.key, e.key+"_desc")
	}
	return out
}
