package showcase

// Source is a Translator that announces when its translations change.
type Source interface {
	Translator
	Subscribe(fn func())
}

// Provider serves the catalog from a live translation source. Nothing is cached: every
// call rebuilds the list, so a locale switch or a translation reload is always visible
// on the next read.
type Provider struct {
	src Source
}

func NewProvider(src Source) *Provider {
	return &Provider{src: src}
}

func (p *Provider) Projects(locale string) []Project {
	return Projects(p.src, locale)
}

func (p *Provider) Lookup(locale, slug string) (Project, bool) {
	return Lookup(p.src, locale, slug)
}

// Subscribe calls fn with a rebuilt list for locale each time the source changes.
func (p *Provider) Subscribe(locale string, fn func([]Project)) {
	p.src.Subscribe(func() {
		fn(p.Projects(locale))
	})
}
