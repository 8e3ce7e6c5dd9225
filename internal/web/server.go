// Package web serves the showcase page and its JSON API.
package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/studywithwoody/showcase/internal/analytics"
	"github.com/studywithwoody/showcase/internal/i18n"
	"github.com/studywithwoody/showcase/internal/showcase"
)

const serviceName = "showcase"

type Options struct {
	Version    string
	Stylesheet string
	// Negotiate picks the locale per request; otherwise the default locale is always used.
	Negotiate   bool
	CORS        bool
	CORSOrigins []string
}

type Server struct {
	bundle   *i18n.Bundle
	resolver *i18n.Resolver
	projects *showcase.Provider
	tracker  *analytics.Tracker
	opts     Options
}

// New wires the HTTP layer. tracker may be nil to disable analytics.
func New(bundle *i18n.Bundle, resolver *i18n.Resolver, projects *showcase.Provider, tracker *analytics.Tracker, opts Options) *Server {
	return &Server{
		bundle:   bundle,
		resolver: resolver,
		projects: projects,
		tracker:  tracker,
		opts:     opts,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() (*gin.Engine, error) {
	tmpl, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), s.localeMiddleware())
	if s.tracker != nil {
		r.Use(s.visitorTracking())
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", filesOnlyFS{http.FS(static)})

	var db Pinger
	if s.tracker != nil {
		db = s.tracker
	}
	NewHealthHandler(serviceName, s.opts.Version, s.bundle, db).RegisterRoutes(r)

	r.GET("/", s.index)
	r.GET("/go/:slug", s.redirect)

	api := r.Group("/api")
	if s.opts.CORS {
		api.Use(cors.New(corsConfig(s.opts.CORSOrigins)))
		// preflight requests need a route so the group middleware runs
		api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
	api.GET("/projects", s.listProjects)
	api.GET("/projects/:slug", s.getProject)
	api.GET("/locales", s.listLocales)
	if s.tracker != nil {
		api.GET("/stats", s.stats)
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Accept", "Accept-Language", "If-None-Match"},
		ExposeHeaders: []string{"ETag", "Content-Language", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

type pageText struct {
	Title    string
	Subtitle string
	Heading  string
	Visit    string
	Language string
	Footer   string
}

type LocaleOption struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Label    string `json:"label"`
	Active   bool   `json:"active"`
}

type ProjectsResponse struct {
	Locale   string             `json:"locale"`
	Projects []showcase.Project `json:"projects"`
}

type LocalesResponse struct {
	Default string         `json:"default"`
	Active  string         `json:"active"`
	Locales []LocaleOption `json:"locales"`
}

func (s *Server) localeOptions(active string) []LocaleOption {
	locales := s.bundle.Locales()
	out := make([]LocaleOption, 0, len(locales))
	for _, l := range locales {
		out = append(out, LocaleOption{
			Code:     l.Code,
			Language: s.resolver.Language(l.Code),
			// labels are written in their own language
			Label:  s.bundle.T(l.Code, "locale."+l.Code),
			Active: l.Code == active,
		})
	}
	return out
}

func (s *Server) index(c *gin.Context) {
	locale := Locale(c)
	t := func(key string) string { return s.bundle.T(locale, key) }

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Language":   s.resolver.Language(locale),
		"Stylesheet": s.opts.Stylesheet,
		"Locales":    s.localeOptions(locale),
		"Projects":   s.projects.Projects(locale),
		// Outbound links go through /go/ only when there is something to count.
		"TrackClicks": s.tracker != nil,
		"Text": pageText{
			Title:    t("site.title"),
			Subtitle: t("site.subtitle"),
			Heading:  t("showcase.heading"),
			Visit:    t("showcase.visit"),
			Language: t("nav.language"),
			Footer:   t("site.footer"),
		},
	})
}

func (s *Server) etag(locale string) string {
	return fmt.Sprintf(`W/"%s-%d"`, locale, s.bundle.Version())
}

// notModified sets the ETag header and answers 304 when If-None-Match already
// names it. Comparison is weak, as for GET requests.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	header := c.GetHeader("If-None-Match")
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(etag, "W/") {
			c.Status(http.StatusNotModified)
			return true
		}
	}
	return false
}

func (s *Server) listProjects(c *gin.Context) {
	locale := Locale(c)
	if notModified(c, s.etag(locale)) {
		return
	}

	c.JSON(http.StatusOK, ProjectsResponse{
		Locale:   locale,
		Projects: s.projects.Projects(locale),
	})
}

func (s *Server) getProject(c *gin.Context) {
	p, ok := s.projects.Lookup(Locale(c), c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if notModified(c, s.etag(Locale(c))) {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) listLocales(c *gin.Context) {
	locale := Locale(c)
	c.JSON(http.StatusOK, LocalesResponse{
		Default: s.resolver.Default(),
		Active:  locale,
		Locales: s.localeOptions(locale),
	})
}

func (s *Server) redirect(c *gin.Context) {
	slug := c.Param("slug")
	p, ok := s.projects.Lookup(Locale(c), slug)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	if s.tracker != nil && c.GetHeader("DNT") != "1" {
		if err := s.tracker.RecordClick(c.Request.Context(), slug); err != nil {
			log.Printf("[analytics] %v", err)
		}
	}
	c.Redirect(http.StatusFound, p.URL)
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.tracker.Stats(c.Request.Context())
	if err != nil {
		log.Printf("Error loading stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
