package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/studywithwoody/showcase/internal/i18n"
)

// Site modules that can be switched on through SITE_MODULES.
const (
	ModuleI18n      = "i18n"
	ModuleCORS      = "cors"
	ModuleWatch     = "watch"
	ModuleAnalytics = "analytics"
)

var knownModules = []string{ModuleI18n, ModuleCORS, ModuleWatch, ModuleAnalytics}

type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Analytics AnalyticsConfig
	App       AppConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	CORSOrigins []string
}

type SiteConfig struct {
	DefaultLocale string
	Locales       []i18n.Locale
	// LocaleDir overrides the embedded translation files when set.
	LocaleDir  string
	Modules    []string
	Stylesheet string
}

type AnalyticsConfig struct {
	DatabasePath string
	Retention    time.Duration
}

type AppConfig struct {
	Version string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	locales, err := ParseLocales(getEnv("SITE_LOCALES", "en:en.json,zhTW:zhTW.json"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", ""),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		Site: SiteConfig{
			DefaultLocale: getEnv("SITE_DEFAULT_LOCALE", "en"),
			Locales:       locales,
			LocaleDir:     getEnv("LOCALE_DIR", ""),
			Modules:       splitList(getEnv("SITE_MODULES", "i18n,cors,watch")),
			Stylesheet:    getEnv("SITE_CSS", "/static/css/main.css"),
		},
		Analytics: AnalyticsConfig{
			DatabasePath: getEnv("ANALYTICS_DB", "showcase.db"),
			Retention:    time.Duration(getEnvAsInt("ANALYTICS_RETENTION_DAYS", 365)) * 24 * time.Hour,
		},
		App: AppConfig{
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Site.Locales) == 0 {
		return fmt.Errorf("SITE_LOCALES must list at least one locale")
	}

	seen := make(map[string]bool, len(c.Site.Locales))
	for _, l := range c.Site.Locales {
		if seen[l.Code] {
			return fmt.Errorf("SITE_LOCALES: duplicate locale %q", l.Code)
		}
		seen[l.Code] = true
	}
	if !seen[c.Site.DefaultLocale] {
		return fmt.Errorf("SITE_DEFAULT_LOCALE %q is not in SITE_LOCALES", c.Site.DefaultLocale)
	}

	for _, m := range c.Site.Modules {
		if !contains(knownModules, m) {
			return fmt.Errorf("SITE_MODULES: unknown module %q", m)
		}
	}

	if c.Enabled(ModuleAnalytics) {
		if c.Analytics.DatabasePath == "" {
			return fmt.Errorf("ANALYTICS_DB is required when analytics is enabled")
		}
		if c.Analytics.Retention <= 0 {
			return fmt.Errorf("ANALYTICS_RETENTION_DAYS must be positive")
		}
	}

	return nil
}

// Enabled reports whether module is listed in SITE_MODULES.
func (c *Config) Enabled(module string) bool {
	return contains(c.Site.Modules, module)
}

// ParseLocales reads "code:file" pairs separated by commas. The file defaults to
// "<code>.json".
func ParseLocales(value string) ([]i18n.Locale, error) {
	var out []i18n.Locale
	for _, item := range splitList(value) {
		code, file, _ := strings.Cut(item, ":")
		code = strings.TrimSpace(code)
		file = strings.TrimSpace(file)
		if code == "" {
			return nil, fmt.Errorf("SITE_LOCALES: empty locale code in %q", item)
		}
		if file == "" {
			file = code + ".json"
		}
		out = append(out, i18n.Locale{
			Code:     code,
			Language: i18n.LanguageForCode(code),
			File:     file,
		})
	}
	return out, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
