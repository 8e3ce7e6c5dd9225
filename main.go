package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studywithwoody/showcase/internal/analytics"
	"github.com/studywithwoody/showcase/internal/config"
	"github.com/studywithwoody/showcase/internal/i18n"
	"github.com/studywithwoody/showcase/internal/showcase"
	"github.com/studywithwoody/showcase/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var catalogs fs.FS = i18n.Embedded()
	if cfg.Site.LocaleDir != "" {
		catalogs = os.DirFS(cfg.Site.LocaleDir)
	}

	bundle, err := i18n.NewBundle(catalogs, cfg.Site.Locales, cfg.Site.DefaultLocale)
	if err != nil {
		return err
	}
	resolver, err := i18n.NewResolver(cfg.Site.Locales, cfg.Site.DefaultLocale)
	if err != nil {
		return err
	}

	projects := showcase.NewProvider(bundle)
	projects.Subscribe(cfg.Site.DefaultLocale, func(list []showcase.Project) {
		log.Printf("Showcase refreshed: %d projects (%s)", len(list), cfg.Site.DefaultLocale)
	})

	if cfg.Enabled(config.ModuleWatch) && cfg.Site.LocaleDir != "" {
		if err := bundle.Watch(ctx, cfg.Site.LocaleDir); err != nil {
			return err
		}
	}

	var tracker *analytics.Tracker
	if cfg.Enabled(config.ModuleAnalytics) {
		tracker, err = analytics.Open(ctx, cfg.Analytics.DatabasePath, cfg.Analytics.Retention)
		if err != nil {
			return err
		}
		defer tracker.Close()
		go tracker.RunCleanup(ctx, 24*time.Hour)
	}

	router, err := web.New(bundle, resolver, projects, tracker, web.Options{
		Version:     cfg.App.Version,
		Stylesheet:  cfg.Site.Stylesheet,
		Negotiate:   cfg.Enabled(config.ModuleI18n),
		CORS:        cfg.Enabled(config.ModuleCORS),
		CORSOrigins: cfg.Server.CORSOrigins,
	}).Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Showcase listening on :%s (locales: %d, default: %s)", cfg.Server.Port, len(cfg.Site.Locales), cfg.Site.DefaultLocale)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Println("Shutting down")
	return srv.Shutdown(shutdownCtx)
}
