package web

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studywithwoody/showcase/internal/analytics"
	"github.com/studywithwoody/showcase/internal/i18n"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
	localeKey       = "locale"
)

// RequestID reuses an incoming X-Request-Id or generates one, echoes it back, and logs
// each request once it completes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if strings.TrimSpace(rid) == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)

		start := time.Now()
		c.Next()

		log.Printf(
			"[req] id=%s method=%s path=%s status=%d latency=%s locale=%s",
			rid,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			c.GetString(localeKey),
		)
	}
}

// Locale returns the locale chosen for the request by the locale middleware.
func Locale(c *gin.Context) string {
	return c.GetString(localeKey)
}

func (s *Server) localeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		code := s.resolver.Default()
		if s.opts.Negotiate {
			var persist bool
			code, persist = s.resolver.Resolve(c.Request)
			if persist {
				i18n.SetCookie(c.Writer, code)
			}
			c.Header("Vary", "Accept-Language, Cookie")
		}
		c.Set(localeKey, code)
		c.Header("Content-Language", s.resolver.Language(code))
		c.Next()
	}
}

// visitorTracking records page views with hashed IPs in the background.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || analytics.Skip(path) {
			c.Next()
			return
		}

		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		ip, userAgent, locale := c.ClientIP(), c.GetHeader("User-Agent"), Locale(c)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.tracker.RecordVisit(ctx, ip, userAgent, path, locale); err != nil {
				log.Printf("[analytics] %v", err)
			}
		}()
		c.Next()
	}
}
