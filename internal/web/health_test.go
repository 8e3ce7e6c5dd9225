package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fixedVersion uint64

func (v fixedVersion) Version() uint64 { return uint64(v) }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		db   Pinger
		want string
	}{
		{name: "analytics disabled", db: nil, want: "disabled"},
		{name: "analytics up", db: pingFunc(func(context.Context) error { return nil }), want: "up"},
		{name: "analytics down", db: pingFunc(func(context.Context) error { return errors.New("closed") }), want: "down"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			NewHealthHandler("test-service", "1.0.0", fixedVersion(3), tc.db).RegisterRoutes(router)

			req, err := http.NewRequest("GET", "/health", nil)
			if err != nil {
				t.Fatal(err)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if status := rr.Code; status != http.StatusOK {
				t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
			}

			var response HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
				t.Errorf("failed to unmarshal response: %v", err)
			}
			if response.Status != "healthy" {
				t.Errorf("expected status 'healthy', got %s", response.Status)
			}
			if response.Service != "test-service" {
				t.Errorf("expected service 'test-service', got %s", response.Service)
			}
			if response.CatalogVersion != 3 {
				t.Errorf("expected catalog version 3, got %d", response.CatalogVersion)
			}
			if response.Analytics != tc.want {
				t.Errorf("expected analytics %q, got %q", tc.want, response.Analytics)
			}
		})
	}
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	NewHealthHandler("test-service", "1.0.0", fixedVersion(1), nil).RegisterRoutes(router)

	req, err := http.NewRequest("POST", "/healthz", nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusMethodNotAllowed {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusMethodNotAllowed)
	}
}
