package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Service        string    `json:"service"`
	Version        string    `json:"version"`
	CatalogVersion uint64    `json:"catalog_version"`
	Analytics      string    `json:"analytics"`
}

// Pinger is satisfied by the analytics tracker.
type Pinger interface {
	Ping(ctx context.Context) error
}

type versioner interface {
	Version() uint64
}

type HealthHandler struct {
	serviceName string
	version     string
	catalog     versioner
	db          Pinger
}

// NewHealthHandler builds the health endpoint. db may be nil when analytics is off.
func NewHealthHandler(serviceName, version string, catalog versioner, db Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		catalog:     catalog,
		db:          db,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.db.Ping(pingCtx); err != nil {
			dbStatus = "down"
		} else {
			dbStatus = "up"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:         "healthy",
		Timestamp:      time.Now().UTC(),
		Service:        h.serviceName,
		Version:        h.version,
		CatalogVersion: h.catalog.Version(),
		Analytics:      dbStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
