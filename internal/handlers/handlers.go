// Package handlers exposes the listing dataset over HTTP.
package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mauv0809/twse-codes/internal/schema"
)

// CodesStore answers listing queries.
type CodesStore interface {
	Query(ctx context.Context, filter schema.Filter) ([]schema.Record, error)
}

// Refresher forces a full fetch-and-persist cycle.
type Refresher interface {
	Refresh(ctx context.Context) ([]schema.Record, error)
}

// StatusReader reports persisted dataset counts.
type StatusReader interface {
	CodeCount(ctx context.Context) (int, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
}

// Handler wires the store and orchestrator into echo routes.
type Handler struct {
	store     CodesStore
	refresher Refresher
	status    StatusReader // nil when running without a database
	log       *zap.SugaredLogger
}

// New creates a handler.
func New(codes CodesStore, refresher Refresher, status StatusReader, log *zap.SugaredLogger) *Handler {
	return &Handler{
		store:     codes,
		refresher: refresher,
		status:    status,
		log:       log,
	}
}

// Register attaches all routes to the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/codes", h.GetCodes)

	admin := e.Group("/admin")
	admin.GET("/status", h.Status)
	admin.POST("/refresh", h.Refresh)
}

// Health returns application health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
