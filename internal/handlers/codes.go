package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mauv0809/twse-codes/internal/schema"
	"github.com/mauv0809/twse-codes/internal/store"
)

// ErrorResponse is the JSON shape of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RefreshResponse reports the outcome of a forced refresh.
type RefreshResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
}

// GetCodes handles GET /codes.
// Query params:
// - category: category identifier or "all" (default: all)
// - symbols: if "true", return only the symbol column
func (h *Handler) GetCodes(c echo.Context) error {
	filter, err := schema.ParseFilter(c.QueryParam("category"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	records, err := h.store.Query(c.Request().Context(), filter)
	if err != nil {
		if errors.Is(err, store.ErrNoData) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		}
		h.log.Errorw("query failed", "filter", filter.Key(), "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	if c.QueryParam("symbols") == "true" {
		return c.JSON(http.StatusOK, schema.Symbols(records))
	}
	return c.JSON(http.StatusOK, records)
}

// Refresh handles POST /admin/refresh: force a full fetch-and-persist cycle.
func (h *Handler) Refresh(c echo.Context) error {
	start := time.Now()

	records, err := h.refresher.Refresh(c.Request().Context())
	if err != nil {
		if len(records) == 0 {
			h.log.Errorw("refresh failed", "error", err)
			return c.JSON(http.StatusBadGateway, RefreshResponse{
				Success: false,
				Message: fmt.Sprintf("refresh failed: %v", err),
			})
		}
		h.log.Warnw("refresh fetched data but persisting failed", "error", err)
	}

	elapsed := time.Since(start)
	h.log.Infow("refresh complete", "records", len(records), "elapsed", elapsed.String())

	return c.JSON(http.StatusOK, RefreshResponse{
		Success: true,
		Message: fmt.Sprintf("refreshed %d records", len(records)),
		Count:   len(records),
		Elapsed: elapsed.String(),
	})
}

// Status handles GET /admin/status: persisted dataset counts.
func (h *Handler) Status(c echo.Context) error {
	if h.status == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "no database connection"})
	}

	ctx := c.Request().Context()
	total, err := h.status.CodeCount(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
	byCategory, err := h.status.CountByCategory(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"records":     total,
		"by_category": byCategory,
	})
}
