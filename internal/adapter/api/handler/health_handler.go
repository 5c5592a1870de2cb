package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

var healthHandler *HealthHandler

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{
		store: store,
	}
}

func SetupHealthHandler(store Pinger) {
	healthHandler = NewHealthHandler(store)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	status := map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	}
	if h.store == nil {
		return c.JSON(http.StatusOK, status)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		status["status"] = "Store unreachable"
		status["error"] = err.Error()
		return c.JSON(http.StatusServiceUnavailable, status)
	}

	status["store"] = "ok"
	return c.JSON(http.StatusOK, status)
}
