package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/usecase"
	"storefront/pkg/response"
)

type AdminHandler struct {
	statsUseCase *usecase.StatsUseCase
}

func NewAdminHandler(statsUseCase *usecase.StatsUseCase) *AdminHandler {
	return &AdminHandler{
		statsUseCase: statsUseCase,
	}
}

// GetStats returns the dashboard figures.
func (h *AdminHandler) GetStats(c echo.Context) error {
	stats, err := h.statsUseCase.GetStats(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}
