package handlers

import (
	"dna-erp-po/internal/core/services"
	"dna-erp-po/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Overview returns aggregate purchase order statistics
// @Summary Dashboard overview
// @Description Status counts, pending workload by required role, and overdue orders
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.dashboardService.GetOverview(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard overview")
	}

	return response.Success(c, "Dashboard overview retrieved successfully", overview)
}
