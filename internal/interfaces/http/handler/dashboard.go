package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/logidocs/backend/internal/application/dashboard"
)

// DashboardService builds the dashboard summary
type DashboardService interface {
	Summary(ctx context.Context) (*dashboard.Summary, error)
}

// DashboardHandler serves the landing page charts
type DashboardHandler struct {
	BaseHandler
	service DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @ID           getDashboardSummary
// @Summary      Dashboard summary
// @Description  Documents by status and type, shipments by trucking status and the latest actions
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[dashboard.Summary]
// @Security     BearerAuth
// @Router       /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
