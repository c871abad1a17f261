package handler

import (
	"github.com/gin-gonic/gin"

	"studymate/internal/app"
	"studymate/internal/transport/http/response"
)

type DashboardHandler struct {
	dashboard *app.DashboardService
}

func NewDashboardHandler(dashboard *app.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		writeError(c, "dashboard stats", err)
		return
	}
	response.OK(c, stats)
}

func (h *DashboardHandler) Activity(c *gin.Context) {
	entries, err := h.dashboard.RecentActivity(c.Request.Context())
	if err != nil {
		writeError(c, "dashboard activity", err)
		return
	}
	response.OK(c, entries)
}
