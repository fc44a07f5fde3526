package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/internal/models"
	"github.com/cardfolio/cardfolio/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	snapshots *services.SnapshotService
}

func NewDashboardHandler(dashboard *services.DashboardService, snapshots *services.SnapshotService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, snapshots: snapshots}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetHistory returns the recorded value snapshots for a period. Query
// parameter period is one of week, month, year or all (default month).
func (h *DashboardHandler) GetHistory(c *gin.Context) {
	period := c.DefaultQuery("period", "month")

	snapshots, err := h.snapshots.History(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ValueHistoryResponse{
		Period:    period,
		Snapshots: snapshots,
	})
}
