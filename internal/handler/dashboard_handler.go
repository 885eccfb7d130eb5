package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardnest/cardnest-api/internal/service"
	"github.com/cardnest/cardnest-api/pkg/response"
)

// DashboardHandler exposes the institute admin dashboard endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
	metrics   *service.MetricsService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, metrics *service.MetricsService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, metrics: metrics}
}

// Stats godoc
// @Summary Institution dashboard aggregates
// @Description Returns roster, payment and workflow tallies. X-Cache reports whether the payload was served from cache.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /institute/dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, cached, err := h.dashboard.Stats(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCacheOperation(cached)
	if cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
