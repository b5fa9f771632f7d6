package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecoleplus/mobile-api/internal/dto"
	"github.com/ecoleplus/mobile-api/internal/middleware"
	"github.com/ecoleplus/mobile-api/pkg/response"
)

type dashboardService interface {
	Get(ctx context.Context, studentID int64) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler serves the aggregated student dashboard.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get godoc
// @Summary Student dashboard summary
// @Tags Dashboard
// @Produce json
// @Param student_id query int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /student/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	studentID, err := studentIDFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Get(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.MarkCacheHit(c, cacheHit)
	meta := middleware.Meta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}
