package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bizdir/backend/internal/application/analytics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalyticsService is the tracking and dashboard API
type AnalyticsService interface {
	TrackPageView(ctx context.Context, input analytics.TrackPageViewInput, userID *uuid.UUID) error
	SiteDashboard(ctx context.Context, input analytics.DashboardInput) (*analytics.SummaryResponse, error)
	OwnerDashboard(ctx context.Context, ownerID uuid.UUID, input analytics.DashboardInput) (*analytics.SummaryResponse, error)
	ExportSitePDF(ctx context.Context, input analytics.DashboardInput) ([]byte, error)
}

// AnalyticsHandler serves page view tracking and dashboards
type AnalyticsHandler struct {
	BaseHandler
	analytics AnalyticsService
	now       func() time.Time
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(svc AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: svc, now: time.Now}
}

// Track godoc
// @Summary      Track page view
// @Description  Anonymous clients identify themselves with visitor_id or the X-Visitor-ID header
// @Tags         analytics
// @Accept       json
// @Param        request body analytics.TrackPageViewInput true "Page view"
// @Success      202
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /analytics/events [post]
func (h *AnalyticsHandler) Track(c *gin.Context) {
	var req analytics.TrackPageViewInput
	if !h.bindJSON(c, &req) {
		return
	}
	if req.VisitorID == "" {
		req.VisitorID = c.GetHeader(VisitorIDHeader)
	}
	if err := h.analytics.TrackPageView(c.Request.Context(), req, optionalUser(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// OwnerDashboard godoc
// @Summary      My listings' analytics
// @Description  Views, searches and top listings across the caller's listings
// @Tags         analytics
// @Produce      json
// @Param        period query string false "7d, 30d or 90d"
// @Param        from   query string false "Start date (YYYY-MM-DD)"
// @Param        to     query string false "End date (YYYY-MM-DD), inclusive"
// @Success      200 {object} dto.Response{data=analytics.SummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/dashboard [get]
func (h *AnalyticsHandler) OwnerDashboard(c *gin.Context) {
	ownerID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req analytics.DashboardInput
	if !h.bindQuery(c, &req) {
		return
	}
	summary, err := h.analytics.OwnerDashboard(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// SiteDashboard godoc
// @Summary      Site analytics
// @Tags         admin
// @Produce      json
// @Param        period query string false "7d, 30d or 90d"
// @Param        from   query string false "Start date (YYYY-MM-DD)"
// @Param        to     query string false "End date (YYYY-MM-DD), inclusive"
// @Success      200 {object} dto.Response{data=analytics.SummaryResponse}
// @Security     BearerAuth
// @Router       /admin/analytics/dashboard [get]
func (h *AnalyticsHandler) SiteDashboard(c *gin.Context) {
	var req analytics.DashboardInput
	if !h.bindQuery(c, &req) {
		return
	}
	summary, err := h.analytics.SiteDashboard(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ExportPDF godoc
// @Summary      Export site analytics as PDF
// @Tags         admin
// @Produce      application/pdf
// @Param        period query string false "7d, 30d or 90d"
// @Param        from   query string false "Start date (YYYY-MM-DD)"
// @Param        to     query string false "End date (YYYY-MM-DD), inclusive"
// @Success      200 {file} binary
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/analytics/export [get]
func (h *AnalyticsHandler) ExportPDF(c *gin.Context) {
	var req analytics.DashboardInput
	if !h.bindQuery(c, &req) {
		return
	}
	pdf, err := h.analytics.ExportSitePDF(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filename := fmt.Sprintf("site-analytics-%s.pdf", h.now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
