package handler

import (
	"context"

	"github.com/bizdir/backend/internal/application/moderation"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ModerationService is the content report API
type ModerationService interface {
	File(ctx context.Context, reporterID uuid.UUID, input moderation.FileReportInput) (*moderation.ReportResponse, error)
	List(ctx context.Context, input moderation.ListReportsInput) (shared.Paginated[moderation.ReportResponse], error)
	Get(ctx context.Context, reportID uuid.UUID) (*moderation.ReportResponse, error)
	StartInvestigation(ctx context.Context, adminID, reportID uuid.UUID) (*moderation.ReportResponse, error)
	Resolve(ctx context.Context, adminID, reportID uuid.UUID, input moderation.ResolveReportInput) (*moderation.ReportResponse, error)
	Dismiss(ctx context.Context, adminID, reportID uuid.UUID, input moderation.DismissReportInput) (*moderation.ReportResponse, error)
	Stats(ctx context.Context) (*moderation.StatsResponse, error)
}

// ModerationHandler serves reports: filing by users, triage by admins
type ModerationHandler struct {
	BaseHandler
	reports ModerationService
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(reports ModerationService) *ModerationHandler {
	return &ModerationHandler{reports: reports}
}

// File godoc
// @Summary      Report content
// @Description  A user may have one open report per target
// @Tags         moderation
// @Accept       json
// @Produce      json
// @Param        request body moderation.FileReportInput true "Report"
// @Success      201 {object} dto.Response{data=moderation.ReportResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports [post]
func (h *ModerationHandler) File(c *gin.Context) {
	reporterID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req moderation.FileReportInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.reports.File(c.Request.Context(), reporterID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List reports
// @Tags         admin
// @Produce      json
// @Param        status      query string false "Status"
// @Param        target_type query string false "listing, review or user"
// @Param        page        query int    false "Page"
// @Param        page_size   query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]moderation.ReportResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/reports [get]
func (h *ModerationHandler) List(c *gin.Context) {
	var req moderation.ListReportsInput
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.reports.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Stats godoc
// @Summary      Report counts by status
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=moderation.StatsResponse}
// @Security     BearerAuth
// @Router       /admin/reports/stats [get]
func (h *ModerationHandler) Stats(c *gin.Context) {
	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Get godoc
// @Summary      Get report
// @Tags         admin
// @Produce      json
// @Param        id path string true "Report ID"
// @Success      200 {object} dto.Response{data=moderation.ReportResponse}
// @Security     BearerAuth
// @Router       /admin/reports/{id} [get]
func (h *ModerationHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.reports.Get(c.Request.Context(), id)
	h.respond(c, resp, err)
}

// Investigate godoc
// @Summary      Start investigation
// @Tags         admin
// @Produce      json
// @Param        id path string true "Report ID"
// @Success      200 {object} dto.Response{data=moderation.ReportResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reports/{id}/investigate [post]
func (h *ModerationHandler) Investigate(c *gin.Context) {
	adminID, id, ok := h.adminAndID(c)
	if !ok {
		return
	}
	resp, err := h.reports.StartInvestigation(c.Request.Context(), adminID, id)
	h.respond(c, resp, err)
}

// Resolve godoc
// @Summary      Resolve report
// @Description  The chosen action is applied to the target
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string                        true "Report ID"
// @Param        request body moderation.ResolveReportInput true "Resolution"
// @Success      200 {object} dto.Response{data=moderation.ReportResponse}
// @Security     BearerAuth
// @Router       /admin/reports/{id}/resolve [post]
func (h *ModerationHandler) Resolve(c *gin.Context) {
	adminID, id, ok := h.adminAndID(c)
	if !ok {
		return
	}
	var req moderation.ResolveReportInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.reports.Resolve(c.Request.Context(), adminID, id, req)
	h.respond(c, resp, err)
}

// Dismiss godoc
// @Summary      Dismiss report
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string                        true  "Report ID"
// @Param        request body moderation.DismissReportInput false "Note"
// @Success      200 {object} dto.Response{data=moderation.ReportResponse}
// @Security     BearerAuth
// @Router       /admin/reports/{id}/dismiss [post]
func (h *ModerationHandler) Dismiss(c *gin.Context) {
	adminID, id, ok := h.adminAndID(c)
	if !ok {
		return
	}
	var req moderation.DismissReportInput
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.reports.Dismiss(c.Request.Context(), adminID, id, req)
	h.respond(c, resp, err)
}

func (h *ModerationHandler) adminAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	adminID, ok := h.requireUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.pathID(c, "id")
	return adminID, id, ok
}

func (h *ModerationHandler) respond(c *gin.Context, resp *moderation.ReportResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
