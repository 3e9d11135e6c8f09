package handler

import (
	"context"

	"github.com/bizdir/backend/internal/application/admin"
	"github.com/gin-gonic/gin"
)

// OverviewService builds the admin landing page
type OverviewService interface {
	Overview(ctx context.Context) (*admin.OverviewResponse, error)
}

// AdminHandler serves the admin overview
type AdminHandler struct {
	BaseHandler
	overview OverviewService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(overview OverviewService) *AdminHandler {
	return &AdminHandler{overview: overview}
}

// Overview godoc
// @Summary      Admin overview
// @Description  User, listing, report and subscription counts with last week's traffic
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=admin.OverviewResponse}
// @Security     BearerAuth
// @Router       /admin/overview [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	resp, err := h.overview.Overview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
