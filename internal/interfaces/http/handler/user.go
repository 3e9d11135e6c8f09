package handler

import (
	"context"

	"github.com/bizdir/backend/internal/application/identity"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserService is the admin account API
type UserService interface {
	List(ctx context.Context, input identity.ListUsersInput) (shared.Paginated[identity.UserResponse], error)
	Get(ctx context.Context, userID uuid.UUID) (*identity.UserResponse, error)
	Suspend(ctx context.Context, userID uuid.UUID, reason string) (*identity.UserResponse, error)
	Reactivate(ctx context.Context, userID uuid.UUID) (*identity.UserResponse, error)
}

// UserHandler serves admin user management
type UserHandler struct {
	BaseHandler
	users UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Param        q         query string false "Email or name contains"
// @Param        role      query string false "Role"
// @Param        status    query string false "Status"
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]identity.UserResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var req identity.ListUsersInput
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.users.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Get godoc
// @Summary      Get user
// @Tags         admin
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Suspend godoc
// @Summary      Suspend user
// @Description  Administrators cannot be suspended
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string                    true  "User ID"
// @Param        request body identity.SuspendUserInput false "Reason"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id}/suspend [post]
func (h *UserHandler) Suspend(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req identity.SuspendUserInput
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	user, err := h.users.Suspend(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Reactivate godoc
// @Summary      Reactivate user
// @Tags         admin
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Security     BearerAuth
// @Router       /admin/users/{id}/reactivate [post]
func (h *UserHandler) Reactivate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Reactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
