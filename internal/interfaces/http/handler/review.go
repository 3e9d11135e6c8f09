package handler

import (
	"context"

	"github.com/bizdir/backend/internal/application/review"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReviewService is the review API
type ReviewService interface {
	Create(ctx context.Context, authorID, listingID uuid.UUID, input review.CreateReviewInput) (*review.ReviewResponse, error)
	Update(ctx context.Context, authorID, reviewID uuid.UUID, input review.UpdateReviewInput) (*review.ReviewResponse, error)
	Delete(ctx context.Context, authorID, reviewID uuid.UUID) error
	Respond(ctx context.Context, ownerID, reviewID uuid.UUID, input review.RespondInput) (*review.ReviewResponse, error)
	Hide(ctx context.Context, reviewID uuid.UUID) error
	ListForListing(ctx context.Context, listingID uuid.UUID, input review.ListReviewsInput) (shared.Paginated[review.ReviewResponse], error)
	ListMine(ctx context.Context, authorID uuid.UUID, input review.ListReviewsInput) (shared.Paginated[review.ReviewResponse], error)
}

// ReviewHandler serves listing reviews
type ReviewHandler struct {
	BaseHandler
	reviews ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ListForListing godoc
// @Summary      Listing reviews
// @Description  Published reviews, newest first
// @Tags         reviews
// @Produce      json
// @Param        id        path  string true  "Listing ID"
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]review.ReviewResponse,meta=dto.Meta}
// @Router       /listings/{id}/reviews [get]
func (h *ReviewHandler) ListForListing(c *gin.Context) {
	listingID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req review.ListReviewsInput
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.reviews.ListForListing(c.Request.Context(), listingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Create godoc
// @Summary      Write review
// @Description  One review per user and listing. Owners cannot review their own listing.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Listing ID"
// @Param        request body review.CreateReviewInput true "Review"
// @Success      201 {object} dto.Response{data=review.ReviewResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id}/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	authorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	listingID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req review.CreateReviewInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.reviews.Create(c.Request.Context(), authorID, listingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListMine godoc
// @Summary      My reviews
// @Tags         reviews
// @Produce      json
// @Param        page      query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]review.ReviewResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /me/reviews [get]
func (h *ReviewHandler) ListMine(c *gin.Context) {
	authorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req review.ListReviewsInput
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.reviews.ListMine(c.Request.Context(), authorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Update godoc
// @Summary      Edit review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Review ID"
// @Param        request body review.UpdateReviewInput true "Review"
// @Success      200 {object} dto.Response{data=review.ReviewResponse}
// @Security     BearerAuth
// @Router       /reviews/{id} [put]
func (h *ReviewHandler) Update(c *gin.Context) {
	authorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req review.UpdateReviewInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.reviews.Update(c.Request.Context(), authorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete review
// @Tags         reviews
// @Param        id path string true "Review ID"
// @Success      204
// @Security     BearerAuth
// @Router       /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	authorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), authorID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Respond godoc
// @Summary      Reply to review
// @Description  The listing owner may reply once; a second reply replaces the first
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Review ID"
// @Param        request body review.RespondInput true "Reply"
// @Success      200 {object} dto.Response{data=review.ReviewResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reviews/{id}/response [post]
func (h *ReviewHandler) Respond(c *gin.Context) {
	ownerID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req review.RespondInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.reviews.Respond(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Hide godoc
// @Summary      Hide review
// @Tags         admin
// @Param        id path string true "Review ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/hide [post]
func (h *ReviewHandler) Hide(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reviews.Hide(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
