package handler

import (
	"context"

	"github.com/bizdir/backend/internal/application/listing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListingService is the listing API used by the listing handler
type ListingService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input listing.ListingInput) (*listing.ListingResponse, error)
	Update(ctx context.Context, ownerID, listingID uuid.UUID, input listing.ListingInput) (*listing.ListingResponse, error)
	Submit(ctx context.Context, ownerID, listingID uuid.UUID) (*listing.ListingResponse, error)
	Archive(ctx context.Context, viewer listing.Viewer, listingID uuid.UUID) (*listing.ListingResponse, error)
	Approve(ctx context.Context, listingID uuid.UUID) (*listing.ListingResponse, error)
	Reject(ctx context.Context, listingID uuid.UUID, input listing.RejectInput) (*listing.ListingResponse, error)
	Reinstate(ctx context.Context, listingID uuid.UUID) (*listing.ListingResponse, error)
	Get(ctx context.Context, idOrSlug string, viewer listing.Viewer) (*listing.ListingResponse, error)
	RecordView(ctx context.Context, resp *listing.ListingResponse, viewer listing.Viewer, query string)
	Search(ctx context.Context, input listing.SearchInput, viewer listing.Viewer) (shared.Paginated[listing.ListingResponse], error)
	ListMine(ctx context.Context, ownerID uuid.UUID, input listing.ListInput) (shared.Paginated[listing.ListingResponse], error)
	ListPending(ctx context.Context, input listing.ListInput) (shared.Paginated[listing.ListingResponse], error)
	ListAll(ctx context.Context, input listing.ListInput) (shared.Paginated[listing.ListingResponse], error)
	PhotoUploadURL(ctx context.Context, ownerID, listingID uuid.UUID, input listing.PhotoUploadInput) (*listing.PhotoUploadResponse, error)
	AttachPhoto(ctx context.Context, ownerID, listingID uuid.UUID, input listing.AttachPhotoInput) (*listing.ListingResponse, error)
	RemovePhoto(ctx context.Context, ownerID, listingID uuid.UUID, key string) (*listing.ListingResponse, error)
}

// ListingHandler serves public search, owner management and moderation of listings
type ListingHandler struct {
	BaseHandler
	listings ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listings ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// Search godoc
// @Summary      Search listings
// @Description  Full-text search over active listings
// @Tags         listings
// @Produce      json
// @Param        q          query string   false "Search text"
// @Param        category   query string   false "Category"
// @Param        city       query string   false "City"
// @Param        tags       query []string false "Tags" collectionFormat(multi)
// @Param        min_rating query number   false "Minimum average rating"
// @Param        sort       query string   false "relevance, rating, newest or featured"
// @Param        page       query int      false "Page"
// @Param        page_size  query int      false "Page size"
// @Success      200 {object} dto.Response{data=[]listing.ListingResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /listings [get]
func (h *ListingHandler) Search(c *gin.Context) {
	var req listing.SearchInput
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.listings.Search(c.Request.Context(), req, viewerOf(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Get godoc
// @Summary      Get listing
// @Description  Looks a listing up by ID or slug. Views by anyone but the owner are counted.
// @Tags         listings
// @Produce      json
// @Param        id path  string true  "Listing ID or slug"
// @Param        q  query string false "Search that led to this view"
// @Success      200 {object} dto.Response{data=listing.ListingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /listings/{id} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	viewer := viewerOf(c)
	resp, err := h.listings.Get(c.Request.Context(), c.Param("id"), viewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.listings.RecordView(c.Request.Context(), resp, viewer, c.Query("q"))
	h.Success(c, resp)
}

// ListMine godoc
// @Summary      My listings
// @Tags         listings
// @Produce      json
// @Param        status    query string false "Status"
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]listing.ListingResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /me/listings [get]
func (h *ListingHandler) ListMine(c *gin.Context) {
	ownerID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req listing.ListInput
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.listings.ListMine(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Create godoc
// @Summary      Create listing
// @Description  Creates a draft. The caller becomes a business owner.
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        request body listing.ListingInput true "Listing"
// @Success      201 {object} dto.Response{data=listing.ListingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/listings [post]
func (h *ListingHandler) Create(c *gin.Context) {
	ownerID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req listing.ListingInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.listings.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update godoc
// @Summary      Update listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        id      path string               true "Listing ID"
// @Param        request body listing.ListingInput true "Listing"
// @Success      200 {object} dto.Response{data=listing.ListingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/listings/{id} [put]
func (h *ListingHandler) Update(c *gin.Context) {
	ownerID, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req listing.ListingInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.listings.Update(c.Request.Context(), ownerID, id, req)
	h.respond(c, resp, err)
}

// Submit godoc
// @Summary      Submit listing for review
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=listing.ListingResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/listings/{id}/submit [post]
func (h *ListingHandler) Submit(c *gin.Context) {
	ownerID, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	resp, err := h.listings.Submit(c.Request.Context(), ownerID, id)
	h.respond(c, resp, err)
}

// Archive godoc
// @Summary      Archive listing
// @Description  Owners archive their own listings; admins may archive any
// @Tags         listings
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=listing.ListingResponse}
// @Security     BearerAuth
// @Router       /me/listings/{id}/archive [post]
func (h *ListingHandler) Archive(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.listings.Archive(c.Request.Context(), viewerOf(c), id)
	h.respond(c, resp, err)
}

// PhotoUploadURL godoc
// @Summary      Presign photo upload
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Listing ID"
// @Param        request body listing.PhotoUploadInput true "File"
// @Success      200 {object} dto.Response{data=listing.PhotoUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/listings/{id}/photos/upload-url [post]
func (h *ListingHandler) PhotoUploadURL(c *gin.Context) {
	ownerID, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req listing.PhotoUploadInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.listings.PhotoUploadURL(c.Request.Context(), ownerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AttachPhoto godoc
// @Summary      Attach uploaded photo
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Listing ID"
// @Param        request body listing.AttachPhotoInput true "Photo key"
// @Success      200 {object} dto.Response{data=listing.ListingResponse}
// @Security     BearerAuth
// @Router       /me/listings/{id}/photos [post]
func (h *ListingHandler) AttachPhoto(c *gin.Context) {
	ownerID, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	var req listing.AttachPhotoInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.listings.AttachPhoto(c.Request.Context(), ownerID, id, req)
	h.respond(c, resp, err)
}

// RemovePhoto godoc
// @Summary      Remove photo
// @Tags         listings
// @Produce      json
// @Param        id  path  string true "Listing ID"
// @Param        key query string true "Photo key"
// @Success      200 {object} dto.Response{data=listing.ListingResponse}
// @Security     BearerAuth
// @Router       /me/listings/{id}/photos [delete]
func (h *ListingHandler) RemovePhoto(c *gin.Context) {
	ownerID, id, ok := h.ownerAndID(c)
	if !ok {
		return
	}
	key := c.Query("key")
	if key == "" {
		h.BadRequest(c, "key is required")
		return
	}
	resp, err := h.listings.RemovePhoto(c.Request.Context(), ownerID, id, key)
	h.respond(c, resp, err)
}

// AdminList godoc
// @Summary      List all listings
// @Tags         admin
// @Produce      json
// @Param        status    query string false "Status"
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]listing.ListingResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/listings [get]
func (h *ListingHandler) AdminList(c *gin.Context) {
	var req listing.ListInput
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.listings.ListAll(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Pending godoc
// @Summary      Moderation queue
// @Description  Listings awaiting review, oldest first
// @Tags         admin
// @Produce      json
// @Param        page      query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]listing.ListingResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/listings/pending [get]
func (h *ListingHandler) Pending(c *gin.Context) {
	var req listing.ListInput
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.listings.ListPending(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Approve godoc
// @Summary      Approve listing
// @Tags         admin
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=listing.ListingResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/listings/{id}/approve [post]
func (h *ListingHandler) Approve(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.listings.Approve(c.Request.Context(), id)
	h.respond(c, resp, err)
}

// Reject godoc
// @Summary      Reject listing
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Listing ID"
// @Param        request body listing.RejectInput true "Reason"
// @Success      200 {object} dto.Response{data=listing.ListingResponse}
// @Security     BearerAuth
// @Router       /admin/listings/{id}/reject [post]
func (h *ListingHandler) Reject(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req listing.RejectInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.listings.Reject(c.Request.Context(), id, req)
	h.respond(c, resp, err)
}

// Reinstate godoc
// @Summary      Reinstate suspended listing
// @Tags         admin
// @Produce      json
// @Param        id path string true "Listing ID"
// @Success      200 {object} dto.Response{data=listing.ListingResponse}
// @Security     BearerAuth
// @Router       /admin/listings/{id}/reinstate [post]
func (h *ListingHandler) Reinstate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.listings.Reinstate(c.Request.Context(), id)
	h.respond(c, resp, err)
}

func (h *ListingHandler) ownerAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := h.requireUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.pathID(c, "id")
	return ownerID, id, ok
}

func (h *ListingHandler) respond(c *gin.Context, resp *listing.ListingResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
