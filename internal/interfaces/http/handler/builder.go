package handler

import (
	"context"

	"github.com/bizdir/backend/internal/application/builder"
	"github.com/bizdir/backend/internal/application/listing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BuilderService is the AI-assisted listing builder
type BuilderService interface {
	DocumentUploadURL(ctx context.Context, userID uuid.UUID, input builder.UploadInput) (*builder.UploadResponse, error)
	Analyze(ctx context.Context, userID uuid.UUID, input builder.AnalyzeInput) (*builder.AnalyzeResponse, error)
	CreateListingFromDraft(ctx context.Context, ownerID uuid.UUID, input builder.CreateFromDraftInput) (*listing.ListingResponse, error)
}

// BuilderHandler turns uploaded business documents into listing drafts
type BuilderHandler struct {
	BaseHandler
	builder BuilderService
}

// NewBuilderHandler creates a new builder handler
func NewBuilderHandler(svc BuilderService) *BuilderHandler {
	return &BuilderHandler{builder: svc}
}

// UploadURL godoc
// @Summary      Presign document upload
// @Description  Accepts PDF, PNG, JPEG, WebP and plain text
// @Tags         builder
// @Accept       json
// @Produce      json
// @Param        request body builder.UploadInput true "File"
// @Success      200 {object} dto.Response{data=builder.UploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /builder/uploads [post]
func (h *BuilderHandler) UploadURL(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req builder.UploadInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.builder.DocumentUploadURL(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Analyze godoc
// @Summary      Analyze documents
// @Description  Extracts business details from up to five uploaded documents and merges them into one draft
// @Tags         builder
// @Accept       json
// @Produce      json
// @Param        request body builder.AnalyzeInput true "Uploaded keys"
// @Success      200 {object} dto.Response{data=builder.AnalyzeResponse}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /builder/analyze [post]
func (h *BuilderHandler) Analyze(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req builder.AnalyzeInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.builder.Analyze(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateListing godoc
// @Summary      Create listing from draft
// @Tags         builder
// @Accept       json
// @Produce      json
// @Param        request body builder.CreateFromDraftInput true "Draft"
// @Success      201 {object} dto.Response{data=listing.ListingResponse}
// @Security     BearerAuth
// @Router       /builder/listings [post]
func (h *BuilderHandler) CreateListing(c *gin.Context) {
	ownerID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req builder.CreateFromDraftInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.builder.CreateListingFromDraft(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
