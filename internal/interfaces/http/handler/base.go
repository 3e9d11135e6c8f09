// Package handler contains the gin handlers of the directory API.
package handler

import (
	"errors"
	"net/http"

	"github.com/bizdir/backend/internal/application/listing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/logger"
	"github.com/bizdir/backend/internal/interfaces/http/dto"
	"github.com/bizdir/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VisitorIDHeader lets anonymous clients identify themselves across requests
const VisitorIDHeader = "X-Visitor-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeUnauthorized, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		middleware.GetRequestID(c),
		details,
	))
}

// HandleError converts domain errors to the envelope. Anything else is
// logged and reported as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}
	logger.FromGin(c).Error("Unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	h.ErrorWithCode(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bindJSON binds the body into req and writes the error response on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	return h.bindResult(c, c.ShouldBindJSON(req), "Invalid request body")
}

// bindQuery binds query parameters into req and writes the error response on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	return h.bindResult(c, c.ShouldBindQuery(req), "Invalid query parameters")
}

func (h *BaseHandler) bindResult(c *gin.Context, err error, message string) bool {
	if err == nil {
		return true
	}
	if c.IsAborted() {
		// BodyLimit already answered
		return false
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return false
	}
	if details, ok := middleware.ValidationDetails(err); ok {
		h.ValidationError(c, details)
		return false
	}
	h.BadRequest(c, message)
	return false
}

// pathID parses a UUID path parameter
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// requireUser returns the authenticated user or answers 401
func (h *BaseHandler) requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetJWTUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// optionalUser returns the authenticated user, nil for anonymous callers
func optionalUser(c *gin.Context) *uuid.UUID {
	if id, ok := middleware.GetJWTUserID(c); ok {
		return &id
	}
	return nil
}

// viewerOf describes the caller for listing visibility checks
func viewerOf(c *gin.Context) listing.Viewer {
	return listing.Viewer{
		UserID:    optionalUser(c),
		Role:      middleware.GetJWTRole(c),
		VisitorID: c.GetHeader(VisitorIDHeader),
	}
}

// paginated sends a page of items with its meta
func paginated[T any](c *gin.Context, page shared.Paginated[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(items, page.Total, page.Page, page.PageSize))
}
