package handler

import (
	"context"

	"github.com/bizdir/backend/internal/application/booking"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingService is the booking API
type BookingService interface {
	Request(ctx context.Context, customerID, listingID uuid.UUID, input booking.RequestBookingInput) (*booking.BookingResponse, error)
	Confirm(ctx context.Context, ownerID, bookingID uuid.UUID, input booking.DecisionInput) (*booking.BookingResponse, error)
	Decline(ctx context.Context, ownerID, bookingID uuid.UUID, input booking.DecisionInput) (*booking.BookingResponse, error)
	Complete(ctx context.Context, ownerID, bookingID uuid.UUID) (*booking.BookingResponse, error)
	Cancel(ctx context.Context, customerID, bookingID uuid.UUID, input booking.DecisionInput) (*booking.BookingResponse, error)
	Get(ctx context.Context, userID, bookingID uuid.UUID) (*booking.BookingResponse, error)
	ListAsCustomer(ctx context.Context, customerID uuid.UUID, input booking.ListBookingsInput) (shared.Paginated[booking.BookingResponse], error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID, input booking.ListBookingsInput) (shared.Paginated[booking.BookingResponse], error)
}

// BookingHandler serves booking requests between customers and owners
type BookingHandler struct {
	BaseHandler
	bookings BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Request godoc
// @Summary      Request booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id      path string                      true "Listing ID"
// @Param        request body booking.RequestBookingInput true "Booking"
// @Success      201 {object} dto.Response{data=booking.BookingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /listings/{id}/bookings [post]
func (h *BookingHandler) Request(c *gin.Context) {
	customerID, ok := h.requireUser(c)
	if !ok {
		return
	}
	listingID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req booking.RequestBookingInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.bookings.Request(c.Request.Context(), customerID, listingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List bookings
// @Description  as=owner lists bookings on the caller's listings; default is the caller's own requests
// @Tags         bookings
// @Produce      json
// @Param        as        query string false "customer or owner"
// @Param        status    query string false "Status"
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]booking.BookingResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req booking.ListBookingsInput
	if !h.bindQuery(c, &req) {
		return
	}

	var (
		page shared.Paginated[booking.BookingResponse]
		err  error
	)
	switch c.DefaultQuery("as", "customer") {
	case "owner":
		page, err = h.bookings.ListForOwner(c.Request.Context(), userID, req)
	case "customer":
		page, err = h.bookings.ListAsCustomer(c.Request.Context(), userID, req)
	default:
		h.BadRequest(c, "as must be customer or owner")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Get godoc
// @Summary      Get booking
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Booking ID"
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}
	resp, err := h.bookings.Get(c.Request.Context(), userID, id)
	h.respond(c, resp, err)
}

// Confirm godoc
// @Summary      Confirm booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id      path string                true  "Booking ID"
// @Param        request body booking.DecisionInput false "Note"
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	h.decide(c, h.bookings.Confirm)
}

// Decline godoc
// @Summary      Decline booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id      path string                true  "Booking ID"
// @Param        request body booking.DecisionInput false "Note"
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Security     BearerAuth
// @Router       /bookings/{id}/decline [post]
func (h *BookingHandler) Decline(c *gin.Context) {
	h.decide(c, h.bookings.Decline)
}

// Cancel godoc
// @Summary      Cancel booking
// @Description  The customer cancels a pending or confirmed booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id      path string                true  "Booking ID"
// @Param        request body booking.DecisionInput false "Note"
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Security     BearerAuth
// @Router       /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.decide(c, h.bookings.Cancel)
}

// Complete godoc
// @Summary      Complete booking
// @Description  Allowed once the scheduled time has passed
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Booking ID"
// @Success      200 {object} dto.Response{data=booking.BookingResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}
	resp, err := h.bookings.Complete(c.Request.Context(), userID, id)
	h.respond(c, resp, err)
}

type decisionFunc func(ctx context.Context, userID, bookingID uuid.UUID, input booking.DecisionInput) (*booking.BookingResponse, error)

func (h *BookingHandler) decide(c *gin.Context, fn decisionFunc) {
	userID, id, ok := h.userAndID(c)
	if !ok {
		return
	}
	var req booking.DecisionInput
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	resp, err := fn(c.Request.Context(), userID, id, req)
	h.respond(c, resp, err)
}

func (h *BookingHandler) userAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := h.requireUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.pathID(c, "id")
	return userID, id, ok
}

func (h *BookingHandler) respond(c *gin.Context, resp *booking.BookingResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
