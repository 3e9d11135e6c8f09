package booking

import (
	"time"

	"github.com/bizdir/backend/internal/domain/booking"
	"github.com/google/uuid"
)

// RequestBookingInput contains the input for a booking request
type RequestBookingInput struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	PartySize   int       `json:"party_size" binding:"required,min=1,max=50"`
	Notes       string    `json:"notes" binding:"max=1000"`
}

// DecisionInput carries an optional note with a status change
type DecisionInput struct {
	Note string `json:"note" binding:"max=500"`
}

// ListBookingsInput filters a booking list
type ListBookingsInput struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed declined cancelled completed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BookingResponse is the API view of a booking
type BookingResponse struct {
	ID           uuid.UUID `json:"id"`
	ListingID    uuid.UUID `json:"listing_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	PartySize    int       `json:"party_size"`
	Notes        string    `json:"notes,omitempty"`
	Status       string    `json:"status"`
	DecisionNote string    `json:"decision_note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToBookingResponse converts a domain booking to its response DTO
func ToBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		ListingID:    b.ListingID,
		CustomerID:   b.CustomerID,
		OwnerID:      b.OwnerID,
		ScheduledAt:  b.ScheduledAt,
		PartySize:    b.PartySize,
		Notes:        b.Notes,
		Status:       string(b.Status),
		DecisionNote: b.DecisionNote,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
