package booking

import (
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeBooking = "Booking"

const (
	EventTypeBookingRequested = "BookingRequested"
	EventTypeBookingConfirmed = "BookingConfirmed"
	EventTypeBookingDeclined  = "BookingDeclined"
	EventTypeBookingCancelled = "BookingCancelled"
	EventTypeBookingCompleted = "BookingCompleted"
)

// BookingEvent is published on every booking transition
type BookingEvent struct {
	shared.BaseDomainEvent
	ListingID   uuid.UUID `json:"listing_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Status      Status    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewBookingEvent creates a booking event of the given type
func NewBookingEvent(eventType string, b *Booking) *BookingEvent {
	return &BookingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeBooking, b.ID),
		ListingID:       b.ListingID,
		CustomerID:      b.CustomerID,
		OwnerID:         b.OwnerID,
		Status:          b.Status,
		ScheduledAt:     b.ScheduledAt,
	}
}
