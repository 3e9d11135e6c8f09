package booking

import (
	"strings"
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status of a booking request
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeclined, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

const (
	MinPartySize = 1
	MaxPartySize = 50
	maxNotes     = 1000
)

// Booking is a customer's reservation request at a listing
type Booking struct {
	shared.BaseAggregateRoot
	ListingID    uuid.UUID
	CustomerID   uuid.UUID
	OwnerID      uuid.UUID
	ScheduledAt  time.Time
	PartySize    int
	Notes        string
	Status       Status
	DecisionNote string
}

// NewBooking creates a pending booking. now is passed in so callers control the clock.
func NewBooking(listingID, customerID, ownerID uuid.UUID, scheduledAt time.Time, partySize int, notes string, now time.Time) (*Booking, error) {
	if customerID == ownerID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Owners cannot book their own listing")
	}
	if !scheduledAt.After(now) {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Booking time must be in the future")
	}
	if partySize < MinPartySize || partySize > MaxPartySize {
		return nil, shared.NewDomainError("INVALID_PARTY_SIZE", "Party size must be between 1 and 50")
	}
	notes = strings.TrimSpace(notes)
	if len([]rune(notes)) > maxNotes {
		return nil, shared.NewDomainError("INVALID_NOTES", "Notes are too long")
	}
	b := &Booking{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ListingID:         listingID,
		CustomerID:        customerID,
		OwnerID:           ownerID,
		ScheduledAt:       scheduledAt,
		PartySize:         partySize,
		Notes:             notes,
		Status:            StatusPending,
	}
	b.AddDomainEvent(NewBookingEvent(EventTypeBookingRequested, b))
	return b, nil
}

// Confirm accepts a pending booking
func (b *Booking) Confirm(note string) error {
	if b.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending bookings can be confirmed")
	}
	b.transition(StatusConfirmed, note, EventTypeBookingConfirmed)
	return nil
}

// Decline refuses a pending booking
func (b *Booking) Decline(note string) error {
	if b.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending bookings can be declined")
	}
	b.transition(StatusDeclined, note, EventTypeBookingDeclined)
	return nil
}

// Cancel is the customer withdrawing a pending or confirmed booking
func (b *Booking) Cancel(note string) error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Only pending or confirmed bookings can be cancelled")
	}
	b.transition(StatusCancelled, note, EventTypeBookingCancelled)
	return nil
}

// Complete marks a confirmed booking as fulfilled once its time has passed
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return shared.NewDomainError("INVALID_STATE", "Only confirmed bookings can be completed")
	}
	if now.Before(b.ScheduledAt) {
		return shared.NewDomainError("TOO_EARLY", "Booking cannot be completed before its scheduled time")
	}
	b.transition(StatusCompleted, "", EventTypeBookingCompleted)
	return nil
}

func (b *Booking) transition(to Status, note, eventType string) {
	b.Status = to
	if note = strings.TrimSpace(note); note != "" {
		b.DecisionNote = note
	}
	b.IncrementVersion()
	b.AddDomainEvent(NewBookingEvent(eventType, b))
}
