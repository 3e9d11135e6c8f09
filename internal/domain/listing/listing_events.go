package listing

import (
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for Listing
const AggregateTypeListing = "Listing"

// Listing domain event types
const (
	EventTypeListingCreated   = "ListingCreated"
	EventTypeListingSubmitted = "ListingSubmitted"
	EventTypeListingApproved  = "ListingApproved"
	EventTypeListingRejected  = "ListingRejected"
	EventTypeListingSuspended = "ListingSuspended"
	EventTypeListingArchived  = "ListingArchived"
)

// ListingCreatedEvent is published when a listing is created
type ListingCreatedEvent struct {
	shared.BaseDomainEvent
	OwnerID uuid.UUID `json:"owner_id"`
	Title   string    `json:"title"`
}

// NewListingCreatedEvent creates a new ListingCreatedEvent
func NewListingCreatedEvent(l *Listing) *ListingCreatedEvent {
	return &ListingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingCreated, AggregateTypeListing, l.ID),
		OwnerID:         l.OwnerID,
		Title:           l.Title,
	}
}

// ListingStatusEvent is published on moderation transitions
type ListingStatusEvent struct {
	shared.BaseDomainEvent
	OwnerID uuid.UUID `json:"owner_id"`
	Title   string    `json:"title"`
	Status  Status    `json:"status"`
	Reason  string    `json:"reason,omitempty"`
}

// NewListingStatusEvent creates a status event of the given type
func NewListingStatusEvent(eventType string, l *Listing, reason string) *ListingStatusEvent {
	return &ListingStatusEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeListing, l.ID),
		OwnerID:         l.OwnerID,
		Title:           l.Title,
		Status:          l.Status,
		Reason:          reason,
	}
}
