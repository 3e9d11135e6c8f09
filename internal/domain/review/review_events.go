package review

import (
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeReview = "Review"

const (
	EventTypeReviewCreated = "ReviewCreated"
	EventTypeReviewUpdated = "ReviewUpdated"
	EventTypeReviewDeleted = "ReviewDeleted"
	EventTypeReviewHidden  = "ReviewHidden"
)

// RatingAffectingEvents lists the event types after which a listing rating must be recomputed
var RatingAffectingEvents = []string{
	EventTypeReviewCreated,
	EventTypeReviewUpdated,
	EventTypeReviewDeleted,
	EventTypeReviewHidden,
}

// ReviewEvent carries the listing so subscribers can recompute its rating
type ReviewEvent struct {
	shared.BaseDomainEvent
	ListingID uuid.UUID `json:"listing_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Rating    int       `json:"rating"`
}

// NewReviewEvent creates a review event of the given type
func NewReviewEvent(eventType string, r *Review) *ReviewEvent {
	return &ReviewEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeReview, r.ID),
		ListingID:       r.ListingID,
		AuthorID:        r.AuthorID,
		Rating:          r.Rating,
	}
}
