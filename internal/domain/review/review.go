package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status of a review
type Status string

const (
	StatusPublished Status = "published"
	StatusHidden    Status = "hidden"
)

const (
	MinRating         = 1
	MaxRating         = 5
	minContentLength  = 10
	maxContentLength  = 5000
	maxTitleLength    = 120
	maxResponseLength = 2000
)

// OwnerResponse is the listing owner's public reply
type OwnerResponse struct {
	Content     string
	RespondedAt time.Time
}

// Review is the aggregate root for a customer review of a listing
type Review struct {
	shared.BaseAggregateRoot
	ListingID     uuid.UUID
	AuthorID      uuid.UUID
	Rating        int
	Title         string
	Content       string
	Status        Status
	OwnerResponse *OwnerResponse
}

// NewReview creates a published review
func NewReview(listingID, authorID uuid.UUID, rating int, title, content string) (*Review, error) {
	if listingID == uuid.Nil || authorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Listing and author are required")
	}
	r := &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ListingID:         listingID,
		AuthorID:          authorID,
		Status:            StatusPublished,
	}
	if err := r.setContent(rating, title, content); err != nil {
		return nil, err
	}
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewCreated, r))
	return r, nil
}

// Edit changes rating and text. Hidden reviews cannot be edited.
func (r *Review) Edit(rating int, title, content string) error {
	if r.Status == StatusHidden {
		return shared.NewDomainError("INVALID_STATE", "Hidden reviews cannot be edited")
	}
	if err := r.setContent(rating, title, content); err != nil {
		return err
	}
	r.IncrementVersion()
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewUpdated, r))
	return nil
}

func (r *Review) setContent(rating int, title, content string) error {
	if rating < MinRating || rating > MaxRating {
		return shared.NewDomainError("INVALID_RATING", fmt.Sprintf("Rating must be between %d and %d", MinRating, MaxRating))
	}
	title = strings.TrimSpace(title)
	if len([]rune(title)) > maxTitleLength {
		return shared.NewDomainError("INVALID_TITLE", "Review title is too long")
	}
	content = strings.TrimSpace(content)
	if n := len([]rune(content)); n < minContentLength || n > maxContentLength {
		return shared.NewDomainError("INVALID_CONTENT", fmt.Sprintf("Review must be between %d and %d characters", minContentLength, maxContentLength))
	}
	r.Rating = rating
	r.Title = title
	r.Content = content
	return nil
}

// Respond sets or replaces the owner's reply
func (r *Review) Respond(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return shared.NewDomainError("INVALID_RESPONSE", "Response cannot be empty")
	}
	if len([]rune(content)) > maxResponseLength {
		return shared.NewDomainError("INVALID_RESPONSE", "Response is too long")
	}
	r.OwnerResponse = &OwnerResponse{Content: content, RespondedAt: time.Now()}
	r.IncrementVersion()
	return nil
}

// Hide removes the review from public view after moderation
func (r *Review) Hide() error {
	if r.Status == StatusHidden {
		return shared.NewDomainError("INVALID_STATE", "Review is already hidden")
	}
	r.Status = StatusHidden
	r.IncrementVersion()
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewHidden, r))
	return nil
}

// MarkDeleted records the deletion event before the row is removed
func (r *Review) MarkDeleted() {
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewDeleted, r))
}

// IsAuthoredBy reports whether userID wrote the review
func (r *Review) IsAuthoredBy(userID uuid.UUID) bool {
	return r.AuthorID == userID
}

// IsPublished reports whether the review is publicly visible
func (r *Review) IsPublished() bool {
	return r.Status == StatusPublished
}
