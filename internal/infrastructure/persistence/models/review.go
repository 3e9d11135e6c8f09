package models

import (
	"time"

	"github.com/bizdir/backend/internal/domain/review"
	"github.com/google/uuid"
)

// ReviewModel is the persistence model for the Review aggregate.
// One review per author and listing is enforced by a unique index.
type ReviewModel struct {
	AggregateModel
	ListingID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_listing_author,priority:1;index"`
	AuthorID    uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_listing_author,priority:2"`
	Rating      int           `gorm:"not null"`
	Title       string        `gorm:"type:varchar(120)"`
	Content     string        `gorm:"type:text;not null"`
	Status      review.Status `gorm:"type:varchar(20);not null;default:'published';index"`
	Response    string        `gorm:"type:text"`
	RespondedAt *time.Time
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain Review.
func (m *ReviewModel) ToDomain() *review.Review {
	r := &review.Review{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ListingID:         m.ListingID,
		AuthorID:          m.AuthorID,
		Rating:            m.Rating,
		Title:             m.Title,
		Content:           m.Content,
		Status:            m.Status,
	}
	if m.RespondedAt != nil {
		r.OwnerResponse = &review.OwnerResponse{Content: m.Response, RespondedAt: *m.RespondedAt}
	}
	return r
}

// ReviewModelFromDomain creates a new persistence model from a domain Review.
func ReviewModelFromDomain(r *review.Review) *ReviewModel {
	m := &ReviewModel{
		ListingID: r.ListingID,
		AuthorID:  r.AuthorID,
		Rating:    r.Rating,
		Title:     r.Title,
		Content:   r.Content,
		Status:    r.Status,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	if r.OwnerResponse != nil {
		at := r.OwnerResponse.RespondedAt
		m.Response = r.OwnerResponse.Content
		m.RespondedAt = &at
	}
	return m
}
