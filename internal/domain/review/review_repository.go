package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RatingStats is the aggregate over published reviews of one listing
type RatingStats struct {
	Average decimal.Decimal
	Count   int
}

// ListFilter selects reviews
type ListFilter struct {
	ListingID *uuid.UUID
	AuthorID  *uuid.UUID
	Status    *Status
	Page      int
	PageSize  int
}

// Repository defines persistence for reviews
type Repository interface {
	Create(ctx context.Context, r *Review) error
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ExistsForAuthor(ctx context.Context, listingID, authorID uuid.UUID) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*Review, int64, error)
	// RatingStats aggregates published reviews only
	RatingStats(ctx context.Context, listingID uuid.UUID) (RatingStats, error)
}
