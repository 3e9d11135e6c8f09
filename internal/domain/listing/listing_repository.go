package listing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SortOrder controls search result ordering
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortRating    SortOrder = "rating"
	SortNewest    SortOrder = "newest"
	SortFeatured  SortOrder = "featured"
)

// SearchCriteria describes a public directory search
type SearchCriteria struct {
	Query     string
	Category  string
	City      string
	Tags      []string
	MinRating float64
	Sort      SortOrder
	Page      int
	PageSize  int
}

// ListFilter is used by owner and admin listings
type ListFilter struct {
	OwnerID  *uuid.UUID
	Statuses []Status
	Page     int
	PageSize int
}

// Repository defines persistence for listings
type Repository interface {
	Create(ctx context.Context, l *Listing) error
	Update(ctx context.Context, l *Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindBySlug(ctx context.Context, slug string) (*Listing, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Listing, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]*Listing, int64, error)
	List(ctx context.Context, filter ListFilter) ([]*Listing, int64, error)
	// CountByOwner counts listings that occupy a plan slot
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	IDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
	// IncrementViewCount bumps the counter without loading the aggregate
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	// UpdateRating writes the review aggregate columns only
	UpdateRating(ctx context.Context, id uuid.UUID, average decimal.Decimal, count int) error
}
