package booking

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter selects bookings for one side of the relationship
type ListFilter struct {
	CustomerID *uuid.UUID
	OwnerID    *uuid.UUID
	ListingID  *uuid.UUID
	Status     *Status
	Page       int
	PageSize   int
}

// Repository defines persistence for bookings
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Update(ctx context.Context, b *Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	List(ctx context.Context, filter ListFilter) ([]*Booking, int64, error)
}
