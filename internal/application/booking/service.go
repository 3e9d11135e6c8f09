package booking

import (
	"context"
	"time"

	"github.com/bizdir/backend/internal/domain/booking"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListingLookup resolves listing ownership and visibility
type ListingLookup interface {
	Owner(ctx context.Context, listingID uuid.UUID) (ownerID uuid.UUID, public bool, err error)
}

// Service implements booking use cases
type Service struct {
	repo           booking.Repository
	listings       ListingLookup
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a booking service
func NewService(repo booking.Repository, listings ListingLookup, logger *zap.Logger) *Service {
	return &Service{repo: repo, listings: listings, logger: logger, now: time.Now}
}

// SetEventPublisher sets the event publisher for domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Request books a slot at an active listing
func (s *Service) Request(ctx context.Context, customerID, listingID uuid.UUID, input RequestBookingInput) (*BookingResponse, error) {
	ownerID, public, err := s.listings.Owner(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !public {
		return nil, shared.NewDomainError("INVALID_STATE", "Only active listings accept bookings")
	}
	b, err := booking.NewBooking(listingID, customerID, ownerID, input.ScheduledAt, input.PartySize, input.Notes, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, b)
	s.logger.Info("Booking requested",
		zap.String("booking_id", b.ID.String()),
		zap.String("listing_id", listingID.String()))
	resp := ToBookingResponse(b)
	return &resp, nil
}

// Confirm accepts a pending booking as the listing owner
func (s *Service) Confirm(ctx context.Context, ownerID, bookingID uuid.UUID, input DecisionInput) (*BookingResponse, error) {
	return s.asOwner(ctx, ownerID, bookingID, func(b *booking.Booking) error { return b.Confirm(input.Note) })
}

// Decline refuses a pending booking as the listing owner
func (s *Service) Decline(ctx context.Context, ownerID, bookingID uuid.UUID, input DecisionInput) (*BookingResponse, error) {
	return s.asOwner(ctx, ownerID, bookingID, func(b *booking.Booking) error { return b.Decline(input.Note) })
}

// Complete closes a confirmed booking after its scheduled time
func (s *Service) Complete(ctx context.Context, ownerID, bookingID uuid.UUID) (*BookingResponse, error) {
	return s.asOwner(ctx, ownerID, bookingID, func(b *booking.Booking) error { return b.Complete(s.now()) })
}

// Cancel withdraws the customer's own booking
func (s *Service) Cancel(ctx context.Context, customerID, bookingID uuid.UUID, input DecisionInput) (*BookingResponse, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the customer can cancel this booking")
	}
	return s.save(ctx, b, b.Cancel(input.Note))
}

// Get returns a booking to either participant
func (s *Service) Get(ctx context.Context, userID, bookingID uuid.UUID) (*BookingResponse, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != userID && b.OwnerID != userID {
		return nil, shared.ErrNotFound
	}
	resp := ToBookingResponse(b)
	return &resp, nil
}

// ListAsCustomer returns the caller's own bookings
func (s *Service) ListAsCustomer(ctx context.Context, customerID uuid.UUID, input ListBookingsInput) (shared.Paginated[BookingResponse], error) {
	return s.list(ctx, booking.ListFilter{CustomerID: &customerID}, input)
}

// ListForOwner returns bookings at the caller's listings
func (s *Service) ListForOwner(ctx context.Context, ownerID uuid.UUID, input ListBookingsInput) (shared.Paginated[BookingResponse], error) {
	return s.list(ctx, booking.ListFilter{OwnerID: &ownerID}, input)
}

func (s *Service) list(ctx context.Context, filter booking.ListFilter, input ListBookingsInput) (shared.Paginated[BookingResponse], error) {
	paging := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	filter.Page, filter.PageSize = paging.Page, paging.PageSize
	if input.Status != "" {
		status := booking.Status(input.Status)
		filter.Status = &status
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[BookingResponse]{}, err
	}
	out := make([]BookingResponse, len(items))
	for i, b := range items {
		out[i] = ToBookingResponse(b)
	}
	return shared.NewPaginated(out, total, paging.Page, paging.PageSize), nil
}

func (s *Service) asOwner(ctx context.Context, ownerID, bookingID uuid.UUID, apply func(*booking.Booking) error) (*BookingResponse, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the listing owner can manage this booking")
	}
	return s.save(ctx, b, apply(b))
}

func (s *Service) save(ctx context.Context, b *booking.Booking, transitionErr error) (*BookingResponse, error) {
	if transitionErr != nil {
		return nil, transitionErr
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, b)
	s.logger.Info("Booking status changed",
		zap.String("booking_id", b.ID.String()),
		zap.String("status", string(b.Status)))
	resp := ToBookingResponse(b)
	return &resp, nil
}

func (s *Service) publish(ctx context.Context, b *booking.Booking) {
	if err := shared.PublishPending(ctx, s.eventPublisher, b); err != nil {
		s.logger.Warn("Failed to publish booking events", zap.String("booking_id", b.ID.String()), zap.Error(err))
	}
}
