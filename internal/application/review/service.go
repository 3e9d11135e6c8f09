package review

import (
	"context"

	"github.com/bizdir/backend/internal/domain/review"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListingLookup resolves listing ownership and visibility
type ListingLookup interface {
	Owner(ctx context.Context, listingID uuid.UUID) (ownerID uuid.UUID, public bool, err error)
}

// Service implements review use cases
type Service struct {
	repo           review.Repository
	listings       ListingLookup
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a review service
func NewService(repo review.Repository, listings ListingLookup, logger *zap.Logger) *Service {
	return &Service{repo: repo, listings: listings, logger: logger}
}

// SetEventPublisher sets the event publisher for domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create posts a review on an active listing. Owners cannot review their
// own listing and each author gets one review per listing.
func (s *Service) Create(ctx context.Context, authorID, listingID uuid.UUID, input CreateReviewInput) (*ReviewResponse, error) {
	ownerID, public, err := s.listings.Owner(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !public {
		return nil, shared.NewDomainError("INVALID_STATE", "Only active listings can be reviewed")
	}
	if ownerID == authorID {
		return nil, shared.NewDomainError("FORBIDDEN", "You cannot review your own listing")
	}
	exists, err := s.repo.ExistsForAuthor(ctx, listingID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "You have already reviewed this listing")
	}

	r, err := review.NewReview(listingID, authorID, input.Rating, input.Title, input.Content)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, r)

	s.logger.Info("Review created",
		zap.String("review_id", r.ID.String()),
		zap.String("listing_id", listingID.String()),
		zap.Int("rating", r.Rating))
	resp := ToReviewResponse(r)
	return &resp, nil
}

// Update edits the author's own review
func (s *Service) Update(ctx context.Context, authorID, reviewID uuid.UUID, input UpdateReviewInput) (*ReviewResponse, error) {
	r, err := s.authored(ctx, authorID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := r.Edit(input.Rating, input.Title, input.Content); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, r)
	resp := ToReviewResponse(r)
	return &resp, nil
}

// Delete removes the author's own review
func (s *Service) Delete(ctx context.Context, authorID, reviewID uuid.UUID) error {
	r, err := s.authored(ctx, authorID, reviewID)
	if err != nil {
		return err
	}
	r.MarkDeleted()
	if err := s.repo.Delete(ctx, r.ID); err != nil {
		return err
	}
	s.publish(ctx, r)
	s.logger.Info("Review deleted", zap.String("review_id", reviewID.String()))
	return nil
}

// Respond sets the listing owner's reply. Repeating it replaces the reply.
func (s *Service) Respond(ctx context.Context, ownerID, reviewID uuid.UUID, input RespondInput) (*ReviewResponse, error) {
	r, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	listingOwner, _, err := s.listings.Owner(ctx, r.ListingID)
	if err != nil {
		return nil, err
	}
	if listingOwner != ownerID {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the listing owner can respond")
	}
	if err := r.Respond(input.Content); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	resp := ToReviewResponse(r)
	return &resp, nil
}

// Hide takes a review out of public view. Already hidden reviews are left as they are.
func (s *Service) Hide(ctx context.Context, reviewID uuid.UUID) error {
	r, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !r.IsPublished() {
		return nil
	}
	if err := r.Hide(); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return err
	}
	s.publish(ctx, r)
	s.logger.Info("Review hidden", zap.String("review_id", reviewID.String()))
	return nil
}

// ListForListing returns published reviews, newest first
func (s *Service) ListForListing(ctx context.Context, listingID uuid.UUID, input ListReviewsInput) (shared.Paginated[ReviewResponse], error) {
	published := review.StatusPublished
	return s.list(ctx, review.ListFilter{ListingID: &listingID, Status: &published}, input)
}

// ListMine returns every review the caller wrote
func (s *Service) ListMine(ctx context.Context, authorID uuid.UUID, input ListReviewsInput) (shared.Paginated[ReviewResponse], error) {
	return s.list(ctx, review.ListFilter{AuthorID: &authorID}, input)
}

// Author returns who wrote a review
func (s *Service) Author(ctx context.Context, reviewID uuid.UUID) (uuid.UUID, error) {
	r, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return uuid.Nil, err
	}
	return r.AuthorID, nil
}

func (s *Service) list(ctx context.Context, filter review.ListFilter, input ListReviewsInput) (shared.Paginated[ReviewResponse], error) {
	paging := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	filter.Page, filter.PageSize = paging.Page, paging.PageSize
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[ReviewResponse]{}, err
	}
	out := make([]ReviewResponse, len(items))
	for i, r := range items {
		out[i] = ToReviewResponse(r)
	}
	return shared.NewPaginated(out, total, paging.Page, paging.PageSize), nil
}

func (s *Service) authored(ctx context.Context, authorID, reviewID uuid.UUID) (*review.Review, error) {
	r, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !r.IsAuthoredBy(authorID) {
		return nil, shared.NewDomainError("FORBIDDEN", "You can only change your own reviews")
	}
	return r, nil
}

func (s *Service) publish(ctx context.Context, r *review.Review) {
	if err := shared.PublishPending(ctx, s.eventPublisher, r); err != nil {
		s.logger.Warn("Failed to publish review events", zap.String("review_id", r.ID.String()), zap.Error(err))
	}
}
