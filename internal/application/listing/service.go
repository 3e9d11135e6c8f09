package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/domain/listing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AllowedPhotoTypes are the image types accepted for listing photos
var AllowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

const maxSlugAttempts = 50

var errNotOwner = shared.NewDomainError("FORBIDDEN", "You do not own this listing")

// PlanResolver returns the plan currently in force for a user
type PlanResolver interface {
	EffectivePlan(ctx context.Context, userID uuid.UUID) (billing.Plan, error)
}

// OwnerPromoter upgrades a user to business owner
type OwnerPromoter interface {
	EnsureOwner(ctx context.Context, userID uuid.UUID) error
}

// ActivityTracker records directory activity for analytics
type ActivityTracker interface {
	TrackSearch(ctx context.Context, query, visitorID string, userID *uuid.UUID) error
	TrackListingView(ctx context.Context, listingID uuid.UUID, query, visitorID string, userID *uuid.UUID) error
}

// PhotoStorage stores listing photos
type PhotoStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (*storage.PresignedUpload, error)
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Service implements listing use cases
type Service struct {
	repo           listing.Repository
	plans          PlanResolver
	promoter       OwnerPromoter
	tracker        ActivityTracker
	photos         PhotoStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a listing service
func NewService(
	repo listing.Repository,
	plans PlanResolver,
	promoter OwnerPromoter,
	tracker ActivityTracker,
	photos PhotoStorage,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		plans:    plans,
		promoter: promoter,
		tracker:  tracker,
		photos:   photos,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetActivityTracker replaces the tracker. Analytics reads listing titles
// through this service, so the two are wired after construction.
func (s *Service) SetActivityTracker(tracker ActivityTracker) {
	s.tracker = tracker
}

// Create adds a draft listing, enforcing the owner's plan limit
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input ListingInput) (*ListingResponse, error) {
	plan, err := s.plans.EffectivePlan(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !plan.AllowsListings(count) {
		return nil, shared.NewDomainError("PLAN_LIMIT_REACHED",
			fmt.Sprintf("The %s plan allows %d listing(s). Upgrade to add more.", plan.Name, plan.MaxListings))
	}

	l, err := listing.NewListing(ownerID, input.details())
	if err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(ctx, l.Slug)
	if err != nil {
		return nil, err
	}
	l.Slug = slug

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("Failed to create listing", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return nil, err
	}
	if err := s.promoter.EnsureOwner(ctx, ownerID); err != nil {
		s.logger.Warn("Failed to promote listing owner", zap.String("owner_id", ownerID.String()), zap.Error(err))
	}
	s.publish(ctx, l)

	s.logger.Info("Listing created", zap.String("listing_id", l.ID.String()), zap.String("slug", l.Slug))
	return s.toResponse(l), nil
}

// uniqueSlug appends -2, -3, ... until the slug is free
func (s *Service) uniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return base + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0], nil
}

// Update edits an owner's listing. The slug stays stable.
func (s *Service) Update(ctx context.Context, ownerID, listingID uuid.UUID, input ListingInput) (*ListingResponse, error) {
	l, err := s.owned(ctx, ownerID, listingID)
	if err != nil {
		return nil, err
	}
	if err := l.Update(input.details()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.toResponse(l), nil
}

// Submit sends a listing to the review queue
func (s *Service) Submit(ctx context.Context, ownerID, listingID uuid.UUID) (*ListingResponse, error) {
	return s.transition(ctx, listingID, func(l *listing.Listing) error {
		if !l.IsOwnedBy(ownerID) {
			return errNotOwner
		}
		return l.Submit()
	})
}

// Archive retires a listing. Owners archive their own, admins any.
func (s *Service) Archive(ctx context.Context, viewer Viewer, listingID uuid.UUID) (*ListingResponse, error) {
	return s.transition(ctx, listingID, func(l *listing.Listing) error {
		if !viewer.Owns(l) && !viewer.IsAdmin() {
			return errNotOwner
		}
		return l.Archive()
	})
}

// Approve publishes a pending listing and applies plan featuring
func (s *Service) Approve(ctx context.Context, listingID uuid.UUID) (*ListingResponse, error) {
	return s.transition(ctx, listingID, func(l *listing.Listing) error {
		if err := l.Approve(); err != nil {
			return err
		}
		plan, err := s.plans.EffectivePlan(ctx, l.OwnerID)
		if err != nil {
			return err
		}
		l.SetFeatured(plan.FeaturedListings)
		return nil
	})
}

// Reject returns a pending listing to its owner
func (s *Service) Reject(ctx context.Context, listingID uuid.UUID, input RejectInput) (*ListingResponse, error) {
	return s.transition(ctx, listingID, func(l *listing.Listing) error {
		return l.Reject(input.Reason)
	})
}

// Reinstate brings a suspended listing back online
func (s *Service) Reinstate(ctx context.Context, listingID uuid.UUID) (*ListingResponse, error) {
	return s.transition(ctx, listingID, func(l *listing.Listing) error {
		if err := l.Reinstate(); err != nil {
			return err
		}
		plan, err := s.plans.EffectivePlan(ctx, l.OwnerID)
		if err != nil {
			return err
		}
		l.SetFeatured(plan.FeaturedListings)
		return nil
	})
}

// SuspendForModeration takes an active listing offline. Listings that are
// not active are left alone.
func (s *Service) SuspendForModeration(ctx context.Context, listingID uuid.UUID, reason string) error {
	_, err := s.transition(ctx, listingID, func(l *listing.Listing) error {
		return l.Suspend(reason)
	})
	if errors.Is(err, shared.ErrInvalidState) {
		s.logger.Info("Listing not suspended: not active", zap.String("listing_id", listingID.String()))
		return nil
	}
	return err
}

// ApplyRating stores a recomputed rating
func (s *Service) ApplyRating(ctx context.Context, listingID uuid.UUID, average decimal.Decimal, count int) error {
	l, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return err
	}
	l.ApplyRating(average, count)
	return s.repo.UpdateRating(ctx, l.ID, l.RatingAverage, l.ReviewCount)
}

func (s *Service) transition(ctx context.Context, listingID uuid.UUID, apply func(*listing.Listing) error) (*ListingResponse, error) {
	l, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := apply(l); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.publish(ctx, l)
	s.logger.Info("Listing status changed",
		zap.String("listing_id", l.ID.String()),
		zap.String("status", string(l.Status)))
	return s.toResponse(l), nil
}

// Get loads a listing by ID or slug. Listings that are not public are
// reported as missing to everyone except their owner and admins.
func (s *Service) Get(ctx context.Context, idOrSlug string, viewer Viewer) (*ListingResponse, error) {
	var (
		l   *listing.Listing
		err error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		l, err = s.repo.FindByID(ctx, id)
	} else {
		l, err = s.repo.FindBySlug(ctx, strings.ToLower(idOrSlug))
	}
	if err != nil {
		return nil, err
	}
	if !l.IsPublic() && !viewer.Owns(l) && !viewer.IsAdmin() {
		return nil, shared.ErrNotFound
	}
	return s.toResponse(l), nil
}

// RecordView counts a public view. Owners viewing their own listing are not counted.
// query is the search that led to the view, if any.
func (s *Service) RecordView(ctx context.Context, resp *ListingResponse, viewer Viewer, query string) {
	if resp.Status != string(listing.StatusActive) {
		return
	}
	if viewer.UserID != nil && *viewer.UserID == resp.OwnerID {
		return
	}
	if err := s.repo.IncrementViewCount(ctx, resp.ID); err != nil {
		s.logger.Warn("Failed to increment view count", zap.String("listing_id", resp.ID.String()), zap.Error(err))
	}
	if err := s.tracker.TrackListingView(ctx, resp.ID, query, viewer.VisitorID, viewer.UserID); err != nil {
		s.logger.Warn("Failed to track listing view", zap.String("listing_id", resp.ID.String()), zap.Error(err))
	}
}

// Search queries active listings. Non-empty queries are recorded for analytics.
func (s *Service) Search(ctx context.Context, input SearchInput, viewer Viewer) (shared.Paginated[ListingResponse], error) {
	paging := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	sort := listing.SortOrder(input.Sort)
	if sort == "" {
		sort = listing.SortRelevance
	}
	criteria := listing.SearchCriteria{
		Query:     strings.TrimSpace(input.Query),
		Category:  listing.NormalizeCategory(input.Category),
		City:      strings.TrimSpace(input.City),
		Tags:      splitTags(input.Tags),
		MinRating: input.MinRating,
		Sort:      sort,
		Page:      paging.Page,
		PageSize:  paging.PageSize,
	}

	items, total, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return shared.Paginated[ListingResponse]{}, err
	}
	if criteria.Query != "" {
		if err := s.tracker.TrackSearch(ctx, criteria.Query, viewer.VisitorID, viewer.UserID); err != nil {
			s.logger.Warn("Failed to track search", zap.Error(err))
		}
	}
	return shared.NewPaginated(s.toResponses(items), total, paging.Page, paging.PageSize), nil
}

// ListMine pages through the caller's listings
func (s *Service) ListMine(ctx context.Context, ownerID uuid.UUID, input ListInput) (shared.Paginated[ListingResponse], error) {
	return s.list(ctx, &ownerID, input)
}

// ListPending returns the review queue
func (s *Service) ListPending(ctx context.Context, input ListInput) (shared.Paginated[ListingResponse], error) {
	input.Status = string(listing.StatusPendingReview)
	return s.list(ctx, nil, input)
}

// ListAll pages through every listing for administrators
func (s *Service) ListAll(ctx context.Context, input ListInput) (shared.Paginated[ListingResponse], error) {
	return s.list(ctx, nil, input)
}

func (s *Service) list(ctx context.Context, ownerID *uuid.UUID, input ListInput) (shared.Paginated[ListingResponse], error) {
	paging := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	filter := listing.ListFilter{OwnerID: ownerID, Page: paging.Page, PageSize: paging.PageSize}
	if input.Status != "" {
		filter.Statuses = []listing.Status{listing.Status(input.Status)}
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[ListingResponse]{}, err
	}
	return shared.NewPaginated(s.toResponses(items), total, paging.Page, paging.PageSize), nil
}

// CountByStatus is used by the admin overview
func (s *Service) CountByStatus(ctx context.Context) (map[listing.Status]int64, error) {
	return s.repo.CountByStatus(ctx)
}

// PhotoUploadURL presigns a PUT for a new listing photo
func (s *Service) PhotoUploadURL(ctx context.Context, ownerID, listingID uuid.UUID, input PhotoUploadInput) (*PhotoUploadResponse, error) {
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if !AllowedPhotoTypes[contentType] {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Photos must be JPEG, PNG or WebP")
	}
	l, err := s.owned(ctx, ownerID, listingID)
	if err != nil {
		return nil, err
	}
	if len(l.Photos) >= listing.MaxPhotos {
		return nil, shared.NewDomainError("TOO_MANY_PHOTOS", fmt.Sprintf("A listing can have at most %d photos", listing.MaxPhotos))
	}

	up, err := s.photos.PresignUpload(ctx, storage.BuildKey(photoPrefix(listingID), input.Filename), contentType)
	if err != nil {
		s.logger.Error("Failed to presign photo upload", zap.String("listing_id", listingID.String()), zap.Error(err))
		return nil, shared.WrapDomainError("STORAGE_UNAVAILABLE", "Photo upload is unavailable", err)
	}
	return &PhotoUploadResponse{
		Key:       up.Key,
		UploadURL: up.URL,
		Method:    up.Method,
		Headers:   up.Headers,
		ExpiresAt: up.ExpiresAt,
	}, nil
}

// AttachPhoto records an uploaded photo on the listing
func (s *Service) AttachPhoto(ctx context.Context, ownerID, listingID uuid.UUID, input AttachPhotoInput) (*ListingResponse, error) {
	if !strings.HasPrefix(input.Key, photoPrefix(listingID)+"/") {
		return nil, shared.NewDomainError("INVALID_PHOTO", "Photo does not belong to this listing")
	}
	l, err := s.owned(ctx, ownerID, listingID)
	if err != nil {
		return nil, err
	}
	if err := l.AttachPhoto(input.Key); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.toResponse(l), nil
}

// RemovePhoto detaches a photo and deletes the stored object
func (s *Service) RemovePhoto(ctx context.Context, ownerID, listingID uuid.UUID, key string) (*ListingResponse, error) {
	l, err := s.owned(ctx, ownerID, listingID)
	if err != nil {
		return nil, err
	}
	if err := l.RemovePhoto(key); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	if err := s.photos.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to delete photo object", zap.String("key", key), zap.Error(err))
	}
	return s.toResponse(l), nil
}

// Titles resolves listing titles for analytics rankings
func (s *Service) Titles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	items, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(items))
	for _, l := range items {
		out[l.ID] = l.Title
	}
	return out, nil
}

// OwnedIDs returns the IDs of all listings owned by a user
func (s *Service) OwnedIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.IDsByOwner(ctx, ownerID)
}

// Owner returns the owner of a listing together with whether it is public
func (s *Service) Owner(ctx context.Context, listingID uuid.UUID) (uuid.UUID, bool, error) {
	l, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return uuid.Nil, false, err
	}
	return l.OwnerID, l.IsPublic(), nil
}

func (s *Service) owned(ctx context.Context, ownerID, listingID uuid.UUID) (*listing.Listing, error) {
	l, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !l.IsOwnedBy(ownerID) {
		return nil, errNotOwner
	}
	return l, nil
}

func (s *Service) publish(ctx context.Context, l *listing.Listing) {
	if err := shared.PublishPending(ctx, s.eventPublisher, l); err != nil {
		s.logger.Warn("Failed to publish listing events", zap.String("listing_id", l.ID.String()), zap.Error(err))
	}
}

func photoPrefix(listingID uuid.UUID) string {
	return "listings/" + listingID.String()
}

func (s *Service) toResponses(items []*listing.Listing) []ListingResponse {
	out := make([]ListingResponse, len(items))
	for i, l := range items {
		out[i] = *s.toResponse(l)
	}
	return out
}

func (s *Service) toResponse(l *listing.Listing) *ListingResponse {
	photos := make([]PhotoResponse, len(l.Photos))
	for i, key := range l.Photos {
		photos[i] = PhotoResponse{Key: key, URL: s.photos.PublicURL(key)}
	}
	return &ListingResponse{
		ID:              l.ID,
		OwnerID:         l.OwnerID,
		Title:           l.Title,
		Slug:            l.Slug,
		Description:     l.Description,
		Category:        l.Category,
		Tags:            l.Tags,
		Location:        l.Location,
		Contact:         l.Contact,
		Hours:           l.Hours,
		Amenities:       l.Amenities,
		PriceRange:      string(l.PriceRange),
		PriceFrom:       l.PriceFrom,
		Photos:          photos,
		Status:          string(l.Status),
		RejectionReason: l.RejectionReason,
		Featured:        l.Featured,
		RatingAverage:   l.RatingAverage,
		ReviewCount:     l.ReviewCount,
		ViewCount:       l.ViewCount,
		PublishedAt:     l.PublishedAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}
