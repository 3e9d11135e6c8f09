package review

import (
	"context"
	"fmt"

	"github.com/bizdir/backend/internal/domain/review"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RatingSink stores a recomputed listing rating
type RatingSink interface {
	ApplyRating(ctx context.Context, listingID uuid.UUID, average decimal.Decimal, count int) error
}

// RatingRecalculator recomputes a listing's rating from its published reviews
// whenever one of them changes. The rating is always rebuilt from the
// repository so replayed events cannot double count.
type RatingRecalculator struct {
	repo   review.Repository
	sink   RatingSink
	logger *zap.Logger
}

// NewRatingRecalculator creates the handler
func NewRatingRecalculator(repo review.Repository, sink RatingSink, logger *zap.Logger) *RatingRecalculator {
	return &RatingRecalculator{repo: repo, sink: sink, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *RatingRecalculator) EventTypes() []string {
	return review.RatingAffectingEvents
}

// Handle recomputes the rating of the event's listing
func (h *RatingRecalculator) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*review.ReviewEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
	stats, err := h.repo.RatingStats(ctx, e.ListingID)
	if err != nil {
		return fmt.Errorf("failed to load rating stats: %w", err)
	}
	if err := h.sink.ApplyRating(ctx, e.ListingID, stats.Average, stats.Count); err != nil {
		return err
	}
	h.logger.Debug("Listing rating recomputed",
		zap.String("listing_id", e.ListingID.String()),
		zap.String("average", stats.Average.StringFixed(2)),
		zap.Int("count", stats.Count))
	return nil
}

var _ shared.EventHandler = (*RatingRecalculator)(nil)
