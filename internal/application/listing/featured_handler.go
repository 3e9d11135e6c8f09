package listing

import (
	"context"
	"fmt"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/domain/listing"
	"github.com/bizdir/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FeaturedSyncHandler updates featured placement when a user's plan changes
type FeaturedSyncHandler struct {
	repo    listing.Repository
	catalog *billing.Catalog
	logger  *zap.Logger
}

// NewFeaturedSyncHandler creates the handler
func NewFeaturedSyncHandler(repo listing.Repository, catalog *billing.Catalog, logger *zap.Logger) *FeaturedSyncHandler {
	return &FeaturedSyncHandler{repo: repo, catalog: catalog, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *FeaturedSyncHandler) EventTypes() []string {
	return []string{billing.EventTypeSubscriptionChanged}
}

// Handle features or unfeatures every active listing of the subscriber
func (h *FeaturedSyncHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*billing.SubscriptionChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			billing.EventTypeSubscriptionChanged, event.EventType())
	}

	featured := h.catalog.Get(changed.NewPlan).FeaturedListings
	ids, err := h.repo.IDsByOwner(ctx, changed.UserID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	listings, err := h.repo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	updated := 0
	for _, l := range listings {
		if l.Status != listing.StatusActive && featured {
			continue
		}
		if !l.SetFeatured(featured) {
			continue
		}
		if err := h.repo.Update(ctx, l); err != nil {
			return err
		}
		updated++
	}

	h.logger.Info("Featured listings synced",
		zap.String("user_id", changed.UserID.String()),
		zap.String("plan", string(changed.NewPlan)),
		zap.Bool("featured", featured),
		zap.Int("updated", updated))
	return nil
}

var _ shared.EventHandler = (*FeaturedSyncHandler)(nil)
