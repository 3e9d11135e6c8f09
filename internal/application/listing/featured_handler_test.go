package listing

import (
	"context"
	"testing"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/domain/listing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFeaturedSyncHandler(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	active := activeListing(t, ownerID)
	draft := draftListing(t, ownerID)
	ids := []uuid.UUID{active.ID, draft.ID}

	repo := new(MockListingRepository)
	repo.On("IDsByOwner", ctx, ownerID).Return(ids, nil)
	repo.On("FindByIDs", ctx, ids).Return([]*listing.Listing{active, draft}, nil)
	repo.On("Update", ctx, active).Return(nil)

	h := NewFeaturedSyncHandler(repo, billing.NewCatalog(billing.DefaultPlans(), nil), zap.NewNop())
	assert.Equal(t, []string{billing.EventTypeSubscriptionChanged}, h.EventTypes())

	sub, err := billing.NewSubscription(ownerID, billing.PlanPremium, "cus_1", "sub_1")
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, billing.NewSubscriptionChangedEvent(sub, billing.PlanFree, billing.PlanPremium)))
	assert.True(t, active.Featured)
	assert.False(t, draft.Featured)

	require.NoError(t, h.Handle(ctx, billing.NewSubscriptionChangedEvent(sub, billing.PlanPremium, billing.PlanFree)))
	assert.False(t, active.Featured)
	repo.AssertNumberOfCalls(t, "Update", 2)
}
