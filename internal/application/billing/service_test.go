package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSubscriptionRepository is a mock implementation of billing.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, s *billing.Subscription) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByStripeSubscriptionID(ctx context.Context, id string) (*billing.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*billing.Subscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) CountActiveByPlan(ctx context.Context) (map[billing.PlanID]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[billing.PlanID]int64), args.Error(1)
}

type fakeGateway struct {
	calls []bool
	err   error
}

func (g *fakeGateway) SetCancelAtPeriodEnd(_ context.Context, _ string, cancel bool) error {
	g.calls = append(g.calls, cancel)
	return g.err
}

func testCatalog() *billing.Catalog {
	return billing.NewCatalog(billing.DefaultPlans(), map[billing.PlanID]string{
		billing.PlanPro:     "price_pro",
		billing.PlanPremium: "price_premium",
	})
}

func activeSubscription(t *testing.T, userID uuid.UUID, plan billing.PlanID) *billing.Subscription {
	t.Helper()
	sub, err := billing.NewSubscription(userID, plan, "cus_1", "sub_1")
	require.NoError(t, err)
	sub.Sync(plan, billing.StatusActive, nil, false, nil)
	sub.ClearDomainEvents()
	return sub
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestService_ListPlans(t *testing.T) {
	svc := NewService(new(MockSubscriptionRepository), testCatalog(), nil, zap.NewNop())

	plans := svc.ListPlans()
	require.Len(t, plans, 3)
	assert.Equal(t, "free", plans[0].ID)
	assert.Equal(t, 5, plans[1].MaxListings)
	assert.True(t, plans[2].FeaturedListings)
}

func TestService_GetMine(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("no subscription means free", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc := NewService(repo, testCatalog(), nil, zap.NewNop())
		repo.On("FindByUserID", ctx, userID).Return(nil, shared.ErrNotFound)

		resp, err := svc.GetMine(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "free", resp.Plan.ID)
		assert.False(t, resp.HasSubscription)
	})

	t.Run("lapsed paid plan shows free in force", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc := NewService(repo, testCatalog(), nil, zap.NewNop())
		sub := activeSubscription(t, userID, billing.PlanPro)
		sub.Status = billing.StatusUnpaid
		repo.On("FindByUserID", ctx, userID).Return(sub, nil)

		resp, err := svc.GetMine(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "free", resp.Plan.ID)
		assert.Equal(t, "pro", resp.SubscribedPlan)
		assert.Equal(t, "unpaid", resp.Status)
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("schedules cancellation once", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		gw := &fakeGateway{}
		svc := NewService(repo, testCatalog(), gw, zap.NewNop())
		sub := activeSubscription(t, userID, billing.PlanPro)
		repo.On("FindByUserID", ctx, userID).Return(sub, nil)
		repo.On("Save", ctx, sub).Return(nil).Once()

		resp, err := svc.Cancel(ctx, userID)
		require.NoError(t, err)
		assert.True(t, resp.CancelAtPeriodEnd)
		assert.Equal(t, "pro", resp.Plan.ID)

		_, err = svc.Cancel(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, []bool{true}, gw.calls)
		repo.AssertExpectations(t)
	})

	t.Run("without subscription", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc := NewService(repo, testCatalog(), &fakeGateway{}, zap.NewNop())
		repo.On("FindByUserID", ctx, userID).Return(nil, shared.ErrNotFound)

		_, err := svc.Cancel(ctx, userID)
		assert.Equal(t, "INVALID_STATE", domainCode(t, err))
	})

	t.Run("provider failure leaves the record untouched", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc := NewService(repo, testCatalog(), &fakeGateway{err: errors.New("stripe down")}, zap.NewNop())
		repo.On("FindByUserID", ctx, userID).Return(activeSubscription(t, userID, billing.PlanPro), nil)

		_, err := svc.Cancel(ctx, userID)
		assert.Equal(t, "BILLING_PROVIDER_ERROR", domainCode(t, err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("billing disabled", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc := NewService(repo, testCatalog(), nil, zap.NewNop())
		repo.On("FindByUserID", ctx, userID).Return(activeSubscription(t, userID, billing.PlanPro), nil)

		_, err := svc.Cancel(ctx, userID)
		assert.Equal(t, "BILLING_UNAVAILABLE", domainCode(t, err))
	})
}

func TestService_Resume(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	repo := new(MockSubscriptionRepository)
	gw := &fakeGateway{}
	svc := NewService(repo, testCatalog(), gw, zap.NewNop())
	sub := activeSubscription(t, userID, billing.PlanPremium)
	sub.CancelAtPeriodEnd = true
	repo.On("FindByUserID", ctx, userID).Return(sub, nil)
	repo.On("Save", ctx, sub).Return(nil)

	resp, err := svc.Resume(ctx, userID)
	require.NoError(t, err)
	assert.False(t, resp.CancelAtPeriodEnd)
	assert.Equal(t, []bool{false}, gw.calls)

	// nothing pending any more
	_, err = svc.Resume(ctx, userID)
	assert.Equal(t, "INVALID_STATE", domainCode(t, err))
}

func TestService_EffectivePlan(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		status billing.SubscriptionStatus
		want   billing.PlanID
	}{
		{"active", billing.StatusActive, billing.PlanPro},
		{"trialing", billing.StatusTrialing, billing.PlanPro},
		{"past due keeps access", billing.StatusPastDue, billing.PlanPro},
		{"canceled", billing.StatusCanceled, billing.PlanFree},
		{"incomplete", billing.StatusIncomplete, billing.PlanFree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			repo := new(MockSubscriptionRepository)
			svc := NewService(repo, testCatalog(), nil, zap.NewNop())
			sub := activeSubscription(t, userID, billing.PlanPro)
			sub.Status = tt.status
			repo.On("FindByUserID", ctx, userID).Return(sub, nil)

			plan, err := svc.EffectivePlan(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.ID)
		})
	}

	t.Run("no row", func(t *testing.T) {
		userID := uuid.New()
		repo := new(MockSubscriptionRepository)
		svc := NewService(repo, testCatalog(), nil, zap.NewNop())
		repo.On("FindByUserID", ctx, userID).Return(nil, shared.ErrNotFound)

		plan, err := svc.EffectivePlan(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, billing.PlanFree, plan.ID)
		assert.Equal(t, 1, plan.MaxListings)
	})
}
