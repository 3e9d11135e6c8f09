package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type fakeCustomers struct {
	users map[string]string
}

func (c *fakeCustomers) CustomerUserID(_ context.Context, customerID string) (string, error) {
	id, ok := c.users[customerID]
	if !ok {
		return "", errors.New("no such customer")
	}
	return id, nil
}

func createWebhookTestService(repo *MockSubscriptionRepository, customers CustomerDirectory) (*StripeWebhookService, *recordingPublisher) {
	svc := NewStripeWebhookService(StripeWebhookServiceConfig{
		Repo:          repo,
		Catalog:       testCatalog(),
		Idempotency:   cache.NewInMemoryIdempotencyStore(),
		Customers:     customers,
		WebhookSecret: testWebhookSecret,
		Logger:        zap.NewNop(),
	})
	pub := &recordingPublisher{}
	svc.SetEventPublisher(pub)
	return svc, pub
}

func subscriptionObject(userID string, price string, status string) map[string]any {
	return map[string]any{
		"id":                   "sub_1",
		"object":               "subscription",
		"customer":             "cus_1",
		"status":               status,
		"current_period_end":   1893456000,
		"cancel_at_period_end": false,
		"metadata":             map[string]string{"user_id": userID},
		"items": map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "si_1", "object": "subscription_item", "price": map[string]any{"id": price, "object": "price"}},
			},
		},
	}
}

func signedEvent(t *testing.T, id, eventType string, object map[string]any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: testWebhookSecret})
	return payload, signed.Header
}

func rawEvent(t *testing.T, eventType string, object map[string]any) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return stripe.Event{ID: "evt_direct", Type: stripe.EventType(eventType), Data: &stripe.EventData{Raw: raw}}
}

func TestStripeWebhookService_ProcessWebhook_InvalidSignature(t *testing.T) {
	svc, _ := createWebhookTestService(new(MockSubscriptionRepository), nil)

	result, err := svc.ProcessWebhook(context.Background(), []byte(`{"type": "customer.subscription.created"}`), "invalid_signature")
	assert.Nil(t, result)
	assert.Equal(t, "INVALID_SIGNATURE", domainCode(t, err))
}

func TestStripeWebhookService_ProcessWebhook_CreatesSubscription(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSubscriptionRepository)
	svc, pub := createWebhookTestService(repo, nil)
	userID := uuid.New()

	repo.On("FindByStripeSubscriptionID", ctx, "sub_1").Return(nil, shared.ErrNotFound)
	repo.On("FindByUserID", ctx, userID).Return(nil, shared.ErrNotFound)
	repo.On("FindByStripeCustomerID", ctx, "cus_1").Return(nil, shared.ErrNotFound)
	repo.On("Save", ctx, mock.MatchedBy(func(s *billing.Subscription) bool {
		return s.UserID == userID && s.Plan == billing.PlanPro && s.Status == billing.StatusActive &&
			s.StripeCustomerID == "cus_1" && s.CurrentPeriodEnd != nil
	})).Return(nil).Once()

	payload, header := signedEvent(t, "evt_1", "customer.subscription.created",
		subscriptionObject(userID.String(), "price_pro", "active"))

	result, err := svc.ProcessWebhook(ctx, payload, header)
	require.NoError(t, err)
	assert.True(t, result.Processed)
	assert.Equal(t, "evt_1", result.EventID)

	require.Len(t, pub.events, 1)
	changed, ok := pub.events[0].(*billing.SubscriptionChangedEvent)
	require.True(t, ok)
	assert.Equal(t, billing.PlanFree, changed.OldPlan)
	assert.Equal(t, billing.PlanPro, changed.NewPlan)

	// redelivery is acknowledged without effect
	again, err := svc.ProcessWebhook(ctx, payload, header)
	require.NoError(t, err)
	assert.False(t, again.Processed)
	repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestStripeWebhookService_ProcessWebhook_FailureCanBeRetried(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSubscriptionRepository)
	svc, _ := createWebhookTestService(repo, nil)
	sub := activeSubscription(t, uuid.New(), billing.PlanPro)

	repo.On("FindByStripeSubscriptionID", ctx, "sub_1").Return(sub, nil)
	repo.On("Save", ctx, sub).Return(errors.New("db down")).Once()
	repo.On("Save", ctx, sub).Return(nil).Once()

	payload, header := signedEvent(t, "evt_retry", "customer.subscription.updated",
		subscriptionObject(sub.UserID.String(), "price_pro", "active"))

	_, err := svc.ProcessWebhook(ctx, payload, header)
	require.Error(t, err)

	result, err := svc.ProcessWebhook(ctx, payload, header)
	require.NoError(t, err)
	assert.True(t, result.Processed)
}

func TestStripeWebhookService_ProcessWebhook_UnhandledType(t *testing.T) {
	svc, _ := createWebhookTestService(new(MockSubscriptionRepository), nil)
	payload, header := signedEvent(t, "evt_other", "charge.refunded", map[string]any{"id": "ch_1", "object": "charge"})

	result, err := svc.ProcessWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.Equal(t, "Event type not handled", result.Message)
}

func TestStripeWebhookService_handleSubscriptionUpserted_UnknownUser(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSubscriptionRepository)
	svc, _ := createWebhookTestService(repo, &fakeCustomers{})

	repo.On("FindByStripeSubscriptionID", ctx, "sub_1").Return(nil, shared.ErrNotFound)
	repo.On("FindByStripeCustomerID", ctx, "cus_1").Return(nil, shared.ErrNotFound)

	handled, err := svc.handle(ctx, rawEvent(t, "customer.subscription.created", subscriptionObject("", "price_pro", "active")))
	require.NoError(t, err)
	assert.True(t, handled)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStripeWebhookService_handleSubscriptionUpserted_UserFromCustomer(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSubscriptionRepository)
	userID := uuid.New()
	svc, _ := createWebhookTestService(repo, &fakeCustomers{users: map[string]string{"cus_1": userID.String()}})

	repo.On("FindByStripeSubscriptionID", ctx, "sub_1").Return(nil, shared.ErrNotFound)
	repo.On("FindByStripeCustomerID", ctx, "cus_1").Return(nil, shared.ErrNotFound)
	repo.On("Save", ctx, mock.MatchedBy(func(s *billing.Subscription) bool {
		return s.UserID == userID && s.Plan == billing.PlanPremium
	})).Return(nil)

	_, err := svc.handle(ctx, rawEvent(t, "customer.subscription.created", subscriptionObject("", "price_premium", "trialing")))
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStripeWebhookService_handleSubscriptionUpserted_UnknownPrice(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSubscriptionRepository)
	svc, _ := createWebhookTestService(repo, nil)

	_, err := svc.handle(ctx, rawEvent(t, "customer.subscription.updated", subscriptionObject(uuid.NewString(), "price_legacy", "active")))
	require.NoError(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStripeWebhookService_handleSubscriptionUpdated_PendingCancel(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSubscriptionRepository)
	svc, pub := createWebhookTestService(repo, nil)
	sub := activeSubscription(t, uuid.New(), billing.PlanPro)
	repo.On("FindByStripeSubscriptionID", ctx, "sub_1").Return(sub, nil)
	repo.On("Save", ctx, sub).Return(nil)

	object := subscriptionObject(sub.UserID.String(), "price_pro", "active")
	object["cancel_at_period_end"] = true
	_, err := svc.handle(ctx, rawEvent(t, "customer.subscription.updated", object))
	require.NoError(t, err)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.Empty(t, pub.events)
}

func TestStripeWebhookService_handleSubscriptionDeleted(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSubscriptionRepository)
	svc, pub := createWebhookTestService(repo, nil)
	sub := activeSubscription(t, uuid.New(), billing.PlanPremium)
	repo.On("FindByStripeSubscriptionID", ctx, "sub_1").Return(sub, nil)
	repo.On("Save", ctx, sub).Return(nil)

	object := subscriptionObject(sub.UserID.String(), "price_premium", "canceled")
	object["canceled_at"] = 1893456000
	_, err := svc.handle(ctx, rawEvent(t, "customer.subscription.deleted", object))
	require.NoError(t, err)
	assert.Equal(t, billing.StatusCanceled, sub.Status)
	require.NotNil(t, sub.CanceledAt)
	require.Len(t, pub.events, 1)
	assert.Equal(t, billing.EventTypeSubscriptionChanged, pub.events[0].EventType())
}

func TestStripeWebhookService_handleSubscriptionDeleted_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSubscriptionRepository)
	svc, _ := createWebhookTestService(repo, nil)
	userID := uuid.New()
	repo.On("FindByStripeSubscriptionID", ctx, "sub_1").Return(nil, shared.ErrNotFound)
	repo.On("FindByUserID", ctx, userID).Return(nil, shared.ErrNotFound)
	repo.On("FindByStripeCustomerID", ctx, "cus_1").Return(nil, shared.ErrNotFound)

	_, err := svc.handle(ctx, rawEvent(t, "customer.subscription.deleted", subscriptionObject(userID.String(), "price_pro", "canceled")))
	assert.NoError(t, err)
}

func TestStripeWebhookService_handleInvoice(t *testing.T) {
	ctx := context.Background()
	invoice := map[string]any{"id": "in_1", "object": "invoice", "customer": "cus_1", "subscription": "sub_1"}

	t.Run("payment failed marks past due", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc, pub := createWebhookTestService(repo, nil)
		sub := activeSubscription(t, uuid.New(), billing.PlanPro)
		repo.On("FindByStripeSubscriptionID", ctx, "sub_1").Return(sub, nil)
		repo.On("Save", ctx, sub).Return(nil)

		_, err := svc.handle(ctx, rawEvent(t, "invoice.payment_failed", invoice))
		require.NoError(t, err)
		assert.Equal(t, billing.StatusPastDue, sub.Status)
		assert.Empty(t, pub.events)
	})

	t.Run("paid clears past due", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc, _ := createWebhookTestService(repo, nil)
		sub := activeSubscription(t, uuid.New(), billing.PlanPro)
		sub.MarkPastDue()
		repo.On("FindByStripeSubscriptionID", ctx, "sub_1").Return(sub, nil)
		repo.On("Save", ctx, sub).Return(nil)

		_, err := svc.handle(ctx, rawEvent(t, "invoice.paid", invoice))
		require.NoError(t, err)
		assert.Equal(t, billing.StatusActive, sub.Status)
	})

	t.Run("non-subscription invoice is skipped", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc, _ := createWebhookTestService(repo, nil)

		_, err := svc.handle(ctx, rawEvent(t, "invoice.paid", map[string]any{"id": "in_2", "object": "invoice", "customer": "cus_1"}))
		require.NoError(t, err)
		repo.AssertNotCalled(t, "FindByStripeSubscriptionID", mock.Anything, mock.Anything)
	})

	t.Run("lookup error is returned", func(t *testing.T) {
		repo := new(MockSubscriptionRepository)
		svc, _ := createWebhookTestService(repo, nil)
		repo.On("FindByStripeSubscriptionID", ctx, "sub_1").Return(nil, errors.New("db down"))

		_, err := svc.handle(ctx, rawEvent(t, "invoice.paid", invoice))
		assert.Error(t, err)
	})
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, billing.StatusActive, mapStatus(stripe.SubscriptionStatusActive))
	assert.Equal(t, billing.StatusCanceled, mapStatus(stripe.SubscriptionStatusIncompleteExpired))
	assert.Equal(t, billing.StatusUnpaid, mapStatus(stripe.SubscriptionStatusPaused))
	assert.Equal(t, billing.StatusIncomplete, mapStatus(stripe.SubscriptionStatusIncomplete))
}
