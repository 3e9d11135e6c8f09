package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// WebhookIdempotencyTTL is how long processed event IDs are remembered
const WebhookIdempotencyTTL = 24 * time.Hour

// ErrInvalidSignature is returned for webhook payloads that fail verification
var ErrInvalidSignature = shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")

const (
	metadataUserID = "user_id"
	metadataPlan   = "plan"
)

// CustomerDirectory resolves the user behind a provider customer
type CustomerDirectory interface {
	CustomerUserID(ctx context.Context, customerID string) (string, error)
}

// StripeWebhookService keeps local subscriptions in sync with Stripe
type StripeWebhookService struct {
	repo           billing.SubscriptionRepository
	catalog        *billing.Catalog
	idempotency    shared.IdempotencyStore
	customers      CustomerDirectory
	webhookSecret  string
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// StripeWebhookServiceConfig contains configuration for StripeWebhookService
type StripeWebhookServiceConfig struct {
	Repo          billing.SubscriptionRepository
	Catalog       *billing.Catalog
	Idempotency   shared.IdempotencyStore
	Customers     CustomerDirectory
	WebhookSecret string
	Logger        *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(cfg StripeWebhookServiceConfig) *StripeWebhookService {
	return &StripeWebhookService{
		repo:          cfg.Repo,
		catalog:       cfg.Catalog,
		idempotency:   cfg.Idempotency,
		customers:     cfg.Customers,
		webhookSecret: cfg.WebhookSecret,
		logger:        cfg.Logger,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *StripeWebhookService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ProcessWebhook verifies and applies a Stripe webhook event. Events already
// processed within WebhookIdempotencyTTL are acknowledged without effect.
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.logger.Warn("Failed to verify webhook signature", zap.Error(err))
		return nil, shared.WrapDomainError(ErrInvalidSignature.Code, ErrInvalidSignature.Message, err)
	}

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	fresh, err := s.idempotency.MarkProcessed(ctx, "stripe:"+event.ID, WebhookIdempotencyTTL)
	if err != nil {
		return nil, err
	}
	if !fresh {
		s.logger.Info("Skipping duplicate webhook event", zap.String("event_id", event.ID))
		result.Processed = false
		result.Message = "Event already processed"
		return result, nil
	}

	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	handled, err := s.handle(ctx, event)
	if err != nil {
		if relErr := s.idempotency.Release(ctx, "stripe:"+event.ID); relErr != nil {
			s.logger.Warn("Failed to release webhook event", zap.String("event_id", event.ID), zap.Error(relErr))
		}
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return nil, err
	}
	if !handled {
		result.Message = "Event type not handled"
	}
	return result, nil
}

func (s *StripeWebhookService) handle(ctx context.Context, event stripe.Event) (bool, error) {
	var err error
	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		err = s.handleSubscriptionUpserted(ctx, event)
	case "customer.subscription.deleted":
		err = s.handleSubscriptionDeleted(ctx, event)
	case "invoice.paid":
		err = s.handleInvoice(ctx, event, true)
	case "invoice.payment_failed":
		err = s.handleInvoice(ctx, event, false)
	default:
		s.logger.Debug("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
		return false, nil
	}
	return true, err
}

// handleSubscriptionUpserted handles customer.subscription.created and updated events
func (s *StripeWebhookService) handleSubscriptionUpserted(ctx context.Context, event stripe.Event) error {
	var remote stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &remote); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}
	customerID := ""
	if remote.Customer != nil {
		customerID = remote.Customer.ID
	}

	plan, ok := s.planOf(&remote)
	if !ok {
		s.logger.Warn("Subscription price does not match any plan, skipping",
			zap.String("subscription_id", remote.ID))
		return nil
	}

	sub, err := s.locate(ctx, remote.ID, customerID, remote.Metadata[metadataUserID])
	if err != nil {
		return err
	}
	if sub == nil {
		userID, ok := s.resolveUser(ctx, remote.Metadata[metadataUserID], customerID)
		if !ok {
			s.logger.Warn("Subscription for unknown user acknowledged",
				zap.String("subscription_id", remote.ID),
				zap.String("customer_id", customerID))
			return nil
		}
		sub, err = billing.NewSubscription(userID, plan, customerID, remote.ID)
		if err != nil {
			return err
		}
	}
	sub.StripeSubscriptionID = remote.ID
	if customerID != "" {
		sub.StripeCustomerID = customerID
	}

	sub.Sync(plan, mapStatus(remote.Status), unixPtr(remote.CurrentPeriodEnd), remote.CancelAtPeriodEnd, unixPtr(remote.CanceledAt))
	if err := s.save(ctx, sub); err != nil {
		return err
	}

	s.logger.Info("Subscription synced",
		zap.String("user_id", sub.UserID.String()),
		zap.String("subscription_id", remote.ID),
		zap.String("plan", string(plan)),
		zap.String("status", string(sub.Status)))
	return nil
}

// handleSubscriptionDeleted handles customer.subscription.deleted events
func (s *StripeWebhookService) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var remote stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &remote); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}
	customerID := ""
	if remote.Customer != nil {
		customerID = remote.Customer.ID
	}

	sub, err := s.locate(ctx, remote.ID, customerID, remote.Metadata[metadataUserID])
	if err != nil {
		return err
	}
	if sub == nil {
		s.logger.Warn("Deleted subscription not found locally",
			zap.String("subscription_id", remote.ID))
		return nil
	}

	canceledAt := s.now().UTC()
	if remote.CanceledAt > 0 {
		canceledAt = time.Unix(remote.CanceledAt, 0).UTC()
	}
	sub.MarkCanceled(canceledAt)
	if err := s.save(ctx, sub); err != nil {
		return err
	}

	s.logger.Info("Subscription canceled",
		zap.String("user_id", sub.UserID.String()),
		zap.String("subscription_id", remote.ID))
	return nil
}

// handleInvoice handles invoice.paid and invoice.payment_failed events
func (s *StripeWebhookService) handleInvoice(ctx context.Context, event stripe.Event, paid bool) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		s.logger.Debug("Invoice is not for a subscription, skipping", zap.String("invoice_id", invoice.ID))
		return nil
	}
	customerID := ""
	if invoice.Customer != nil {
		customerID = invoice.Customer.ID
	}

	sub, err := s.locate(ctx, invoice.Subscription.ID, customerID, "")
	if err != nil {
		return err
	}
	if sub == nil {
		s.logger.Warn("Invoice for unknown subscription acknowledged",
			zap.String("invoice_id", invoice.ID),
			zap.String("subscription_id", invoice.Subscription.ID))
		return nil
	}

	if paid {
		sub.MarkPaid()
	} else {
		sub.MarkPastDue()
		s.logger.Warn("Subscription payment failed",
			zap.String("user_id", sub.UserID.String()),
			zap.String("invoice_id", invoice.ID))
	}
	return s.save(ctx, sub)
}

// locate finds the local subscription by provider subscription, then user, then customer.
// It returns nil without error when none matches.
func (s *StripeWebhookService) locate(ctx context.Context, subscriptionID, customerID, userID string) (*billing.Subscription, error) {
	lookups := []func() (*billing.Subscription, error){
		func() (*billing.Subscription, error) {
			if subscriptionID == "" {
				return nil, shared.ErrNotFound
			}
			return s.repo.FindByStripeSubscriptionID(ctx, subscriptionID)
		},
		func() (*billing.Subscription, error) {
			id, err := uuid.Parse(userID)
			if err != nil {
				return nil, shared.ErrNotFound
			}
			return s.repo.FindByUserID(ctx, id)
		},
		func() (*billing.Subscription, error) {
			if customerID == "" {
				return nil, shared.ErrNotFound
			}
			return s.repo.FindByStripeCustomerID(ctx, customerID)
		},
	}
	for _, lookup := range lookups {
		sub, err := lookup()
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to find subscription: %w", err)
		}
	}
	return nil, nil
}

// resolveUser reads the user from subscription metadata, falling back to the customer's metadata
func (s *StripeWebhookService) resolveUser(ctx context.Context, metadataUser, customerID string) (uuid.UUID, bool) {
	if id, err := uuid.Parse(metadataUser); err == nil {
		return id, true
	}
	if s.customers == nil || customerID == "" {
		return uuid.Nil, false
	}
	raw, err := s.customers.CustomerUserID(ctx, customerID)
	if err != nil {
		s.logger.Warn("Failed to look up Stripe customer", zap.String("customer_id", customerID), zap.Error(err))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// planOf maps the subscription's first price to a plan, falling back to the plan metadata
func (s *StripeWebhookService) planOf(remote *stripe.Subscription) (billing.PlanID, bool) {
	if remote.Items != nil {
		for _, item := range remote.Items.Data {
			if item == nil || item.Price == nil {
				continue
			}
			if plan, ok := s.catalog.ByPriceID(item.Price.ID); ok {
				return plan.ID, true
			}
		}
	}
	if id := billing.PlanID(remote.Metadata[metadataPlan]); id.IsValid() {
		return id, true
	}
	return "", false
}

func (s *StripeWebhookService) save(ctx context.Context, sub *billing.Subscription) error {
	if err := s.repo.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	if err := shared.PublishPending(ctx, s.eventPublisher, sub); err != nil {
		s.logger.Warn("Failed to publish subscription events",
			zap.String("user_id", sub.UserID.String()),
			zap.Error(err))
	}
	return nil
}

// mapStatus maps Stripe subscription status to ours
func mapStatus(status stripe.SubscriptionStatus) billing.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return billing.StatusActive
	case stripe.SubscriptionStatusTrialing:
		return billing.StatusTrialing
	case stripe.SubscriptionStatusPastDue:
		return billing.StatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return billing.StatusCanceled
	case stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusPaused:
		return billing.StatusUnpaid
	default:
		return billing.StatusIncomplete
	}
}

func unixPtr(ts int64) *time.Time {
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
