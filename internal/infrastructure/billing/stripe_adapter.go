package billing

import (
	"context"
	"fmt"

	"github.com/bizdir/backend/internal/infrastructure/config"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/subscription"
	"go.uber.org/zap"
)

// metadataUserID is the customer/subscription metadata key carrying our user ID
const metadataUserID = "user_id"

// StripeAdapter talks to the Stripe API for subscription management
type StripeAdapter struct {
	logger *zap.Logger
}

// NewStripeAdapter validates the configuration and initializes the Stripe client
func NewStripeAdapter(cfg config.StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	initStripeClient(cfg)
	return &StripeAdapter{logger: logger}, nil
}

// SetCancelAtPeriodEnd schedules or withdraws cancellation at the end of the billing period
func (a *StripeAdapter) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) error {
	a.logger.Debug("Updating Stripe subscription",
		zap.String("subscription_id", subscriptionID),
		zap.Bool("cancel_at_period_end", cancel))

	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	params.Context = ctx

	sub, err := subscription.Update(subscriptionID, params)
	if err != nil {
		a.logger.Error("Failed to update Stripe subscription",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return fmt.Errorf("stripe: failed to update subscription: %w", err)
	}

	a.logger.Info("Updated Stripe subscription",
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(sub.Status)),
		zap.Bool("cancel_at_period_end", sub.CancelAtPeriodEnd))
	return nil
}

// CustomerUserID returns the user ID stored in a customer's metadata
func (a *StripeAdapter) CustomerUserID(ctx context.Context, customerID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := customer.Get(customerID, params)
	if err != nil {
		a.logger.Error("Failed to get Stripe customer",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to get customer: %w", err)
	}
	if cust.Deleted {
		return "", fmt.Errorf("stripe: customer %s was deleted", customerID)
	}
	return cust.Metadata[metadataUserID], nil
}
