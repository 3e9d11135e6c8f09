package billing

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionRepository defines persistence for subscriptions
type SubscriptionRepository interface {
	Save(ctx context.Context, s *Subscription) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	FindByStripeSubscriptionID(ctx context.Context, id string) (*Subscription, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*Subscription, error)
	// CountActiveByPlan counts subscriptions whose status grants access
	CountActiveByPlan(ctx context.Context) (map[PlanID]int64, error)
}
