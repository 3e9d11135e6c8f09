package billing

import (
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeSubscription = "Subscription"

const EventTypeSubscriptionChanged = "SubscriptionChanged"

// SubscriptionChangedEvent is published when a user's effective plan changes
type SubscriptionChangedEvent struct {
	shared.BaseDomainEvent
	UserID  uuid.UUID `json:"user_id"`
	OldPlan PlanID    `json:"old_plan"`
	NewPlan PlanID    `json:"new_plan"`
}

// NewSubscriptionChangedEvent creates a SubscriptionChangedEvent
func NewSubscriptionChangedEvent(s *Subscription, oldPlan, newPlan PlanID) *SubscriptionChangedEvent {
	return &SubscriptionChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionChanged, AggregateTypeSubscription, s.ID),
		UserID:          s.UserID,
		OldPlan:         oldPlan,
		NewPlan:         newPlan,
	}
}
