package billing

import (
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SubscriptionStatus mirrors the provider's subscription status
type SubscriptionStatus string

const (
	StatusActive     SubscriptionStatus = "active"
	StatusTrialing   SubscriptionStatus = "trialing"
	StatusPastDue    SubscriptionStatus = "past_due"
	StatusCanceled   SubscriptionStatus = "canceled"
	StatusIncomplete SubscriptionStatus = "incomplete"
	StatusUnpaid     SubscriptionStatus = "unpaid"
)

// GrantsAccess reports whether the paid plan is in effect in this status
func (s SubscriptionStatus) GrantsAccess() bool {
	return s == StatusActive || s == StatusTrialing || s == StatusPastDue
}

// Subscription is a user's paid plan as known to the payment provider
type Subscription struct {
	shared.BaseAggregateRoot
	UserID               uuid.UUID
	Plan                 PlanID
	Status               SubscriptionStatus
	StripeCustomerID     string
	StripeSubscriptionID string
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
	CanceledAt           *time.Time
}

// NewSubscription creates a subscription record for a user
func NewSubscription(userID uuid.UUID, plan PlanID, customerID, subscriptionID string) (*Subscription, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User is required")
	}
	if !plan.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLAN", "Unknown plan")
	}
	return &Subscription{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		UserID:               userID,
		Plan:                 plan,
		Status:               StatusIncomplete,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: subscriptionID,
	}, nil
}

// Sync applies the provider's current view of the subscription.
// It reports whether the plan or access changed.
func (s *Subscription) Sync(plan PlanID, status SubscriptionStatus, periodEnd *time.Time, cancelAtPeriodEnd bool, canceledAt *time.Time) bool {
	before := s.EffectivePlan()
	s.Plan = plan
	s.Status = status
	s.CurrentPeriodEnd = periodEnd
	s.CancelAtPeriodEnd = cancelAtPeriodEnd
	s.CanceledAt = canceledAt
	s.IncrementVersion()
	return s.emitIfChanged(before)
}

// MarkCanceled records that the provider ended the subscription
func (s *Subscription) MarkCanceled(at time.Time) bool {
	before := s.EffectivePlan()
	s.Status = StatusCanceled
	s.CancelAtPeriodEnd = false
	s.CanceledAt = &at
	s.IncrementVersion()
	return s.emitIfChanged(before)
}

// MarkPastDue records a failed payment
func (s *Subscription) MarkPastDue() {
	if s.Status == StatusCanceled {
		return
	}
	s.Status = StatusPastDue
	s.IncrementVersion()
}

// MarkPaid records a successful payment, clearing past_due
func (s *Subscription) MarkPaid() bool {
	before := s.EffectivePlan()
	if s.Status == StatusPastDue || s.Status == StatusIncomplete || s.Status == StatusUnpaid {
		s.Status = StatusActive
		s.IncrementVersion()
	}
	return s.emitIfChanged(before)
}

// RequestCancel flags the subscription to end at period end. Repeating it is a no-op.
func (s *Subscription) RequestCancel() (bool, error) {
	if s.StripeSubscriptionID == "" {
		return false, shared.NewDomainError("INVALID_STATE", "There is no paid subscription to cancel")
	}
	if s.Status == StatusCanceled {
		return false, shared.NewDomainError("INVALID_STATE", "Subscription is already canceled")
	}
	if s.CancelAtPeriodEnd {
		return false, nil
	}
	s.CancelAtPeriodEnd = true
	s.IncrementVersion()
	return true, nil
}

// Resume clears a pending cancellation
func (s *Subscription) Resume() error {
	if s.Status == StatusCanceled {
		return shared.NewDomainError("INVALID_STATE", "A canceled subscription cannot be resumed")
	}
	if !s.CancelAtPeriodEnd {
		return shared.NewDomainError("INVALID_STATE", "Subscription is not scheduled for cancellation")
	}
	s.CancelAtPeriodEnd = false
	s.IncrementVersion()
	return nil
}

// EffectivePlan is the plan currently in force
func (s *Subscription) EffectivePlan() PlanID {
	if s == nil || !s.Status.GrantsAccess() {
		return PlanFree
	}
	return s.Plan
}

func (s *Subscription) emitIfChanged(before PlanID) bool {
	after := s.EffectivePlan()
	if before == after {
		return false
	}
	s.AddDomainEvent(NewSubscriptionChangedEvent(s, before, after))
	return true
}
