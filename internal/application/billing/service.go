package billing

import (
	"context"
	"errors"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errNoSubscription     = shared.NewDomainError("INVALID_STATE", "There is no paid subscription")
	errBillingUnavailable = shared.NewDomainError("BILLING_UNAVAILABLE", "Billing is not configured")
)

// SubscriptionGateway changes subscriptions at the payment provider
type SubscriptionGateway interface {
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) error
}

// Service implements plan and subscription use cases
type Service struct {
	repo    billing.SubscriptionRepository
	catalog *billing.Catalog
	gateway SubscriptionGateway
	logger  *zap.Logger
}

// NewService creates a new billing service. gateway is nil when Stripe is disabled.
func NewService(repo billing.SubscriptionRepository, catalog *billing.Catalog, gateway SubscriptionGateway, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		gateway: gateway,
		logger:  logger,
	}
}

// ListPlans returns the plan catalog
func (s *Service) ListPlans() []PlanResponse {
	plans := s.catalog.Plans()
	out := make([]PlanResponse, len(plans))
	for i, p := range plans {
		out[i] = ToPlanResponse(p)
	}
	return out
}

// GetMine returns the caller's subscription, or the implicit free plan
func (s *Service) GetMine(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	sub, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(sub), nil
}

// Cancel schedules the subscription to end at period end. Repeating it is a no-op.
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	sub, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errNoSubscription
	}
	changed, err := sub.RequestCancel()
	if err != nil {
		return nil, err
	}
	if !changed {
		return s.toResponse(sub), nil
	}
	if err := s.setCancel(ctx, sub, true); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info("Subscription cancellation requested",
		zap.String("user_id", userID.String()),
		zap.String("subscription_id", sub.StripeSubscriptionID))
	return s.toResponse(sub), nil
}

// Resume withdraws a pending cancellation
func (s *Service) Resume(ctx context.Context, userID uuid.UUID) (*SubscriptionResponse, error) {
	sub, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.StripeSubscriptionID == "" {
		return nil, errNoSubscription
	}
	if err := sub.Resume(); err != nil {
		return nil, err
	}
	if err := s.setCancel(ctx, sub, false); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info("Subscription resumed", zap.String("user_id", userID.String()))
	return s.toResponse(sub), nil
}

func (s *Service) setCancel(ctx context.Context, sub *billing.Subscription, cancel bool) error {
	if s.gateway == nil {
		return errBillingUnavailable
	}
	if err := s.gateway.SetCancelAtPeriodEnd(ctx, sub.StripeSubscriptionID, cancel); err != nil {
		s.logger.Error("Payment provider rejected subscription change",
			zap.String("subscription_id", sub.StripeSubscriptionID),
			zap.Bool("cancel", cancel),
			zap.Error(err))
		return shared.WrapDomainError("BILLING_PROVIDER_ERROR", "The payment provider could not update the subscription", err)
	}
	return nil
}

// EffectivePlan returns the plan in force for a user. Users without an
// access-granting subscription are on free.
func (s *Service) EffectivePlan(ctx context.Context, userID uuid.UUID) (billing.Plan, error) {
	sub, err := s.find(ctx, userID)
	if err != nil {
		return billing.Plan{}, err
	}
	return s.catalog.Get(sub.EffectivePlan()), nil
}

// CountActiveByPlan counts paying subscribers per plan
func (s *Service) CountActiveByPlan(ctx context.Context) (map[billing.PlanID]int64, error) {
	return s.repo.CountActiveByPlan(ctx)
}

// find returns nil without error when the user never subscribed
func (s *Service) find(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	sub, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

func (s *Service) toResponse(sub *billing.Subscription) *SubscriptionResponse {
	if sub == nil {
		return &SubscriptionResponse{
			Plan:           ToPlanResponse(s.catalog.Free()),
			SubscribedPlan: string(billing.PlanFree),
			Status:         string(billing.StatusActive),
		}
	}
	return &SubscriptionResponse{
		Plan:              ToPlanResponse(s.catalog.Get(sub.EffectivePlan())),
		SubscribedPlan:    string(sub.Plan),
		Status:            string(sub.Status),
		HasSubscription:   sub.StripeSubscriptionID != "",
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CanceledAt:        sub.CanceledAt,
	}
}
