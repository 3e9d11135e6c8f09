package persistence

import (
	"context"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSubscriptionRepository implements billing.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// Save inserts or updates a subscription by primary key
func (r *GormSubscriptionRepository) Save(ctx context.Context, s *billing.Subscription) error {
	return r.db.WithContext(ctx).Save(models.SubscriptionModelFromDomain(s)).Error
}

// FindByUserID finds the user's subscription
func (r *GormSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*billing.Subscription, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

// FindByStripeSubscriptionID finds a subscription by its Stripe ID
func (r *GormSubscriptionRepository) FindByStripeSubscriptionID(ctx context.Context, id string) (*billing.Subscription, error) {
	return r.findOne(ctx, "stripe_subscription_id = ?", id)
}

// FindByStripeCustomerID finds a subscription by its Stripe customer
func (r *GormSubscriptionRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*billing.Subscription, error) {
	return r.findOne(ctx, "stripe_customer_id = ?", customerID)
}

func (r *GormSubscriptionRepository) findOne(ctx context.Context, cond string, arg any) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// CountActiveByPlan counts subscriptions whose status grants access
func (r *GormSubscriptionRepository) CountActiveByPlan(ctx context.Context) (map[billing.PlanID]int64, error) {
	var rows []struct {
		Plan  billing.PlanID
		Count int64
	}
	granting := []billing.SubscriptionStatus{billing.StatusActive, billing.StatusTrialing, billing.StatusPastDue}
	if err := r.db.WithContext(ctx).Model(&models.SubscriptionModel{}).
		Select("plan, COUNT(*) AS count").
		Where("status IN ?", granting).
		Group("plan").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[billing.PlanID]int64, len(rows))
	for _, row := range rows {
		counts[row.Plan] = row.Count
	}
	return counts, nil
}

var _ billing.SubscriptionRepository = (*GormSubscriptionRepository)(nil)
