package models

import (
	"time"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// SubscriptionModel is the persistence model for a user's subscription.
type SubscriptionModel struct {
	AggregateModel
	UserID               uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex"`
	Plan                 billing.PlanID             `gorm:"type:varchar(20);not null;default:'free'"`
	Status               billing.SubscriptionStatus `gorm:"type:varchar(20);not null;index"`
	StripeCustomerID     string                     `gorm:"type:varchar(100);index"`
	StripeSubscriptionID string                     `gorm:"type:varchar(100);index"`
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool `gorm:"not null;default:false"`
	CanceledAt           *time.Time
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription.
func (m *SubscriptionModel) ToDomain() *billing.Subscription {
	return &billing.Subscription{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		UserID:               m.UserID,
		Plan:                 m.Plan,
		Status:               m.Status,
		StripeCustomerID:     m.StripeCustomerID,
		StripeSubscriptionID: m.StripeSubscriptionID,
		CurrentPeriodEnd:     m.CurrentPeriodEnd,
		CancelAtPeriodEnd:    m.CancelAtPeriodEnd,
		CanceledAt:           m.CanceledAt,
	}
}

// SubscriptionModelFromDomain creates a new persistence model from a domain Subscription.
func SubscriptionModelFromDomain(s *billing.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{
		UserID:               s.UserID,
		Plan:                 s.Plan,
		Status:               s.Status,
		StripeCustomerID:     s.StripeCustomerID,
		StripeSubscriptionID: s.StripeSubscriptionID,
		CurrentPeriodEnd:     s.CurrentPeriodEnd,
		CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
		CanceledAt:           s.CanceledAt,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}
