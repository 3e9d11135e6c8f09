package billing

import (
	"time"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// PlanResponse is a public catalog entry
type PlanResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	MonthlyPrice     decimal.Decimal `json:"monthly_price"`
	MaxListings      int             `json:"max_listings"`
	FeaturedListings bool            `json:"featured_listings"`
}

// ToPlanResponse converts a plan to its response form
func ToPlanResponse(p billing.Plan) PlanResponse {
	return PlanResponse{
		ID:               string(p.ID),
		Name:             p.Name,
		MonthlyPrice:     p.MonthlyPrice,
		MaxListings:      p.MaxListings,
		FeaturedListings: p.FeaturedListings,
	}
}

// SubscriptionResponse describes the caller's subscription. Plan is the
// plan currently in force, which is free when the paid plan lapsed.
type SubscriptionResponse struct {
	Plan              PlanResponse `json:"plan"`
	SubscribedPlan    string       `json:"subscribed_plan"`
	Status            string       `json:"status"`
	HasSubscription   bool         `json:"has_subscription"`
	CurrentPeriodEnd  *time.Time   `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool         `json:"cancel_at_period_end"`
	CanceledAt        *time.Time   `json:"canceled_at,omitempty"`
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}
