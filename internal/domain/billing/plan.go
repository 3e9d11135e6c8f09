package billing

import (
	"github.com/shopspring/decimal"
)

// PlanID identifies a subscription plan
type PlanID string

const (
	PlanFree    PlanID = "free"
	PlanPro     PlanID = "pro"
	PlanPremium PlanID = "premium"
)

// IsValid reports whether p is a known plan
func (p PlanID) IsValid() bool {
	switch p {
	case PlanFree, PlanPro, PlanPremium:
		return true
	}
	return false
}

// Plan is a catalog entry. MaxListings of 0 means unlimited.
type Plan struct {
	ID               PlanID          `json:"id"`
	Name             string          `json:"name"`
	MonthlyPrice     decimal.Decimal `json:"monthly_price"`
	MaxListings      int             `json:"max_listings"`
	FeaturedListings bool            `json:"featured_listings"`
	StripePriceID    string          `json:"-"`
}

// AllowsListings reports whether a user holding current listings may add another
func (p Plan) AllowsListings(current int64) bool {
	return p.MaxListings == 0 || current < int64(p.MaxListings)
}

// Catalog resolves plans by ID and by provider price ID
type Catalog struct {
	plans []Plan
}

// DefaultPlans returns the built-in plan set without provider price IDs
func DefaultPlans() []Plan {
	return []Plan{
		{ID: PlanFree, Name: "Free", MonthlyPrice: decimal.Zero, MaxListings: 1},
		{ID: PlanPro, Name: "Pro", MonthlyPrice: decimal.RequireFromString("19.00"), MaxListings: 5},
		{ID: PlanPremium, Name: "Premium", MonthlyPrice: decimal.RequireFromString("49.00"), MaxListings: 0, FeaturedListings: true},
	}
}

// NewCatalog builds a catalog, attaching provider price IDs by plan
func NewCatalog(plans []Plan, priceIDs map[PlanID]string) *Catalog {
	out := make([]Plan, len(plans))
	copy(out, plans)
	for i := range out {
		if id, ok := priceIDs[out[i].ID]; ok {
			out[i].StripePriceID = id
		}
	}
	return &Catalog{plans: out}
}

// Plans returns all plans in catalog order
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// Get returns the plan with id, falling back to free
func (c *Catalog) Get(id PlanID) Plan {
	for _, p := range c.plans {
		if p.ID == id {
			return p
		}
	}
	return c.Free()
}

// Free returns the free plan
func (c *Catalog) Free() Plan {
	for _, p := range c.plans {
		if p.ID == PlanFree {
			return p
		}
	}
	return Plan{ID: PlanFree, Name: "Free", MonthlyPrice: decimal.Zero, MaxListings: 1}
}

// ByPriceID looks up the plan sold under a provider price ID
func (c *Catalog) ByPriceID(priceID string) (Plan, bool) {
	if priceID == "" {
		return Plan{}, false
	}
	for _, p := range c.plans {
		if p.StripePriceID == priceID {
			return p, true
		}
	}
	return Plan{}, false
}
