package billing

import (
	"fmt"
	"strings"

	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/infrastructure/config"
	"github.com/stripe/stripe-go/v81"
)

// ValidateConfig checks the Stripe settings needed for subscription sync
func ValidateConfig(cfg config.StripeConfig) error {
	if cfg.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(cfg.SecretKey, "sk_") && !strings.HasPrefix(cfg.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key must be a secret or restricted key")
	}
	if !strings.HasPrefix(cfg.WebhookSecret, "whsec_") {
		return fmt.Errorf("stripe: webhook secret must start with whsec_")
	}
	if cfg.ProPriceID == "" || cfg.PremiumPriceID == "" {
		return fmt.Errorf("stripe: price IDs for pro and premium are required")
	}
	return nil
}

// PriceIDs maps paid plans to their configured Stripe prices
func PriceIDs(cfg config.StripeConfig) map[billing.PlanID]string {
	return map[billing.PlanID]string{
		billing.PlanPro:     cfg.ProPriceID,
		billing.PlanPremium: cfg.PremiumPriceID,
	}
}

// initStripeClient sets the package-level API key used by the stripe-go resource clients
func initStripeClient(cfg config.StripeConfig) {
	stripe.Key = cfg.SecretKey
}
