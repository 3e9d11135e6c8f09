// Package billing provides domain models for directory subscriptions.
//
// A user's plan decides how many listings they may keep and whether their
// active listings receive featured placement. Payment state lives with the
// payment provider; this package mirrors it:
//   - Plan: catalog entry with price and limits
//   - Subscription: the provider's subscription for one user, synced from webhooks
//
// Users without a subscription row are on the free plan.
package billing
