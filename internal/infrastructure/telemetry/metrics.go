package telemetry

import (
	"context"

	"github.com/bizdir/backend/internal/domain/analytics"
	"github.com/bizdir/backend/internal/domain/moderation"
	"github.com/bizdir/backend/internal/domain/review"
	"github.com/bizdir/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DirectoryMetrics holds the business counters of the directory
type DirectoryMetrics struct {
	domainEvents   metric.Int64Counter
	reviewsCreated metric.Int64Counter
	reportsFiled   metric.Int64Counter
	listingViews   metric.Int64Counter
	searches       metric.Int64Counter
	pageViews      metric.Int64Counter
	webhookEvents  metric.Int64Counter
}

// NewDirectoryMetrics creates the counters on meter
func NewDirectoryMetrics(meter metric.Meter) (*DirectoryMetrics, error) {
	m := &DirectoryMetrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.domainEvents, "bizdir.domain_events", "Domain events published, by type"},
		{&m.reviewsCreated, "bizdir.reviews.created", "Reviews written"},
		{&m.reportsFiled, "bizdir.reports.filed", "Moderation reports filed"},
		{&m.listingViews, "bizdir.listing.views", "Listing detail views tracked"},
		{&m.searches, "bizdir.searches", "Searches tracked"},
		{&m.pageViews, "bizdir.page_views", "Page views tracked"},
		{&m.webhookEvents, "bizdir.billing.webhook_events", "Stripe webhook deliveries, by type and outcome"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}
	return m, nil
}

// EventTypes is empty: the metrics handler observes every domain event
func (m *DirectoryMetrics) EventTypes() []string { return nil }

// Handle counts a published domain event
func (m *DirectoryMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.domainEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", event.EventType())))
	switch event.EventType() {
	case review.EventTypeReviewCreated:
		m.reviewsCreated.Add(ctx, 1)
	case moderation.EventTypeReportFiled:
		m.reportsFiled.Add(ctx, 1)
	}
	return nil
}

// RecordWebhook counts a webhook delivery; outcome is processed, ignored or failed
func (m *DirectoryMetrics) RecordWebhook(ctx context.Context, eventType, outcome string) {
	m.webhookEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("outcome", outcome)))
}

func (m *DirectoryMetrics) recordTracked(ctx context.Context, t analytics.EventType) {
	switch t {
	case analytics.EventListingView:
		m.listingViews.Add(ctx, 1)
	case analytics.EventSearch:
		m.searches.Add(ctx, 1)
	case analytics.EventPageView:
		m.pageViews.Add(ctx, 1)
	}
}

// CountingEventRepository counts tracked analytics events as they are stored
type CountingEventRepository struct {
	analytics.Repository
	metrics *DirectoryMetrics
}

// NewCountingEventRepository wraps repo
func NewCountingEventRepository(repo analytics.Repository, metrics *DirectoryMetrics) *CountingEventRepository {
	return &CountingEventRepository{Repository: repo, metrics: metrics}
}

// Record stores e and counts it when the write succeeds
func (r *CountingEventRepository) Record(ctx context.Context, e *analytics.Event) error {
	if err := r.Repository.Record(ctx, e); err != nil {
		return err
	}
	r.metrics.recordTracked(ctx, e.Type)
	return nil
}

var (
	_ shared.EventHandler  = (*DirectoryMetrics)(nil)
	_ analytics.Repository = (*CountingEventRepository)(nil)
)
