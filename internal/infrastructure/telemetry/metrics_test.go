package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/bizdir/backend/internal/domain/analytics"
	"github.com/bizdir/backend/internal/domain/moderation"
	"github.com/bizdir/backend/internal/domain/review"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

// counterValue sums the data points of name whose attributes contain attrs
func counterValue(t *testing.T, data map[string]metricdata.Aggregation, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data[name].(metricdata.Sum[int64])
	if !ok {
		return 0
	}
	var total int64
	for _, dp := range sum.DataPoints {
		match := true
		for _, kv := range attrs {
			if v, ok := dp.Attributes.Value(kv.Key); !ok || v != kv.Value {
				match = false
			}
		}
		if match {
			total += dp.Value
		}
	}
	return total
}

type stubEvent struct {
	shared.BaseDomainEvent
}

func event(eventType string) *stubEvent {
	return &stubEvent{shared.NewBaseDomainEvent(eventType, "Test", uuid.New())}
}

func TestDirectoryMetrics_Handle(t *testing.T) {
	ctx := context.Background()
	mp, reader := newTestMeter(t)
	m, err := NewDirectoryMetrics(mp.Meter(InstrumentationName))
	require.NoError(t, err)
	assert.Empty(t, m.EventTypes())

	for _, e := range []string{
		review.EventTypeReviewCreated,
		review.EventTypeReviewCreated,
		review.EventTypeReviewHidden,
		moderation.EventTypeReportFiled,
	} {
		require.NoError(t, m.Handle(ctx, event(e)))
	}
	m.RecordWebhook(ctx, "invoice.paid", "processed")
	m.RecordWebhook(ctx, "invoice.paid", "failed")
	m.RecordWebhook(ctx, "customer.subscription.updated", "processed")

	data := collect(t, reader)
	assert.Equal(t, int64(4), counterValue(t, data, "bizdir.domain_events"))
	assert.Equal(t, int64(2), counterValue(t, data, "bizdir.domain_events", attribute.String("event_type", "ReviewCreated")))
	assert.Equal(t, int64(2), counterValue(t, data, "bizdir.reviews.created"))
	assert.Equal(t, int64(1), counterValue(t, data, "bizdir.reports.filed"))
	assert.Equal(t, int64(2), counterValue(t, data, "bizdir.billing.webhook_events", attribute.String("outcome", "processed")))
	assert.Equal(t, int64(1), counterValue(t, data, "bizdir.billing.webhook_events",
		attribute.String("event_type", "invoice.paid"), attribute.String("outcome", "failed")))
}

type fakeEventRepo struct {
	analytics.Repository
	err      error
	recorded []analytics.EventType
}

func (r *fakeEventRepo) Record(_ context.Context, e *analytics.Event) error {
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, e.Type)
	return nil
}

func TestCountingEventRepository(t *testing.T) {
	ctx := context.Background()
	mp, reader := newTestMeter(t)
	m, err := NewDirectoryMetrics(mp.Meter(InstrumentationName))
	require.NoError(t, err)

	inner := &fakeEventRepo{}
	repo := NewCountingEventRepository(inner, m)
	for _, typ := range []analytics.EventType{
		analytics.EventListingView,
		analytics.EventListingView,
		analytics.EventSearch,
		analytics.EventPageView,
	} {
		require.NoError(t, repo.Record(ctx, &analytics.Event{Type: typ}))
	}

	inner.err = errors.New("insert failed")
	assert.Error(t, repo.Record(ctx, &analytics.Event{Type: analytics.EventSearch}))

	data := collect(t, reader)
	assert.Len(t, inner.recorded, 4)
	assert.Equal(t, int64(2), counterValue(t, data, "bizdir.listing.views"))
	assert.Equal(t, int64(1), counterValue(t, data, "bizdir.searches"))
	assert.Equal(t, int64(1), counterValue(t, data, "bizdir.page_views"))
}
