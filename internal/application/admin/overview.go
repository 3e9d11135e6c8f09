// Package admin aggregates directory-wide figures for the admin dashboard.
package admin

import (
	"context"

	analyticsapp "github.com/bizdir/backend/internal/application/analytics"
	"github.com/bizdir/backend/internal/application/moderation"
	"github.com/bizdir/backend/internal/domain/analytics"
	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/domain/listing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// overviewPeriod is the analytics window shown on the overview
const overviewPeriod = "7d"

var listingStatuses = []listing.Status{
	listing.StatusDraft,
	listing.StatusPendingReview,
	listing.StatusActive,
	listing.StatusRejected,
	listing.StatusSuspended,
	listing.StatusArchived,
}

type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

type ListingCounter interface {
	CountByStatus(ctx context.Context) (map[listing.Status]int64, error)
}

type ReportStats interface {
	Stats(ctx context.Context) (*moderation.StatsResponse, error)
}

type SubscriptionCounter interface {
	CountActiveByPlan(ctx context.Context) (map[billing.PlanID]int64, error)
}

type SiteSummary interface {
	SiteDashboard(ctx context.Context, input analyticsapp.DashboardInput) (*analyticsapp.SummaryResponse, error)
}

// OverviewResponse is the admin landing page payload
type OverviewResponse struct {
	Users               int64            `json:"users"`
	ListingsByStatus    map[string]int64 `json:"listings_by_status"`
	Reports             ReportOverview   `json:"reports"`
	SubscriptionsByPlan map[string]int64 `json:"subscriptions_by_plan"`
	Traffic             TrafficOverview  `json:"traffic"`
}

// ReportOverview summarizes the moderation queue
type ReportOverview struct {
	Open          int64 `json:"open"`
	Pending       int64 `json:"pending"`
	Investigating int64 `json:"investigating"`
}

// TrafficOverview is the last 7 days compared with the 7 before
type TrafficOverview struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	Totals  analytics.Totals  `json:"totals"`
	Changes analytics.Changes `json:"changes"`
}

// OverviewService builds the admin overview
type OverviewService struct {
	users         UserCounter
	listings      ListingCounter
	reports       ReportStats
	subscriptions SubscriptionCounter
	summary       SiteSummary
	logger        *zap.Logger
}

// NewOverviewService creates an overview service
func NewOverviewService(
	users UserCounter,
	listings ListingCounter,
	reports ReportStats,
	subscriptions SubscriptionCounter,
	summary SiteSummary,
	logger *zap.Logger,
) *OverviewService {
	return &OverviewService{
		users:         users,
		listings:      listings,
		reports:       reports,
		subscriptions: subscriptions,
		summary:       summary,
		logger:        logger,
	}
}

// Overview gathers all figures concurrently; any failing source fails the call
func (s *OverviewService) Overview(ctx context.Context) (*OverviewResponse, error) {
	resp := &OverviewResponse{
		ListingsByStatus:    make(map[string]int64),
		SubscriptionsByPlan: make(map[string]int64),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.Count(gctx)
		resp.Users = n
		return err
	})
	g.Go(func() error {
		counts, err := s.listings.CountByStatus(gctx)
		if err != nil {
			return err
		}
		for _, st := range listingStatuses {
			resp.ListingsByStatus[string(st)] = counts[st]
		}
		return nil
	})
	g.Go(func() error {
		stats, err := s.reports.Stats(gctx)
		if err != nil {
			return err
		}
		resp.Reports = ReportOverview{Open: stats.Open, Pending: stats.Pending, Investigating: stats.Investigating}
		return nil
	})
	g.Go(func() error {
		counts, err := s.subscriptions.CountActiveByPlan(gctx)
		if err != nil {
			return err
		}
		for _, plan := range []billing.PlanID{billing.PlanPro, billing.PlanPremium} {
			resp.SubscriptionsByPlan[string(plan)] = counts[plan]
		}
		return nil
	})
	g.Go(func() error {
		sum, err := s.summary.SiteDashboard(gctx, analyticsapp.DashboardInput{Period: overviewPeriod})
		if err != nil {
			return err
		}
		resp.Traffic = TrafficOverview{From: sum.From, To: sum.To, Totals: sum.Totals, Changes: sum.Changes}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build admin overview", zap.Error(err))
		return nil, err
	}
	return resp, nil
}
