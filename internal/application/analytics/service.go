package analytics

import (
	"context"
	"time"

	"github.com/bizdir/backend/internal/domain/analytics"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dateLayout    = "2006-01-02"
	summaryPrefix = "summary:"
	siteScope     = "site"
	defaultTTL    = 5 * time.Minute
	defaultRetain = 90
	exportTitle   = "Directory analytics"
)

var errExportUnavailable = shared.NewDomainError("EXPORT_UNAVAILABLE", "PDF export is not available")

// ListingDirectory answers ownership and title lookups for dashboards
type ListingDirectory interface {
	OwnedIDs(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
	Titles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// SummaryCache stores computed summaries
type SummaryCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// ReportRenderer turns a summary into a PDF document
type ReportRenderer interface {
	RenderSummaryPDF(ctx context.Context, report ExportReport) ([]byte, error)
}

// Config tunes dashboards and retention
type Config struct {
	CacheTTL         time.Duration
	RawRetentionDays int
	TopN             int
}

// Service records activity and builds dashboards
type Service struct {
	repo     analytics.Repository
	listings ListingDirectory
	cache    SummaryCache
	renderer ReportRenderer
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new analytics service. cache and renderer may be nil.
func NewService(
	repo analytics.Repository,
	listings ListingDirectory,
	cache SummaryCache,
	renderer ReportRenderer,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultTTL
	}
	if cfg.RawRetentionDays <= 0 {
		cfg.RawRetentionDays = defaultRetain
	}
	if cfg.TopN <= 0 {
		cfg.TopN = analytics.DefaultTopN
	}
	return &Service{
		repo:     repo,
		listings: listings,
		cache:    cache,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// TrackPageView records a public page view
func (s *Service) TrackPageView(ctx context.Context, input TrackPageViewInput, userID *uuid.UUID) error {
	if input.Type != "" && input.Type != string(analytics.EventPageView) {
		return shared.NewDomainError("INVALID_EVENT_TYPE", "Only page views can be tracked here")
	}
	return s.track(ctx, analytics.EventPageView, input.Path, nil, "", input.VisitorID, userID, input.Referrer)
}

// TrackSearch records a search query
func (s *Service) TrackSearch(ctx context.Context, query, visitorID string, userID *uuid.UUID) error {
	return s.track(ctx, analytics.EventSearch, "/search", nil, query, visitorID, userID, "")
}

// TrackListingView records a listing detail view. query is the search that led to it, if any.
func (s *Service) TrackListingView(ctx context.Context, listingID uuid.UUID, query, visitorID string, userID *uuid.UUID) error {
	return s.track(ctx, analytics.EventListingView, "/listings/"+listingID.String(), &listingID, query, visitorID, userID, "")
}

func (s *Service) track(ctx context.Context, t analytics.EventType, path string, listingID *uuid.UUID, query, visitorID string, userID *uuid.UUID, referrer string) error {
	event, err := analytics.NewEvent(t, path, listingID, query, visitorID, userID, referrer, s.now())
	if err != nil {
		return err
	}
	if err := s.repo.Record(ctx, event); err != nil {
		s.logger.Warn("Failed to record analytics event", zap.String("type", string(t)), zap.Error(err))
		return err
	}
	return nil
}

// SiteDashboard summarizes all activity for administrators
func (s *Service) SiteDashboard(ctx context.Context, input DashboardInput) (*SummaryResponse, error) {
	period, err := s.resolvePeriod(input)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, siteScope, period, nil, analytics.Options{TopN: s.cfg.TopN})
}

// OwnerDashboard summarizes views of the owner's listings and the searches that led to them
func (s *Service) OwnerDashboard(ctx context.Context, ownerID uuid.UUID, input DashboardInput) (*SummaryResponse, error) {
	period, err := s.resolvePeriod(input)
	if err != nil {
		return nil, err
	}
	ids, err := s.listings.OwnedIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	opts := analytics.Options{TopN: s.cfg.TopN, ViewSearchTerms: true, ListingScoped: true}
	if len(ids) == 0 {
		return toSummaryResponse(analytics.Aggregate(period, nil, nil, opts), SourceRaw), nil
	}
	return s.summarize(ctx, "owner:"+ownerID.String(), period, ids, opts)
}

func (s *Service) resolvePeriod(input DashboardInput) (analytics.Period, error) {
	if input.From == "" && input.To == "" {
		return analytics.PresetPeriod(input.Period, s.now())
	}
	if input.From == "" || input.To == "" {
		return analytics.Period{}, shared.NewDomainError("INVALID_PERIOD", "Both from and to are required")
	}
	from, err := time.Parse(dateLayout, input.From)
	if err != nil {
		return analytics.Period{}, shared.NewDomainError("INVALID_PERIOD", "from must be a YYYY-MM-DD date")
	}
	to, err := time.Parse(dateLayout, input.To)
	if err != nil {
		return analytics.Period{}, shared.NewDomainError("INVALID_PERIOD", "to must be a YYYY-MM-DD date")
	}
	return analytics.CustomPeriod(from, to)
}

func (s *Service) summarize(ctx context.Context, scope string, period analytics.Period, listingIDs []uuid.UUID, opts analytics.Options) (*SummaryResponse, error) {
	key := summaryPrefix + scope + ":" + period.Key()
	if s.cache != nil {
		var cached SummaryResponse
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("Summary cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	var (
		summary analytics.Summary
		source  string
		err     error
	)
	if s.needsRollup(period) {
		summary, err = s.fromRollup(ctx, period, listingIDs, opts)
		source = SourceRollup
	} else {
		summary, err = s.fromRaw(ctx, period, listingIDs, opts)
		source = SourceRaw
	}
	if err != nil {
		return nil, err
	}
	s.labelListings(ctx, summary.TopListings)

	resp := toSummaryResponse(summary, source)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("Summary cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, nil
}

// needsRollup reports whether the requested window has already been purged from raw storage
func (s *Service) needsRollup(period analytics.Period) bool {
	return period.Start.Before(s.retentionCutoff())
}

func (s *Service) retentionCutoff() time.Time {
	today := startOfDay(s.now())
	return today.AddDate(0, 0, -s.cfg.RawRetentionDays)
}

func (s *Service) fromRaw(ctx context.Context, period analytics.Period, listingIDs []uuid.UUID, opts analytics.Options) (analytics.Summary, error) {
	var types []analytics.EventType
	if opts.ListingScoped {
		types = []analytics.EventType{analytics.EventListingView}
	}
	// The comparison window falls back to daily stats once its raw events are purged
	prevPurged := period.Previous().Start.Before(s.retentionCutoff())

	var (
		current, previous []analytics.Event
		previousDaily     []analytics.DailyStat
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.repo.Find(gctx, analytics.EventQuery{Period: period, Types: types, ListingIDs: listingIDs})
		return err
	})
	g.Go(func() error {
		var err error
		if prevPurged {
			previousDaily, err = s.repo.FindDailyStats(gctx, period.Previous(), listingIDs)
			return err
		}
		previous, err = s.repo.Find(gctx, analytics.EventQuery{Period: period.Previous(), Types: types, ListingIDs: listingIDs})
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load analytics events", zap.Error(err))
		return analytics.Summary{}, err
	}
	summary := analytics.Aggregate(period, current, previous, opts)
	if prevPurged {
		summary = summary.WithPrevious(analytics.DailyTotals(period.Previous(), previousDaily, opts.ListingScoped))
	}
	return summary, nil
}

func (s *Service) fromRollup(ctx context.Context, period analytics.Period, listingIDs []uuid.UUID, opts analytics.Options) (analytics.Summary, error) {
	var current, previous []analytics.DailyStat
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.repo.FindDailyStats(gctx, period, listingIDs)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.repo.FindDailyStats(gctx, period.Previous(), listingIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load daily stats", zap.Error(err))
		return analytics.Summary{}, err
	}
	return analytics.SummaryFromDaily(period, current, previous, opts), nil
}

// labelListings fills listing titles in place. Lookup failures leave labels empty.
func (s *Service) labelListings(ctx context.Context, ranked []analytics.Ranked) {
	if len(ranked) == 0 || s.listings == nil {
		return
	}
	ids := make([]uuid.UUID, 0, len(ranked))
	for _, r := range ranked {
		if id, err := uuid.Parse(r.Key); err == nil {
			ids = append(ids, id)
		}
	}
	titles, err := s.listings.Titles(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve listing titles", zap.Error(err))
		return
	}
	for i := range ranked {
		if id, err := uuid.Parse(ranked[i].Key); err == nil {
			ranked[i].Label = titles[id]
		}
	}
}

// ExportSitePDF renders the site dashboard as a PDF
func (s *Service) ExportSitePDF(ctx context.Context, input DashboardInput) ([]byte, error) {
	if s.renderer == nil {
		return nil, errExportUnavailable
	}
	summary, err := s.SiteDashboard(ctx, input)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderSummaryPDF(ctx, ExportReport{
		Title:       exportTitle,
		GeneratedAt: s.now().UTC(),
		Summary:     *summary,
	})
	if err != nil {
		s.logger.Error("Failed to render analytics PDF", zap.Error(err))
		return nil, shared.WrapDomainError("EXPORT_UNAVAILABLE", "PDF export is not available", err)
	}
	return pdf, nil
}

// RunDailyRollup condenses one day of raw events into daily stats and drops cached summaries
func (s *Service) RunDailyRollup(ctx context.Context, date time.Time) (*RollupResult, error) {
	day := startOfDay(date)
	window := analytics.Period{Start: day, End: day.AddDate(0, 0, 1)}
	events, err := s.repo.Find(ctx, analytics.EventQuery{Period: window})
	if err != nil {
		return nil, err
	}
	rows := analytics.Rollup(day, events)
	if err := s.repo.SaveDailyStats(ctx, day, rows); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.logger.Info("Analytics rollup completed",
		zap.String("date", day.Format(dateLayout)),
		zap.Int("events", len(events)),
		zap.Int("rows", len(rows)))
	return &RollupResult{Date: day.Format(dateLayout), Events: len(events), Rows: len(rows)}, nil
}

// PurgeRawEvents deletes raw events older than the retention window
func (s *Service) PurgeRawEvents(ctx context.Context) (int64, error) {
	cutoff := s.retentionCutoff()
	n, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Purged raw analytics events", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	return n, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, summaryPrefix); err != nil {
		s.logger.Warn("Failed to invalidate cached summaries", zap.Error(err))
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
