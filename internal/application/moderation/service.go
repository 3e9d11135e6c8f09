package moderation

import (
	"context"

	"github.com/bizdir/backend/internal/domain/moderation"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListingLookup resolves listing ownership
type ListingLookup interface {
	Owner(ctx context.Context, listingID uuid.UUID) (ownerID uuid.UUID, public bool, err error)
}

// ReviewLookup resolves review authorship
type ReviewLookup interface {
	Author(ctx context.Context, reviewID uuid.UUID) (uuid.UUID, error)
}

// UserLookup checks that a reported account exists and can still be suspended
type UserLookup interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
	Suspendable(ctx context.Context, userID uuid.UUID) (bool, error)
}

var (
	errSelfReport         = shared.NewDomainError("INVALID_INPUT", "You cannot report your own content")
	errListingNotActive   = shared.NewDomainError("INVALID_STATE", "Only an active listing can be suspended")
	errUserNotSuspendable = shared.NewDomainError("INVALID_STATE", "User is already suspended or cannot be suspended")
)

// Service implements the report lifecycle
type Service struct {
	repo           moderation.Repository
	listings       ListingLookup
	reviews        ReviewLookup
	users          UserLookup
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a moderation service
func NewService(repo moderation.Repository, listings ListingLookup, reviews ReviewLookup, users UserLookup, logger *zap.Logger) *Service {
	return &Service{repo: repo, listings: listings, reviews: reviews, users: users, logger: logger}
}

// SetEventPublisher sets the event publisher for domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// File records a new report. A reporter may hold one open report per target.
func (s *Service) File(ctx context.Context, reporterID uuid.UUID, input FileReportInput) (*ReportResponse, error) {
	targetType := moderation.TargetType(input.TargetType)
	if err := s.checkTarget(ctx, reporterID, targetType, input.TargetID); err != nil {
		return nil, err
	}
	open, err := s.repo.HasOpenReport(ctx, reporterID, targetType, input.TargetID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "You already have an open report on this item")
	}

	r, err := moderation.NewReport(reporterID, targetType, input.TargetID, moderation.Reason(input.Reason), input.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, r)

	s.logger.Info("Report filed",
		zap.String("report_id", r.ID.String()),
		zap.String("target_type", string(r.TargetType)),
		zap.String("target_id", r.TargetID.String()),
		zap.String("reason", string(r.Reason)))
	resp := ToReportResponse(r)
	return &resp, nil
}

// checkTarget verifies the target exists and does not belong to the reporter
func (s *Service) checkTarget(ctx context.Context, reporterID uuid.UUID, targetType moderation.TargetType, targetID uuid.UUID) error {
	switch targetType {
	case moderation.TargetListing:
		ownerID, _, err := s.listings.Owner(ctx, targetID)
		if err != nil {
			return err
		}
		if ownerID == reporterID {
			return errSelfReport
		}
	case moderation.TargetReview:
		authorID, err := s.reviews.Author(ctx, targetID)
		if err != nil {
			return err
		}
		if authorID == reporterID {
			return errSelfReport
		}
	case moderation.TargetUser:
		if targetID == reporterID {
			return shared.NewDomainError("INVALID_INPUT", "You cannot report yourself")
		}
		exists, err := s.users.Exists(ctx, targetID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
	default:
		return shared.NewDomainError("INVALID_TARGET", "Target type must be listing, review or user")
	}
	return nil
}

// List pages through reports for administrators
func (s *Service) List(ctx context.Context, input ListReportsInput) (shared.Paginated[ReportResponse], error) {
	paging := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	filter := moderation.ListFilter{Page: paging.Page, PageSize: paging.PageSize}
	if input.Status != "" {
		status := moderation.Status(input.Status)
		filter.Status = &status
	}
	if input.TargetType != "" {
		tt := moderation.TargetType(input.TargetType)
		filter.TargetType = &tt
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[ReportResponse]{}, err
	}
	out := make([]ReportResponse, len(items))
	for i, r := range items {
		out[i] = ToReportResponse(r)
	}
	return shared.NewPaginated(out, total, paging.Page, paging.PageSize), nil
}

// Get returns one report
func (s *Service) Get(ctx context.Context, reportID uuid.UUID) (*ReportResponse, error) {
	r, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	resp := ToReportResponse(r)
	return &resp, nil
}

// StartInvestigation assigns a pending report to the calling admin
func (s *Service) StartInvestigation(ctx context.Context, adminID, reportID uuid.UUID) (*ReportResponse, error) {
	return s.transition(ctx, reportID, func(r *moderation.Report) error {
		return r.StartInvestigation(adminID)
	})
}

// Resolve closes a report. The enforcement action runs from the ReportResolved
// event, so a suspension is refused here when the target cannot take it.
func (s *Service) Resolve(ctx context.Context, adminID, reportID uuid.UUID, input ResolveReportInput) (*ReportResponse, error) {
	return s.transition(ctx, reportID, func(r *moderation.Report) error {
		action := moderation.Action(input.Action)
		if action.AppliesTo(r.TargetType) {
			if err := s.checkActionable(ctx, action, r.TargetID); err != nil {
				return err
			}
		}
		return r.Resolve(adminID, action, input.Note)
	})
}

// checkActionable verifies that the chosen suspension would change the target
func (s *Service) checkActionable(ctx context.Context, action moderation.Action, targetID uuid.UUID) error {
	switch action {
	case moderation.ActionListingSuspended:
		_, active, err := s.listings.Owner(ctx, targetID)
		if err != nil {
			return err
		}
		if !active {
			return errListingNotActive
		}
	case moderation.ActionUserSuspended:
		ok, err := s.users.Suspendable(ctx, targetID)
		if err != nil {
			return err
		}
		if !ok {
			return errUserNotSuspendable
		}
	}
	return nil
}

// Dismiss closes a report without action
func (s *Service) Dismiss(ctx context.Context, adminID, reportID uuid.UUID, input DismissReportInput) (*ReportResponse, error) {
	return s.transition(ctx, reportID, func(r *moderation.Report) error {
		return r.Dismiss(adminID, input.Note)
	})
}

// Stats counts reports per status
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &StatsResponse{
		Pending:       counts[moderation.StatusPending],
		Investigating: counts[moderation.StatusInvestigating],
		Resolved:      counts[moderation.StatusResolved],
		Dismissed:     counts[moderation.StatusDismissed],
	}
	stats.Open = stats.Pending + stats.Investigating
	stats.Total = stats.Open + stats.Resolved + stats.Dismissed
	return stats, nil
}

func (s *Service) transition(ctx context.Context, reportID uuid.UUID, apply func(*moderation.Report) error) (*ReportResponse, error) {
	r, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := apply(r); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ctx, r)
	s.logger.Info("Report status changed",
		zap.String("report_id", r.ID.String()),
		zap.String("status", string(r.Status)),
		zap.String("resolution", string(r.Resolution)))
	resp := ToReportResponse(r)
	return &resp, nil
}

func (s *Service) publish(ctx context.Context, r *moderation.Report) {
	if err := shared.PublishPending(ctx, s.eventPublisher, r); err != nil {
		s.logger.Warn("Failed to publish report events", zap.String("report_id", r.ID.String()), zap.Error(err))
	}
}
