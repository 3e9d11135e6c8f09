package moderation

import (
	"context"
	"fmt"

	"github.com/bizdir/backend/internal/domain/moderation"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewHider hides a review from public view
type ReviewHider interface {
	Hide(ctx context.Context, reviewID uuid.UUID) error
}

// ListingSuspender takes a listing offline
type ListingSuspender interface {
	SuspendForModeration(ctx context.Context, listingID uuid.UUID, reason string) error
}

// UserSuspender blocks an account
type UserSuspender interface {
	SuspendForModeration(ctx context.Context, userID uuid.UUID, reason string) error
}

// EnforcementHandler applies the action chosen when a report is resolved
type EnforcementHandler struct {
	reviews  ReviewHider
	listings ListingSuspender
	users    UserSuspender
	logger   *zap.Logger
}

// NewEnforcementHandler creates the handler
func NewEnforcementHandler(reviews ReviewHider, listings ListingSuspender, users UserSuspender, logger *zap.Logger) *EnforcementHandler {
	return &EnforcementHandler{reviews: reviews, listings: listings, users: users, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *EnforcementHandler) EventTypes() []string {
	return []string{moderation.EventTypeReportResolved}
}

// Handle runs the resolution action against the reported target
func (h *EnforcementHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*moderation.ReportResolvedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			moderation.EventTypeReportResolved, event.EventType())
	}

	reason := e.Note
	if reason == "" {
		reason = "Resolved report " + e.AggregateID().String()
	}

	var err error
	switch e.Action {
	case moderation.ActionNone:
		return nil
	case moderation.ActionContentHidden:
		err = h.reviews.Hide(ctx, e.TargetID)
	case moderation.ActionListingSuspended:
		err = h.listings.SuspendForModeration(ctx, e.TargetID, reason)
	case moderation.ActionUserSuspended:
		err = h.users.SuspendForModeration(ctx, e.TargetID, reason)
	default:
		return fmt.Errorf("unknown moderation action %q", e.Action)
	}
	if err != nil {
		h.logger.Error("Moderation action failed",
			zap.String("report_id", e.AggregateID().String()),
			zap.String("action", string(e.Action)),
			zap.String("target_id", e.TargetID.String()),
			zap.Error(err))
		return err
	}

	h.logger.Info("Moderation action applied",
		zap.String("report_id", e.AggregateID().String()),
		zap.String("action", string(e.Action)),
		zap.String("target_id", e.TargetID.String()))
	return nil
}

var _ shared.EventHandler = (*EnforcementHandler)(nil)
