package moderation

import (
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeReport = "Report"

const (
	EventTypeReportFiled    = "ReportFiled"
	EventTypeReportResolved = "ReportResolved"
)

// ReportFiledEvent is published when a new report arrives
type ReportFiledEvent struct {
	shared.BaseDomainEvent
	TargetType TargetType `json:"target_type"`
	TargetID   uuid.UUID  `json:"target_id"`
	Reason     Reason     `json:"reason"`
}

// NewReportFiledEvent creates a ReportFiledEvent
func NewReportFiledEvent(r *Report) *ReportFiledEvent {
	return &ReportFiledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReportFiled, AggregateTypeReport, r.ID),
		TargetType:      r.TargetType,
		TargetID:        r.TargetID,
		Reason:          r.Reason,
	}
}

// ReportResolvedEvent drives enforcement on the reported content
type ReportResolvedEvent struct {
	shared.BaseDomainEvent
	TargetType TargetType `json:"target_type"`
	TargetID   uuid.UUID  `json:"target_id"`
	Action     Action     `json:"action"`
	Note       string     `json:"note"`
}

// NewReportResolvedEvent creates a ReportResolvedEvent
func NewReportResolvedEvent(r *Report) *ReportResolvedEvent {
	return &ReportResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReportResolved, AggregateTypeReport, r.ID),
		TargetType:      r.TargetType,
		TargetID:        r.TargetID,
		Action:          r.Resolution,
		Note:            r.ResolutionNote,
	}
}
