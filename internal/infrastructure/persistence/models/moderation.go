package models

import (
	"time"

	"github.com/bizdir/backend/internal/domain/moderation"
	"github.com/google/uuid"
)

// ReportModel is the persistence model for a moderation Report.
type ReportModel struct {
	AggregateModel
	ReporterID     uuid.UUID             `gorm:"type:uuid;not null;index:idx_reports_reporter_target,priority:1"`
	TargetType     moderation.TargetType `gorm:"type:varchar(20);not null;index:idx_reports_reporter_target,priority:2"`
	TargetID       uuid.UUID             `gorm:"type:uuid;not null;index:idx_reports_reporter_target,priority:3"`
	Reason         moderation.Reason     `gorm:"type:varchar(30);not null"`
	Description    string                `gorm:"type:varchar(2000)"`
	Status         moderation.Status     `gorm:"type:varchar(20);not null;default:'pending';index"`
	AssigneeID     *uuid.UUID            `gorm:"type:uuid"`
	Resolution     moderation.Action     `gorm:"type:varchar(30)"`
	ResolutionNote string                `gorm:"type:varchar(1000)"`
	ResolvedAt     *time.Time
}

// TableName returns the table name for GORM
func (ReportModel) TableName() string {
	return "reports"
}

// ToDomain converts the persistence model to a domain Report.
func (m *ReportModel) ToDomain() *moderation.Report {
	return &moderation.Report{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ReporterID:        m.ReporterID,
		TargetType:        m.TargetType,
		TargetID:          m.TargetID,
		Reason:            m.Reason,
		Description:       m.Description,
		Status:            m.Status,
		AssigneeID:        m.AssigneeID,
		Resolution:        m.Resolution,
		ResolutionNote:    m.ResolutionNote,
		ResolvedAt:        m.ResolvedAt,
	}
}

// ReportModelFromDomain creates a new persistence model from a domain Report.
func ReportModelFromDomain(r *moderation.Report) *ReportModel {
	m := &ReportModel{
		ReporterID:     r.ReporterID,
		TargetType:     r.TargetType,
		TargetID:       r.TargetID,
		Reason:         r.Reason,
		Description:    r.Description,
		Status:         r.Status,
		AssigneeID:     r.AssigneeID,
		Resolution:     r.Resolution,
		ResolutionNote: r.ResolutionNote,
		ResolvedAt:     r.ResolvedAt,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}
