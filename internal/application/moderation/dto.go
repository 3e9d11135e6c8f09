package moderation

import (
	"time"

	"github.com/bizdir/backend/internal/domain/moderation"
	"github.com/google/uuid"
)

// FileReportInput contains the input for a new report
type FileReportInput struct {
	TargetType  string    `json:"target_type" binding:"required,oneof=listing review user"`
	TargetID    uuid.UUID `json:"target_id" binding:"required"`
	Reason      string    `json:"reason" binding:"required,oneof=spam inappropriate fraud harassment incorrect_info other"`
	Description string    `json:"description" binding:"max=2000"`
}

// ListReportsInput filters the admin report queue
type ListReportsInput struct {
	Status     string `form:"status" binding:"omitempty,oneof=pending investigating resolved dismissed"`
	TargetType string `form:"target_type" binding:"omitempty,oneof=listing review user"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ResolveReportInput closes a report with an action
type ResolveReportInput struct {
	Action string `json:"action" binding:"omitempty,oneof=none content_hidden listing_suspended user_suspended"`
	Note   string `json:"note" binding:"max=2000"`
}

// DismissReportInput closes a report without action
type DismissReportInput struct {
	Note string `json:"note" binding:"max=2000"`
}

// ReportResponse is the API view of a report
type ReportResponse struct {
	ID             uuid.UUID  `json:"id"`
	ReporterID     uuid.UUID  `json:"reporter_id"`
	TargetType     string     `json:"target_type"`
	TargetID       uuid.UUID  `json:"target_id"`
	Reason         string     `json:"reason"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	AssigneeID     *uuid.UUID `json:"assignee_id,omitempty"`
	Resolution     string     `json:"resolution"`
	ResolutionNote string     `json:"resolution_note,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// StatsResponse counts reports per status
type StatsResponse struct {
	Pending       int64 `json:"pending"`
	Investigating int64 `json:"investigating"`
	Resolved      int64 `json:"resolved"`
	Dismissed     int64 `json:"dismissed"`
	Open          int64 `json:"open"`
	Total         int64 `json:"total"`
}

// ToReportResponse converts a domain report to its response DTO
func ToReportResponse(r *moderation.Report) ReportResponse {
	return ReportResponse{
		ID:             r.ID,
		ReporterID:     r.ReporterID,
		TargetType:     string(r.TargetType),
		TargetID:       r.TargetID,
		Reason:         string(r.Reason),
		Description:    r.Description,
		Status:         string(r.Status),
		AssigneeID:     r.AssigneeID,
		Resolution:     string(r.Resolution),
		ResolutionNote: r.ResolutionNote,
		ResolvedAt:     r.ResolvedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
