package analytics

import (
	"time"

	"github.com/bizdir/backend/internal/domain/analytics"
)

// TrackPageViewInput is the body of the public tracking endpoint
type TrackPageViewInput struct {
	Type      string `json:"type" binding:"omitempty,oneof=page_view"`
	Path      string `json:"path" binding:"required,max=500"`
	Referrer  string `json:"referrer" binding:"max=500"`
	VisitorID string `json:"visitor_id" binding:"max=100"`
}

// DashboardInput selects the dashboard window. From/To (YYYY-MM-DD) take
// precedence over the preset.
type DashboardInput struct {
	Period string `form:"period" binding:"omitempty,oneof=7d 30d 90d"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// SummaryResponse is a dashboard summary with its window spelled out
type SummaryResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Days   int    `json:"days"`
	Source string `json:"source"`
	analytics.Summary
}

// Summary sources
const (
	SourceRaw    = "raw"
	SourceRollup = "rollup"
)

func toSummaryResponse(s analytics.Summary, source string) *SummaryResponse {
	return &SummaryResponse{
		From:    s.Period.Start.Format(dateLayout),
		To:      s.Period.End.Add(-24 * time.Hour).Format(dateLayout),
		Days:    s.Period.Days(),
		Source:  source,
		Summary: s,
	}
}

// ExportReport is what the PDF renderer receives
type ExportReport struct {
	Title       string
	GeneratedAt time.Time
	Summary     SummaryResponse
}

// RollupResult reports one daily rollup run
type RollupResult struct {
	Date   string `json:"date"`
	Events int    `json:"events"`
	Rows   int    `json:"rows"`
}
