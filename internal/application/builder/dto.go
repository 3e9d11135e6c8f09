package builder

import (
	"time"

	"github.com/bizdir/backend/internal/domain/builder"
)

// UploadInput describes a document the owner wants to upload
type UploadInput struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// UploadResponse tells the client where to PUT the document
type UploadResponse struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	MaxBytes  int64             `json:"max_bytes"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// AnalyzeInput lists the uploaded documents to analyze
type AnalyzeInput struct {
	Keys []string `json:"keys" binding:"required,min=1,max=5,dive,required,max=500"`
}

// AnalyzeResponse holds the per-document results and the merged draft
type AnalyzeResponse struct {
	Analyses []builder.DocumentAnalysis `json:"analyses"`
	Draft    builder.ListingDraft       `json:"draft"`
	Failed   []string                   `json:"failed"`
}

// CreateFromDraftInput is a (possibly edited) draft to turn into a listing
type CreateFromDraftInput struct {
	Draft builder.ListingDraft `json:"draft" binding:"required"`
}
