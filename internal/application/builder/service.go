package builder

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/bizdir/backend/internal/application/listing"
	"github.com/bizdir/backend/internal/domain/builder"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxDocumentBytes is the upload limit for a single builder document
	MaxDocumentBytes int64 = 10 << 20
	// MaxDocuments is how many documents one analysis may combine
	MaxDocuments = 5

	analysisParallelism = 3
	documentPrefix      = "builder"
)

// AllowedDocumentTypes are the content types accepted for builder documents
var AllowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"text/plain":      true,
}

var (
	errAnalysisFailed   = shared.NewDomainError("ANALYSIS_FAILED", "None of the documents could be analyzed")
	errAnalyzerDisabled = shared.NewDomainError("ANALYSIS_FAILED", "Document analysis is not configured")
)

// Document is an uploaded file handed to the analyzer
type Document struct {
	Key         string
	Filename    string
	ContentType string
	Data        []byte
}

// DocumentAnalyzer extracts business details from one document
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, doc Document) (*builder.DocumentAnalysis, error)
}

// DocumentStorage stores uploaded documents
type DocumentStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (*storage.PresignedUpload, error)
	GetObject(ctx context.Context, key string, maxBytes int64) (*storage.Object, error)
}

// ListingCreator creates draft listings on behalf of an owner
type ListingCreator interface {
	Create(ctx context.Context, ownerID uuid.UUID, input listing.ListingInput) (*listing.ListingResponse, error)
}

// Service implements the AI-assisted listing builder
type Service struct {
	storage  DocumentStorage
	analyzer DocumentAnalyzer
	listings ListingCreator
	logger   *zap.Logger
}

// NewService creates a builder service. analyzer may be nil when AI is disabled.
func NewService(docs DocumentStorage, analyzer DocumentAnalyzer, listings ListingCreator, logger *zap.Logger) *Service {
	return &Service{
		storage:  docs,
		analyzer: analyzer,
		listings: listings,
		logger:   logger,
	}
}

// DocumentUploadURL presigns a PUT for a new builder document
func (s *Service) DocumentUploadURL(ctx context.Context, userID uuid.UUID, input UploadInput) (*UploadResponse, error) {
	contentType := normalizeContentType(input.ContentType)
	if !AllowedDocumentTypes[contentType] {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Documents must be PDF, PNG, JPEG, WebP or plain text")
	}

	up, err := s.storage.PresignUpload(ctx, storage.BuildKey(userPrefix(userID), input.Filename), contentType)
	if err != nil {
		s.logger.Error("Failed to presign document upload", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, shared.WrapDomainError("STORAGE_UNAVAILABLE", "Document upload is unavailable", err)
	}
	return &UploadResponse{
		Key:       up.Key,
		UploadURL: up.URL,
		Method:    up.Method,
		Headers:   up.Headers,
		MaxBytes:  MaxDocumentBytes,
		ExpiresAt: up.ExpiresAt,
	}, nil
}

// Analyze runs extraction over the user's documents and merges the results.
// Individual failures become warnings; the call fails only when every document fails.
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, input AnalyzeInput) (*AnalyzeResponse, error) {
	keys, err := s.validateKeys(userID, input.Keys)
	if err != nil {
		return nil, err
	}
	if s.analyzer == nil {
		return nil, errAnalyzerDisabled
	}

	results := make([]*builder.DocumentAnalysis, len(keys))
	failures := make([]error, len(keys))

	var g errgroup.Group
	g.SetLimit(analysisParallelism)
	for i, key := range keys {
		g.Go(func() error {
			results[i], failures[i] = s.analyzeOne(ctx, key)
			return nil
		})
	}
	_ = g.Wait()

	resp := &AnalyzeResponse{
		Analyses: make([]builder.DocumentAnalysis, 0, len(keys)),
		Failed:   []string{},
	}
	var warnings []string
	for i, key := range keys {
		if failures[i] != nil {
			s.logger.Warn("Document analysis failed", zap.String("key", key), zap.Error(failures[i]))
			resp.Failed = append(resp.Failed, key)
			warnings = append(warnings, "failed:"+path.Base(key))
			continue
		}
		resp.Analyses = append(resp.Analyses, *results[i])
	}
	if len(resp.Analyses) == 0 {
		return nil, errAnalysisFailed
	}

	resp.Draft = builder.CombineAnalyses(resp.Analyses)
	resp.Draft.Warnings = append(resp.Draft.Warnings, warnings...)

	s.logger.Info("Documents analyzed",
		zap.String("user_id", userID.String()),
		zap.Int("documents", len(keys)),
		zap.Int("failed", len(resp.Failed)),
		zap.Float64("confidence", resp.Draft.Confidence))
	return resp, nil
}

func (s *Service) analyzeOne(ctx context.Context, key string) (*builder.DocumentAnalysis, error) {
	obj, err := s.storage.GetObject(ctx, key, MaxDocumentBytes)
	if err != nil {
		return nil, err
	}
	contentType := normalizeContentType(obj.ContentType)
	if !AllowedDocumentTypes[contentType] {
		return nil, errors.New("unsupported content type " + obj.ContentType)
	}

	analysis, err := s.analyzer.AnalyzeDocument(ctx, Document{
		Key:         key,
		Filename:    path.Base(key),
		ContentType: contentType,
		Data:        obj.Data,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(analysis.Source) == "" {
		analysis.Source = path.Base(key)
	}
	return analysis, nil
}

// validateKeys de-duplicates keys and checks they belong to the user
func (s *Service) validateKeys(userID uuid.UUID, keys []string) ([]string, error) {
	prefix := userPrefix(userID) + "/"
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if !strings.HasPrefix(key, prefix) || strings.Contains(key, "..") {
			return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document does not belong to you")
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	if len(out) == 0 || len(out) > MaxDocuments {
		return nil, shared.NewDomainError("INVALID_DOCUMENTS", "Provide between 1 and 5 documents")
	}
	return out, nil
}

// CreateListingFromDraft creates a draft listing owned by the caller
func (s *Service) CreateListingFromDraft(ctx context.Context, ownerID uuid.UUID, input CreateFromDraftInput) (*listing.ListingResponse, error) {
	d := input.Draft.ToDetails()
	return s.listings.Create(ctx, ownerID, listing.ListingInput{
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Tags:        d.Tags,
		Location:    d.Location,
		Contact:     d.Contact,
		Hours:       d.Hours,
		Amenities:   d.Amenities,
		PriceRange:  string(d.PriceRange),
	})
}

func userPrefix(userID uuid.UUID) string {
	return documentPrefix + "/" + userID.String()
}

func normalizeContentType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
