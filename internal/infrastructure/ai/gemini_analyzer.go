// Package ai extracts listing details from uploaded business documents with Gemini.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	builderapp "github.com/bizdir/backend/internal/application/builder"
	"github.com/bizdir/backend/internal/domain/builder"
	"github.com/bizdir/backend/internal/domain/listing"
	"github.com/bizdir/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
)

const extractionPrompt = `You are reading a document that belongs to a local business (a menu, flyer, business card, brochure or similar).
Extract the business details you can actually see. Leave a field empty when the document does not state it; never guess.
Use lowercase weekday names for hours and 24h "HH:MM" times. Price range is one of "$", "$$", "$$$", "$$$$" or empty.
Confidence is between 0 and 1 and reflects how legible and complete the document is.
Add a short warning for anything ambiguous (for example two different phone numbers).`

// contentGenerator is the part of the genai client the analyzer uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiAnalyzer implements builder.DocumentAnalyzer on top of the Gemini API
type GeminiAnalyzer struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiAnalyzer creates a Gemini client from configuration
func NewGeminiAnalyzer(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*GeminiAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create GenAI client: %w", err)
	}
	return newGeminiAnalyzer(client.Models, cfg.Model, cfg.Timeout, logger), nil
}

func newGeminiAnalyzer(models contentGenerator, model string, timeout time.Duration, logger *zap.Logger) *GeminiAnalyzer {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GeminiAnalyzer{models: models, model: model, timeout: timeout, logger: logger}
}

// AnalyzeDocument sends the document as inline data and parses the structured reply
func (a *GeminiAnalyzer) AnalyzeDocument(ctx context.Context, doc builderapp.Document) (*builder.DocumentAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Document name: " + doc.Filename),
			genai.NewPartFromBytes(doc.Data, doc.ContentType),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(extractionPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.1),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    analysisSchema(),
	}

	start := time.Now()
	resp, err := a.models.GenerateContent(ctx, a.model, contents, cfg)
	if err != nil {
		a.logger.Warn("Gemini request failed",
			zap.String("document", doc.Filename),
			zap.Error(err))
		return nil, fmt.Errorf("ai: generate content for %s: %w", doc.Filename, err)
	}

	analysis, err := parseAnalysis(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("ai: %s: %w", doc.Filename, err)
	}
	if analysis.Source == "" {
		analysis.Source = doc.Filename
	}

	a.logger.Debug("Document analyzed",
		zap.String("document", doc.Filename),
		zap.Float64("confidence", analysis.Confidence),
		zap.Duration("duration", time.Since(start)))
	return analysis, nil
}

// wireAnalysis is the JSON shape requested from the model
type wireAnalysis struct {
	BusinessName string           `json:"business_name"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	Tags         []string         `json:"tags"`
	Location     listing.Location `json:"location"`
	Contact      listing.Contact  `json:"contact"`
	Hours        listing.Hours    `json:"hours"`
	Amenities    []string         `json:"amenities"`
	PriceRange   string           `json:"price_range"`
	Confidence   float64          `json:"confidence"`
	Warnings     []string         `json:"warnings"`
}

func parseAnalysis(text string) (*builder.DocumentAnalysis, error) {
	text = strings.TrimSpace(text)
	// some models still wrap JSON in a markdown fence
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var w wireAnalysis
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return nil, fmt.Errorf("invalid model response: %w", err)
	}

	hours := listing.Hours{}
	for day, dh := range w.Hours {
		day = strings.ToLower(strings.TrimSpace(day))
		if !listing.IsWeekday(day) {
			w.Warnings = append(w.Warnings, "ignored hours for "+day)
			continue
		}
		if dh == (listing.DayHours{}) {
			continue
		}
		hours[day] = dh
	}
	confidence := w.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &builder.DocumentAnalysis{
		BusinessName: w.BusinessName,
		Description:  w.Description,
		Category:     w.Category,
		Tags:         w.Tags,
		Location:     w.Location,
		Contact:      w.Contact,
		Hours:        hours,
		Amenities:    w.Amenities,
		PriceRange:   w.PriceRange,
		Confidence:   confidence,
		Warnings:     w.Warnings,
	}, nil
}

func analysisSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	strList := &genai.Schema{Type: genai.TypeArray, Items: str}

	day := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"open":   {Type: genai.TypeString, Description: "opening time, HH:MM"},
			"close":  {Type: genai.TypeString, Description: "closing time, HH:MM"},
			"closed": {Type: genai.TypeBoolean},
		},
	}
	hours := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
	for _, d := range listing.Weekdays {
		hours.Properties[d] = day
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"business_name": str,
			"description":   str,
			"category":      str,
			"tags":          strList,
			"location": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"address":     str,
					"city":        str,
					"state":       str,
					"postal_code": str,
					"country":     str,
				},
			},
			"contact": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"phone":   str,
					"email":   str,
					"website": str,
				},
			},
			"hours":       hours,
			"amenities":   strList,
			"price_range": {Type: genai.TypeString, Enum: []string{"$", "$$", "$$$", "$$$$"}},
			"confidence":  {Type: genai.TypeNumber},
			"warnings":    strList,
		},
		Required: []string{"business_name", "confidence"},
	}
}

var _ builderapp.DocumentAnalyzer = (*GeminiAnalyzer)(nil)
