package listing

import (
	"strings"
	"time"

	"github.com/bizdir/backend/internal/domain/listing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Viewer identifies who is looking at listings. UserID is nil for anonymous visitors.
type Viewer struct {
	UserID    *uuid.UUID
	Role      string
	VisitorID string
}

// IsAdmin reports whether the viewer is an administrator
func (v Viewer) IsAdmin() bool {
	return v.Role == "admin"
}

// Owns reports whether the viewer owns l
func (v Viewer) Owns(l *listing.Listing) bool {
	return v.UserID != nil && l.IsOwnedBy(*v.UserID)
}

// ListingInput contains the editable fields of a listing
type ListingInput struct {
	Title       string           `json:"title" binding:"required,min=3,max=120"`
	Description string           `json:"description" binding:"max=5000"`
	Category    string           `json:"category" binding:"max=80"`
	Tags        []string         `json:"tags" binding:"max=20,dive,max=40"`
	Location    listing.Location `json:"location"`
	Contact     listing.Contact  `json:"contact"`
	Hours       listing.Hours    `json:"hours"`
	Amenities   []string         `json:"amenities" binding:"max=50,dive,max=60"`
	PriceRange  string           `json:"price_range" binding:"omitempty,oneof=$ $$ $$$ $$$$"`
	PriceFrom   *decimal.Decimal `json:"price_from"`
}

func (in ListingInput) details() listing.Details {
	return listing.Details{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Tags:        in.Tags,
		Location:    in.Location,
		Contact:     in.Contact,
		Hours:       in.Hours,
		Amenities:   in.Amenities,
		PriceRange:  listing.PriceRange(in.PriceRange),
		PriceFrom:   in.PriceFrom,
	}
}

// SearchInput contains the public search parameters
type SearchInput struct {
	Query     string   `form:"q" binding:"max=200"`
	Category  string   `form:"category"`
	City      string   `form:"city"`
	Tags      []string `form:"tags"`
	MinRating float64  `form:"min_rating" binding:"omitempty,min=0,max=5"`
	Sort      string   `form:"sort" binding:"omitempty,oneof=relevance rating newest featured"`
	Page      int      `form:"page" binding:"omitempty,min=1"`
	PageSize  int      `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// splitTags accepts both repeated and comma separated tag parameters
func splitTags(raw []string) []string {
	var out []string
	for _, r := range raw {
		out = append(out, strings.Split(r, ",")...)
	}
	return listing.NormalizeTags(out)
}

// ListInput pages through owner or admin listings
type ListInput struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft pending_review active rejected suspended archived"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// RejectInput carries the moderator's reason
type RejectInput struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// PhotoUploadInput describes a photo the owner wants to upload
type PhotoUploadInput struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// AttachPhotoInput references an uploaded photo
type AttachPhotoInput struct {
	Key string `json:"key" binding:"required,max=500"`
}

// PhotoResponse is a stored photo with its public URL
type PhotoResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PhotoUploadResponse tells the client where to PUT the file
type PhotoUploadResponse struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// ListingResponse is the API view of a listing
type ListingResponse struct {
	ID              uuid.UUID        `json:"id"`
	OwnerID         uuid.UUID        `json:"owner_id"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description"`
	Category        string           `json:"category"`
	Tags            []string         `json:"tags"`
	Location        listing.Location `json:"location"`
	Contact         listing.Contact  `json:"contact"`
	Hours           listing.Hours    `json:"hours"`
	Amenities       []string         `json:"amenities"`
	PriceRange      string           `json:"price_range,omitempty"`
	PriceFrom       *decimal.Decimal `json:"price_from,omitempty"`
	Photos          []PhotoResponse  `json:"photos"`
	Status          string           `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	Featured        bool             `json:"featured"`
	RatingAverage   decimal.Decimal  `json:"rating_average"`
	ReviewCount     int              `json:"review_count"`
	ViewCount       int64            `json:"view_count"`
	PublishedAt     *time.Time       `json:"published_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
