package listing

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a listing
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusActive        Status = "active"
	StatusRejected      Status = "rejected"
	StatusSuspended     Status = "suspended"
	StatusArchived      Status = "archived"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusActive, StatusRejected, StatusSuspended, StatusArchived:
		return true
	}
	return false
}

const (
	MaxPhotos         = 10
	minTitleLength    = 3
	maxTitleLength    = 120
	maxDescription    = 5000
	maxTags           = 20
	maxAmenities      = 50
	maxRejectedReason = 500
)

// Listing is the aggregate root for a directory entry
type Listing struct {
	shared.BaseAggregateRoot
	OwnerID         uuid.UUID
	Title           string
	Slug            string
	Description     string
	Category        string
	Tags            []string
	Location        Location
	Contact         Contact
	Hours           Hours
	Amenities       []string
	PriceRange      PriceRange
	PriceFrom       *decimal.Decimal
	Photos          []string
	Status          Status
	RejectionReason string
	Featured        bool
	RatingAverage   decimal.Decimal
	ReviewCount     int
	ViewCount       int64
	PublishedAt     *time.Time
}

// Details groups the editable fields of a listing
type Details struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Location    Location
	Contact     Contact
	Hours       Hours
	Amenities   []string
	PriceRange  PriceRange
	PriceFrom   *decimal.Decimal
}

// NewListing creates a draft listing for an owner
func NewListing(ownerID uuid.UUID, details Details) (*Listing, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner is required")
	}
	l := &Listing{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		Status:            StatusDraft,
		Tags:              []string{},
		Amenities:         []string{},
		Photos:            []string{},
		Hours:             Hours{},
		RatingAverage:     decimal.Zero,
	}
	if err := l.applyDetails(details); err != nil {
		return nil, err
	}
	l.Slug = Slugify(l.Title)
	l.AddDomainEvent(NewListingCreatedEvent(l))
	return l, nil
}

// Update replaces the editable details. Active listings stay active.
func (l *Listing) Update(details Details) error {
	switch l.Status {
	case StatusDraft, StatusRejected, StatusActive:
	default:
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit a listing in %s status", l.Status))
	}
	if err := l.applyDetails(details); err != nil {
		return err
	}
	l.IncrementVersion()
	return nil
}

func (l *Listing) applyDetails(d Details) error {
	title := strings.Join(strings.Fields(d.Title), " ")
	if n := len([]rune(title)); n < minTitleLength || n > maxTitleLength {
		return shared.NewDomainError("INVALID_TITLE", fmt.Sprintf("Title must be between %d and %d characters", minTitleLength, maxTitleLength))
	}
	description := strings.TrimSpace(d.Description)
	if len([]rune(description)) > maxDescription {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description is too long")
	}
	tags := NormalizeTags(d.Tags)
	if len(tags) > maxTags {
		return shared.NewDomainError("INVALID_TAGS", fmt.Sprintf("At most %d tags are allowed", maxTags))
	}
	amenities := NormalizeTags(d.Amenities)
	if len(amenities) > maxAmenities {
		return shared.NewDomainError("INVALID_AMENITIES", fmt.Sprintf("At most %d amenities are allowed", maxAmenities))
	}
	location := d.Location.Normalize()
	if err := location.Validate(); err != nil {
		return err
	}
	hours := d.Hours
	if hours == nil {
		hours = Hours{}
	}
	if err := hours.Validate(); err != nil {
		return err
	}
	if !d.PriceRange.IsValid() {
		return shared.NewDomainError("INVALID_PRICE_RANGE", "Price range must be one of $, $$, $$$, $$$$")
	}
	if d.PriceFrom != nil && d.PriceFrom.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	l.Title = title
	l.Description = description
	l.Category = NormalizeCategory(d.Category)
	l.Tags = tags
	l.Location = location
	l.Contact = d.Contact.Normalize()
	l.Hours = hours
	l.Amenities = amenities
	l.PriceRange = d.PriceRange
	l.PriceFrom = d.PriceFrom
	return nil
}

// Submit sends a draft or rejected listing to the review queue
func (l *Listing) Submit() error {
	if l.Status != StatusDraft && l.Status != StatusRejected {
		return shared.NewDomainError("INVALID_STATE", "Only draft or rejected listings can be submitted")
	}
	var missing []string
	if l.Title == "" {
		missing = append(missing, "title")
	}
	if l.Category == "" {
		missing = append(missing, "category")
	}
	if l.Location.City == "" {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return shared.NewDomainError("INCOMPLETE_LISTING", "Missing required fields: "+strings.Join(missing, ", "))
	}
	l.Status = StatusPendingReview
	l.RejectionReason = ""
	l.IncrementVersion()
	l.AddDomainEvent(NewListingStatusEvent(EventTypeListingSubmitted, l, ""))
	return nil
}

// Approve publishes a listing that is pending review
func (l *Listing) Approve() error {
	if l.Status != StatusPendingReview {
		return shared.NewDomainError("INVALID_STATE", "Only listings pending review can be approved")
	}
	now := time.Now()
	l.Status = StatusActive
	if l.PublishedAt == nil {
		l.PublishedAt = &now
	}
	l.IncrementVersion()
	l.AddDomainEvent(NewListingStatusEvent(EventTypeListingApproved, l, ""))
	return nil
}

// Reject sends a pending listing back to its owner with a reason
func (l *Listing) Reject(reason string) error {
	if l.Status != StatusPendingReview {
		return shared.NewDomainError("INVALID_STATE", "Only listings pending review can be rejected")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "A rejection reason is required")
	}
	if len([]rune(reason)) > maxRejectedReason {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is too long")
	}
	l.Status = StatusRejected
	l.RejectionReason = reason
	l.IncrementVersion()
	l.AddDomainEvent(NewListingStatusEvent(EventTypeListingRejected, l, reason))
	return nil
}

// Suspend takes an active listing offline after moderation
func (l *Listing) Suspend(reason string) error {
	if l.Status != StatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active listings can be suspended")
	}
	l.Status = StatusSuspended
	l.Featured = false
	l.IncrementVersion()
	l.AddDomainEvent(NewListingStatusEvent(EventTypeListingSuspended, l, reason))
	return nil
}

// Reinstate returns a suspended listing to active
func (l *Listing) Reinstate() error {
	if l.Status != StatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Only suspended listings can be reinstated")
	}
	l.Status = StatusActive
	l.IncrementVersion()
	return nil
}

// Archive removes the listing from the directory for good
func (l *Listing) Archive() error {
	if l.Status == StatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Listing is already archived")
	}
	l.Status = StatusArchived
	l.Featured = false
	l.IncrementVersion()
	l.AddDomainEvent(NewListingStatusEvent(EventTypeListingArchived, l, ""))
	return nil
}

// SetFeatured toggles featured placement. Only active listings can be featured.
// It reports whether anything changed.
func (l *Listing) SetFeatured(featured bool) bool {
	if featured && l.Status != StatusActive {
		return false
	}
	if l.Featured == featured {
		return false
	}
	l.Featured = featured
	l.IncrementVersion()
	return true
}

// ApplyRating stores the aggregate rating computed from published reviews
func (l *Listing) ApplyRating(average decimal.Decimal, count int) {
	if count <= 0 {
		average = decimal.Zero
		count = 0
	}
	l.RatingAverage = average.Round(2)
	l.ReviewCount = count
	l.Touch()
}

// AttachPhoto adds a stored photo key
func (l *Listing) AttachPhoto(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return shared.NewDomainError("INVALID_PHOTO", "Photo key is required")
	}
	for _, p := range l.Photos {
		if p == key {
			return nil
		}
	}
	if len(l.Photos) >= MaxPhotos {
		return shared.NewDomainError("TOO_MANY_PHOTOS", fmt.Sprintf("A listing can have at most %d photos", MaxPhotos))
	}
	l.Photos = append(l.Photos, key)
	l.IncrementVersion()
	return nil
}

// RemovePhoto drops a photo key; unknown keys are an error
func (l *Listing) RemovePhoto(key string) error {
	for i, p := range l.Photos {
		if p == key {
			l.Photos = append(l.Photos[:i], l.Photos[i+1:]...)
			l.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// IsPublic reports whether anyone may see the listing
func (l *Listing) IsPublic() bool {
	return l.Status == StatusActive
}

// IsOwnedBy reports whether userID owns the listing
func (l *Listing) IsOwnedBy(userID uuid.UUID) bool {
	return l.OwnerID == userID
}

// CountsTowardPlanLimit reports whether the listing occupies a plan slot
func (l *Listing) CountsTowardPlanLimit() bool {
	return l.Status != StatusArchived
}
