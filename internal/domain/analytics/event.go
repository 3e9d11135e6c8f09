package analytics

import (
	"strings"
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EventType classifies a tracked event. Each event belongs to exactly one type.
type EventType string

const (
	EventPageView    EventType = "page_view"
	EventListingView EventType = "listing_view"
	EventSearch      EventType = "search"
)

// IsValid reports whether t is a known event type
func (t EventType) IsValid() bool {
	switch t {
	case EventPageView, EventListingView, EventSearch:
		return true
	}
	return false
}

const (
	MaxQueryLength = 200
	maxPathLength  = 500
)

// Event is a single tracked interaction
type Event struct {
	ID         uuid.UUID
	Type       EventType
	Path       string
	ListingID  *uuid.UUID
	Query      string
	VisitorID  string
	UserID     *uuid.UUID
	Referrer   string
	OccurredAt time.Time
}

// NewEvent validates and normalizes an event. Each type requires its own field:
// page views need a path, listing views a listing, searches a non-blank query.
func NewEvent(eventType EventType, path string, listingID *uuid.UUID, query, visitorID string, userID *uuid.UUID, referrer string, at time.Time) (*Event, error) {
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Event type must be page_view, listing_view or search")
	}
	path = strings.TrimSpace(path)
	if len(path) > maxPathLength {
		path = path[:maxPathLength]
	}
	query = NormalizeQuery(query)

	switch eventType {
	case EventPageView:
		if path == "" {
			return nil, shared.NewDomainError("INVALID_EVENT", "Page views require a path")
		}
	case EventListingView:
		if listingID == nil || *listingID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_EVENT", "Listing views require a listing")
		}
	case EventSearch:
		if query == "" {
			return nil, shared.NewDomainError("INVALID_EVENT", "Searches require a query")
		}
	}

	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" && userID != nil {
		visitorID = userID.String()
	}
	if at.IsZero() {
		at = time.Now()
	}
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		Path:       path,
		ListingID:  listingID,
		Query:      query,
		VisitorID:  visitorID,
		UserID:     userID,
		Referrer:   strings.TrimSpace(referrer),
		OccurredAt: at.UTC(),
	}, nil
}

// NormalizeQuery lowercases a search query, collapses whitespace and caps its length
func NormalizeQuery(q string) string {
	q = strings.ToLower(strings.Join(strings.Fields(q), " "))
	r := []rune(q)
	if len(r) > MaxQueryLength {
		q = strings.TrimSpace(string(r[:MaxQueryLength]))
	}
	return q
}
