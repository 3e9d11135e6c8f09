package listing

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bizdir/backend/internal/domain/shared"
)

// Location is the postal location of a business. Coordinates are stored as given.
type Location struct {
	Address    string   `json:"address"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// Normalize trims all text fields
func (l Location) Normalize() Location {
	l.Address = strings.TrimSpace(l.Address)
	l.City = strings.TrimSpace(l.City)
	l.State = strings.TrimSpace(l.State)
	l.PostalCode = strings.TrimSpace(l.PostalCode)
	l.Country = strings.TrimSpace(l.Country)
	return l
}

// Validate checks coordinate ranges
func (l Location) Validate() error {
	if (l.Latitude == nil) != (l.Longitude == nil) {
		return shared.NewDomainError("INVALID_LOCATION", "Latitude and longitude must be provided together")
	}
	if l.Latitude != nil && (*l.Latitude < -90 || *l.Latitude > 90) {
		return shared.NewDomainError("INVALID_LOCATION", "Latitude must be between -90 and 90")
	}
	if l.Longitude != nil && (*l.Longitude < -180 || *l.Longitude > 180) {
		return shared.NewDomainError("INVALID_LOCATION", "Longitude must be between -180 and 180")
	}
	return nil
}

// Contact holds public contact channels
type Contact struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// Normalize trims fields and lowercases the email
func (c Contact) Normalize() Contact {
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Website = strings.TrimSpace(c.Website)
	return c
}

// Weekday keys used in Hours
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// DayHours is the opening window for one weekday
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// Hours maps a lowercase weekday name to its opening window
type Hours map[string]DayHours

// Validate checks weekday keys and HH:MM formatting
func (h Hours) Validate() error {
	for day, dh := range h {
		if !IsWeekday(day) {
			return shared.NewDomainError("INVALID_HOURS", fmt.Sprintf("Unknown weekday %q", day))
		}
		if dh.Closed {
			continue
		}
		if !clockPattern.MatchString(dh.Open) || !clockPattern.MatchString(dh.Close) {
			return shared.NewDomainError("INVALID_HOURS", fmt.Sprintf("Hours for %s must use HH:MM", day))
		}
	}
	return nil
}

// OpenAt reports whether the business is open at t, using t's own location
func (h Hours) OpenAt(t time.Time) bool {
	dh, ok := h[strings.ToLower(t.Weekday().String())]
	if !ok || dh.Closed {
		return false
	}
	now := t.Format("15:04")
	if dh.Close <= dh.Open {
		// window crosses midnight
		return now >= dh.Open || now < dh.Close
	}
	return now >= dh.Open && now < dh.Close
}

// IsWeekday reports whether day is one of the Hours keys
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// PriceRange is a coarse price indicator from "$" to "$$$$"
type PriceRange string

const (
	PriceRangeUnknown PriceRange = ""
	PriceRangeBudget  PriceRange = "$"
	PriceRangeMid     PriceRange = "$$"
	PriceRangeHigh    PriceRange = "$$$"
	PriceRangeLuxury  PriceRange = "$$$$"
)

// IsValid reports whether p is a known price range
func (p PriceRange) IsValid() bool {
	switch p {
	case PriceRangeUnknown, PriceRangeBudget, PriceRangeMid, PriceRangeHigh, PriceRangeLuxury:
		return true
	}
	return false
}
