package models

import (
	"time"

	"github.com/bizdir/backend/internal/domain/listing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocationColumns is the embedded location of a listing
type LocationColumns struct {
	Address    string   `gorm:"type:varchar(200)"`
	City       string   `gorm:"type:varchar(100);index"`
	State      string   `gorm:"type:varchar(100)"`
	PostalCode string   `gorm:"type:varchar(20)"`
	Country    string   `gorm:"type:varchar(100)"`
	Latitude   *float64 `gorm:"type:double precision"`
	Longitude  *float64 `gorm:"type:double precision"`
}

// ContactColumns is the embedded contact block of a listing
type ContactColumns struct {
	Phone   string `gorm:"type:varchar(50)"`
	Email   string `gorm:"type:varchar(254)"`
	Website string `gorm:"type:varchar(500)"`
}

// ListingModel is the persistence model for the Listing aggregate.
// Tags, amenities, hours and photos are JSON columns.
type ListingModel struct {
	AggregateModel
	OwnerID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title           string           `gorm:"type:varchar(120);not null"`
	Slug            string           `gorm:"type:varchar(140);not null;uniqueIndex"`
	Description     string           `gorm:"type:text"`
	Category        string           `gorm:"type:varchar(80);index"`
	Tags            []string         `gorm:"serializer:json;type:text"`
	Location        LocationColumns  `gorm:"embedded;embeddedPrefix:location_"`
	Contact         ContactColumns   `gorm:"embedded;embeddedPrefix:contact_"`
	Hours           listing.Hours    `gorm:"serializer:json;type:text"`
	Amenities       []string         `gorm:"serializer:json;type:text"`
	PriceRange      string           `gorm:"type:varchar(4)"`
	PriceFrom       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Photos          []string         `gorm:"serializer:json;type:text"`
	Status          listing.Status   `gorm:"type:varchar(20);not null;default:'draft';index"`
	RejectionReason string           `gorm:"type:varchar(500)"`
	Featured        bool             `gorm:"not null;default:false;index"`
	RatingAverage   decimal.Decimal  `gorm:"type:decimal(3,2);not null;default:0"`
	ReviewCount     int              `gorm:"not null;default:0"`
	ViewCount       int64            `gorm:"not null;default:0"`
	PublishedAt     *time.Time
}

// TableName returns the table name for GORM
func (ListingModel) TableName() string {
	return "listings"
}

// ToDomain converts the persistence model to a domain Listing.
func (m *ListingModel) ToDomain() *listing.Listing {
	return &listing.Listing{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OwnerID:           m.OwnerID,
		Title:             m.Title,
		Slug:              m.Slug,
		Description:       m.Description,
		Category:          m.Category,
		Tags:              nonNil(m.Tags),
		Location: listing.Location{
			Address:    m.Location.Address,
			City:       m.Location.City,
			State:      m.Location.State,
			PostalCode: m.Location.PostalCode,
			Country:    m.Location.Country,
			Latitude:   m.Location.Latitude,
			Longitude:  m.Location.Longitude,
		},
		Contact: listing.Contact{
			Phone:   m.Contact.Phone,
			Email:   m.Contact.Email,
			Website: m.Contact.Website,
		},
		Hours:           hoursOrEmpty(m.Hours),
		Amenities:       nonNil(m.Amenities),
		PriceRange:      listing.PriceRange(m.PriceRange),
		PriceFrom:       m.PriceFrom,
		Photos:          nonNil(m.Photos),
		Status:          m.Status,
		RejectionReason: m.RejectionReason,
		Featured:        m.Featured,
		RatingAverage:   m.RatingAverage,
		ReviewCount:     m.ReviewCount,
		ViewCount:       m.ViewCount,
		PublishedAt:     m.PublishedAt,
	}
}

// FromDomain populates the persistence model from a domain Listing.
func (m *ListingModel) FromDomain(l *listing.Listing) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.OwnerID = l.OwnerID
	m.Title = l.Title
	m.Slug = l.Slug
	m.Description = l.Description
	m.Category = l.Category
	m.Tags = nonNil(l.Tags)
	m.Location = LocationColumns{
		Address:    l.Location.Address,
		City:       l.Location.City,
		State:      l.Location.State,
		PostalCode: l.Location.PostalCode,
		Country:    l.Location.Country,
		Latitude:   l.Location.Latitude,
		Longitude:  l.Location.Longitude,
	}
	m.Contact = ContactColumns{
		Phone:   l.Contact.Phone,
		Email:   l.Contact.Email,
		Website: l.Contact.Website,
	}
	m.Hours = hoursOrEmpty(l.Hours)
	m.Amenities = nonNil(l.Amenities)
	m.PriceRange = string(l.PriceRange)
	m.PriceFrom = l.PriceFrom
	m.Photos = nonNil(l.Photos)
	m.Status = l.Status
	m.RejectionReason = l.RejectionReason
	m.Featured = l.Featured
	m.RatingAverage = l.RatingAverage
	m.ReviewCount = l.ReviewCount
	m.ViewCount = l.ViewCount
	m.PublishedAt = l.PublishedAt
}

// ListingModelFromDomain creates a new persistence model from a domain Listing.
func ListingModelFromDomain(l *listing.Listing) *ListingModel {
	m := &ListingModel{}
	m.FromDomain(l)
	return m
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func hoursOrEmpty(h listing.Hours) listing.Hours {
	if h == nil {
		return listing.Hours{}
	}
	return h
}
