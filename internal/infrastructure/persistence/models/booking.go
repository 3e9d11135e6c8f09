package models

import (
	"time"

	"github.com/bizdir/backend/internal/domain/booking"
	"github.com/google/uuid"
)

// BookingModel is the persistence model for the Booking aggregate.
type BookingModel struct {
	AggregateModel
	ListingID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	CustomerID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	OwnerID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	ScheduledAt  time.Time      `gorm:"not null;index"`
	PartySize    int            `gorm:"not null;default:1"`
	Notes        string         `gorm:"type:varchar(1000)"`
	Status       booking.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
	DecisionNote string         `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (BookingModel) TableName() string {
	return "bookings"
}

// ToDomain converts the persistence model to a domain Booking.
func (m *BookingModel) ToDomain() *booking.Booking {
	return &booking.Booking{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ListingID:         m.ListingID,
		CustomerID:        m.CustomerID,
		OwnerID:           m.OwnerID,
		ScheduledAt:       m.ScheduledAt,
		PartySize:         m.PartySize,
		Notes:             m.Notes,
		Status:            m.Status,
		DecisionNote:      m.DecisionNote,
	}
}

// BookingModelFromDomain creates a new persistence model from a domain Booking.
func BookingModelFromDomain(b *booking.Booking) *BookingModel {
	m := &BookingModel{
		ListingID:    b.ListingID,
		CustomerID:   b.CustomerID,
		OwnerID:      b.OwnerID,
		ScheduledAt:  b.ScheduledAt,
		PartySize:    b.PartySize,
		Notes:        b.Notes,
		Status:       b.Status,
		DecisionNote: b.DecisionNote,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}
