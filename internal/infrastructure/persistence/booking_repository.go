package persistence

import (
	"context"

	"github.com/bizdir/backend/internal/domain/booking"
	"github.com/bizdir/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBookingRepository implements booking.Repository using GORM
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Create inserts a new booking
func (r *GormBookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	return r.db.WithContext(ctx).Create(models.BookingModelFromDomain(b)).Error
}

// Update saves all booking columns
func (r *GormBookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	return r.db.WithContext(ctx).Save(models.BookingModelFromDomain(b)).Error
}

// FindByID finds a booking by its ID
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var model models.BookingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// List pages through bookings ordered by scheduled time, soonest first
func (r *GormBookingRepository) List(ctx context.Context, filter booking.ListFilter) ([]*booking.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BookingModel{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.ListingID != nil {
		query = query.Where("listing_id = ?", *filter.ListingID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.BookingModel
	if err := query.Order("scheduled_at ASC, id").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	bookings := make([]*booking.Booking, len(rows))
	for i := range rows {
		bookings[i] = rows[i].ToDomain()
	}
	return bookings, total, nil
}

var _ booking.Repository = (*GormBookingRepository)(nil)
