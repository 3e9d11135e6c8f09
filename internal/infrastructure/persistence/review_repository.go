package persistence

import (
	"context"

	"github.com/bizdir/backend/internal/domain/review"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReviewRepository implements review.Repository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create inserts a new review
func (r *GormReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	return r.db.WithContext(ctx).Create(models.ReviewModelFromDomain(rv)).Error
}

// Update saves all review columns
func (r *GormReviewRepository) Update(ctx context.Context, rv *review.Review) error {
	return r.db.WithContext(ctx).Save(models.ReviewModelFromDomain(rv)).Error
}

// Delete removes a review permanently
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ReviewModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a review by its ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsForAuthor reports whether the author already reviewed the listing
func (r *GormReviewRepository) ExistsForAuthor(ctx context.Context, listingID, authorID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Where("listing_id = ? AND author_id = ?", listingID, authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List pages through reviews, newest first
func (r *GormReviewRepository) List(ctx context.Context, filter review.ListFilter) ([]*review.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReviewModel{})
	if filter.ListingID != nil {
		query = query.Where("listing_id = ?", *filter.ListingID)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ReviewModel
	if err := query.Order("created_at DESC, id").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	reviews := make([]*review.Review, len(rows))
	for i := range rows {
		reviews[i] = rows[i].ToDomain()
	}
	return reviews, total, nil
}

// RatingStats averages published reviews of a listing, rounded to two places
func (r *GormReviewRepository) RatingStats(ctx context.Context, listingID uuid.UUID) (review.RatingStats, error) {
	var row struct {
		Total int64
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Select("COALESCE(SUM(rating), 0) AS total, COUNT(*) AS count").
		Where("listing_id = ? AND status = ?", listingID, review.StatusPublished).
		Scan(&row).Error; err != nil {
		return review.RatingStats{}, err
	}
	stats := review.RatingStats{Average: decimal.Zero, Count: int(row.Count)}
	if row.Count > 0 {
		stats.Average = decimal.NewFromInt(row.Total).Div(decimal.NewFromInt(row.Count)).Round(2)
	}
	return stats, nil
}

var _ review.Repository = (*GormReviewRepository)(nil)
