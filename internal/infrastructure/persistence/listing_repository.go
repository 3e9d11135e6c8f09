package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/bizdir/backend/internal/domain/listing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// listingOrder maps search sorts to ORDER BY clauses. Every clause ends on
// the primary key so paging is stable.
var listingOrder = map[listing.SortOrder]string{
	listing.SortRelevance: "featured DESC, rating_average DESC, review_count DESC, published_at DESC, id",
	listing.SortRating:    "rating_average DESC, review_count DESC, id",
	listing.SortNewest:    "published_at DESC, created_at DESC, id",
	listing.SortFeatured:  "featured DESC, published_at DESC, id",
}

// GormListingRepository implements listing.Repository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// Create inserts a new listing
func (r *GormListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	return r.db.WithContext(ctx).Create(models.ListingModelFromDomain(l)).Error
}

// Update writes the listing columns. The view counter and the rating columns
// are owned by IncrementViewCount and UpdateRating, so a stale aggregate cannot
// roll them back.
func (r *GormListingRepository) Update(ctx context.Context, l *listing.Listing) error {
	m := models.ListingModelFromDomain(l)
	result := r.db.WithContext(ctx).Model(m).
		Select("*").
		Omit("view_count", "rating_average", "review_count", "created_at").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a listing by its ID
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a listing by its slug
func (r *GormListingRepository) FindBySlug(ctx context.Context, slug string) (*listing.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several listings at once; missing IDs are skipped
func (r *GormListingRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*listing.Listing, error) {
	if len(ids) == 0 {
		return []*listing.Listing{}, nil
	}
	var rows []models.ListingModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toListings(rows), nil
}

// SlugExists reports whether any listing uses slug
func (r *GormListingRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ListingModel{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Search finds active listings matching the criteria
func (r *GormListingRepository) Search(ctx context.Context, c listing.SearchCriteria) ([]*listing.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ListingModel{}).
		Where("status = ?", listing.StatusActive)

	if q := strings.TrimSpace(c.Query); q != "" {
		pattern := "%" + strings.ToLower(escapeLike(q)) + "%"
		query = query.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern,
		)
	}
	if c.Category != "" {
		query = query.Where("category = ?", c.Category)
	}
	if city := strings.TrimSpace(c.City); city != "" {
		query = query.Where("LOWER(location_city) = ?", strings.ToLower(city))
	}
	// tags are stored as a JSON array of lowercase strings
	for _, tag := range c.Tags {
		query = query.Where(`tags LIKE ? ESCAPE '\'`, `%"`+escapeLike(tag)+`"%`)
	}
	if c.MinRating > 0 {
		query = query.Where("rating_average >= ?", c.MinRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := listingOrder[c.Sort]
	if !ok {
		order = listingOrder[listing.SortRelevance]
	}
	var rows []models.ListingModel
	if err := query.Order(order).
		Scopes(paginate(c.Page, c.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toListings(rows), total, nil
}

// List pages through listings for owners and admins, newest first
func (r *GormListingRepository) List(ctx context.Context, filter listing.ListFilter) ([]*listing.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ListingModel{})
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ListingModel
	if err := query.Order("created_at DESC, id").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toListings(rows), total, nil
}

// CountByOwner counts the owner's listings that are not archived
func (r *GormListingRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ListingModel{}).
		Where("owner_id = ? AND status <> ?", ownerID, listing.StatusArchived).
		Count(&count).Error
	return count, err
}

// CountByStatus counts listings per status
func (r *GormListingRepository) CountByStatus(ctx context.Context) (map[listing.Status]int64, error) {
	var rows []struct {
		Status listing.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.ListingModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[listing.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// IDsByOwner returns the IDs of all of the owner's listings
func (r *GormListingRepository) IDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.ListingModel{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// IncrementViewCount bumps the counter in place
func (r *GormListingRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.ListingModel{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// UpdateRating stores a recomputed rating without touching the other columns
func (r *GormListingRepository) UpdateRating(ctx context.Context, id uuid.UUID, average decimal.Decimal, count int) error {
	result := r.db.WithContext(ctx).Model(&models.ListingModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating_average": average,
			"review_count":   count,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toListings(rows []models.ListingModel) []*listing.Listing {
	out := make([]*listing.Listing, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ listing.Repository = (*GormListingRepository)(nil)
