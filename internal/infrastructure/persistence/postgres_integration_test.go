package persistence

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/bizdir/backend/internal/domain/identity"
	"github.com/bizdir/backend/internal/domain/listing"
	"github.com/bizdir/backend/internal/domain/review"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/migration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway PostgreSQL container and applies the SQL
// migrations, so repositories run against the production schema
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bizdir_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migrationsDir(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

func TestPostgres_ListingsAndReviews(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	users := NewGormUserRepository(db)
	listings := NewGormListingRepository(db)
	reviews := NewGormReviewRepository(db)

	owner := testUser("owner@example.com", "Owner", identity.RoleBusinessOwner)
	alice := testUser("alice@example.com", "Alice", identity.RoleUser)
	bob := testUser("bob@example.com", "Bob", identity.RoleUser)
	for _, u := range []*identity.User{owner, alice, bob} {
		require.NoError(t, users.Create(ctx, u))
	}

	t.Run("email is unique", func(t *testing.T) {
		err := users.Create(ctx, testUser("owner@example.com", "Copy", identity.RoleUser))
		assert.Error(t, err)
	})

	cafe := seedListing(t, listings, owner.ID, listingSeed{title: "Blue Bean Cafe", category: "Coffee Shop", city: "Berlin", tags: []string{"coffee", "wifi"}, rating: "4.5", status: listing.StatusActive})
	roastery := seedListing(t, listings, owner.ID, listingSeed{title: "Roast 100%", category: "Coffee Shop", city: "berlin", tags: []string{"coffee"}, featured: true, status: listing.StatusActive})
	seedListing(t, listings, owner.ID, listingSeed{title: "Hidden Coffee", category: "Coffee Shop", city: "Berlin"})

	t.Run("search", func(t *testing.T) {
		items, total, err := listings.Search(ctx, listing.SearchCriteria{Query: "coffee", City: "BERLIN"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 2)
		assert.Equal(t, roastery.ID, items[0].ID)

		items, _, err = listings.Search(ctx, listing.SearchCriteria{Query: "100%"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, roastery.ID, items[0].ID)

		items, _, err = listings.Search(ctx, listing.SearchCriteria{Tags: []string{"wifi"}})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, cafe.ID, items[0].ID)
	})

	t.Run("review stats", func(t *testing.T) {
		first, err := review.NewReview(cafe.ID, alice.ID, 5, "Great", "Lovely flat white")
		require.NoError(t, err)
		require.NoError(t, reviews.Create(ctx, first))
		second, err := review.NewReview(cafe.ID, bob.ID, 4, "", "Good beans and friendly staff")
		require.NoError(t, err)
		require.NoError(t, reviews.Create(ctx, second))

		dup, err := review.NewReview(cafe.ID, alice.ID, 1, "", "Changed my mind about this place")
		require.NoError(t, err)
		assert.Error(t, reviews.Create(ctx, dup), "one review per author and listing")

		exists, err := reviews.ExistsForAuthor(ctx, cafe.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		stats, err := reviews.RatingStats(ctx, cafe.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Count)
		assert.Equal(t, "4.5", stats.Average.StringFixed(1))
	})

	t.Run("missing rows map to not found", func(t *testing.T) {
		_, err := listings.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = users.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
