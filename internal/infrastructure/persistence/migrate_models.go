package persistence

import "github.com/bizdir/backend/internal/infrastructure/persistence/models"

// AllModels lists every persistence model, in dependency order.
// Used by AutoMigrate in tests and by the development bootstrap.
func AllModels() []any {
	return []any{
		&models.UserModel{},
		&models.ListingModel{},
		&models.ReviewModel{},
		&models.BookingModel{},
		&models.ConversationModel{},
		&models.MessageModel{},
		&models.ReportModel{},
		&models.AnalyticsEventModel{},
		&models.DailyStatModel{},
		&models.SubscriptionModel{},
	}
}
