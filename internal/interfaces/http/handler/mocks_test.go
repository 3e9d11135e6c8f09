package handler

import (
	"context"

	"github.com/bizdir/backend/internal/application/analytics"
	"github.com/bizdir/backend/internal/application/billing"
	"github.com/bizdir/backend/internal/application/booking"
	"github.com/bizdir/backend/internal/application/identity"
	"github.com/bizdir/backend/internal/application/listing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// result unpacks a (pointer, error) pair recorded on a mock call
func result[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func page[T any](args mock.Arguments) (shared.Paginated[T], error) {
	return args.Get(0).(shared.Paginated[T]), args.Error(1)
}

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Register(ctx context.Context, input identity.RegisterInput) (*identity.AuthResult, error) {
	return result[identity.AuthResult](m.Called(ctx, input))
}

func (m *MockAuthService) Login(ctx context.Context, input identity.LoginInput) (*identity.AuthResult, error) {
	return result[identity.AuthResult](m.Called(ctx, input))
}

func (m *MockAuthService) Refresh(ctx context.Context, input identity.RefreshInput) (*identity.TokenResponse, error) {
	return result[identity.TokenResponse](m.Called(ctx, input))
}

func (m *MockAuthService) Logout(ctx context.Context, input identity.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthService) GetMe(ctx context.Context, userID uuid.UUID) (*identity.UserResponse, error) {
	return result[identity.UserResponse](m.Called(ctx, userID))
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input identity.UpdateProfileInput) (*identity.UserResponse, error) {
	return result[identity.UserResponse](m.Called(ctx, userID, input))
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input identity.ChangePasswordInput) error {
	return m.Called(ctx, userID, input).Error(0)
}

type MockListingService struct{ mock.Mock }

func (m *MockListingService) Create(ctx context.Context, ownerID uuid.UUID, input listing.ListingInput) (*listing.ListingResponse, error) {
	return result[listing.ListingResponse](m.Called(ctx, ownerID, input))
}

func (m *MockListingService) Update(ctx context.Context, ownerID, listingID uuid.UUID, input listing.ListingInput) (*listing.ListingResponse, error) {
	return result[listing.ListingResponse](m.Called(ctx, ownerID, listingID, input))
}

func (m *MockListingService) Submit(ctx context.Context, ownerID, listingID uuid.UUID) (*listing.ListingResponse, error) {
	return result[listing.ListingResponse](m.Called(ctx, ownerID, listingID))
}

func (m *MockListingService) Archive(ctx context.Context, viewer listing.Viewer, listingID uuid.UUID) (*listing.ListingResponse, error) {
	return result[listing.ListingResponse](m.Called(ctx, viewer, listingID))
}

func (m *MockListingService) Approve(ctx context.Context, listingID uuid.UUID) (*listing.ListingResponse, error) {
	return result[listing.ListingResponse](m.Called(ctx, listingID))
}

func (m *MockListingService) Reject(ctx context.Context, listingID uuid.UUID, input listing.RejectInput) (*listing.ListingResponse, error) {
	return result[listing.ListingResponse](m.Called(ctx, listingID, input))
}

func (m *MockListingService) Reinstate(ctx context.Context, listingID uuid.UUID) (*listing.ListingResponse, error) {
	return result[listing.ListingResponse](m.Called(ctx, listingID))
}

func (m *MockListingService) Get(ctx context.Context, idOrSlug string, viewer listing.Viewer) (*listing.ListingResponse, error) {
	return result[listing.ListingResponse](m.Called(ctx, idOrSlug, viewer))
}

func (m *MockListingService) RecordView(ctx context.Context, resp *listing.ListingResponse, viewer listing.Viewer, query string) {
	m.Called(ctx, resp, viewer, query)
}

func (m *MockListingService) Search(ctx context.Context, input listing.SearchInput, viewer listing.Viewer) (shared.Paginated[listing.ListingResponse], error) {
	return page[listing.ListingResponse](m.Called(ctx, input, viewer))
}

func (m *MockListingService) ListMine(ctx context.Context, ownerID uuid.UUID, input listing.ListInput) (shared.Paginated[listing.ListingResponse], error) {
	return page[listing.ListingResponse](m.Called(ctx, ownerID, input))
}

func (m *MockListingService) ListPending(ctx context.Context, input listing.ListInput) (shared.Paginated[listing.ListingResponse], error) {
	return page[listing.ListingResponse](m.Called(ctx, input))
}

func (m *MockListingService) ListAll(ctx context.Context, input listing.ListInput) (shared.Paginated[listing.ListingResponse], error) {
	return page[listing.ListingResponse](m.Called(ctx, input))
}

func (m *MockListingService) PhotoUploadURL(ctx context.Context, ownerID, listingID uuid.UUID, input listing.PhotoUploadInput) (*listing.PhotoUploadResponse, error) {
	return result[listing.PhotoUploadResponse](m.Called(ctx, ownerID, listingID, input))
}

func (m *MockListingService) AttachPhoto(ctx context.Context, ownerID, listingID uuid.UUID, input listing.AttachPhotoInput) (*listing.ListingResponse, error) {
	return result[listing.ListingResponse](m.Called(ctx, ownerID, listingID, input))
}

func (m *MockListingService) RemovePhoto(ctx context.Context, ownerID, listingID uuid.UUID, key string) (*listing.ListingResponse, error) {
	return result[listing.ListingResponse](m.Called(ctx, ownerID, listingID, key))
}

type MockBookingService struct{ mock.Mock }

func (m *MockBookingService) Request(ctx context.Context, customerID, listingID uuid.UUID, input booking.RequestBookingInput) (*booking.BookingResponse, error) {
	return result[booking.BookingResponse](m.Called(ctx, customerID, listingID, input))
}

func (m *MockBookingService) Confirm(ctx context.Context, ownerID, bookingID uuid.UUID, input booking.DecisionInput) (*booking.BookingResponse, error) {
	return result[booking.BookingResponse](m.Called(ctx, ownerID, bookingID, input))
}

func (m *MockBookingService) Decline(ctx context.Context, ownerID, bookingID uuid.UUID, input booking.DecisionInput) (*booking.BookingResponse, error) {
	return result[booking.BookingResponse](m.Called(ctx, ownerID, bookingID, input))
}

func (m *MockBookingService) Complete(ctx context.Context, ownerID, bookingID uuid.UUID) (*booking.BookingResponse, error) {
	return result[booking.BookingResponse](m.Called(ctx, ownerID, bookingID))
}

func (m *MockBookingService) Cancel(ctx context.Context, customerID, bookingID uuid.UUID, input booking.DecisionInput) (*booking.BookingResponse, error) {
	return result[booking.BookingResponse](m.Called(ctx, customerID, bookingID, input))
}

func (m *MockBookingService) Get(ctx context.Context, userID, bookingID uuid.UUID) (*booking.BookingResponse, error) {
	return result[booking.BookingResponse](m.Called(ctx, userID, bookingID))
}

func (m *MockBookingService) ListAsCustomer(ctx context.Context, customerID uuid.UUID, input booking.ListBookingsInput) (shared.Paginated[booking.BookingResponse], error) {
	return page[booking.BookingResponse](m.Called(ctx, customerID, input))
}

func (m *MockBookingService) ListForOwner(ctx context.Context, ownerID uuid.UUID, input booking.ListBookingsInput) (shared.Paginated[booking.BookingResponse], error) {
	return page[booking.BookingResponse](m.Called(ctx, ownerID, input))
}

type MockBillingService struct{ mock.Mock }

func (m *MockBillingService) ListPlans() []billing.PlanResponse {
	return m.Called().Get(0).([]billing.PlanResponse)
}

func (m *MockBillingService) GetMine(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error) {
	return result[billing.SubscriptionResponse](m.Called(ctx, userID))
}

func (m *MockBillingService) Cancel(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error) {
	return result[billing.SubscriptionResponse](m.Called(ctx, userID))
}

func (m *MockBillingService) Resume(ctx context.Context, userID uuid.UUID) (*billing.SubscriptionResponse, error) {
	return result[billing.SubscriptionResponse](m.Called(ctx, userID))
}

type MockWebhookProcessor struct{ mock.Mock }

func (m *MockWebhookProcessor) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*billing.WebhookResult, error) {
	return result[billing.WebhookResult](m.Called(ctx, payload, signature))
}

type recordedWebhook struct{ eventType, outcome string }

type fakeRecorder struct{ calls []recordedWebhook }

func (r *fakeRecorder) RecordWebhook(_ context.Context, eventType, outcome string) {
	r.calls = append(r.calls, recordedWebhook{eventType, outcome})
}

type MockAnalyticsService struct{ mock.Mock }

func (m *MockAnalyticsService) TrackPageView(ctx context.Context, input analytics.TrackPageViewInput, userID *uuid.UUID) error {
	return m.Called(ctx, input, userID).Error(0)
}

func (m *MockAnalyticsService) SiteDashboard(ctx context.Context, input analytics.DashboardInput) (*analytics.SummaryResponse, error) {
	return result[analytics.SummaryResponse](m.Called(ctx, input))
}

func (m *MockAnalyticsService) OwnerDashboard(ctx context.Context, ownerID uuid.UUID, input analytics.DashboardInput) (*analytics.SummaryResponse, error) {
	return result[analytics.SummaryResponse](m.Called(ctx, ownerID, input))
}

func (m *MockAnalyticsService) ExportSitePDF(ctx context.Context, input analytics.DashboardInput) ([]byte, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var (
	_ AuthService      = (*MockAuthService)(nil)
	_ ListingService   = (*MockListingService)(nil)
	_ BookingService   = (*MockBookingService)(nil)
	_ BillingService   = (*MockBillingService)(nil)
	_ WebhookProcessor = (*MockWebhookProcessor)(nil)
	_ AnalyticsService = (*MockAnalyticsService)(nil)
)
