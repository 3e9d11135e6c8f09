package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bizdir/backend/internal/application/analytics"
	"github.com/bizdir/backend/internal/application/billing"
	"github.com/bizdir/backend/internal/application/booking"
	"github.com/bizdir/backend/internal/application/identity"
	"github.com/bizdir/backend/internal/application/listing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/auth"
	"github.com/bizdir/backend/internal/interfaces/http/dto"
	"github.com/bizdir/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// asUser stands in for the JWT middleware
func asUser(id uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, &auth.Claims{
			UserID: id.String(),
			Role:   role,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti-1",
				ExpiresAt: jwt.NewNumericDate(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
			},
		})
		c.Set(middleware.JWTRoleKey, role)
		c.Next()
	}
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(mw...)
	return r
}

func do(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	svc := new(MockAuthService)
	h := NewAuthHandler(svc)
	r := newEngine()
	r.POST("/auth/register", h.Register)

	t.Run("creates account", func(t *testing.T) {
		input := identity.RegisterInput{Email: "ana@example.com", Password: "correct-horse", DisplayName: "Ana"}
		svc.On("Register", mock.Anything, input).Return(&identity.AuthResult{
			User: identity.UserResponse{Email: input.Email, Role: "user"},
		}, nil).Once()

		w := do(r, http.MethodPost, "/auth/register", input)
		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
	})

	t.Run("reports invalid fields by json name", func(t *testing.T) {
		w := do(r, http.MethodPost, "/auth/register", map[string]string{"email": "nope", "password": "short"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := map[string]bool{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = true
		}
		assert.True(t, fields["email"])
		assert.True(t, fields["password"])
		assert.True(t, fields["display_name"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		input := identity.RegisterInput{Email: "taken@example.com", Password: "correct-horse", DisplayName: "Bo"}
		svc.On("Register", mock.Anything, input).
			Return(nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")).Once()

		w := do(r, http.MethodPost, "/auth/register", input)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, decodeResponse(t, w).Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := do(r, http.MethodPost, "/auth/register", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
	})

	svc.AssertExpectations(t)
}

func TestAuthHandler_Login(t *testing.T) {
	svc := new(MockAuthService)
	h := NewAuthHandler(svc)
	r := newEngine()
	r.POST("/auth/login", h.Login)

	svc.On("Login", mock.Anything, mock.MatchedBy(func(in identity.LoginInput) bool {
		return in.Email == "ana@example.com" && in.IP == "192.0.2.1"
	})).Return(nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")).Once()

	w := do(r, http.MethodPost, "/auth/login", map[string]string{"email": "ana@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Logout(t *testing.T) {
	userID := uuid.New()

	t.Run("revokes the presented tokens", func(t *testing.T) {
		svc := new(MockAuthService)
		r := newEngine(asUser(userID, "user"))
		r.POST("/auth/logout", NewAuthHandler(svc).Logout)

		svc.On("Logout", mock.Anything, mock.MatchedBy(func(in identity.LogoutInput) bool {
			return in.UserID == userID && in.AccessJTI == "jti-1" && in.RefreshToken == "refresh-1" &&
				in.AccessExpiresAt.Equal(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
		})).Return(nil).Once()

		w := do(r, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": "refresh-1"})
		assert.Equal(t, http.StatusNoContent, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("requires authentication", func(t *testing.T) {
		svc := new(MockAuthService)
		r := newEngine()
		r.POST("/auth/logout", NewAuthHandler(svc).Logout)

		w := do(r, http.MethodPost, "/auth/logout", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
	})
}

func TestListingHandler_Search(t *testing.T) {
	svc := new(MockListingService)
	r := newEngine()
	r.GET("/listings", NewListingHandler(svc).Search)

	items := []listing.ListingResponse{{Title: "Pizza Place"}, {Title: "Pasta Bar"}}
	svc.On("Search", mock.Anything, listing.SearchInput{Query: "pizza", Page: 1, PageSize: 2}, mock.Anything).
		Return(shared.NewPaginated(items, 3, 1, 2), nil).Once()

	w := do(r, http.MethodGet, "/listings?q=pizza&page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(3), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	assert.Len(t, resp.Data, 2)

	w = do(r, http.MethodGet, "/listings?sort=cheapest", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestListingHandler_Get(t *testing.T) {
	t.Run("counts the view with the search that led to it", func(t *testing.T) {
		svc := new(MockListingService)
		r := newEngine()
		r.GET("/listings/:id", NewListingHandler(svc).Get)

		viewer := listing.Viewer{VisitorID: "visitor-1"}
		resp := &listing.ListingResponse{ID: uuid.New(), Slug: "pizza-place", Status: "active"}
		svc.On("Get", mock.Anything, "pizza-place", viewer).Return(resp, nil).Once()
		svc.On("RecordView", mock.Anything, resp, viewer, "pizza").Once()

		w := do(r, http.MethodGet, "/listings/pizza-place?q=pizza", nil, VisitorIDHeader, "visitor-1")
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("hidden listings are not found", func(t *testing.T) {
		svc := new(MockListingService)
		r := newEngine()
		r.GET("/listings/:id", NewListingHandler(svc).Get)
		svc.On("Get", mock.Anything, "draft-listing", mock.Anything).Return(nil, shared.ErrNotFound).Once()

		w := do(r, http.MethodGet, "/listings/draft-listing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
		svc.AssertNotCalled(t, "RecordView", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListingHandler_OwnerRoutes(t *testing.T) {
	ownerID := uuid.New()
	listingID := uuid.New()

	t.Run("create requires a user", func(t *testing.T) {
		svc := new(MockListingService)
		r := newEngine()
		r.POST("/me/listings", NewListingHandler(svc).Create)

		w := do(r, http.MethodPost, "/me/listings", map[string]string{"title": "Pizza Place"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("submit in the wrong state is unprocessable", func(t *testing.T) {
		svc := new(MockListingService)
		r := newEngine(asUser(ownerID, "business_owner"))
		r.POST("/me/listings/:id/submit", NewListingHandler(svc).Submit)
		svc.On("Submit", mock.Anything, ownerID, listingID).
			Return(nil, shared.NewDomainError("INVALID_STATE", "Only drafts and rejected listings can be submitted")).Once()

		w := do(r, http.MethodPost, "/me/listings/"+listingID.String()+"/submit", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, decodeResponse(t, w).Error.Code)
		svc.AssertExpectations(t)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := new(MockListingService)
		r := newEngine(asUser(ownerID, "business_owner"))
		r.POST("/me/listings/:id/submit", NewListingHandler(svc).Submit)

		w := do(r, http.MethodPost, "/me/listings/not-a-uuid/submit", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
	})

	t.Run("remove photo needs a key", func(t *testing.T) {
		svc := new(MockListingService)
		r := newEngine(asUser(ownerID, "business_owner"))
		r.DELETE("/me/listings/:id/photos", NewListingHandler(svc).RemovePhoto)

		w := do(r, http.MethodDelete, "/me/listings/"+listingID.String()+"/photos", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookingHandler_List(t *testing.T) {
	userID := uuid.New()
	svc := new(MockBookingService)
	r := newEngine(asUser(userID, "business_owner"))
	r.GET("/bookings", NewBookingHandler(svc).List)

	svc.On("ListForOwner", mock.Anything, userID, booking.ListBookingsInput{Status: "pending"}).
		Return(shared.NewPaginated([]booking.BookingResponse{{Status: "pending"}}, 1, 1, 20), nil).Once()
	svc.On("ListAsCustomer", mock.Anything, userID, booking.ListBookingsInput{}).
		Return(shared.NewPaginated[booking.BookingResponse](nil, 0, 1, 20), nil).Once()

	w := do(r, http.MethodGet, "/bookings?as=owner&status=pending", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/bookings", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decodeResponse(t, w).Data)

	w = do(r, http.MethodGet, "/bookings?as=admin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestBookingHandler_ConfirmWithoutBody(t *testing.T) {
	ownerID := uuid.New()
	bookingID := uuid.New()
	svc := new(MockBookingService)
	r := newEngine(asUser(ownerID, "business_owner"))
	r.POST("/bookings/:id/confirm", NewBookingHandler(svc).Confirm)

	svc.On("Confirm", mock.Anything, ownerID, bookingID, booking.DecisionInput{}).
		Return(&booking.BookingResponse{ID: bookingID, Status: "confirmed"}, nil).Once()

	w := do(r, http.MethodPost, "/bookings/"+bookingID.String()+"/confirm", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestBillingHandler_Webhook(t *testing.T) {
	payload := `{"id":"evt_1","type":"customer.subscription.updated"}`

	setup := func() (*gin.Engine, *MockWebhookProcessor, *fakeRecorder) {
		proc := new(MockWebhookProcessor)
		rec := &fakeRecorder{}
		r := newEngine()
		r.POST("/billing/webhook", NewBillingHandler(new(MockBillingService), proc, rec).Webhook)
		return r, proc, rec
	}

	t.Run("missing signature", func(t *testing.T) {
		r, proc, rec := setup()
		w := do(r, http.MethodPost, "/billing/webhook", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidSignature, decodeResponse(t, w).Error.Code)
		assert.Equal(t, []recordedWebhook{{"unknown", WebhookRejected}}, rec.calls)
		proc.AssertNotCalled(t, "ProcessWebhook", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad signature", func(t *testing.T) {
		r, proc, rec := setup()
		proc.On("ProcessWebhook", mock.Anything, []byte(payload), "t=1,v1=bad").
			Return(nil, shared.WrapDomainError("INVALID_SIGNATURE", "Webhook signature verification failed", errors.New("mismatch"))).Once()

		w := do(r, http.MethodPost, "/billing/webhook", payload, StripeSignatureHeader, "t=1,v1=bad")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []recordedWebhook{{"unknown", WebhookRejected}}, rec.calls)
	})

	t.Run("duplicate delivery is acknowledged", func(t *testing.T) {
		r, proc, rec := setup()
		proc.On("ProcessWebhook", mock.Anything, []byte(payload), "t=1,v1=ok").
			Return(&billing.WebhookResult{EventID: "evt_1", EventType: "customer.subscription.updated", Processed: false}, nil).Once()

		w := do(r, http.MethodPost, "/billing/webhook", payload, StripeSignatureHeader, "t=1,v1=ok")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []recordedWebhook{{"customer.subscription.updated", WebhookDuplicate}}, rec.calls)
	})

	t.Run("processing failure asks for a retry", func(t *testing.T) {
		r, proc, rec := setup()
		proc.On("ProcessWebhook", mock.Anything, []byte(payload), "t=1,v1=ok").
			Return(nil, errors.New("database is down")).Once()

		w := do(r, http.MethodPost, "/billing/webhook", payload, StripeSignatureHeader, "t=1,v1=ok")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeInternal, decodeResponse(t, w).Error.Code)
		assert.Equal(t, []recordedWebhook{{"unknown", WebhookFailed}}, rec.calls)
	})
}

func TestAnalyticsHandler_Track(t *testing.T) {
	svc := new(MockAnalyticsService)
	r := newEngine()
	r.POST("/analytics/events", NewAnalyticsHandler(svc).Track)

	svc.On("TrackPageView", mock.Anything,
		analytics.TrackPageViewInput{Path: "/about", VisitorID: "visitor-9"}, (*uuid.UUID)(nil)).Return(nil).Once()

	w := do(r, http.MethodPost, "/analytics/events", map[string]string{"path": "/about"}, VisitorIDHeader, "visitor-9")
	assert.Equal(t, http.StatusAccepted, w.Code)
	svc.AssertExpectations(t)
}

func TestAnalyticsHandler_ExportPDF(t *testing.T) {
	t.Run("streams the pdf", func(t *testing.T) {
		svc := new(MockAnalyticsService)
		h := NewAnalyticsHandler(svc)
		h.now = func() time.Time { return time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC) }
		r := newEngine()
		r.GET("/admin/analytics/export", h.ExportPDF)

		svc.On("ExportSitePDF", mock.Anything, analytics.DashboardInput{Period: "30d"}).
			Return([]byte("%PDF-1.7"), nil).Once()

		w := do(r, http.MethodGet, "/admin/analytics/export?period=30d", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="site-analytics-2026-03-09.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "%PDF-1.7", w.Body.String())
	})

	t.Run("renderer unavailable", func(t *testing.T) {
		svc := new(MockAnalyticsService)
		r := newEngine()
		r.GET("/admin/analytics/export", NewAnalyticsHandler(svc).ExportPDF)
		svc.On("ExportSitePDF", mock.Anything, analytics.DashboardInput{}).
			Return(nil, shared.NewDomainError("EXPORT_UNAVAILABLE", "PDF export is not available")).Once()

		w := do(r, http.MethodGet, "/admin/analytics/export", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeExportUnavailable, decodeResponse(t, w).Error.Code)
	})
}

func TestBodyTooLarge(t *testing.T) {
	svc := new(MockAuthService)
	r := newEngine()
	r.POST("/auth/register", middleware.BodyLimit(32), NewAuthHandler(svc).Register)

	// chunked, so the limit trips while decoding
	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		io.MultiReader(strings.NewReader(`{"email":"`), strings.NewReader(strings.Repeat("a", 64)+`"}`)))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, decodeResponse(t, w).Error.Code)
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler("bizdir", "1.2.3", map[string]Check{
		"database": func(context.Context) error { return nil },
		"cache":    func(context.Context) error { return errors.New("connection refused") },
	})
	r := newEngine()
	r.GET("/health", h.Live)
	r.GET("/ready", h.Ready)

	w := do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, map[string]string{"database": "ok", "cache": "error"}, body.Dependencies)
	assert.Equal(t, "1.2.3", body.Version)
}
