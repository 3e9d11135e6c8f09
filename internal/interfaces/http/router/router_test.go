package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bizdir/backend/internal/infrastructure/auth"
	"github.com/bizdir/backend/internal/infrastructure/config"
	"github.com/bizdir/backend/internal/interfaces/http/handler"
	"github.com/bizdir/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// handlers with no services behind them; tests only hit routes that stop in middleware
func emptyHandlers() Handlers {
	return Handlers{
		Auth:       handler.NewAuthHandler(nil),
		Users:      handler.NewUserHandler(nil),
		Listings:   handler.NewListingHandler(nil),
		Reviews:    handler.NewReviewHandler(nil),
		Bookings:   handler.NewBookingHandler(nil),
		Messaging:  handler.NewMessagingHandler(nil),
		Moderation: handler.NewModerationHandler(nil),
		Analytics:  handler.NewAnalyticsHandler(nil),
		Billing:    handler.NewBillingHandler(nil, nil, nil),
		Builder:    handler.NewBuilderHandler(nil),
		Admin:      handler.NewAdminHandler(nil),
	}
}

func TestDomainGroup_RegisterRoutes(t *testing.T) {
	engine := gin.New()
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.FullPath()) }

	g := NewDomainGroup("things", "/things").GET("", ok).DELETE("/:id", ok)
	g.Group("parts", "/:id/parts").
		Use(func(c *gin.Context) { c.Header("X-Sub", "1") }).
		POST("", ok)
	NewRouter(engine, WithAPIVersion("v2")).Register(g).Setup()

	assert.Equal(t, []string{
		"DELETE /api/v2/things/:id",
		"GET /api/v2/things",
		"POST /api/v2/things/:id/parts",
	}, Describe(engine))
	assert.Equal(t, "things", g.Name())
	assert.Equal(t, "/things", g.Prefix())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v2/things/7/parts", nil))
	assert.Equal(t, "1", w.Header().Get("X-Sub"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/things/7", nil))
	assert.Empty(t, w.Header().Get("X-Sub"))
}

func TestGroups_RouteTable(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	require.NotPanics(t, func() { r.Register(Groups(emptyHandlers())...).Setup() })
	assert.Equal(t, "/api/v1", r.BasePath())

	routes := Describe(engine)
	for _, want := range []string{
		"GET /api/v1/listings",
		"GET /api/v1/listings/:id",
		"POST /api/v1/listings/:id/bookings",
		"POST /api/v1/me/listings/:id/photos/upload-url",
		"GET /api/v1/conversations/unread",
		"GET /api/v1/plans",
		"POST /api/v1/billing/webhook",
		"POST /api/v1/builder/analyze",
		"GET /api/v1/admin/listings/pending",
		"POST /api/v1/admin/listings/:id/archive",
		"GET /api/v1/admin/reports/stats",
		"GET /api/v1/admin/analytics/export",
	} {
		assert.Contains(t, routes, want)
	}
}

func TestGroups_AccessControl(t *testing.T) {
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "bizdir-test",
	})
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:   jwtSvc,
		PublicRoutes: middleware.DefaultPublicRoutes(),
	}))
	NewRouter(engine).Register(Groups(emptyHandlers())...).Setup()

	pair, err := jwtSvc.GenerateTokenPair(auth.Subject{UserID: uuid.New(), Email: "owner@example.com", Role: "business_owner"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"owner routes need a token", http.MethodPost, "/api/v1/me/listings", "", http.StatusUnauthorized},
		{"bookings need a token", http.MethodGet, "/api/v1/bookings", "", http.StatusUnauthorized},
		{"admin routes need a token", http.MethodGet, "/api/v1/admin/overview", "", http.StatusUnauthorized},
		{"admin routes need the admin role", http.MethodGet, "/api/v1/admin/overview", pair.AccessToken, http.StatusForbidden},
		{"admin reports need the admin role", http.MethodPost, "/api/v1/admin/reports/" + uuid.NewString() + "/resolve", pair.AccessToken, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
